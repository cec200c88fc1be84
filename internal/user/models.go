package user

import (
	"encoding/json"
	"strings"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleTourGuide Role = "tour guide"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleUser, RoleAdmin, RoleTourGuide:
		return r, nil
	default:
		return "", ErrInvalidRole
	}
}

func (r Role) IsValid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

type User struct {
	ID        string         `json:"_id"`
	Email     string         `json:"email"`
	Role      Role           `json:"role"`
	Profile   map[string]any `json:"profile"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func NewUser(email string, profile map[string]any) *User {
	if profile == nil {
		profile = map[string]any{}
	}
	return &User{
		Email:   email,
		Role:    RoleUser,
		Profile: profile,
	}
}

// RegisterResult reports whether a registration created a record. ID is nil
// when the email was already registered.
type RegisterResult struct {
	Created bool    `json:"created"`
	ID      *string `json:"id"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
