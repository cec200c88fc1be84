package user

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// protected fields are owned by the directory and never taken from a profile.
var protectedFields = []string{"_id", "email", "role", "createdAt", "updatedAt"}

// Directory owns every read and write of user records.
type Directory interface {
	RegisterIfAbsent(ctx context.Context, email string, profile map[string]any) (RegisterResult, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	SetRole(ctx context.Context, id string, role Role) error
	UpdateProfile(ctx context.Context, email string, fields map[string]any) (*User, error)
	RoleOf(ctx context.Context, email string) (Role, error)
	EnsureAdmin(ctx context.Context, email string) error
}

type directory struct {
	repo   Repository
	logger *zap.Logger
}

func NewDirectory(repo Repository, logger *zap.Logger) Directory {
	return &directory{
		repo:   repo,
		logger: logger,
	}
}

func (d *directory) RegisterIfAbsent(ctx context.Context, email string, profile map[string]any) (RegisterResult, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return RegisterResult{}, ErrMissingEmail
	}

	res, err := d.repo.Register(ctx, NewUser(email, sanitizeProfile(profile)))
	if err != nil {
		return RegisterResult{}, err
	}
	if res.Created {
		d.logger.Info("user registered", zap.String("email", email))
	}
	return res, nil
}

func (d *directory) FindByEmail(ctx context.Context, email string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrNotFound
	}
	return d.repo.FindByEmail(ctx, email)
}

func (d *directory) List(ctx context.Context) ([]User, error) {
	return d.repo.List(ctx)
}

func (d *directory) SetRole(ctx context.Context, id string, role Role) error {
	if !role.IsValid() {
		return ErrInvalidRole
	}
	if err := d.repo.SetRole(ctx, strings.TrimSpace(id), role); err != nil {
		return err
	}
	d.logger.Info("user role changed", zap.String("id", id), zap.String("role", string(role)))
	return nil
}

func (d *directory) UpdateProfile(ctx context.Context, email string, fields map[string]any) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrNotFound
	}
	patch := sanitizeProfile(fields)
	if len(patch) > 0 {
		if err := d.repo.UpdateProfile(ctx, email, patch); err != nil {
			return nil, err
		}
	}
	return d.repo.FindByEmail(ctx, email)
}

func (d *directory) RoleOf(ctx context.Context, email string) (Role, error) {
	u, err := d.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

// EnsureAdmin registers email if needed and grants it the admin role.
func (d *directory) EnsureAdmin(ctx context.Context, email string) error {
	if _, err := d.RegisterIfAbsent(ctx, email, nil); err != nil {
		return err
	}
	u, err := d.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u.Role == RoleAdmin {
		return nil
	}
	if err := d.SetRole(ctx, u.ID, RoleAdmin); err != nil {
		if errors.Is(err, ErrNotFound) {
			d.logger.Warn("bootstrap admin vanished before role update", zap.String("email", u.Email))
		}
		return err
	}
	return nil
}

// sanitizeProfile drops directory-owned fields and keys that would address
// nested paths or operators in a document store.
func sanitizeProfile(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if k == "" || strings.HasPrefix(k, "$") || strings.Contains(k, ".") {
			continue
		}
		out[k] = v
	}
	for _, k := range protectedFields {
		delete(out, k)
	}
	return out
}
