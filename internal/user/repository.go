package user

import "context"

// Repository is the storage port of the user directory. Implementations
// must make Register an atomic insert-if-absent keyed by email.
type Repository interface {
	Register(ctx context.Context, u *User) (RegisterResult, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	SetRole(ctx context.Context, id string, role Role) error
	UpdateProfile(ctx context.Context, email string, fields map[string]any) error
}
