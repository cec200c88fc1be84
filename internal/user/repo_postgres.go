package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/mehmetcc/travelize/internal/database"
	"go.uber.org/zap"
)

const (
	insertUserQuery = `
						INSERT INTO users (id, email, role, profile)
						VALUES ($1, $2, $3, $4::jsonb)
						ON CONFLICT (email) DO NOTHING
						RETURNING id
						`
	selectUserByEmailQuery = `
						SELECT id, email, role, profile, created_at, updated_at
						FROM users
						WHERE email = $1
						`
	listUsersQuery = `
						SELECT id, email, role, profile, created_at, updated_at
						FROM users
						ORDER BY created_at
						`
	updateRoleQuery = `
						UPDATE users SET role = $2, updated_at = now()
						WHERE id = $1
						`
	mergeProfileQuery = `
						UPDATE users SET profile = profile || $2::jsonb, updated_at = now()
						WHERE email = $1
						`
)

type postgresRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresRepo(db *sql.DB, logger *zap.Logger) Repository {
	return &postgresRepo{
		db:     db,
		logger: logger,
	}
}

// Register relies on the unique email constraint: ON CONFLICT DO NOTHING makes
// the check and the insert a single statement, so concurrent registrations of
// one email yield exactly one row.
func (p *postgresRepo) Register(ctx context.Context, u *User) (RegisterResult, error) {
	profile, err := json.Marshal(u.Profile)
	if err != nil {
		return RegisterResult{}, err
	}

	var id string
	err = p.db.QueryRowContext(ctx, insertUserQuery, uuid.NewString(), u.Email, string(u.Role), string(profile)).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		p.logger.Debug("email already registered", zap.String("email", u.Email))
		return RegisterResult{Created: false}, nil
	case database.IsUniqueViolation(err):
		p.logger.Debug("duplicate registration lost the race", zap.String("email", u.Email))
		return RegisterResult{Created: false}, nil
	case err != nil:
		p.logger.Error("failed to insert user", zap.Error(err))
		return RegisterResult{}, err
	}

	p.logger.Debug("user created", zap.String("id", id))
	return RegisterResult{Created: true, ID: &id}, nil
}

func (p *postgresRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(p.db.QueryRowContext(ctx, selectUserByEmailQuery, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		p.logger.Error("failed to find user by email", zap.Error(err))
		return nil, err
	}
	return u, nil
}

func (p *postgresRepo) List(ctx context.Context) ([]User, error) {
	rows, err := p.db.QueryContext(ctx, listUsersQuery)
	if err != nil {
		p.logger.Error("failed to list users", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (p *postgresRepo) SetRole(ctx context.Context, id string, role Role) error {
	res, err := p.db.ExecContext(ctx, updateRoleQuery, id, string(role))
	if err != nil {
		if database.IsInvalidInput(err) {
			return ErrNotFound
		}
		p.logger.Error("failed to update role", zap.String("id", id), zap.Error(err))
		return err
	}
	return requireAffected(res)
}

func (p *postgresRepo) UpdateProfile(ctx context.Context, email string, fields map[string]any) error {
	patch, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	res, err := p.db.ExecContext(ctx, mergeProfileQuery, email, string(patch))
	if err != nil {
		p.logger.Error("failed to update profile", zap.Error(err))
		return err
	}
	return requireAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var (
		u       User
		role    string
		profile []byte
	)
	if err := row.Scan(&u.ID, &u.Email, &role, &profile, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = Role(role)
	u.Profile = map[string]any{}
	if len(profile) > 0 {
		if err := json.Unmarshal(profile, &u.Profile); err != nil {
			return nil, err
		}
	}
	return &u, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
