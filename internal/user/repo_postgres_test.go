package user

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepo(db, zaptest.NewLogger(t)), mock
}

var userColumns = []string{"id", "email", "role", "profile", "created_at", "updated_at"}

func TestPostgresRegisterCreated(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), "a@x.com", "user", `{"name":"A"}`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("2d1c6f3e-6f1e-4c43-9d59-4b8f4cfa1a11"))

	res, err := repo.Register(context.Background(), NewUser("a@x.com", map[string]any{"name": "A"}))
	require.NoError(t, err)
	assert.True(t, res.Created)
	require.NotNil(t, res.ID)
	assert.Equal(t, "2d1c6f3e-6f1e-4c43-9d59-4b8f4cfa1a11", *res.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRegisterExisting(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), "a@x.com", "user", `{}`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	res, err := repo.Register(context.Background(), NewUser("a@x.com", nil))
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Nil(t, res.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRegisterUniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"})

	res, err := repo.Register(context.Background(), NewUser("a@x.com", nil))
	require.NoError(t, err)
	assert.False(t, res.Created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindByEmail(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery("SELECT id, email, role, profile, created_at, updated_at").
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u-1", "a@x.com", "tour guide", []byte(`{"name":"A"}`), now, now))

	u, err := repo.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, RoleTourGuide, u.Role)
	assert.Equal(t, "A", u.Profile["name"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindByEmailNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, email, role, profile, created_at, updated_at").
		WithArgs("missing@x.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.FindByEmail(context.Background(), "missing@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresList(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM users ORDER BY created_at").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("u-1", "a@x.com", "admin", []byte(`{}`), now, now).
			AddRow("u-2", "b@x.com", "user", []byte(`{"photo":"b.png"}`), now, now))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, RoleAdmin, users[0].Role)
	assert.Equal(t, "b.png", users[1].Profile["photo"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSetRole(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec("UPDATE users SET role").
			WithArgs("u-1", "admin").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SetRole(context.Background(), "u-1", RoleAdmin))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec("UPDATE users SET role").
			WithArgs("u-404", "admin").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.SetRole(context.Background(), "u-404", RoleAdmin), ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("malformed id", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec("UPDATE users SET role").
			WithArgs("not-a-uuid", "admin").
			WillReturnError(&pgconn.PgError{Code: pgerrcode.InvalidTextRepresentation})

		assert.ErrorIs(t, repo.SetRole(context.Background(), "not-a-uuid", RoleAdmin), ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresUpdateProfile(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE users SET profile = profile").
		WithArgs("a@x.com", `{"photo":"b.png"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET profile = profile").
		WithArgs("missing@x.com", `{"photo":"b.png"}`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdateProfile(context.Background(), "a@x.com", map[string]any{"photo": "b.png"}))
	assert.ErrorIs(t, repo.UpdateProfile(context.Background(), "missing@x.com", map[string]any{"photo": "b.png"}), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
