package database

import (
	"context"
	"database/sql"

	"github.com/mehmetcc/travelize/migrations"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// Migrate applies every pending embedded migration.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// SetMigrationLogger routes goose output through a "goose" child of logger.
func SetMigrationLogger(logger *zap.Logger) {
	goose.SetLogger(gooseLogger{s: logger.Named("goose").Sugar()})
}

type gooseLogger struct{ s *zap.SugaredLogger }

func (l gooseLogger) Printf(format string, v ...any) {
	l.s.Infof(format, v...)
}

// Fatalf must not exit; a failed migration is returned to the caller instead.
func (l gooseLogger) Fatalf(format string, v ...any) {
	l.s.Errorf(format, v...)
}
