package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	unique := fmt.Errorf("insert user: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation})
	badUUID := &pgconn.PgError{Code: pgerrcode.InvalidTextRepresentation}

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsInvalidInput(unique))

	assert.True(t, IsInvalidInput(badUUID))
	assert.False(t, IsUniqueViolation(badUUID))

	assert.False(t, IsUniqueViolation(errors.New("connection reset")))
	assert.False(t, IsInvalidInput(nil))
}
