package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"chatterbox/internal/app/user"
)

func TestMapUserConstraint(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"username", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: constraintUsername}, user.ErrDuplicateUsername},
		{"email", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: constraintEmail}, user.ErrDuplicateEmail},
		{"wrapped", fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: constraintEmail}), user.ErrDuplicateEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapUserConstraint(tt.err), tt.want)
		})
	}
}

func TestMapUserConstraintPassesOtherErrors(t *testing.T) {
	other := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "messages_pkey"}
	assert.Same(t, error(other), mapUserConstraint(other))

	checkViolation := &pgconn.PgError{Code: "23514", ConstraintName: constraintUsername}
	assert.Same(t, error(checkViolation), mapUserConstraint(checkViolation))

	plain := errors.New("boom")
	assert.False(t, IsUniqueViolation(plain))
}
