package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestUniqueViolationError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"email index", &pgconn.PgError{Code: "23505", ConstraintName: constraintUsersEmail}, ErrEmailExists},
		{"google id index", &pgconn.PgError{Code: "23505", ConstraintName: constraintUsersGoogleID}, ErrGoogleIDExists},
		{"wrapped", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505", ConstraintName: constraintUsersGoogleID}), ErrGoogleIDExists},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, nil},
		{"plain error", errors.New("unique but not postgres"), nil},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := uniqueViolationError(tt.err)
			if !errors.Is(got, tt.want) && got != tt.want {
				t.Errorf("uniqueViolationError() = %v, want %v", got, tt.want)
			}
		})
	}
}
