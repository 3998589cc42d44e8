package postgresql

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/meetinghours/attendance-backend/internal/pkg/database"
	"github.com/meetinghours/attendance-backend/internal/pkg/validator"
)

//go:embed schema.sql
var schemaSQL string

// Migrate applies the schema. It is safe to run repeatedly.
func Migrate(ctx context.Context, db *database.DB) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// validIDs reports whether every id can be compared against a UUID column.
// Postgres rejects malformed literals with 22P02, so callers treat them as
// rows that do not exist.
func validIDs(ids ...string) bool {
	for _, id := range ids {
		if !validator.IsValidUUID(id) {
			return false
		}
	}
	return true
}
