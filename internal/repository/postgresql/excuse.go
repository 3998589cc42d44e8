package postgresql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/meetinghours/attendance-backend/internal/domain/excuse"
	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/pkg/database"
)

type excuseRepositoryImpl struct {
	db *database.DB
}

func NewExcuseRepository(db *database.DB) excuse.ExcuseRepository {
	return &excuseRepositoryImpl{db: db}
}

const excuseColumns = `id, user_id, window_id, period_id, reason, created_by, request_id, created_at`

func scanExcuse(row pgx.Row) (excuse.Excuse, error) {
	var e excuse.Excuse
	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.WindowID,
		&e.PeriodID,
		&e.Reason,
		&e.CreatedBy,
		&e.RequestID,
		&e.CreatedAt,
	)
	return e, err
}

// Create implements excuse.ExcuseRepository.
func (r *excuseRepositoryImpl) Create(ctx context.Context, e excuse.Excuse) (excuse.Excuse, error) {
	if !validIDs(e.UserID) {
		return excuse.Excuse{}, user.ErrUserNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO excuses (` + excuseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + excuseColumns

	created, err := scanExcuse(q.QueryRow(ctx, query,
		e.ID, e.UserID, e.WindowID, e.PeriodID, e.Reason, e.CreatedBy, e.RequestID, e.CreatedAt,
	))
	if err != nil {
		if isPgError(err, uniqueViolation) {
			return excuse.Excuse{}, excuse.ErrExcuseExists
		}
		if isPgError(err, foreignKeyViolation) {
			return excuse.Excuse{}, user.ErrUserNotFound
		}
		return excuse.Excuse{}, err
	}
	return created, nil
}

// Exists implements excuse.ExcuseRepository.
func (r *excuseRepositoryImpl) Exists(ctx context.Context, userID string, windowID string) (bool, error) {
	if !validIDs(userID, windowID) {
		return false, nil
	}
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM excuses WHERE user_id = $1 AND window_id = $2)`,
		userID, windowID,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// ListByUserAndPeriod implements excuse.ExcuseRepository.
func (r *excuseRepositoryImpl) ListByUserAndPeriod(ctx context.Context, userID string, periodID string) ([]excuse.Excuse, error) {
	if !validIDs(userID, periodID) {
		return nil, nil
	}
	query := `SELECT ` + excuseColumns + ` FROM excuses WHERE user_id = $1 AND period_id = $2 ORDER BY id`
	return r.list(ctx, query, userID, periodID)
}

// ListByPeriod implements excuse.ExcuseRepository.
func (r *excuseRepositoryImpl) ListByPeriod(ctx context.Context, periodID string) ([]excuse.Excuse, error) {
	if !validIDs(periodID) {
		return nil, nil
	}
	query := `SELECT ` + excuseColumns + ` FROM excuses WHERE period_id = $1 ORDER BY id`
	return r.list(ctx, query, periodID)
}

func (r *excuseRepositoryImpl) list(ctx context.Context, query string, args ...any) ([]excuse.Excuse, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var excuses []excuse.Excuse
	for rows.Next() {
		e, err := scanExcuse(rows)
		if err != nil {
			return nil, err
		}
		excuses = append(excuses, e)
	}
	return excuses, rows.Err()
}
