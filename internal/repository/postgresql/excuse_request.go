package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/meetinghours/attendance-backend/internal/domain/excuse"
	"github.com/meetinghours/attendance-backend/internal/pkg/database"
)

type requestRepositoryImpl struct {
	db *database.DB
}

func NewRequestRepository(db *database.DB) excuse.RequestRepository {
	return &requestRepositoryImpl{db: db}
}

const requestColumns = `id, user_id, window_id, reason, status, requested_at, reviewed_by, reviewed_at, admin_notes`

func scanRequest(row pgx.Row) (excuse.Request, error) {
	var req excuse.Request
	err := row.Scan(
		&req.ID,
		&req.UserID,
		&req.WindowID,
		&req.Reason,
		&req.Status,
		&req.RequestedAt,
		&req.ReviewedBy,
		&req.ReviewedAt,
		&req.AdminNotes,
	)
	return req, err
}

// Create implements excuse.RequestRepository.
func (r *requestRepositoryImpl) Create(ctx context.Context, req excuse.Request) (excuse.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO excuse_requests (id, user_id, window_id, reason, status, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + requestColumns

	created, err := scanRequest(q.QueryRow(ctx, query,
		req.ID, req.UserID, req.WindowID, req.Reason, req.Status, req.RequestedAt,
	))
	if err != nil {
		if isPgError(err, uniqueViolation) {
			return excuse.Request{}, excuse.ErrRequestExists
		}
		return excuse.Request{}, err
	}
	return created, nil
}

// GetByID implements excuse.RequestRepository. Inside a transaction the row
// is locked until commit so two reviewers cannot both process it.
func (r *requestRepositoryImpl) GetByID(ctx context.Context, id string) (excuse.Request, error) {
	if !validIDs(id) {
		return excuse.Request{}, excuse.ErrRequestNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + requestColumns + ` FROM excuse_requests WHERE id = $1 FOR UPDATE`

	req, err := scanRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return excuse.Request{}, excuse.ErrRequestNotFound
		}
		return excuse.Request{}, err
	}
	return req, nil
}

// HasPending implements excuse.RequestRepository.
func (r *requestRepositoryImpl) HasPending(ctx context.Context, userID string, windowID string) (bool, error) {
	if !validIDs(userID, windowID) {
		return false, nil
	}
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM excuse_requests WHERE user_id = $1 AND window_id = $2 AND status = 'pending')`,
		userID, windowID,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// ListByStatus implements excuse.RequestRepository.
func (r *requestRepositoryImpl) ListByStatus(ctx context.Context, status excuse.RequestStatus) ([]excuse.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + requestColumns + ` FROM excuse_requests WHERE status = $1 ORDER BY requested_at, id`

	rows, err := q.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []excuse.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// Update implements excuse.RequestRepository.
func (r *requestRepositoryImpl) Update(ctx context.Context, req excuse.Request) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE excuse_requests
		SET status = $2, reviewed_by = $3, reviewed_at = $4, admin_notes = $5
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, req.ID, req.Status, req.ReviewedBy, req.ReviewedAt, req.AdminNotes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return excuse.ErrRequestNotFound
	}
	return nil
}
