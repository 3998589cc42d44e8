package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/meetinghours/attendance-backend/internal/domain/window"
	"github.com/meetinghours/attendance-backend/internal/pkg/database"
)

type windowRepositoryImpl struct {
	db *database.DB
}

func NewWindowRepository(db *database.DB) window.WindowRepository {
	return &windowRepositoryImpl{db: db}
}

const windowColumns = `id, start_time, end_time, category, description, created_by, created_at`

func scanWindow(row pgx.Row) (window.TimeWindow, error) {
	var w window.TimeWindow
	err := row.Scan(
		&w.ID,
		&w.StartTime,
		&w.EndTime,
		&w.Category,
		&w.Description,
		&w.CreatedBy,
		&w.CreatedAt,
	)
	return w, err
}

// Create implements window.WindowRepository.
func (r *windowRepositoryImpl) Create(ctx context.Context, w window.TimeWindow) (window.TimeWindow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO time_windows (id, start_time, end_time, category, description, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + windowColumns

	return scanWindow(q.QueryRow(ctx, query,
		w.ID, w.StartTime, w.EndTime, w.Category, w.Description, w.CreatedBy, w.CreatedAt,
	))
}

// GetByID implements window.WindowRepository.
func (r *windowRepositoryImpl) GetByID(ctx context.Context, id string) (window.TimeWindow, error) {
	if !validIDs(id) {
		return window.TimeWindow{}, window.ErrWindowNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + windowColumns + ` FROM time_windows WHERE id = $1`

	w, err := scanWindow(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return window.TimeWindow{}, window.ErrWindowNotFound
		}
		return window.TimeWindow{}, err
	}
	return w, nil
}

// ListStartingBetween implements window.WindowRepository.
func (r *windowRepositoryImpl) ListStartingBetween(ctx context.Context, from, to time.Time, category *window.Category) ([]window.TimeWindow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + windowColumns + `
		FROM time_windows
		WHERE start_time >= $1 AND start_time < $2
		  AND ($3::text IS NULL OR category = $3)
		ORDER BY start_time, id
	`

	var cat *string
	if category != nil {
		c := string(*category)
		cat = &c
	}

	rows, err := q.Query(ctx, query, from, to, cat)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var windows []window.TimeWindow
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}
