package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/meetinghours/attendance-backend/internal/domain/attendance"
	"github.com/meetinghours/attendance-backend/internal/pkg/database"
)

type recordRepositoryImpl struct {
	db *database.DB
}

func NewRecordRepository(db *database.DB) attendance.RecordRepository {
	return &recordRepositoryImpl{db: db}
}

const recordColumns = `id, user_id, window_id, attendance_start, attendance_end, partial_hours, explicit_time, notes, created_at, updated_at`

func scanRecord(row pgx.Row, extra ...any) (attendance.Record, error) {
	var rec attendance.Record
	dest := []any{
		&rec.ID,
		&rec.UserID,
		&rec.WindowID,
		&rec.AttendanceStart,
		&rec.AttendanceEnd,
		&rec.PartialHours,
		&rec.ExplicitTime,
		&rec.Notes,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return rec, err
}

// GetByUserAndWindow implements attendance.RecordRepository.
func (r *recordRepositoryImpl) GetByUserAndWindow(ctx context.Context, userID string, windowID string) (attendance.Record, error) {
	if !validIDs(userID, windowID) {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + recordColumns + ` FROM attendance_records WHERE user_id = $1 AND window_id = $2`

	rec, err := scanRecord(q.QueryRow(ctx, query, userID, windowID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, err
	}
	return rec, nil
}

// Upsert implements attendance.RecordRepository. The (user_id, window_id)
// unique constraint makes concurrent first submissions converge on one row;
// xmax is zero only for the row version this statement inserted.
func (r *recordRepositoryImpl) Upsert(ctx context.Context, record attendance.Record) (attendance.Record, bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, window_id) DO UPDATE SET
			attendance_start = EXCLUDED.attendance_start,
			attendance_end   = EXCLUDED.attendance_end,
			partial_hours    = EXCLUDED.partial_hours,
			explicit_time    = EXCLUDED.explicit_time,
			notes            = EXCLUDED.notes,
			updated_at       = EXCLUDED.updated_at
		RETURNING ` + recordColumns + `, (xmax = 0) AS inserted
	`

	var inserted bool
	saved, err := scanRecord(q.QueryRow(ctx, query,
		record.ID,
		record.UserID,
		record.WindowID,
		record.AttendanceStart,
		record.AttendanceEnd,
		record.PartialHours,
		record.ExplicitTime,
		record.Notes,
		record.CreatedAt,
		record.UpdatedAt,
	), &inserted)
	if err != nil {
		return attendance.Record{}, false, err
	}
	return saved, inserted, nil
}

// ListByUserAndWindows implements attendance.RecordRepository.
func (r *recordRepositoryImpl) ListByUserAndWindows(ctx context.Context, userID string, windowIDs []string) ([]attendance.Record, error) {
	if !validIDs(userID) {
		return nil, nil
	}
	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE user_id = $1 AND window_id = ANY($2::uuid[])
		ORDER BY id
	`
	return r.list(ctx, query, userID, windowIDs)
}

// ListByWindows implements attendance.RecordRepository.
func (r *recordRepositoryImpl) ListByWindows(ctx context.Context, windowIDs []string) ([]attendance.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE window_id = ANY($1::uuid[])
		ORDER BY id
	`
	return r.list(ctx, query, windowIDs)
}

func (r *recordRepositoryImpl) list(ctx context.Context, query string, args ...any) ([]attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
