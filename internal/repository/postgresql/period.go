package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/meetinghours/attendance-backend/internal/domain/period"
	"github.com/meetinghours/attendance-backend/internal/pkg/database"
	"github.com/meetinghours/attendance-backend/internal/pkg/validator"
)

type periodRepositoryImpl struct {
	db *database.DB
}

func NewPeriodRepository(db *database.DB) period.PeriodRepository {
	return &periodRepositoryImpl{db: db}
}

const periodColumns = `id, name, start_date, end_date, created_by, created_at`

func scanPeriod(row pgx.Row) (period.ReportingPeriod, error) {
	var p period.ReportingPeriod
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.StartDate,
		&p.EndDate,
		&p.CreatedBy,
		&p.CreatedAt,
	)
	return p, err
}

// Create implements period.PeriodRepository.
func (r *periodRepositoryImpl) Create(ctx context.Context, p period.ReportingPeriod) (period.ReportingPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO reporting_periods (id, name, start_date, end_date, created_by, created_at)
		VALUES ($1, $2, $3::date, $4::date, $5, $6)
		RETURNING ` + periodColumns

	return scanPeriod(q.QueryRow(ctx, query,
		p.ID,
		p.Name,
		p.StartDate.Format(validator.DateLayout),
		p.EndDate.Format(validator.DateLayout),
		p.CreatedBy,
		p.CreatedAt,
	))
}

// GetByID implements period.PeriodRepository.
func (r *periodRepositoryImpl) GetByID(ctx context.Context, id string) (period.ReportingPeriod, error) {
	if !validIDs(id) {
		return period.ReportingPeriod{}, period.ErrPeriodNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + ` FROM reporting_periods WHERE id = $1`

	p, err := scanPeriod(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return period.ReportingPeriod{}, period.ErrPeriodNotFound
		}
		return period.ReportingPeriod{}, err
	}
	return p, nil
}

// GetContaining implements period.PeriodRepository.
func (r *periodRepositoryImpl) GetContaining(ctx context.Context, date time.Time) (period.ReportingPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + periodColumns + `
		FROM reporting_periods
		WHERE start_date <= $1::date AND end_date >= $1::date
		ORDER BY start_date DESC, id DESC
		LIMIT 1
	`

	p, err := scanPeriod(q.QueryRow(ctx, query, date.Format(validator.DateLayout)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return period.ReportingPeriod{}, period.ErrNoActivePeriod
		}
		return period.ReportingPeriod{}, err
	}
	return p, nil
}

// List implements period.PeriodRepository.
func (r *periodRepositoryImpl) List(ctx context.Context) ([]period.ReportingPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + periodColumns + ` FROM reporting_periods ORDER BY start_date DESC, id DESC`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []period.ReportingPeriod
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}
