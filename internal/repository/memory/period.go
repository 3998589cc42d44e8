package memory

import (
	"context"
	"sort"
	"time"

	"github.com/meetinghours/attendance-backend/internal/domain/period"
	"github.com/meetinghours/attendance-backend/internal/pkg/validator"
)

type periodRepositoryImpl struct {
	store *Store
}

func NewPeriodRepository(store *Store) period.PeriodRepository {
	return &periodRepositoryImpl{store: store}
}

func (r *periodRepositoryImpl) Create(ctx context.Context, p period.ReportingPeriod) (period.ReportingPeriod, error) {
	defer r.store.lock(ctx)()

	r.store.data.periods[p.ID] = p
	return p, nil
}

func (r *periodRepositoryImpl) GetByID(ctx context.Context, id string) (period.ReportingPeriod, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.data.periods[id]
	if !ok {
		return period.ReportingPeriod{}, period.ErrPeriodNotFound
	}
	return p, nil
}

// GetContaining compares calendar dates, so date's own Y/M/D is what counts.
func (r *periodRepositoryImpl) GetContaining(ctx context.Context, date time.Time) (period.ReportingPeriod, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	day := date.Format(validator.DateLayout)
	var found *period.ReportingPeriod
	for _, p := range r.store.data.periods {
		if p.StartDate.Format(validator.DateLayout) > day || p.EndDate.Format(validator.DateLayout) < day {
			continue
		}
		if found == nil || p.StartDate.After(found.StartDate) || (p.StartDate.Equal(found.StartDate) && p.ID > found.ID) {
			candidate := p
			found = &candidate
		}
	}
	if found == nil {
		return period.ReportingPeriod{}, period.ErrNoActivePeriod
	}
	return *found, nil
}

func (r *periodRepositoryImpl) List(ctx context.Context) ([]period.ReportingPeriod, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]period.ReportingPeriod, 0, len(r.store.data.periods))
	for _, p := range r.store.data.periods {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
