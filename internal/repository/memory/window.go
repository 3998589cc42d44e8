package memory

import (
	"context"
	"sort"
	"time"

	"github.com/meetinghours/attendance-backend/internal/domain/window"
)

type windowRepositoryImpl struct {
	store *Store
}

func NewWindowRepository(store *Store) window.WindowRepository {
	return &windowRepositoryImpl{store: store}
}

func (r *windowRepositoryImpl) Create(ctx context.Context, w window.TimeWindow) (window.TimeWindow, error) {
	defer r.store.lock(ctx)()

	r.store.data.windows[w.ID] = w
	return w, nil
}

func (r *windowRepositoryImpl) GetByID(ctx context.Context, id string) (window.TimeWindow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	w, ok := r.store.data.windows[id]
	if !ok {
		return window.TimeWindow{}, window.ErrWindowNotFound
	}
	return w, nil
}

func (r *windowRepositoryImpl) ListStartingBetween(ctx context.Context, from, to time.Time, category *window.Category) ([]window.TimeWindow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []window.TimeWindow
	for _, w := range r.store.data.windows {
		if w.StartTime.Before(from) || !w.StartTime.Before(to) {
			continue
		}
		if category != nil && w.Category != *category {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
