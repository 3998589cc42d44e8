package memory

import (
	"context"
	"sort"

	"github.com/meetinghours/attendance-backend/internal/domain/excuse"
)

type excuseRepositoryImpl struct {
	store *Store
}

func NewExcuseRepository(store *Store) excuse.ExcuseRepository {
	return &excuseRepositoryImpl{store: store}
}

func (r *excuseRepositoryImpl) Create(ctx context.Context, e excuse.Excuse) (excuse.Excuse, error) {
	defer r.store.lock(ctx)()

	for _, existing := range r.store.data.excuses {
		if existing.UserID == e.UserID && existing.WindowID == e.WindowID {
			return excuse.Excuse{}, excuse.ErrExcuseExists
		}
	}
	r.store.data.excuses[e.ID] = e
	return e, nil
}

func (r *excuseRepositoryImpl) Exists(ctx context.Context, userID string, windowID string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, e := range r.store.data.excuses {
		if e.UserID == userID && e.WindowID == windowID {
			return true, nil
		}
	}
	return false, nil
}

func (r *excuseRepositoryImpl) ListByUserAndPeriod(ctx context.Context, userID string, periodID string) ([]excuse.Excuse, error) {
	return r.list(func(e excuse.Excuse) bool {
		return e.UserID == userID && e.PeriodID == periodID
	}), nil
}

func (r *excuseRepositoryImpl) ListByPeriod(ctx context.Context, periodID string) ([]excuse.Excuse, error) {
	return r.list(func(e excuse.Excuse) bool {
		return e.PeriodID == periodID
	}), nil
}

func (r *excuseRepositoryImpl) list(match func(excuse.Excuse) bool) []excuse.Excuse {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []excuse.Excuse
	for _, e := range r.store.data.excuses {
		if match(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type requestRepositoryImpl struct {
	store *Store
}

func NewRequestRepository(store *Store) excuse.RequestRepository {
	return &requestRepositoryImpl{store: store}
}

func (r *requestRepositoryImpl) Create(ctx context.Context, req excuse.Request) (excuse.Request, error) {
	defer r.store.lock(ctx)()

	r.store.data.requests[req.ID] = req
	return req, nil
}

func (r *requestRepositoryImpl) GetByID(ctx context.Context, id string) (excuse.Request, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	req, ok := r.store.data.requests[id]
	if !ok {
		return excuse.Request{}, excuse.ErrRequestNotFound
	}
	return req, nil
}

func (r *requestRepositoryImpl) HasPending(ctx context.Context, userID string, windowID string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, req := range r.store.data.requests {
		if req.UserID == userID && req.WindowID == windowID && req.IsPending() {
			return true, nil
		}
	}
	return false, nil
}

// ListByStatus returns requests oldest first.
func (r *requestRepositoryImpl) ListByStatus(ctx context.Context, status excuse.RequestStatus) ([]excuse.Request, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []excuse.Request
	for _, req := range r.store.data.requests {
		if req.Status == status {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RequestedAt.Equal(out[j].RequestedAt) {
			return out[i].RequestedAt.Before(out[j].RequestedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *requestRepositoryImpl) Update(ctx context.Context, req excuse.Request) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.data.requests[req.ID]; !ok {
		return excuse.ErrRequestNotFound
	}
	r.store.data.requests[req.ID] = req
	return nil
}
