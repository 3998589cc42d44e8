package memory

import (
	"context"
	"sort"

	"github.com/meetinghours/attendance-backend/internal/domain/attendance"
)

type recordRepositoryImpl struct {
	store *Store
}

func NewRecordRepository(store *Store) attendance.RecordRepository {
	return &recordRepositoryImpl{store: store}
}

func (r *recordRepositoryImpl) GetByUserAndWindow(ctx context.Context, userID string, windowID string) (attendance.Record, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, ok := r.store.data.records[recordKey{userID: userID, windowID: windowID}]
	if !ok {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	return rec, nil
}

// Upsert keeps the stored ID and CreatedAt of an existing (user, window) record.
func (r *recordRepositoryImpl) Upsert(ctx context.Context, record attendance.Record) (attendance.Record, bool, error) {
	defer r.store.lock(ctx)()

	key := recordKey{userID: record.UserID, windowID: record.WindowID}
	existing, ok := r.store.data.records[key]
	if ok {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	}
	record.Window = nil
	r.store.data.records[key] = record
	return record, !ok, nil
}

func (r *recordRepositoryImpl) ListByUserAndWindows(ctx context.Context, userID string, windowIDs []string) ([]attendance.Record, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []attendance.Record
	for _, id := range windowIDs {
		if rec, ok := r.store.data.records[recordKey{userID: userID, windowID: id}]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *recordRepositoryImpl) ListByWindows(ctx context.Context, windowIDs []string) ([]attendance.Record, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	wanted := make(map[string]struct{}, len(windowIDs))
	for _, id := range windowIDs {
		wanted[id] = struct{}{}
	}

	var out []attendance.Record
	for key, rec := range r.store.data.records {
		if _, ok := wanted[key.windowID]; ok {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
