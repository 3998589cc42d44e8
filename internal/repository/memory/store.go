// Package memory keeps every repository in process memory. It backs the
// test suites and STORE_DRIVER=memory.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/meetinghours/attendance-backend/internal/domain/attendance"
	"github.com/meetinghours/attendance-backend/internal/domain/excuse"
	"github.com/meetinghours/attendance-backend/internal/domain/period"
	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/domain/window"
	"github.com/meetinghours/attendance-backend/internal/pkg/database"
)

type recordKey struct {
	userID   string
	windowID string
}

type state struct {
	windows  map[string]window.TimeWindow
	periods  map[string]period.ReportingPeriod
	records  map[recordKey]attendance.Record
	excuses  map[string]excuse.Excuse
	requests map[string]excuse.Request
	users    map[string]user.User
}

func (s state) clone() state {
	return state{
		windows:  maps.Clone(s.windows),
		periods:  maps.Clone(s.periods),
		records:  maps.Clone(s.records),
		excuses:  maps.Clone(s.excuses),
		requests: maps.Clone(s.requests),
		users:    maps.Clone(s.users),
	}
}

// Store is the shared state behind the memory repositories.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data state
}

func NewStore() *Store {
	return &Store{data: state{
		windows:  make(map[string]window.TimeWindow),
		periods:  make(map[string]period.ReportingPeriod),
		records:  make(map[recordKey]attendance.Record),
		excuses:  make(map[string]excuse.Excuse),
		requests: make(map[string]excuse.Request),
		users:    make(map[string]user.User),
	}}
}

type txKey struct{}

type transactor struct {
	store *Store
}

// WithinTransaction serializes transactions and restores the state as it was
// before fn when fn fails.
func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()

	t.store.mu.RLock()
	snapshot := t.store.data.clone()
	t.store.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		t.store.mu.Lock()
		t.store.data = snapshot
		t.store.mu.Unlock()
		return err
	}
	return nil
}

// lock takes the write lock. Outside a transaction it first waits for the
// running transaction, whose rollback would otherwise discard the write.
func (s *Store) lock(ctx context.Context) func() {
	inTx := ctx.Value(txKey{}) != nil
	if !inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !inTx {
			s.txMu.Unlock()
		}
	}
}

func NewTransactor(store *Store) database.Transactor {
	return &transactor{store: store}
}
