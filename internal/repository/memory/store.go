// Package memory implements the repository ports in process memory.
//
// A Store guards all state with one mutex. TxManager holds that mutex for
// the whole callback and undoes the callback's writes when it fails.
//
// Import Path: eventforge.io/eventforge/internal/repository/memory
package memory

import (
	"context"
	"sync"

	"eventforge.io/eventforge/internal/domain"
)

// Store is the shared in-memory state.
type Store struct {
	mu             sync.Mutex
	events         []domain.Event // ascending id order
	byTitle        map[string]int // title -> index into events
	nextEventID    int64
	nextDecisionID int64
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{byTitle: make(map[string]int)}
}

type txKeyType struct{}

var txKey = txKeyType{}

// inTx reports whether ctx belongs to a RunInTx callback on s.
func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey).(*Store)
	return owner == s
}

// lock acquires the mutex unless ctx already holds it through RunInTx.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// snapshot captures what rollback needs to restore.
type snapshot struct {
	events         int
	nextEventID    int64
	nextDecisionID int64
}

func (s *Store) snapshot() snapshot {
	return snapshot{events: len(s.events), nextEventID: s.nextEventID, nextDecisionID: s.nextDecisionID}
}

func (s *Store) restore(snap snapshot) {
	for _, ev := range s.events[snap.events:] {
		delete(s.byTitle, ev.Title)
	}
	s.events = s.events[:snap.events]
	s.nextEventID = snap.nextEventID
	s.nextDecisionID = snap.nextDecisionID
}

// TxManager serializes callbacks on a Store.
type TxManager struct {
	store *Store
}

// NewTxManager creates a TxManager.
func NewTxManager(store *Store) TxManager {
	return TxManager{store: store}
}

// RunInTx runs fn with the store locked. Events created by fn are removed
// again when fn returns an error.
func (t TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if t.store.inTx(ctx) {
		return fn(ctx)
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	snap := t.store.snapshot()
	if err := fn(context.WithValue(ctx, txKey, t.store)); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

// Pinger always reports the memory store as ready.
type Pinger struct{}

// Ping implements repository.Pinger.
func (Pinger) Ping(context.Context) error { return nil }
