package history

import (
	"context"
	"sync"
	"time"
)

// MemoryAccessor is an in-memory Accessor for tests and local development.
type MemoryAccessor struct {
	mu     sync.RWMutex
	events []SecurityEvent
	txns   []Transaction

	// Err, when set, is returned by every read. Lets tests exercise the
	// fail-closed path when history is unavailable.
	Err error
}

// NewMemoryAccessor creates an empty in-memory accessor.
func NewMemoryAccessor() *MemoryAccessor {
	return &MemoryAccessor{}
}

// AddEvent appends a security event.
func (a *MemoryAccessor) AddEvent(e SecurityEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

// AddTransaction appends a transaction.
func (a *MemoryAccessor) AddTransaction(t Transaction) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.txns = append(a.txns, t)
}

// EventsSince implements Accessor.
func (a *MemoryAccessor) EventsSince(_ context.Context, userID string, kinds []EventKind, since time.Time) ([]SecurityEvent, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.Err != nil {
		return nil, a.Err
	}

	kindSet := make(map[EventKind]bool, len(kinds))
	for _, k := range kinds {
		kindSet[k] = true
	}

	var out []SecurityEvent
	for _, e := range a.events {
		if e.UserID == userID && kindSet[e.Kind] && e.CreatedAt.After(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

// TransactionsSince implements Accessor.
func (a *MemoryAccessor) TransactionsSince(_ context.Context, userID string, since time.Time) ([]Transaction, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.Err != nil {
		return nil, a.Err
	}

	var out []Transaction
	for _, t := range a.txns {
		if t.UserID == userID && t.CreatedAt.After(since) {
			out = append(out, t)
		}
	}
	return out, nil
}
