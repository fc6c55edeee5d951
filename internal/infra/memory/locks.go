package memory

import (
	"context"
	"sync"

	"commerce-core/internal/pkg/errs"
)

var ErrLockTimeout = errs.New("timed out waiting for row lock")

// lockTable hands out one exclusive lock per resource key. Entries are created on demand and
// dropped when nobody holds or waits for them, so unrelated ids never contend.
type lockTable struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	slot chan struct{}
	refs int
}

func newLockTable() *lockTable {
	return &lockTable{entries: make(map[string]*lockEntry)}
}

func (t *lockTable) ref(key string) *lockEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[key]
	if !ok {
		e = &lockEntry{slot: make(chan struct{}, 1)}
		t.entries[key] = e
	}
	e.refs++
	return e
}

func (t *lockTable) unref(key string, e *lockEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(t.entries, key)
	}
}

// acquire blocks until the key is free or ctx is done.
func (t *lockTable) acquire(ctx context.Context, key string) error {
	e := t.ref(key)
	select {
	case e.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		t.unref(key, e)
		return errs.Mark(errs.Wrapf(ctx.Err(), "lock %s", key), ErrLockTimeout)
	}
}

// tryAcquire is the SKIP LOCKED variant.
func (t *lockTable) tryAcquire(key string) bool {
	e := t.ref(key)
	select {
	case e.slot <- struct{}{}:
		return true
	default:
		t.unref(key, e)
		return false
	}
}

func (t *lockTable) release(key string) {
	t.mu.Lock()
	e, ok := t.entries[key]
	t.mu.Unlock()
	if !ok {
		return
	}
	<-e.slot
	t.unref(key, e)
}
