package snapshot

import (
	"context"
	"sync"

	"github.com/go-rod/rod"
)

// Store owns the current snapshot for one tab. Each capture fully
// replaces the previous one; navigation clears it. References from a
// superseded snapshot are a caller error, never silently remapped.
type Store struct {
	mu  sync.Mutex
	cur *Snapshot
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Capture builds a new snapshot for the root frame and makes it
// current. Not incremental: always a full re-traversal.
func (st *Store) Capture(ctx context.Context, root Frame) (*Snapshot, error) {
	snap, err := Capture(ctx, root)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	st.cur = snap
	st.mu.Unlock()
	return snap, nil
}

// Current returns the last captured snapshot, if any.
func (st *Store) Current() (*Snapshot, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.cur, st.cur != nil
}

// Clear drops the current snapshot. Called on top-level navigation and
// on tab close.
func (st *Store) Clear() {
	st.mu.Lock()
	st.cur = nil
	st.mu.Unlock()
}

// Resolve resolves a reference against the current snapshot.
func (st *Store) Resolve(ctx context.Context, ref string) (*rod.Element, error) {
	st.mu.Lock()
	cur := st.cur
	st.mu.Unlock()

	if cur == nil {
		return nil, ErrNoSnapshot
	}
	return cur.Resolve(ctx, ref)
}
