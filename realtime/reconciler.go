package realtime

import (
	"context"
	"sync"
	"time"

	"taskboard-service/logging"
)

// Collection is an ordered, in-memory projection of one entity set,
// kept current by folding change events. The authoritative copy is
// always the stored record; a Collection is derived state only.
type Collection[T Record] struct {
	mu    sync.RWMutex
	items []T
}

func NewCollection[T Record]() *Collection[T] {
	return &Collection[T]{}
}

// Apply folds one event into the collection and reports whether it
// changed anything. Events for other record types are ignored.
//
// INSERT prepends unless the identity is already present (a duplicate
// delivery, or an optimistic local insert that beat the event).
// UPDATE replaces in place, preserving position; an update for an
// identity never seen is the first state we learn, so it is inserted.
// DELETE removes the identity; deleting an absent identity is a
// silent no-op. Per identity, the last-arrived state wins.
func (c *Collection[T]) Apply(e Event) bool {
	rec, ok := e.Record.(T)
	if !ok {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(rec.RecordID())
	switch e.Action {
	case Inserted:
		if idx >= 0 {
			return false
		}
		c.items = append([]T{rec}, c.items...)
		return true
	case Updated:
		if idx >= 0 {
			c.items[idx] = rec
			return true
		}
		c.items = append([]T{rec}, c.items...)
		return true
	case Deleted:
		if idx < 0 {
			return false
		}
		c.items = append(c.items[:idx], c.items[idx+1:]...)
		return true
	}
	return false
}

// Replace swaps in a full snapshot, discarding folded state.
func (c *Collection[T]) Replace(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T(nil), items...)
}

// Snapshot returns a copy of the current items in order.
func (c *Collection[T]) Snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T(nil), c.items...)
}

// Get returns the record with the given identity, if present.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if idx := c.indexOf(id); idx >= 0 {
		return c.items[idx], true
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// indexOf must be called with the lock held.
func (c *Collection[T]) indexOf(id string) int {
	for i, it := range c.items {
		if it.RecordID() == id {
			return i
		}
	}
	return -1
}

// RefreshFunc loads a full snapshot from the store.
type RefreshFunc[T Record] func(ctx context.Context) ([]T, error)

// Reconciler keeps a Collection synchronized with the store for one
// scope: it subscribes to the hub, folds incoming events, and falls
// back to full snapshot refreshes when events may have been missed.
type Reconciler[T Record] struct {
	name       string
	hub        *Hub
	scope      Scope
	collection *Collection[T]
	refresh    RefreshFunc[T]

	// ResyncEvery, when positive, re-pulls the full snapshot on a
	// timer. The event stream alone cannot be trusted across
	// arbitrarily long disconnects.
	ResyncEvery time.Duration
}

func NewReconciler[T Record](name string, hub *Hub, scope Scope, refresh RefreshFunc[T]) *Reconciler[T] {
	return &Reconciler[T]{
		name:       name,
		hub:        hub,
		scope:      scope,
		collection: NewCollection[T](),
		refresh:    refresh,
	}
}

func (r *Reconciler[T]) Collection() *Collection[T] {
	return r.collection
}

// Refresh replaces the collection with a freshly queried snapshot.
func (r *Reconciler[T]) Refresh(ctx context.Context) error {
	items, err := r.refresh(ctx)
	if err != nil {
		return err
	}
	r.collection.Replace(items)
	return nil
}

// Run subscribes, loads the initial snapshot and folds events until
// ctx is cancelled. The subscription is released on every exit path.
func (r *Reconciler[T]) Run(ctx context.Context) error {
	sub := r.hub.Subscribe(r.scope, DefaultBuffer)
	defer r.hub.Unsubscribe(sub)

	if err := r.Refresh(ctx); err != nil {
		// Keep folding events; the resync timer or a drop-triggered
		// refresh will repair the gap once the store is reachable.
		logging.Logger.Warnf("reconciler %s: initial snapshot failed: %v", r.name, err)
	}

	var resync <-chan time.Time
	if r.ResyncEvery > 0 {
		ticker := time.NewTicker(r.ResyncEvery)
		defer ticker.Stop()
		resync = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-sub.Events():
			if !ok {
				return nil
			}
			r.collection.Apply(e)
			if sub.TakeDropped() > 0 {
				if err := r.Refresh(ctx); err != nil {
					logging.Logger.Warnf("reconciler %s: refresh after dropped events failed: %v", r.name, err)
				}
			}
		case <-resync:
			if err := r.Refresh(ctx); err != nil {
				logging.Logger.Warnf("reconciler %s: periodic resync failed: %v", r.name, err)
			}
		}
	}
}
