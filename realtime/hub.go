package realtime

import (
	"sync"
	"sync/atomic"
)

// DefaultBuffer is the per-subscription channel capacity.
const DefaultBuffer = 64

// Subscription is a live, scoped change feed. The creator must release
// it with Hub.Unsubscribe when the consuming view is torn down;
// otherwise it keeps receiving events for a defunct view.
type Subscription struct {
	id      uint64
	scope   Scope
	events  chan Event
	dropped atomic.Int64
	closed  bool
}

// Events returns the channel carrying matching events. The channel is
// closed by Unsubscribe.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// TakeDropped returns the number of events dropped since the last call
// and resets the counter. A non-zero value means the consumer missed
// events and should refresh its full snapshot.
func (s *Subscription) TakeDropped() int64 {
	return s.dropped.Swap(0)
}

// Hub fans out change events to scoped subscriptions. Subscriptions
// are independent; the only state shared between them is the store the
// events describe.
type Hub struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*Subscription
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]*Subscription)}
}

func (h *Hub) Subscribe(scope Scope, buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	sub := &Subscription{
		id:     h.nextID,
		scope:  scope,
		events: make(chan Event, buffer),
	}
	h.subs[sub.id] = sub
	return sub
}

// Unsubscribe releases a subscription. Calling it more than once is a
// no-op.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub.closed {
		return
	}
	sub.closed = true
	delete(h.subs, sub.id)
	close(sub.events)
}

// Publish delivers the event to every subscription whose scope
// matches. A subscription whose buffer is full has the event dropped
// and counted instead of blocking the publisher.
func (h *Hub) Publish(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		if !sub.scope(e) {
			continue
		}
		select {
		case sub.events <- e:
		default:
			sub.dropped.Add(1)
		}
	}
}

// SubscriberCount reports the number of live subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
