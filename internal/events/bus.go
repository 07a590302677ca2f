// Package events provides typed publish/subscribe used to signal state
// changes (principal sign-in/out, listing mutations) between components.
package events

import "sync"

// Bus delivers values of type T to every subscriber, synchronously and in
// subscription order.
type Bus[T any] struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscription[T]
}

type subscription[T any] struct {
	id int
	fn func(T)
}

func NewBus[T any]() *Bus[T] {
	return &Bus[T]{}
}

// Subscribe registers fn and returns a function that removes it.
// Calling the returned function more than once is a no-op.
func (b *Bus[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, subscription[T]{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish calls every current subscriber with v. Subscribers may
// subscribe or unsubscribe from within the callback.
func (b *Bus[T]) Publish(v T) {
	b.mu.RLock()
	subs := make([]subscription[T], len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		s.fn(v)
	}
}

// Len returns the number of active subscribers.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// ListingOp names the mutation that produced a ListingChanged event.
type ListingOp string

const (
	ListingCreated ListingOp = "created"
	ListingUpdated ListingOp = "updated"
	ListingDeleted ListingOp = "deleted"
)

// ListingChanged is published after a listing is written.
type ListingChanged struct {
	ListingID string
	OwnerID   string
	Op        ListingOp
}
