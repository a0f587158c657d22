// Package events is the observer registry the directory and the ride board
// publish change notifications through.
package events

import (
	"sync"
	"time"

	"carpool/internal/models"

	"go.uber.org/zap"
)

// Kind identifies what changed.
type Kind string

const (
	UserSignedUp   Kind = "user.signed_up"
	SessionChanged Kind = "session.changed"
	RideAdded      Kind = "ride.added"
	RideBooked     Kind = "ride.booked"
	RidesExpired   Kind = "rides.expired"
)

// Event describes one committed change. Rides holds the affected rides:
// the new or booked ride, or every ride dropped at a day rollover.
type Event struct {
	Kind       Kind
	At         time.Time
	EmployeeID string
	User       *models.Profile
	Rides      []models.Ride
}

// Handler receives events. It runs on the publisher's goroutine.
type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus delivers events synchronously to its subscribers in subscription order.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
	log    *zap.Logger
}

// NewBus creates an empty bus.
func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{log: log}
}

// Subscribe registers h and returns a function that removes it.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, handler: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish calls every subscriber before returning. A panicking subscriber is
// logged and skipped; the remaining subscribers still run.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		b.deliver(s, e)
	}
}

func (b *Bus) deliver(s subscription, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event subscriber panicked",
				zap.String("kind", string(e.Kind)),
				zap.Any("panic", r),
			)
		}
	}()
	s.handler(e)
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
