package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBus_PublishOrder(t *testing.T) {
	b := NewBus(zap.NewNop())
	var got []string

	b.Subscribe(func(e Event) { got = append(got, "first:"+string(e.Kind)) })
	b.Subscribe(func(e Event) { got = append(got, "second:"+string(e.Kind)) })

	b.Publish(Event{Kind: RideAdded})

	assert.Equal(t, []string{"first:ride.added", "second:ride.added"}, got)
}

func TestBus_Unsubscribe(t *testing.T) {
	b := NewBus(nil)
	calls := 0

	unsubscribe := b.Subscribe(func(Event) { calls++ })
	b.Publish(Event{Kind: RideBooked})
	unsubscribe()
	unsubscribe()
	b.Publish(Event{Kind: RideBooked})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, b.Len())
}

func TestBus_UnsubscribeKeepsOthers(t *testing.T) {
	b := NewBus(nil)
	var got []int

	b.Subscribe(func(Event) { got = append(got, 1) })
	unsubscribe := b.Subscribe(func(Event) { got = append(got, 2) })
	b.Subscribe(func(Event) { got = append(got, 3) })

	unsubscribe()
	b.Publish(Event{Kind: SessionChanged})

	assert.Equal(t, []int{1, 3}, got)
}

func TestBus_PanickingSubscriber(t *testing.T) {
	b := NewBus(zap.NewNop())
	delivered := false

	b.Subscribe(func(Event) { panic("boom") })
	b.Subscribe(func(Event) { delivered = true })

	assert.NotPanics(t, func() { b.Publish(Event{Kind: RidesExpired}) })
	assert.True(t, delivered)
}
