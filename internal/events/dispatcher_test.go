package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishRunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.Subscribe(EventAccessVerified, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("first failed")
	})
	d.Subscribe(EventAccessVerified, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventAccessDenied, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventAccessVerified, TenantID: 3})

	assert.EqualError(t, err, "first failed")
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestPublishWithoutListeners(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventSessionIssued}))
}

func TestPublishRecoversHandlerPanic(t *testing.T) {
	d := NewInMemoryDispatcher()
	called := false
	d.Subscribe(EventSessionRevoked, func(context.Context, Event) error {
		panic("boom")
	})
	d.Subscribe(EventSessionRevoked, func(context.Context, Event) error {
		called = true
		return nil
	})
	d.Subscribe(EventSessionRevoked, nil)

	err := d.Publish(context.Background(), Event{Type: EventSessionRevoked})

	assert.ErrorContains(t, err, "panicked: boom")
	assert.True(t, called)
}
