package eventhandlers_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"lastmile/internal/core/application/eventhandlers"
	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/ddd"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingEvent struct {
	ddd.BaseEvent
}

func newPing() pingEvent {
	return pingEvent{BaseEvent: ddd.NewBaseEvent("test.ping", "aggregate-1", time.Now())}
}

func TestRegistry_DispatchRunsHandlersInOrder(t *testing.T) {
	r := eventhandlers.NewRegistry(nil)
	var calls []string
	r.Register("test.ping", eventhandlers.HandlerFunc(func(context.Context, ports.UnitOfWork, ddd.DomainEvent) error {
		calls = append(calls, "first")
		return nil
	}))
	r.Register("test.ping", eventhandlers.HandlerFunc(func(context.Context, ports.UnitOfWork, ddd.DomainEvent) error {
		calls = append(calls, "second")
		return nil
	}))

	require.NoError(t, r.Dispatch(t.Context(), nil, newPing()))

	assert.Equal(t, []string{"first", "second"}, calls)
	assert.Equal(t, 2, r.Handlers("test.ping"))
}

func TestRegistry_DispatchStopsOnFirstError(t *testing.T) {
	r := eventhandlers.NewRegistry(nil)
	boom := errors.New("boom")
	called := false
	r.Register("test.ping", eventhandlers.HandlerFunc(func(context.Context, ports.UnitOfWork, ddd.DomainEvent) error {
		return boom
	}))
	r.Register("test.ping", eventhandlers.HandlerFunc(func(context.Context, ports.UnitOfWork, ddd.DomainEvent) error {
		called = true
		return nil
	}))

	err := r.Dispatch(t.Context(), nil, newPing())

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "test.ping")
	assert.False(t, called)
}

func TestRegistry_UnknownEventIsIgnored(t *testing.T) {
	r := eventhandlers.NewRegistry(nil)

	require.NoError(t, r.Dispatch(t.Context(), nil, newPing()))
	assert.Zero(t, r.Handlers("test.ping"))
}
