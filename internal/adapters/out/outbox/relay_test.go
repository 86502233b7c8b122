package outbox_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"lastmile/internal/adapters/out/outbox"
	"lastmile/internal/core/ports"
	"lastmile/internal/pkg/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOutboxStore struct{ mock.Mock }

func (m *MockOutboxStore) GetUnpublished(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	args := m.Called(ctx, limit)
	messages, _ := args.Get(0).([]ports.OutboxMessage)
	return messages, args.Error(1)
}

func (m *MockOutboxStore) MarkPublished(ctx context.Context, ids []uuid.UUID, publishedAt time.Time) error {
	return m.Called(ctx, ids, publishedAt).Error(0)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, messages ...ports.OutboxMessage) error {
	return m.Called(ctx, messages).Error(0)
}

func (m *MockPublisher) Close() error { return nil }

func pendingMessages() []ports.OutboxMessage {
	return []ports.OutboxMessage{
		{ID: uuid.New(), EventName: "delivery.route.started", AggregateID: "r1", Payload: []byte(`{}`)},
		{ID: uuid.New(), EventName: "delivery.order.delivered", AggregateID: "o1", Payload: []byte(`{}`)},
	}
}

func TestNewRelay_RequiresCollaborators(t *testing.T) {
	_, err := outbox.NewRelay(nil, new(MockPublisher), 10, nil, nil)
	require.Error(t, err)

	_, err = outbox.NewRelay(new(MockOutboxStore), nil, 10, nil, nil)
	require.Error(t, err)
}

func TestRelay_RelayOnce(t *testing.T) {
	t.Run("publishes and marks a batch", func(t *testing.T) {
		ctx := t.Context()
		messages := pendingMessages()
		store := new(MockOutboxStore)
		publisher := new(MockPublisher)
		m := metrics.New("test")
		store.On("GetUnpublished", ctx, 50).Return(messages, nil).Once()
		publisher.On("Publish", ctx, messages).Return(nil).Once()
		store.On("MarkPublished", ctx, []uuid.UUID{messages[0].ID, messages[1].ID}, mock.AnythingOfType("time.Time")).
			Return(nil).Once()

		relay, err := outbox.NewRelay(store, publisher, 50, m, nil)
		require.NoError(t, err)

		n, err := relay.RelayOnce(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.InDelta(t, 2, testutil.ToFloat64(m.OutboxPublished), 0)
		store.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("nothing pending publishes nothing", func(t *testing.T) {
		ctx := t.Context()
		store := new(MockOutboxStore)
		publisher := new(MockPublisher)
		store.On("GetUnpublished", ctx, outbox.DefaultBatchSize).Return([]ports.OutboxMessage{}, nil).Once()

		relay, err := outbox.NewRelay(store, publisher, 0, nil, nil)
		require.NoError(t, err)

		n, err := relay.RelayOnce(ctx)

		require.NoError(t, err)
		assert.Zero(t, n)
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("broker failure leaves messages unpublished", func(t *testing.T) {
		ctx := t.Context()
		messages := pendingMessages()
		store := new(MockOutboxStore)
		publisher := new(MockPublisher)
		store.On("GetUnpublished", ctx, 10).Return(messages, nil).Once()
		publisher.On("Publish", ctx, messages).Return(errors.New("leader not available")).Once()

		relay, err := outbox.NewRelay(store, publisher, 10, nil, nil)
		require.NoError(t, err)

		n, err := relay.RelayOnce(ctx)

		require.Error(t, err)
		assert.Zero(t, n)
		store.AssertNotCalled(t, "MarkPublished", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("mark failure is reported", func(t *testing.T) {
		ctx := t.Context()
		messages := pendingMessages()
		store := new(MockOutboxStore)
		publisher := new(MockPublisher)
		store.On("GetUnpublished", ctx, 10).Return(messages, nil).Once()
		publisher.On("Publish", ctx, messages).Return(nil).Once()
		store.On("MarkPublished", ctx, mock.Anything, mock.Anything).Return(errors.New("tx aborted")).Once()

		relay, err := outbox.NewRelay(store, publisher, 10, nil, nil)
		require.NoError(t, err)

		_, err = relay.RelayOnce(ctx)

		require.Error(t, err)
	})
}
