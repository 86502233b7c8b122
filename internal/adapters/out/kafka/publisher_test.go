package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"lastmile/internal/core/ports"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type writerMock struct {
	mock.Mock
}

func (w *writerMock) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	return w.Called(ctx, msgs).Error(0)
}

func (w *writerMock) Close() error {
	return w.Called().Error(0)
}

func outboxMessage(eventName, aggregateID string) ports.OutboxMessage {
	return ports.OutboxMessage{
		ID:          uuid.New(),
		EventName:   eventName,
		AggregateID: aggregateID,
		Payload:     []byte(`{"ok":true}`),
		OccurredAt:  time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestPublisher_Publish(t *testing.T) {
	w := &writerMock{}
	p := newPublisher(w, "lastmile.")
	delivered := outboxMessage("order.delivered", "order-1")
	completed := outboxMessage("route.completed", "route-1")

	var written []kafka.Message
	w.On("WriteMessages", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { written = args.Get(1).([]kafka.Message) }).
		Return(nil).Once()

	require.NoError(t, p.Publish(t.Context(), delivered, completed))

	w.AssertExpectations(t)
	require.Len(t, written, 2)
	assert.Equal(t, "lastmile.order.delivered", written[0].Topic)
	assert.Equal(t, []byte("order-1"), written[0].Key)
	assert.Equal(t, delivered.Payload, written[0].Value)
	assert.Equal(t, delivered.OccurredAt, written[0].Time)
	assert.Contains(t, written[0].Headers, kafka.Header{Key: HeaderMessageID, Value: []byte(delivered.ID.String())})
	assert.Contains(t, written[0].Headers, kafka.Header{Key: HeaderEventName, Value: []byte("order.delivered")})
	assert.Equal(t, "lastmile.route.completed", written[1].Topic)
}

func TestPublisher_PublishNothing(t *testing.T) {
	w := &writerMock{}

	require.NoError(t, newPublisher(w, "").Publish(t.Context()))

	w.AssertNotCalled(t, "WriteMessages", mock.Anything, mock.Anything)
}

func TestPublisher_PublishFailure(t *testing.T) {
	w := &writerMock{}
	broker := errors.New("leader not available")
	w.On("WriteMessages", mock.Anything, mock.Anything).Return(broker)

	err := newPublisher(w, "").Publish(t.Context(), outboxMessage("batch.closed", "batch-1"))

	require.ErrorIs(t, err, broker)
}

func TestPublisher_Close(t *testing.T) {
	w := &writerMock{}
	w.On("Close").Return(nil).Once()

	require.NoError(t, newPublisher(w, "").Close())
	w.AssertExpectations(t)
}

func TestNewPublisher(t *testing.T) {
	_, err := NewPublisher(Config{})
	require.Error(t, err)

	p, err := NewPublisher(Config{Brokers: []string{"localhost:9092"}, TopicPrefix: "lastmile"})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}
