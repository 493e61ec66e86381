package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type seekerMock struct {
	mock.Mock
}

func (m *seekerMock) Seek(partition kafka.TopicPartition, timeoutMs int) error {
	return m.Called(partition, timeoutMs).Error(0)
}

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, retryDelay(1))
	assert.Equal(t, 400*time.Millisecond, retryDelay(2))
	assert.Equal(t, 1600*time.Millisecond, retryDelay(4))
	assert.Equal(t, retryMaxDelay, retryDelay(50))
}

func TestRewind(t *testing.T) {
	topic := "product-commands"
	tp := kafka.TopicPartition{Topic: &topic, Partition: 2, Offset: 41}

	t.Run("Seeks back to the failed offset", func(t *testing.T) {
		consumer := new(seekerMock)
		consumer.On("Seek", tp, 5000).Return(nil).Once()

		start := time.Now()
		require.NoError(t, rewind(context.Background(), consumer, tp, 1))

		consumer.AssertExpectations(t)
		assert.GreaterOrEqual(t, time.Since(start), retryBaseDelay)
	})

	t.Run("Seek error stops consumption", func(t *testing.T) {
		consumer := new(seekerMock)
		boom := errors.New("partition revoked")
		consumer.On("Seek", tp, 5000).Return(boom)

		err := rewind(context.Background(), consumer, tp, 1)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), topic)
	})

	t.Run("Cancelled context skips the wait", func(t *testing.T) {
		consumer := new(seekerMock)
		consumer.On("Seek", tp, 5000).Return(nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		require.NoError(t, rewind(ctx, consumer, tp, 50))
		assert.Less(t, time.Since(start), time.Second)
	})
}
