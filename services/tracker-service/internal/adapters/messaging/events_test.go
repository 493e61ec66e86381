package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/everytech/poptracker/pkg/interfaces"
	"github.com/everytech/poptracker/services/tracker-service/internal/adapters/logger"
	"github.com/everytech/poptracker/services/tracker-service/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type messagingMock struct {
	mock.Mock
}

func (m *messagingMock) PublishWithHeaders(ctx context.Context, topic, key string, message []byte, headers map[string]string) error {
	return m.Called(ctx, topic, key, message, headers).Error(0)
}

func (m *messagingMock) Subscribe(ctx context.Context, topic string, handler interfaces.MessageHandler) (func() error, error) {
	args := m.Called(ctx, topic, handler)
	return args.Get(0).(func() error), args.Error(1)
}

func (m *messagingMock) Close() error {
	return m.Called().Error(0)
}

func TestPublishProductCreated(t *testing.T) {
	bus := new(messagingMock)
	publisher := NewProductEventPublisher(bus, "product-events")
	product := &models.Product{ID: "p1", Title: "Labubu"}

	var sent []byte
	var headers map[string]string
	bus.On("PublishWithHeaders", mock.Anything, "product-events", "p1", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			sent = args.Get(3).([]byte)
			headers = args.Get(4).(map[string]string)
		}).
		Return(nil).Once()

	ctx := logger.ContextWithTraceID(context.Background(), "trace-1")
	require.NoError(t, publisher.PublishProductCreated(ctx, product))
	bus.AssertExpectations(t)

	var env Envelope
	require.NoError(t, json.Unmarshal(sent, &env))
	assert.Equal(t, ProductCreatedEvent, env.Type)
	assert.NotEmpty(t, env.ID)
	assert.Equal(t, map[string]string{"event_type": ProductCreatedEvent, "event_id": env.ID, "trace_id": "trace-1"}, headers)

	var decoded models.Product
	require.NoError(t, json.Unmarshal(env.Payload, &decoded))
	assert.Equal(t, "Labubu", decoded.Title)
}

func TestPublishProductCreatedError(t *testing.T) {
	bus := new(messagingMock)
	publisher := NewProductEventPublisher(bus, "product-events")
	boom := errors.New("broker down")
	bus.On("PublishWithHeaders", mock.Anything, "product-events", "p1", mock.Anything, mock.Anything).Return(boom)

	err := publisher.PublishProductCreated(context.Background(), &models.Product{ID: "p1"})
	assert.ErrorIs(t, err, boom)
}

func TestDecodeCreateProduct(t *testing.T) {
	env, err := NewEnvelope(CreateProductCommand, CreateProductPayload{
		Country:     "sg",
		Title:       "Labubu",
		Description: "Big into energy",
		Price:       models.ProductPrice{Amount: "15.99", Currency: "SGD"},
		OfficialURL: "https://www.popmart.com",
	})
	require.NoError(t, err)
	raw, err := json.Marshal(env)
	require.NoError(t, err)

	_, payload, err := DecodeCreateProduct(raw)
	require.NoError(t, err)
	assert.Equal(t, "sg", payload.Country)
	assert.Equal(t, "15.99", payload.Price.Amount)

	t.Run("Unknown type", func(t *testing.T) {
		other, err := NewEnvelope(ProductCreatedEvent, map[string]string{})
		require.NoError(t, err)
		raw, err := json.Marshal(other)
		require.NoError(t, err)

		_, _, err = DecodeCreateProduct(raw)
		assert.ErrorIs(t, err, ErrUnknownEventType)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, _, err := DecodeCreateProduct([]byte("{"))
		assert.Error(t, err)
	})
}

func TestKafkaMessageRoundTrip(t *testing.T) {
	km := messageToKafkaMessage("topic", []byte("v"), "k", map[string]string{"x": "y"})
	msg := kafkaMessageToMessage(km)

	assert.Equal(t, "topic", msg.Topic)
	assert.Equal(t, "k", msg.Key)
	assert.Equal(t, "y", msg.Headers["x"])
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.PublishedAt.IsZero())
}
