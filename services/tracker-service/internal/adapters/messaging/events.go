package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/everytech/poptracker/pkg/interfaces"
	"github.com/everytech/poptracker/services/tracker-service/internal/adapters/logger"
	"github.com/everytech/poptracker/services/tracker-service/internal/domain/models"
	"github.com/google/uuid"
)

type KafkaEvent = string

const (
	ProductCreatedEvent  KafkaEvent = "product_created"
	CreateProductCommand KafkaEvent = "create_product"
)

// ErrUnknownEventType возвращается для сообщений с неизвестным типом
var ErrUnknownEventType = errors.New("unknown event type")

// Envelope - общий формат сообщений в топиках товаров
type Envelope struct {
	ID         string          `json:"id"`
	Type       KafkaEvent      `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// CreateProductPayload - команда на создание товара из внешней системы
type CreateProductPayload struct {
	Country      string                   `json:"country"`
	Title        string                   `json:"title"`
	Description  string                   `json:"description"`
	ImageName    string                   `json:"image_name,omitempty"`
	Price        models.ProductPrice      `json:"price"`
	OfficialURL  string                   `json:"official_url"`
	Marketplaces []models.MarketplaceLink `json:"marketplaces,omitempty"`
}

// NewEnvelope упаковывает payload в конверт с новым ID
func NewEnvelope(eventType KafkaEvent, payload interface{}) (*Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}
	return &Envelope{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

// DecodeCreateProduct разбирает сообщение с командой create_product
func DecodeCreateProduct(value []byte) (*Envelope, *CreateProductPayload, error) {
	var env Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return nil, nil, fmt.Errorf("failed to decode envelope: %w", err)
	}
	if env.Type != CreateProductCommand {
		return &env, nil, fmt.Errorf("%w: %q", ErrUnknownEventType, env.Type)
	}

	var payload CreateProductPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return &env, nil, fmt.Errorf("failed to decode %s payload: %w", env.Type, err)
	}
	return &env, &payload, nil
}

// ProductEventPublisher публикует события о товарах в Kafka
type ProductEventPublisher struct {
	messaging interfaces.MessagingPort
	topic     string
}

// NewProductEventPublisher создает публикатор событий для топика
func NewProductEventPublisher(messaging interfaces.MessagingPort, topic string) *ProductEventPublisher {
	return &ProductEventPublisher{messaging: messaging, topic: topic}
}

// PublishProductCreated публикует product_created с ключом - ID товара.
// Тип события и trace_id запроса передаются в заголовках
func (p *ProductEventPublisher) PublishProductCreated(ctx context.Context, product *models.Product) error {
	env, err := NewEnvelope(ProductCreatedEvent, product)
	if err != nil {
		return err
	}

	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}

	headers := map[string]string{"event_type": env.Type, "event_id": env.ID}
	if traceID := logger.TraceIDFromContext(ctx); traceID != "" {
		headers["trace_id"] = traceID
	}

	return p.messaging.PublishWithHeaders(ctx, p.topic, product.ID, value, headers)
}
