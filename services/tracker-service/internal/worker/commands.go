package worker

import (
	"context"
	"errors"
	"time"

	"github.com/everytech/poptracker/pkg/interfaces"
	"github.com/everytech/poptracker/services/tracker-service/internal/adapters/messaging"
	"github.com/everytech/poptracker/services/tracker-service/internal/domain/models"
	"github.com/everytech/poptracker/services/tracker-service/internal/domain/services"
	"github.com/everytech/poptracker/services/tracker-service/internal/infrastructure/store"
	"github.com/everytech/poptracker/services/tracker-service/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики для Prometheus
var (
	messagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_messages_processed_total",
		Help: "Общее количество обработанных сообщений",
	}, []string{"topic", "status"})

	messageProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "worker_message_processing_duration_seconds",
		Help:    "Длительность обработки сообщений",
		Buckets: prometheus.DefBuckets,
	}, []string{"topic"})

	activeWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "worker_active_goroutines",
		Help: "Количество активных горутин-обработчиков",
	})
)

// Статусы обработки команды, они же значения метки status
const (
	StatusSuccess = "success"
	StatusInvalid = "invalid"
	StatusUnknown = "unknown"
	StatusError   = "error"
)

// CommandHandler превращает команды create_product в сохраненные товары.
// Каждая команда проходит через отдельный черновик, поэтому проверка и запись
// такие же, как при добавлении товара через API
type CommandHandler struct {
	storage store.Storage
	events  services.EventPublisher
	logger  interfaces.LoggerPort
}

// NewCommandHandler создает обработчик команд. events может быть nil
func NewCommandHandler(storage store.Storage, events services.EventPublisher, logger interfaces.LoggerPort) *CommandHandler {
	return &CommandHandler{
		storage: storage,
		events:  events,
		logger:  logger,
	}
}

// Handle обрабатывает одно сообщение. Ошибка возвращается только тогда,
// когда повтор может помочь, иначе сообщение подтверждается
func (h *CommandHandler) Handle(ctx context.Context, msg *interfaces.Message) error {
	_, err := h.process(ctx, msg)
	return err
}

func (h *CommandHandler) process(ctx context.Context, msg *interfaces.Message) (string, error) {
	startTime := time.Now()
	activeWorkers.Inc()
	defer activeWorkers.Dec()

	h.logger.InfoWithContext(ctx, "Получена команда продукта",
		interfaces.LogField{Key: "message_id", Value: msg.ID},
		interfaces.LogField{Key: "topic", Value: msg.Topic},
	)

	env, payload, err := messaging.DecodeCreateProduct(msg.Value)
	if err != nil {
		status := StatusInvalid
		if errors.Is(err, messaging.ErrUnknownEventType) {
			status = StatusUnknown
		}
		h.logger.WarnWithContext(ctx, "Команда пропущена",
			interfaces.LogField{Key: "message_id", Value: msg.ID},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
		messagesProcessed.WithLabelValues(msg.Topic, status).Inc()
		return status, nil
	}

	draft := services.NewDraftService(payload.Country, h.storage, h.events, h.logger)
	draft.ApplyDraft(models.ProductDraft{
		Title:        payload.Title,
		Description:  payload.Description,
		ImageName:    payload.ImageName,
		Price:        payload.Price,
		OfficialURL:  payload.OfficialURL,
		Marketplaces: payload.Marketplaces,
	})

	var saved *models.Product
	err = draft.Save(ctx, func(p *models.Product) { saved = p })
	switch {
	case errors.Is(err, utils.ErrInvalidDraft):
		h.logger.WarnWithContext(ctx, "Команда не содержит обязательных полей",
			interfaces.LogField{Key: "command_id", Value: env.ID},
		)
		messagesProcessed.WithLabelValues(msg.Topic, StatusInvalid).Inc()
		return StatusInvalid, nil

	case err != nil:
		messagesProcessed.WithLabelValues(msg.Topic, StatusError).Inc()
		return StatusError, err
	}

	duration := time.Since(startTime).Seconds()
	messageProcessingDuration.WithLabelValues(msg.Topic).Observe(duration)
	messagesProcessed.WithLabelValues(msg.Topic, StatusSuccess).Inc()

	h.logger.InfoWithContext(ctx, "Команда успешно обработана",
		interfaces.LogField{Key: "command_id", Value: env.ID},
		interfaces.LogField{Key: "product_id", Value: saved.ID},
		interfaces.LogField{Key: "duration", Value: duration},
	)
	return StatusSuccess, nil
}
