package messaging

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/everytech/poptracker/pkg/interfaces"
	"github.com/google/uuid"
)

// KafkaMessaging реализация MessagingPort с использованием Kafka
type KafkaMessaging struct {
	producer       *kafka.Producer
	subscriptions  map[string]func() error
	consumersMutex sync.Mutex
	brokers        string
	consumerConfig interfaces.ConsumerConfig
	logger         interfaces.LoggerPort
	done           chan struct{}
	closeOnce      sync.Once
}

// NewKafkaMessaging создает новый экземпляр KafkaMessaging
func NewKafkaMessaging(brokers []string, clientID string, consumerConfig interfaces.ConsumerConfig, logger interfaces.LoggerPort) (*KafkaMessaging, error) {
	bootstrap := strings.Join(brokers, ",")

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":            bootstrap,
		"client.id":                    clientID + "-producer",
		"acks":                         "all", // максимальная надежность
		"retries":                      5,
		"retry.backoff.ms":             500,
		"compression.type":             "snappy",
		"linger.ms":                    10, // небольшая задержка для батчинга
		"batch.size":                   16384,
		"message.max.bytes":            1000000,
		"queue.buffering.max.messages": 100000,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Kafka producer: %w", err)
	}

	if consumerConfig.PollTimeout <= 0 {
		consumerConfig.PollTimeout = 100 * time.Millisecond
	}
	if consumerConfig.AutoCommitInterval <= 0 {
		consumerConfig.AutoCommitInterval = 5 * time.Second
	}
	if consumerConfig.AutoOffsetReset == "" {
		consumerConfig.AutoOffsetReset = "latest"
	}

	k := &KafkaMessaging{
		producer:       producer,
		subscriptions:  make(map[string]func() error),
		brokers:        bootstrap,
		consumerConfig: consumerConfig,
		logger:         logger,
		done:           make(chan struct{}),
	}

	go k.drainProducerEvents()

	return k, nil
}

// drainProducerEvents читает события продюсера, не привязанные к конкретной отправке
func (k *KafkaMessaging) drainProducerEvents() {
	for {
		select {
		case <-k.done:
			return
		case ev, ok := <-k.producer.Events():
			if !ok {
				return
			}
			switch e := ev.(type) {
			case *kafka.Message:
				if e.TopicPartition.Error != nil {
					k.logger.Error("Сообщение не доставлено в Kafka",
						"topic", topicName(e), "error", e.TopicPartition.Error)
				}
			case kafka.Error:
				k.logger.Warn("Ошибка Kafka producer", "code", e.Code().String(), "error", e.Error())
			}
		}
	}
}

// messageToKafkaMessage преобразует сообщение в kafka.Message
func messageToKafkaMessage(topic string, message []byte, key string, headers map[string]string) *kafka.Message {
	kafkaHeaders := make([]kafka.Header, 0, len(headers)+2)
	for k, v := range headers {
		kafkaHeaders = append(kafkaHeaders, kafka.Header{Key: k, Value: []byte(v)})
	}

	// Служебные заголовки
	kafkaHeaders = append(kafkaHeaders,
		kafka.Header{Key: "message_id", Value: []byte(uuid.New().String())},
		kafka.Header{Key: "timestamp", Value: []byte(strconv.FormatInt(time.Now().UnixNano(), 10))},
	)

	var keyBytes []byte
	if key != "" {
		keyBytes = []byte(key)
	}

	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          message,
		Key:            keyBytes,
		Headers:        kafkaHeaders,
	}
}

// kafkaMessageToMessage преобразует kafka.Message в Message
func kafkaMessageToMessage(msg *kafka.Message) *interfaces.Message {
	headers := make(map[string]string, len(msg.Headers))
	for _, header := range msg.Headers {
		headers[header.Key] = string(header.Value)
	}

	var key string
	if msg.Key != nil {
		key = string(msg.Key)
	}

	publishedAt := msg.Timestamp
	if tsStr, ok := headers["timestamp"]; ok {
		if ns, err := strconv.ParseInt(tsStr, 10, 64); err == nil {
			publishedAt = time.Unix(0, ns)
		}
	}

	return &interfaces.Message{
		ID:          headers["message_id"],
		Topic:       topicName(msg),
		Key:         key,
		Value:       msg.Value,
		Headers:     headers,
		PublishedAt: publishedAt,
	}
}

func topicName(msg *kafka.Message) string {
	if msg.TopicPartition.Topic == nil {
		return ""
	}
	return *msg.TopicPartition.Topic
}

// PublishWithHeaders публикует сообщение с ключом и дополнительными заголовками
func (k *KafkaMessaging) PublishWithHeaders(ctx context.Context, topic, key string, message []byte, headers map[string]string) error {
	return k.produce(ctx, messageToKafkaMessage(topic, message, key, headers))
}

// produce отправляет сообщение и ждет отчета о доставке или отмены ctx
func (k *KafkaMessaging) produce(ctx context.Context, msg *kafka.Message) error {
	delivery := make(chan kafka.Event, 1)
	if err := k.producer.Produce(msg, delivery); err != nil {
		return fmt.Errorf("ошибка отправки сообщения в %s: %w", topicName(msg), err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case ev := <-delivery:
		m, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery event %T", ev)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("ошибка доставки сообщения в %s: %w", topicName(m), m.TopicPartition.Error)
		}
		return nil
	}
}

// Subscribe подписывается на указанную тему с настройками по умолчанию
func (k *KafkaMessaging) Subscribe(ctx context.Context, topic string, handler interfaces.MessageHandler) (func() error, error) {
	return k.SubscribeWithConfig(ctx, topic, handler, k.consumerConfig)
}

// SubscribeWithConfig подписывается на указанную тему с дополнительными настройками
func (k *KafkaMessaging) SubscribeWithConfig(ctx context.Context, topic string, handler interfaces.MessageHandler, config interfaces.ConsumerConfig) (func() error, error) {
	handlerID := uuid.New().String()

	kafkaConfig := &kafka.ConfigMap{
		"bootstrap.servers":        k.brokers,
		"group.id":                 config.GroupID,
		"auto.offset.reset":        config.AutoOffsetReset,
		"enable.auto.commit":       config.AutoCommit,
		"auto.commit.interval.ms":  int(config.AutoCommitInterval.Milliseconds()),
		"session.timeout.ms":       30000,
		"max.poll.interval.ms":     300000,
		"heartbeat.interval.ms":    3000,
		"fetch.min.bytes":          1,
		"fetch.wait.max.ms":        500,
		"reconnect.backoff.ms":     50,
		"reconnect.backoff.max.ms": 10000,
	}

	consumer, err := kafka.NewConsumer(kafkaConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Kafka consumer: %w", err)
	}

	if err := consumer.Subscribe(topic, nil); err != nil {
		_ = consumer.Close()
		return nil, fmt.Errorf("ошибка подписки на топик %s: %w", topic, err)
	}

	consumeCtx, cancel := context.WithCancel(ctx)
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		k.consumeMessages(consumeCtx, consumer, topic, handler, config)
	}()

	var once sync.Once
	unsubscribe := func() error {
		var closeErr error
		once.Do(func() {
			cancel()
			<-stopped

			k.consumersMutex.Lock()
			delete(k.subscriptions, handlerID)
			k.consumersMutex.Unlock()

			closeErr = consumer.Close()
		})
		return closeErr
	}

	k.consumersMutex.Lock()
	k.subscriptions[handlerID] = unsubscribe
	k.consumersMutex.Unlock()

	return unsubscribe, nil
}

// consumeMessages обрабатывает сообщения из Kafka до отмены ctx
func (k *KafkaMessaging) consumeMessages(ctx context.Context, consumer *kafka.Consumer, topic string, handler interfaces.MessageHandler, config interfaces.ConsumerConfig) {
	log := k.logger.WithField("topic", topic)
	failures := 0

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		ev := consumer.Poll(int(config.PollTimeout.Milliseconds()))
		if ev == nil {
			continue
		}

		switch e := ev.(type) {
		case *kafka.Message:
			msg := kafkaMessageToMessage(e)

			if err := handler(ctx, msg); err != nil {
				failures++
				log.ErrorWithContext(ctx, "Ошибка обработки сообщения, повтор",
					interfaces.LogField{Key: "message_id", Value: msg.ID},
					interfaces.LogField{Key: "attempt", Value: failures},
					interfaces.LogField{Key: "error", Value: err.Error()},
				)
				// Сообщение не подтверждается, следующее не читается до успешной обработки
				if err := rewind(ctx, consumer, e.TopicPartition, failures); err != nil {
					log.Error("Не удалось вернуться к сообщению, обработка остановлена",
						"message_id", msg.ID, "error", err)
					return
				}
				continue
			}
			failures = 0

			// В ручном режиме подтверждаем только успешно обработанные сообщения
			if !config.AutoCommit {
				if _, err := consumer.CommitMessage(e); err != nil {
					log.Warn("Не удалось подтвердить сообщение",
						"message_id", msg.ID, "error", err)
				}
			}

		case kafka.Error:
			log.Warn("Ошибка Kafka consumer", "code", e.Code().String(), "error", e.Error())
			if e.Code() == kafka.ErrAllBrokersDown {
				log.Error("Все брокеры Kafka недоступны, обработка остановлена")
				return
			}

		case kafka.PartitionEOF:
			log.Debug("Достигнут конец партиции", "partition", e.Partition)
		}
	}
}

// Границы задержки перед повторной обработкой сообщения
const (
	retryBaseDelay = 200 * time.Millisecond
	retryMaxDelay  = 30 * time.Second
)

// partitionSeeker - часть kafka.Consumer, нужная для повторной доставки
type partitionSeeker interface {
	Seek(partition kafka.TopicPartition, timeoutMs int) error
}

// retryDelay возвращает задержку перед попыткой attempt (с 1): экспонента с потолком
func retryDelay(attempt int) time.Duration {
	delay := retryBaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= retryMaxDelay {
			return retryMaxDelay
		}
	}
	return delay
}

// rewind возвращает партицию к смещению необработанного сообщения и ждет задержку.
// Отмена ctx во время ожидания не считается ошибкой
func rewind(ctx context.Context, consumer partitionSeeker, tp kafka.TopicPartition, attempt int) error {
	if err := consumer.Seek(tp, 5000); err != nil {
		return fmt.Errorf("ошибка seek %s[%d]@%v: %w", topicName(&kafka.Message{TopicPartition: tp}), tp.Partition, tp.Offset, err)
	}

	timer := time.NewTimer(retryDelay(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
	return nil
}

// CreateTopic создает тему, если ее еще нет
func (k *KafkaMessaging) CreateTopic(ctx context.Context, topic string, partitions int, replicationFactor int) error {
	adminClient, err := kafka.NewAdminClientFromProducer(k.producer)
	if err != nil {
		return fmt.Errorf("ошибка создания Kafka admin client: %w", err)
	}
	defer adminClient.Close()

	result, err := adminClient.CreateTopics(ctx, []kafka.TopicSpecification{{
		Topic:             topic,
		NumPartitions:     partitions,
		ReplicationFactor: replicationFactor,
	}}, kafka.SetAdminOperationTimeout(30*time.Second))
	if err != nil {
		return fmt.Errorf("ошибка создания топика %s: %w", topic, err)
	}

	for _, r := range result {
		code := r.Error.Code()
		if code != kafka.ErrNoError && code != kafka.ErrTopicAlreadyExists {
			return fmt.Errorf("ошибка создания топика %s: %s", r.Topic, r.Error.String())
		}
	}

	return nil
}

// Close закрывает все потребители и producer
func (k *KafkaMessaging) Close() error {
	k.closeOnce.Do(func() {
		k.consumersMutex.Lock()
		unsubscribes := make([]func() error, 0, len(k.subscriptions))
		for _, unsubscribe := range k.subscriptions {
			unsubscribes = append(unsubscribes, unsubscribe)
		}
		k.consumersMutex.Unlock()

		for _, unsubscribe := range unsubscribes {
			if err := unsubscribe(); err != nil {
				k.logger.Warn("Ошибка закрытия Kafka consumer", "error", err)
			}
		}

		// Ждем до 15 секунд для отправки всех сообщений
		if remaining := k.producer.Flush(15 * 1000); remaining > 0 {
			k.logger.Warn("Не все сообщения отправлены в Kafka", "remaining", remaining)
		}
		close(k.done)
		k.producer.Close()
	})
	return nil
}
