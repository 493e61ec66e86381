package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/everytech/poptracker/pkg/interfaces"
	"github.com/everytech/poptracker/services/tracker-service/internal/domain/models"
	"github.com/everytech/poptracker/services/tracker-service/internal/utils"
	"github.com/go-redis/redis/v8"
)

// DefaultCollection - имя коллекции товаров по умолчанию
const DefaultCollection = "PRODUCTS"

// RedisConfig - параметры подключения к Redis
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Collection   string
}

// RedisStorage хранит документы товаров в хеше Redis,
// а об изменениях сообщает через канал <collection>:changed
type RedisStorage struct {
	client     *redis.Client
	collection string
	logger     interfaces.LoggerPort
}

// NewRedisStorage подключается к Redis и проверяет соединение
func NewRedisStorage(ctx context.Context, cfg RedisConfig, logger interfaces.LoggerPort) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     withDefault(cfg.PoolSize, 10),
		MinIdleConns: withDefault(cfg.MinIdleConns, 5),
		MaxRetries:   withDefault(cfg.MaxRetries, 3),
		DialTimeout:  withDefaultDuration(cfg.DialTimeout, 3*time.Second),
		ReadTimeout:  withDefaultDuration(cfg.ReadTimeout, 2*time.Second),
		WriteTimeout: withDefaultDuration(cfg.WriteTimeout, 2*time.Second),
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStorageWithClient(client, cfg.Collection, logger), nil
}

// NewRedisStorageWithClient создает хранилище поверх готового клиента
func NewRedisStorageWithClient(client *redis.Client, collection string, logger interfaces.LoggerPort) *RedisStorage {
	if collection == "" {
		collection = DefaultCollection
	}
	return &RedisStorage{client: client, collection: collection, logger: logger}
}

func (r *RedisStorage) documentsKey() string {
	return r.collection + ":documents"
}

func (r *RedisStorage) changesChannel() string {
	return r.collection + ":changed"
}

// AddProduct записывает документ и публикует уведомление в одной транзакции MULTI/EXEC
func (r *RedisStorage) AddProduct(ctx context.Context, product *models.Product) error {
	if product == nil {
		return utils.ErrNilProduct
	}
	if product.ID == "" {
		return utils.ErrEmptyProductID
	}

	document, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to encode product: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.documentsKey(), product.ID, document)
		pipe.Publish(ctx, r.changesChannel(), product.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

// ListProducts читает всю коллекцию, упорядоченную по времени создания
func (r *RedisStorage) ListProducts(ctx context.Context) ([]*models.Product, error) {
	raw, err := r.client.HGetAll(ctx, r.documentsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]*models.Product, 0, len(raw))
	for id, document := range raw {
		var product models.Product
		if err := json.Unmarshal([]byte(document), &product); err != nil {
			r.logger.WarnWithContext(ctx, "Пропущен документ товара, который не удалось разобрать",
				interfaces.LogField{Key: "product_id", Value: id},
				interfaces.LogField{Key: "error", Value: err.Error()},
			)
			continue
		}
		products = append(products, &product)
	}

	sort.SliceStable(products, func(i, j int) bool {
		if products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].ID < products[j].ID
		}
		return products[i].CreatedAt.Before(products[j].CreatedAt)
	})

	return products, nil
}

// ObserveProducts подписывается на канал изменений до чтения снимка,
// чтобы не пропустить запись между снимком и подпиской
func (r *RedisStorage) ObserveProducts(ctx context.Context, handler func([]*models.Product)) error {
	pubsub := r.client.Subscribe(ctx, r.changesChannel())
	defer func() {
		if err := pubsub.Close(); err != nil {
			r.logger.Warn("Не удалось закрыть подписку Redis", "error", err)
		}
	}()

	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to subscribe to %s: %w", r.changesChannel(), err)
	}

	products, err := r.ListProducts(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	handler(products)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("redis subscription closed: %w", utils.ErrStorageClosed)
			}

			r.logger.DebugWithContext(ctx, "Получено уведомление об изменении товаров",
				interfaces.LogField{Key: "channel", Value: msg.Channel},
				interfaces.LogField{Key: "product_id", Value: msg.Payload},
			)

			products, err := r.ListProducts(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			handler(products)
		}
	}
}

// Close закрывает клиент Redis
func (r *RedisStorage) Close() error {
	return r.client.Close()
}

func withDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func withDefaultDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}
