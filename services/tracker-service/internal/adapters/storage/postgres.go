package storage

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/everytech/poptracker/pkg/interfaces"
	"github.com/everytech/poptracker/pkg/tx"
	"github.com/everytech/poptracker/services/tracker-service/internal/domain/models"
	"github.com/everytech/poptracker/services/tracker-service/internal/utils"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductsChannel - канал NOTIFY, в который триггер пишет "<collection>:<id>" измененного товара
const ProductsChannel = "products_changed"

//go:embed migrations/001_products.sql
var productsSchema string

// ProductStorage реализация хранилища товаров для PostgreSQL.
// Документ товара хранится в JSONB, изменения приходят через LISTEN/NOTIFY.
// Строки разных коллекций делят одну таблицу и различаются колонкой collection
type ProductStorage struct {
	pool       *pgxpool.Pool
	txManager  tx.Manager
	collection string
	logger     interfaces.LoggerPort
}

// NewPostgresStorage создает новый экземпляр ProductStorage и применяет схему
func NewPostgresStorage(ctx context.Context, connectionString, collection string, logger interfaces.LoggerPort) (*ProductStorage, error) {
	pool, err := pgxpool.New(ctx, connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	s, err := NewPostgresStorageWithPool(ctx, pool, collection, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// NewPostgresStorageWithPool создает хранилище поверх готового пула
func NewPostgresStorageWithPool(ctx context.Context, pool *pgxpool.Pool, collection string, logger interfaces.LoggerPort) (*ProductStorage, error) {
	if pool == nil {
		return nil, errors.New("pool is nil")
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if collection == "" {
		collection = DefaultCollection
	}
	return &ProductStorage{
		pool:       pool,
		txManager:  tx.NewManager(pool, logger),
		collection: collection,
		logger:     logger,
	}, nil
}

// Migrate создает схему, таблицу и триггер уведомлений, если их еще нет
func (r *ProductStorage) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, productsSchema); err != nil {
		return fmt.Errorf("failed to apply products schema: %w", err)
	}
	return nil
}

// Close закрывает соединение с БД
func (r *ProductStorage) Close() error {
	r.pool.Close()
	return nil
}

type executor interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// getExecutor возвращает исполнителя запросов (транзакцию или пул)
func (r *ProductStorage) getExecutor(ctx context.Context) executor {
	if t, ok := tx.FromContext(ctx); ok {
		return t
	}
	return r.pool
}

// AddProduct сохраняет документ товара. Повторная запись с тем же id перезаписывает документ
func (r *ProductStorage) AddProduct(ctx context.Context, product *models.Product) error {
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

	createdAt := product.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO tracker.products (collection, id, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (collection, id)
		DO UPDATE SET
			document = $3,
			updated_at = $5
	`

	return r.txManager.Do(ctx, func(ctx context.Context) error {
		if _, err := r.getExecutor(ctx).Exec(ctx, query, r.collection, product.ID, document, createdAt, time.Now().UTC()); err != nil {
			return fmt.Errorf("failed to save product: %w", err)
		}
		return nil
	})
}

// ListProducts возвращает все документы в порядке создания
func (r *ProductStorage) ListProducts(ctx context.Context) ([]*models.Product, error) {
	return r.listProducts(ctx, r.getExecutor(ctx))
}

func (r *ProductStorage) listProducts(ctx context.Context, e executor) ([]*models.Product, error) {
	query := `
		SELECT id, document
		FROM tracker.products
		WHERE collection = $1
		ORDER BY created_at, id
	`

	rows, err := e.Query(ctx, query, r.collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := make([]*models.Product, 0)
	for rows.Next() {
		var (
			id       string
			document []byte
		)
		if err := rows.Scan(&id, &document); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}

		var product models.Product
		if err := json.Unmarshal(document, &product); err != nil {
			r.logger.WarnWithContext(ctx, "Пропущен документ товара, который не удалось разобрать",
				interfaces.LogField{Key: "product_id", Value: id},
				interfaces.LogField{Key: "error", Value: err.Error()},
			)
			continue
		}
		products = append(products, &product)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error while iterating product rows: %w", rows.Err())
	}

	return products, nil
}

// ObserveProducts слушает канал products_changed на выделенном соединении
// и после каждого уведомления о своей коллекции перечитывает ее
func (r *ProductStorage) ObserveProducts(ctx context.Context, handler func([]*models.Product)) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to acquire listen connection: %w", err)
	}
	defer func() {
		// ctx к этому моменту может быть отменен
		unlistenCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := conn.Exec(unlistenCtx, "UNLISTEN *"); err != nil {
			r.logger.Warn("Не удалось снять подписку LISTEN", "error", err)
		}
		conn.Release()
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{ProductsChannel}.Sanitize()); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to listen %s: %w", ProductsChannel, err)
	}

	products, err := r.listProducts(ctx, conn)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	handler(products)

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to wait for notification: %w", err)
		}

		productID, ok := changedProductID(notification.Payload, r.collection)
		if !ok {
			continue
		}
		r.logger.DebugWithContext(ctx, "Получено уведомление об изменении товаров",
			interfaces.LogField{Key: "channel", Value: notification.Channel},
			interfaces.LogField{Key: "product_id", Value: productID},
		)

		products, err := r.listProducts(ctx, conn)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		handler(products)
	}
}

// changedProductID разбирает payload уведомления "<collection>:<id>".
// Для чужой коллекции возвращает false
func changedProductID(payload, collection string) (string, bool) {
	prefix := collection + ":"
	if !strings.HasPrefix(payload, prefix) {
		return "", false
	}
	return strings.TrimPrefix(payload, prefix), true
}
