package tx

import (
	"context"
	"fmt"

	"github.com/everytech/poptracker/pkg/interfaces"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// txKey - ключ для хранения транзакции в контексте. Используем приватный тип, чтобы избежать коллизий.
type txKeyType struct{}

var txKey = txKeyType{}

// Manager управляет жизненным циклом транзакций БД.
type Manager interface {
	// Do выполняет fn внутри транзакции.
	// Ошибка из fn откатывает транзакцию, успешное завершение фиксирует ее.
	// Контекст, передаваемый в fn, содержит саму транзакцию.
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// pgxManager - реализация Manager для pgx.
type pgxManager struct {
	pool   *pgxpool.Pool
	logger interfaces.LoggerPort
}

// NewManager создает новый менеджер транзакций.
func NewManager(pool *pgxpool.Pool, logger interfaces.LoggerPort) Manager {
	return &pgxManager{pool: pool, logger: logger}
}

// Do реализует метод интерфейса Manager.
func (m *pgxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	// Вложенный вызов переиспользует уже открытую транзакцию
	if _, ok := FromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("tx.Begin failed: %w", err)
	}

	// Rollback после Commit возвращает pgx.ErrTxClosed, это нормально
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(WithTx(ctx, tx)); err != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			m.logger.WarnWithContext(ctx, "Не удалось откатить транзакцию",
				interfaces.LogField{Key: "rollback_error", Value: rollbackErr.Error()},
				interfaces.LogField{Key: "error", Value: err.Error()},
			)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("tx.Commit failed: %w", err)
	}

	return nil
}

// WithTx кладет транзакцию в контекст.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// FromContext извлекает транзакцию из контекста.
func FromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey).(pgx.Tx)
	return tx, ok
}
