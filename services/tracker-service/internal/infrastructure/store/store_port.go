package store

import (
	"context"

	"github.com/everytech/poptracker/services/tracker-service/internal/domain/models"
)

// Storage определяет контракт хранилища товаров - коллекции документов с живой подпиской
type Storage interface {
	// AddProduct сохраняет новый продукт.
	// Ошибка означает, что хранилище отклонило запись
	AddProduct(ctx context.Context, product *models.Product) error

	// ObserveProducts подписывается на коллекцию: handler получает полный снимок
	// сразу после подписки и после каждого изменения.
	// Метод блокируется до отмены ctx (тогда возвращает nil) или до ошибки источника
	ObserveProducts(ctx context.Context, handler func([]*models.Product)) error
}

// Port - хранилище вместе с управлением соединением
type Port interface {
	Storage

	Close() error
}
