package storage

import (
	"context"
	"sync"

	"github.com/everytech/poptracker/services/tracker-service/internal/domain/models"
	"github.com/everytech/poptracker/services/tracker-service/internal/utils"
)

// MemoryStorage хранит коллекцию товаров в памяти процесса.
// Используется локально и в тестах
type MemoryStorage struct {
	mu       sync.RWMutex
	products []*models.Product
	index    map[string]int
	watchers map[int]chan struct{}
	nextID   int
	closed   bool
}

// NewMemoryStorage создает пустое хранилище в памяти
func NewMemoryStorage(seed ...*models.Product) *MemoryStorage {
	s := &MemoryStorage{
		index:    make(map[string]int),
		watchers: make(map[int]chan struct{}),
	}
	for _, p := range seed {
		if p != nil && p.ID != "" {
			s.put(p.Clone())
		}
	}
	return s
}

// AddProduct сохраняет продукт. Документ с тем же ID перезаписывается
func (s *MemoryStorage) AddProduct(ctx context.Context, product *models.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if product == nil {
		return utils.ErrNilProduct
	}
	if product.ID == "" {
		return utils.ErrEmptyProductID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return utils.ErrStorageClosed
	}

	s.put(product.Clone())
	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

// ObserveProducts отдает снимок сразу и после каждой записи
func (s *MemoryStorage) ObserveProducts(ctx context.Context, handler func([]*models.Product)) error {
	notify := make(chan struct{}, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return utils.ErrStorageClosed
	}
	id := s.nextID
	s.nextID++
	s.watchers[id] = notify
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}()

	handler(s.snapshot())

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-notify:
			if !ok {
				return utils.ErrStorageClosed
			}
			if ctx.Err() != nil {
				return nil
			}
			handler(s.snapshot())
		}
	}
}

// Len возвращает количество документов
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// Close завершает все активные подписки
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for id, ch := range s.watchers {
		close(ch)
		delete(s.watchers, id)
	}
	return nil
}

func (s *MemoryStorage) put(p *models.Product) {
	if i, ok := s.index[p.ID]; ok {
		s.products[i] = p
		return
	}
	s.index[p.ID] = len(s.products)
	s.products = append(s.products, p)
}

func (s *MemoryStorage) snapshot() []*models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.products) == 0 {
		return []*models.Product{}
	}
	return models.CloneProducts(s.products)
}
