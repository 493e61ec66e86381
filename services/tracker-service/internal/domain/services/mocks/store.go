package mocks

import (
	"context"

	"github.com/everytech/poptracker/services/tracker-service/internal/domain/models"
	"github.com/stretchr/testify/mock"
)

// StoreMock - testify-мок хранилища товаров
type StoreMock struct {
	mock.Mock
}

func (m *StoreMock) AddProduct(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *StoreMock) ObserveProducts(ctx context.Context, handler func([]*models.Product)) error {
	args := m.Called(ctx, handler)
	return args.Error(0)
}

func (m *StoreMock) Close() error {
	return m.Called().Error(0)
}

// EventPublisherMock - testify-мок публикатора событий
type EventPublisherMock struct {
	mock.Mock
}

func (m *EventPublisherMock) PublishProductCreated(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}
