package services

import (
	"context"
	"fmt"
	"time"

	"github.com/everytech/poptracker/pkg/interfaces"
	"github.com/everytech/poptracker/pkg/observable"
	"github.com/everytech/poptracker/services/tracker-service/internal/domain/catalog"
	"github.com/everytech/poptracker/services/tracker-service/internal/domain/models"
	"github.com/everytech/poptracker/services/tracker-service/internal/infrastructure/store"
	"github.com/everytech/poptracker/services/tracker-service/internal/utils"
	"github.com/google/uuid"
)

// Сообщения, которые видит пользователь формы
const (
	RequiredFieldsMessage = "Please fill in all required fields"
	SaveErrorPrefix       = "Failed to save product: "
)

// EventPublisher уведомляет внешние системы о созданных товарах
type EventPublisher interface {
	PublishProductCreated(ctx context.Context, product *models.Product) error
}

// DraftService ведет один черновик товара от создания до сохранения
type DraftService struct {
	country string
	store   store.Storage
	events  EventPublisher
	logger  interfaces.LoggerPort
	state   *observable.Value[models.ProductDraft]

	now   func() time.Time
	newID func() string
}

// NewDraftService создает черновик с настройками по умолчанию для страны.
// events может быть nil, тогда события не публикуются
func NewDraftService(countryCode string, storage store.Storage, events EventPublisher, logger interfaces.LoggerPort) *DraftService {
	return &DraftService{
		country: countryCode,
		store:   storage,
		events:  events,
		logger:  logger.WithFields(interfaces.LogField{Key: "component", Value: "draft"}, interfaces.LogField{Key: "country", Value: countryCode}),
		state: observable.New(models.ProductDraft{
			ImageName:    models.DefaultImageName,
			Price:        models.ProductPrice{Currency: catalog.CurrencyForCountry(countryCode)},
			Marketplaces: []models.MarketplaceLink{},
		}),
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

// Country возвращает код страны черновика
func (s *DraftService) Country() string {
	return s.country
}

// State возвращает копию текущего черновика
func (s *DraftService) State() models.ProductDraft {
	return s.state.Get().Clone()
}

// Subscribe возвращает канал состояний черновика
func (s *DraftService) Subscribe(ctx context.Context) <-chan models.ProductDraft {
	return s.state.Subscribe(ctx)
}

// edit применяет изменение и сбрасывает ошибку
func (s *DraftService) edit(fn func(d *models.ProductDraft)) {
	s.state.Update(func(d models.ProductDraft) models.ProductDraft {
		d = d.Clone()
		fn(&d)
		d.Error = ""
		return d
	})
}

// editAt меняет ссылку по индексу. Для индекса вне диапазона черновик,
// включая ошибку, остается прежним и подписчики не уведомляются
func (s *DraftService) editAt(index int, fn func(d *models.ProductDraft)) {
	s.state.UpdateIf(func(d models.ProductDraft) (models.ProductDraft, bool) {
		if index < 0 || index >= len(d.Marketplaces) {
			return d, false
		}
		d = d.Clone()
		fn(&d)
		d.Error = ""
		return d, true
	})
}

func (s *DraftService) UpdateName(name string) {
	s.edit(func(d *models.ProductDraft) { d.Title = name })
}

func (s *DraftService) UpdateDescription(description string) {
	s.edit(func(d *models.ProductDraft) { d.Description = description })
}

func (s *DraftService) UpdateImageName(imageName string) {
	s.edit(func(d *models.ProductDraft) { d.ImageName = imageName })
}

func (s *DraftService) UpdatePrice(price models.ProductPrice) {
	s.edit(func(d *models.ProductDraft) { d.Price = price })
}

func (s *DraftService) UpdateOfficialURL(url string) {
	s.edit(func(d *models.ProductDraft) { d.OfficialURL = url })
}

// AddMarketplace добавляет пустую ссылку Secondary с иконкой по умолчанию для страны
func (s *DraftService) AddMarketplace() {
	s.edit(func(d *models.ProductDraft) {
		d.Marketplaces = append(d.Marketplaces, models.MarketplaceLink{
			IconName:     catalog.DefaultIconForCountry(s.country),
			Type:         models.MarketplaceSecondary,
			URL:          "",
			Availability: models.AvailabilityInStock,
		})
	})
}

// UpdateMarketplace заменяет ссылку по индексу. Индекс вне диапазона игнорируется
func (s *DraftService) UpdateMarketplace(index int, link models.MarketplaceLink) {
	s.editAt(index, func(d *models.ProductDraft) {
		d.Marketplaces[index] = link
	})
}

// RemoveMarketplace удаляет ссылку по индексу. Индекс вне диапазона игнорируется
func (s *DraftService) RemoveMarketplace(index int) {
	s.editAt(index, func(d *models.ProductDraft) {
		d.Marketplaces = append(d.Marketplaces[:index], d.Marketplaces[index+1:]...)
	})
}

type saveDecision int

const (
	saveProceed saveDecision = iota
	saveBusy
	saveInvalid
)

// Save проверяет черновик и записывает товар в хранилище.
// При успехе вызывается onSuccess с сохраненным товаром; черновик при ошибке сохраняется как есть
func (s *DraftService) Save(ctx context.Context, onSuccess func(*models.Product)) error {
	var decision saveDecision
	draft := s.state.Update(func(d models.ProductDraft) models.ProductDraft {
		switch {
		case d.IsLoading:
			decision = saveBusy
		case !d.IsValid():
			decision = saveInvalid
			d.Error = RequiredFieldsMessage
		default:
			decision = saveProceed
			d.IsLoading = true
			d.Error = ""
		}
		return d
	})

	switch decision {
	case saveBusy:
		draftSaves.WithLabelValues("busy").Inc()
		return utils.ErrSaveInProgress
	case saveInvalid:
		draftSaves.WithLabelValues("invalid").Inc()
		return utils.ErrInvalidDraft
	}

	product := &models.Product{
		ID:           s.newID(),
		Title:        draft.Title,
		Subtitle:     draft.Description,
		ImageName:    draft.ImageName,
		Price:        draft.Price,
		OfficialURL:  draft.OfficialURL,
		Marketplaces: draft.Clone().Marketplaces,
		CreatedAt:    s.now().UTC(),
	}
	if product.Marketplaces == nil {
		product.Marketplaces = []models.MarketplaceLink{}
	}

	started := time.Now()
	err := s.store.AddProduct(ctx, product)
	draftSaveDuration.Observe(time.Since(started).Seconds())

	if err != nil {
		s.logger.ErrorWithContext(ctx, "Не удалось сохранить товар",
			interfaces.LogField{Key: "product_id", Value: product.ID},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
		s.state.Update(func(d models.ProductDraft) models.ProductDraft {
			d.IsLoading = false
			d.Error = SaveErrorPrefix + err.Error()
			return d
		})
		draftSaves.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to save product: %w", err)
	}

	s.logger.InfoWithContext(ctx, "Товар сохранен", interfaces.LogField{Key: "product_id", Value: product.ID})
	s.state.Update(func(d models.ProductDraft) models.ProductDraft {
		d.IsLoading = false
		return d
	})
	draftSaves.WithLabelValues("saved").Inc()

	if onSuccess != nil {
		onSuccess(product)
	}

	if s.events != nil {
		if err := s.events.PublishProductCreated(ctx, product); err != nil {
			s.logger.WarnWithContext(ctx, "Не удалось опубликовать событие product_created",
				interfaces.LogField{Key: "product_id", Value: product.ID},
				interfaces.LogField{Key: "error", Value: err.Error()},
			)
		}
	}

	return nil
}

// ApplyDraft заполняет черновик целиком, например из внешней команды
func (s *DraftService) ApplyDraft(d models.ProductDraft) {
	s.edit(func(cur *models.ProductDraft) {
		cur.Title = d.Title
		cur.Description = d.Description
		if d.ImageName != "" {
			cur.ImageName = d.ImageName
		}
		cur.Price = d.Price
		if cur.Price.Currency == "" {
			cur.Price.Currency = catalog.CurrencyForCountry(s.country)
		}
		cur.OfficialURL = d.OfficialURL
		if d.Marketplaces != nil {
			cur.Marketplaces = d.Clone().Marketplaces
		}
	})
}
