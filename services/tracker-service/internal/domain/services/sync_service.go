package services

import (
	"context"
	"sync"

	"github.com/everytech/poptracker/pkg/interfaces"
	"github.com/everytech/poptracker/pkg/observable"
	"github.com/everytech/poptracker/services/tracker-service/internal/domain/models"
	"github.com/everytech/poptracker/services/tracker-service/internal/infrastructure/store"
)

// SyncStatus - фаза жизненного цикла списка товаров
type SyncStatus string

const (
	StatusIdle      SyncStatus = "idle"
	StatusLoading   SyncStatus = "loading"
	StatusPopulated SyncStatus = "populated"
	StatusFallback  SyncStatus = "fallback"
	StatusFailed    SyncStatus = "failed"
)

// LoadErrorPrefix - начало сообщения об ошибке загрузки списка
const LoadErrorPrefix = "Failed to load products: "

// ProductListState - наблюдаемое состояние списка товаров.
// Срез Products общий для всех читателей и не должен изменяться
type ProductListState struct {
	Status    SyncStatus        `json:"status"`
	Products  []*models.Product `json:"products"`
	IsLoading bool              `json:"is_loading"`
	Error     string            `json:"error,omitempty"`
}

// ProductSyncService держит живую подписку на коллекцию товаров и публикует ее состояние.
// Одновременно активна не более чем одна подписка
type ProductSyncService struct {
	store  store.Storage
	logger interfaces.LoggerPort
	state  *observable.Value[ProductListState]

	// refreshMu сериализует Start/Refresh/Close
	refreshMu sync.Mutex
	parent    context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closed    bool

	// publishMu защищает generation и запись в state
	publishMu  sync.Mutex
	generation uint64
}

// NewProductSyncService создает сервис в состоянии Idle
func NewProductSyncService(storage store.Storage, logger interfaces.LoggerPort) *ProductSyncService {
	return &ProductSyncService{
		store:  storage,
		logger: logger.WithField("component", "product_sync"),
		state:  observable.New(ProductListState{Status: StatusIdle, Products: []*models.Product{}}),
		parent: context.Background(),
	}
}

// Start выполняет первую загрузку. Подписка живет до отмены ctx или Close
func (s *ProductSyncService) Start(ctx context.Context) {
	s.refreshMu.Lock()
	s.parent = ctx
	s.refreshMu.Unlock()

	s.Refresh()
}

// Refresh переводит список в Loading и переподписывается на хранилище.
// Предыдущая подписка отменяется, ее поздние обновления отбрасываются
func (s *ProductSyncService) Refresh() {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	if s.closed {
		s.logger.Warn("Refresh после Close проигнорирован")
		return
	}
	// С отмененным родительским контекстом новая подписка завершится сразу и оставит Loading
	if err := s.parent.Err(); err != nil {
		s.logger.Warn("Refresh после отмены контекста проигнорирован", "error", err)
		return
	}

	if s.cancel != nil {
		s.cancel()
	}

	s.publishMu.Lock()
	s.generation++
	gen := s.generation
	s.state.Update(func(st ProductListState) ProductListState {
		st.Status = StatusLoading
		st.IsLoading = true
		st.Error = ""
		return st
	})
	s.publishMu.Unlock()

	if s.done != nil {
		<-s.done
	}

	ctx, cancel := context.WithCancel(s.parent)
	done := make(chan struct{})
	s.cancel, s.done = cancel, done

	syncRefreshes.Inc()
	go s.observe(ctx, gen, done)
}

// observe читает поток хранилища для одного поколения подписки
func (s *ProductSyncService) observe(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)

	emitted := false
	err := s.store.ObserveProducts(ctx, func(products []*models.Product) {
		emitted = true
		s.publish(gen, stateForEmission(products))
	})

	if ctx.Err() != nil {
		return
	}

	if err != nil {
		s.logger.Error("Ошибка подписки на товары", "error", err, "generation", gen)
		s.publish(gen, failedState(err))
		return
	}

	if !emitted {
		// Источник закрылся, не прислав ни одного снимка
		s.publish(gen, stateForEmission(nil))
		return
	}

	s.logger.Info("Поток товаров завершился", "generation", gen)
}

// publish записывает состояние, только если поколение подписки все еще актуально
func (s *ProductSyncService) publish(gen uint64, st ProductListState) bool {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	if gen != s.generation {
		s.logger.Debug("Обновление устаревшей подписки отброшено", "generation", gen, "current", s.generation)
		return false
	}

	s.state.Set(st)

	syncEmissions.WithLabelValues(string(st.Status)).Inc()
	syncProducts.Set(float64(len(st.Products)))
	return true
}

func stateForEmission(products []*models.Product) ProductListState {
	if len(products) == 0 {
		return ProductListState{
			Status:   StatusFallback,
			Products: models.FallbackProducts(),
		}
	}
	return ProductListState{
		Status:   StatusPopulated,
		Products: products,
	}
}

func failedState(err error) ProductListState {
	return ProductListState{
		Status:   StatusFailed,
		Products: models.FallbackProducts(),
		Error:    LoadErrorPrefix + err.Error(),
	}
}

// State возвращает текущее состояние списка
func (s *ProductSyncService) State() ProductListState {
	return s.state.Get()
}

// Subscribe возвращает канал состояний: сначала текущее, затем каждое следующее
func (s *ProductSyncService) Subscribe(ctx context.Context) <-chan ProductListState {
	return s.state.Subscribe(ctx)
}

// Close отменяет активную подписку и ждет ее завершения
func (s *ProductSyncService) Close() {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	if s.cancel != nil {
		s.cancel()
	}
	if s.done != nil {
		<-s.done
	}
}
