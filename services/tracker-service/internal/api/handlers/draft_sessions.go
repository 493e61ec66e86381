package handlers

import (
	"time"

	"github.com/everytech/poptracker/services/tracker-service/internal/domain/services"
	"github.com/everytech/poptracker/services/tracker-service/internal/utils"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// DraftFactory создает черновик для страны
type DraftFactory func(countryCode string) *services.DraftService

// DraftSessions хранит открытые черновики. Неактивные черновики удаляются по TTL
type DraftSessions struct {
	cache    *gocache.Cache
	newDraft DraftFactory
}

// NewDraftSessions создает реестр черновиков
func NewDraftSessions(ttl, cleanupInterval time.Duration, factory DraftFactory) *DraftSessions {
	return &DraftSessions{
		cache:    gocache.New(ttl, cleanupInterval),
		newDraft: factory,
	}
}

// Create открывает новый черновик и возвращает его идентификатор
func (s *DraftSessions) Create(countryCode string) (string, *services.DraftService) {
	id := uuid.New().String()
	draft := s.newDraft(countryCode)
	s.cache.SetDefault(id, draft)
	return id, draft
}

// Get возвращает черновик и продлевает его жизнь
func (s *DraftSessions) Get(id string) (*services.DraftService, error) {
	cached, ok := s.cache.Get(id)
	if !ok {
		return nil, utils.ErrDraftNotFound
	}
	draft := cached.(*services.DraftService)
	s.cache.SetDefault(id, draft)
	return draft, nil
}

// Delete закрывает черновик
func (s *DraftSessions) Delete(id string) bool {
	if _, ok := s.cache.Get(id); !ok {
		return false
	}
	s.cache.Delete(id)
	return true
}

// Count возвращает число открытых черновиков
func (s *DraftSessions) Count() int {
	return s.cache.ItemCount()
}
