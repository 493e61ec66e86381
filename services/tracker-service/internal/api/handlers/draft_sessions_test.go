package handlers

import (
	"testing"
	"time"

	"github.com/everytech/poptracker/services/tracker-service/internal/adapters/logger"
	"github.com/everytech/poptracker/services/tracker-service/internal/adapters/storage"
	"github.com/everytech/poptracker/services/tracker-service/internal/domain/services"
	"github.com/everytech/poptracker/services/tracker-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessions(ttl time.Duration) *DraftSessions {
	mem := storage.NewMemoryStorage()
	log := logger.NewNopLogger()
	return NewDraftSessions(ttl, time.Minute, func(country string) *services.DraftService {
		return services.NewDraftService(country, mem, nil, log)
	})
}

func TestDraftSessions(t *testing.T) {
	s := newSessions(time.Minute)

	id, draft := s.Create("my")
	require.NotEmpty(t, id)
	assert.Equal(t, "my", draft.Country())
	assert.Equal(t, 1, s.Count())

	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Same(t, draft, got)

	assert.True(t, s.Delete(id))
	assert.False(t, s.Delete(id))

	_, err = s.Get(id)
	assert.ErrorIs(t, err, utils.ErrDraftNotFound)
	assert.Equal(t, 0, s.Count())
}

func TestDraftSessionsExpire(t *testing.T) {
	s := newSessions(20 * time.Millisecond)

	id, _ := s.Create("sg")
	time.Sleep(40 * time.Millisecond)

	_, err := s.Get(id)
	assert.ErrorIs(t, err, utils.ErrDraftNotFound)
}
