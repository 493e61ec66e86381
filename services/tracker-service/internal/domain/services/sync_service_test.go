package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/everytech/poptracker/services/tracker-service/internal/adapters/logger"
	"github.com/everytech/poptracker/services/tracker-service/internal/adapters/storage"
	"github.com/everytech/poptracker/services/tracker-service/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedFeed отдает управление подписками тесту
type scriptedFeed struct {
	registered chan *feedSubscription
}

type feedSubscription struct {
	ctx  context.Context
	emit chan []*models.Product
	end  chan error
}

func newScriptedFeed() *scriptedFeed {
	return &scriptedFeed{registered: make(chan *feedSubscription, 8)}
}

func (f *scriptedFeed) AddProduct(context.Context, *models.Product) error {
	return nil
}

func (f *scriptedFeed) ObserveProducts(ctx context.Context, handler func([]*models.Product)) error {
	sub := &feedSubscription{ctx: ctx, emit: make(chan []*models.Product, 1), end: make(chan error, 1)}
	f.registered <- sub

	for {
		select {
		case <-ctx.Done():
			return nil
		case products := <-sub.emit:
			handler(products)
		case err := <-sub.end:
			return err
		}
	}
}

func (f *scriptedFeed) next(t *testing.T) *feedSubscription {
	t.Helper()
	select {
	case sub := <-f.registered:
		return sub
	case <-time.After(time.Second):
		t.Fatal("no subscription registered")
		return nil
	}
}

func products(ids ...string) []*models.Product {
	out := make([]*models.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, &models.Product{ID: id, Title: "title " + id})
	}
	return out
}

func productIDs(ps []*models.Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func waitStatus(t *testing.T, s *ProductSyncService, status SyncStatus) ProductListState {
	t.Helper()
	require.Eventually(t, func() bool { return s.State().Status == status }, time.Second, 5*time.Millisecond)
	return s.State()
}

func TestSyncInitialState(t *testing.T) {
	s := NewProductSyncService(newScriptedFeed(), logger.NewNopLogger())
	st := s.State()
	assert.Equal(t, StatusIdle, st.Status)
	assert.False(t, st.IsLoading)
	assert.Empty(t, st.Products)
}

func TestSyncLoadingUntilFirstEmission(t *testing.T) {
	feed := newScriptedFeed()
	s := NewProductSyncService(feed, logger.NewNopLogger())
	defer s.Close()

	s.Start(context.Background())
	sub := feed.next(t)

	st := s.State()
	assert.Equal(t, StatusLoading, st.Status)
	assert.True(t, st.IsLoading)

	sub.emit <- products("a")
	st = waitStatus(t, s, StatusPopulated)
	assert.False(t, st.IsLoading)
}

func TestSyncEmissions(t *testing.T) {
	t.Run("Empty list shows fallback", func(t *testing.T) {
		feed := newScriptedFeed()
		s := NewProductSyncService(feed, logger.NewNopLogger())
		defer s.Close()

		s.Start(context.Background())
		feed.next(t).emit <- []*models.Product{}

		st := waitStatus(t, s, StatusFallback)
		assert.Equal(t, []string{"demo-1", "demo-2", "demo-3", "demo-4"}, productIDs(st.Products))
		assert.Empty(t, st.Error)
		assert.False(t, st.IsLoading)
	})

	t.Run("Products are passed through in order", func(t *testing.T) {
		feed := newScriptedFeed()
		s := NewProductSyncService(feed, logger.NewNopLogger())
		defer s.Close()

		s.Start(context.Background())
		sub := feed.next(t)
		sub.emit <- products("c", "a", "b")

		st := waitStatus(t, s, StatusPopulated)
		assert.Equal(t, []string{"c", "a", "b"}, productIDs(st.Products))

		sub.emit <- []*models.Product{}
		st = waitStatus(t, s, StatusFallback)
		assert.Len(t, st.Products, 4)

		sub.emit <- products("z")
		st = waitStatus(t, s, StatusPopulated)
		assert.Equal(t, []string{"z"}, productIDs(st.Products))
	})

	t.Run("Feed error shows fallback with message", func(t *testing.T) {
		feed := newScriptedFeed()
		s := NewProductSyncService(feed, logger.NewNopLogger())
		defer s.Close()

		s.Start(context.Background())
		feed.next(t).end <- errors.New("network unreachable")

		st := waitStatus(t, s, StatusFailed)
		assert.Equal(t, "Failed to load products: network unreachable", st.Error)
		assert.Len(t, st.Products, 4)
		assert.False(t, st.IsLoading)
	})

	t.Run("Source closed without emission", func(t *testing.T) {
		feed := newScriptedFeed()
		s := NewProductSyncService(feed, logger.NewNopLogger())
		defer s.Close()

		s.Start(context.Background())
		feed.next(t).end <- nil

		st := waitStatus(t, s, StatusFallback)
		assert.Len(t, st.Products, 4)
		assert.Empty(t, st.Error)
	})
}

func TestSyncRefreshSupersedesSubscription(t *testing.T) {
	feed := newScriptedFeed()
	s := NewProductSyncService(feed, logger.NewNopLogger())
	defer s.Close()

	s.Start(context.Background())
	first := feed.next(t)
	first.end <- errors.New("boom")
	waitStatus(t, s, StatusFailed)

	s.Refresh()
	second := feed.next(t)

	st := s.State()
	assert.Equal(t, StatusLoading, st.Status)
	assert.True(t, st.IsLoading)
	assert.Empty(t, st.Error)

	s.Refresh()
	third := feed.next(t)
	assert.Error(t, second.ctx.Err(), "superseded subscription must be cancelled")
	assert.NoError(t, third.ctx.Err())

	// поздние данные отмененной подписки не обрабатываются
	second.emit <- products("stale")
	third.emit <- products("fresh")

	st = waitStatus(t, s, StatusPopulated)
	assert.Equal(t, []string{"fresh"}, productIDs(st.Products))

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, []string{"fresh"}, productIDs(s.State().Products))
}

func TestSyncPublishDropsStaleGeneration(t *testing.T) {
	feed := newScriptedFeed()
	s := NewProductSyncService(feed, logger.NewNopLogger())
	defer s.Close()

	s.Start(context.Background())
	feed.next(t)
	s.Refresh()
	feed.next(t)

	assert.False(t, s.publish(1, stateForEmission(products("old"))))
	assert.True(t, s.publish(2, stateForEmission(products("new"))))
	assert.Equal(t, []string{"new"}, productIDs(s.State().Products))
}

func TestSyncCancellationIsSilent(t *testing.T) {
	feed := newScriptedFeed()
	s := NewProductSyncService(feed, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	sub := feed.next(t)

	cancel()
	require.Eventually(t, func() bool { return sub.ctx.Err() != nil }, time.Second, 5*time.Millisecond)
	s.Close()

	st := s.State()
	assert.Equal(t, StatusLoading, st.Status)
	assert.Empty(t, st.Error)
}

func TestSyncSubscribe(t *testing.T) {
	feed := newScriptedFeed()
	s := NewProductSyncService(feed, logger.NewNopLogger())
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	states := s.Subscribe(ctx)
	assert.Equal(t, StatusIdle, (<-states).Status)

	s.Start(context.Background())
	sub := feed.next(t)
	sub.emit <- products("a", "b")

	require.Eventually(t, func() bool {
		select {
		case st := <-states:
			return st.Status == StatusPopulated && len(st.Products) == 2
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestSyncWithMemoryStorage(t *testing.T) {
	mem := storage.NewMemoryStorage()
	s := NewProductSyncService(mem, logger.NewNopLogger())
	defer s.Close()

	s.Start(context.Background())
	waitStatus(t, s, StatusFallback)

	draft := NewDraftService("sg", mem, nil, logger.NewNopLogger())
	fillDraft(draft)
	require.NoError(t, draft.Save(context.Background(), nil))

	st := waitStatus(t, s, StatusPopulated)
	require.Len(t, st.Products, 1)
	assert.Equal(t, "Labubu Halloween Keychain", st.Products[0].Title)
}

func TestSyncRefreshAfterClose(t *testing.T) {
	feed := newScriptedFeed()
	s := NewProductSyncService(feed, logger.NewNopLogger())
	s.Start(context.Background())
	feed.next(t)
	s.Close()

	s.Refresh()
	select {
	case <-feed.registered:
		t.Fatal("refresh after close must not subscribe")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestSyncRefreshAfterContextCancel(t *testing.T) {
	t.Run("Start with cancelled context stays idle", func(t *testing.T) {
		feed := newScriptedFeed()
		s := NewProductSyncService(feed, logger.NewNopLogger())
		defer s.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s.Start(ctx)

		st := s.State()
		assert.Equal(t, StatusIdle, st.Status)
		assert.False(t, st.IsLoading)
		assert.Empty(t, feed.registered)
	})

	t.Run("Refresh keeps the last state", func(t *testing.T) {
		feed := newScriptedFeed()
		s := NewProductSyncService(feed, logger.NewNopLogger())
		defer s.Close()

		ctx, cancel := context.WithCancel(context.Background())
		s.Start(ctx)
		sub := feed.next(t)
		sub.emit <- products("a")
		before := waitStatus(t, s, StatusPopulated)

		cancel()
		require.Eventually(t, func() bool { return sub.ctx.Err() != nil }, time.Second, 5*time.Millisecond)

		s.Refresh()
		assert.Equal(t, before, s.State())
		assert.Empty(t, feed.registered)
	})
}
