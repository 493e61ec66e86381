package observable

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_GetSet(t *testing.T) {
	v := New(1)
	assert.Equal(t, 1, v.Get())

	v.Set(2)
	assert.Equal(t, 2, v.Get())

	got := v.Update(func(cur int) int { return cur * 10 })
	assert.Equal(t, 20, got)
	assert.Equal(t, 20, v.Get())
}

func TestValue_Subscribe(t *testing.T) {
	t.Run("Current value delivered first", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		v := New("initial")
		ch := v.Subscribe(ctx)

		select {
		case got := <-ch:
			assert.Equal(t, "initial", got)
		case <-time.After(time.Second):
			t.Fatal("no initial value")
		}
	})

	t.Run("Slow subscriber sees only the latest value", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		v := New(0)
		ch := v.Subscribe(ctx)
		for i := 1; i <= 5; i++ {
			v.Set(i)
		}

		got := <-ch
		assert.Equal(t, 5, got)
		select {
		case extra := <-ch:
			t.Fatalf("unexpected extra value %d", extra)
		default:
		}
	})

	t.Run("Channel closed after cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		v := New(0)
		ch := v.Subscribe(ctx)
		<-ch
		cancel()

		require.Eventually(t, func() bool {
			select {
			case _, ok := <-ch:
				return !ok
			default:
				return false
			}
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, 0, v.Subscribers())
	})
}

func TestValue_UpdateIf(t *testing.T) {
	v := New(5)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := v.Subscribe(ctx)
	require.Equal(t, 5, <-ch)

	got, changed := v.UpdateIf(func(cur int) (int, bool) { return cur + 1, false })
	assert.False(t, changed)
	assert.Equal(t, 5, got)
	assert.Equal(t, 5, v.Get())
	select {
	case x := <-ch:
		t.Fatalf("unexpected value %d", x)
	case <-time.After(20 * time.Millisecond):
	}

	got, changed = v.UpdateIf(func(cur int) (int, bool) { return cur + 1, true })
	assert.True(t, changed)
	assert.Equal(t, 6, got)
	assert.Equal(t, 6, <-ch)
}
