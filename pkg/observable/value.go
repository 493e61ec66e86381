// Package observable содержит контейнер состояния с одним писателем и многими читателями.
//
// Value хранит текущее значение и рассылает его подписчикам. Подписчик всегда получает
// последнее значение: если он не успел прочитать предыдущее, оно заменяется новым.
package observable

import (
	"context"
	"sync"
)

// Value - наблюдаемое значение. Писать в него должен один владелец,
// читать и подписываться может кто угодно
type Value[T any] struct {
	mu      sync.RWMutex
	current T
	subs    map[int]chan T
	nextID  int
}

// New создает наблюдаемое значение с начальным состоянием
func New[T any](initial T) *Value[T] {
	return &Value[T]{
		current: initial,
		subs:    make(map[int]chan T),
	}
}

// Get возвращает текущее значение
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current
}

// Set устанавливает новое значение и уведомляет подписчиков
func (v *Value[T]) Set(value T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = value
	for _, ch := range v.subs {
		offer(ch, value)
	}
}

// Update атомарно применяет fn к текущему значению
func (v *Value[T]) Update(fn func(T) T) T {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = fn(v.current)
	for _, ch := range v.subs {
		offer(ch, v.current)
	}
	return v.current
}

// UpdateIf применяет fn и публикует результат, только если fn вернула true.
// При false значение и подписчики не затрагиваются
func (v *Value[T]) UpdateIf(fn func(T) (T, bool)) (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	next, changed := fn(v.current)
	if !changed {
		return v.current, false
	}
	v.current = next
	for _, ch := range v.subs {
		offer(ch, v.current)
	}
	return v.current, true
}

// Subscribe возвращает канал, в который сразу приходит текущее значение,
// а затем каждое следующее. Канал закрывается после отмены ctx
func (v *Value[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.subs[id] = ch
	ch <- v.current
	v.mu.Unlock()

	go func() {
		<-ctx.Done()
		v.mu.Lock()
		delete(v.subs, id)
		close(ch)
		v.mu.Unlock()
	}()

	return ch
}

// Subscribers возвращает количество активных подписчиков
func (v *Value[T]) Subscribers() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.subs)
}

// offer кладет значение в канал ёмкостью 1, вытесняя непрочитанное.
// Вызывается под блокировкой записи, поэтому конкурирующих отправителей нет
func offer[T any](ch chan T, value T) {
	select {
	case <-ch:
	default:
	}
	ch <- value
}
