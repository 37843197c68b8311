package observable

import "sync"

// Value holds a single value and notifies subscribers whenever it is replaced.
// Subscribers run synchronously inside Set, on the caller's goroutine.
type Value[T any] struct {
	mutex  sync.RWMutex
	value  T
	nextID int
	subs   map[int]func(T)
	order  []int
}

// NewValue creates a Value holding initial
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{
		value: initial,
		subs:  make(map[int]func(T)),
	}
}

// Get returns the current value
func (v *Value[T]) Get() T {
	v.mutex.RLock()
	defer v.mutex.RUnlock()
	return v.value
}

// Set replaces the value and notifies subscribers in subscription order
func (v *Value[T]) Set(value T) {
	v.mutex.Lock()
	v.value = value
	subs := make([]func(T), 0, len(v.order))
	for _, id := range v.order {
		subs = append(subs, v.subs[id])
	}
	v.mutex.Unlock()

	for _, fn := range subs {
		fn(value)
	}
}

// Subscribe registers fn for change notifications.
// The returned function removes the subscription; calling it twice is harmless.
func (v *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	v.mutex.Lock()
	defer v.mutex.Unlock()

	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	v.order = append(v.order, id)

	return func() {
		v.mutex.Lock()
		defer v.mutex.Unlock()
		if _, ok := v.subs[id]; !ok {
			return
		}
		delete(v.subs, id)
		for i, existing := range v.order {
			if existing == id {
				v.order = append(v.order[:i], v.order[i+1:]...)
				break
			}
		}
	}
}
