// Package circularbuffer keeps the most recent N values pushed into it.
package circularbuffer

import "sync"

type CircularBuffer[T any] struct {
	values   []T
	position int
	full     bool
	mu       sync.Mutex
}

// New returns a buffer holding up to size values. Sizes below one are
// rounded up to one.
func New[T any](size int) *CircularBuffer[T] {
	if size < 1 {
		size = 1
	}

	return &CircularBuffer[T]{
		values: make([]T, size),
	}
}

// Push stores element, overwriting the oldest value once the buffer is full.
func (cb *CircularBuffer[T]) Push(element T) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.values[cb.position] = element
	cb.position++

	if cb.position >= len(cb.values) {
		cb.position = 0
		cb.full = true
	}
}

func (cb *CircularBuffer[T]) Len() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.full {
		return len(cb.values)
	}
	return cb.position
}

// Each calls fn for every stored value, oldest first, until fn returns false.
func (cb *CircularBuffer[T]) Each(fn func(T) bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.each(fn)
}

func (cb *CircularBuffer[T]) each(fn func(T) bool) {
	start, n := 0, cb.position
	if cb.full {
		start, n = cb.position, len(cb.values)
	}

	for i := 0; i < n; i++ {
		if !fn(cb.values[(start+i)%len(cb.values)]) {
			return
		}
	}
}

// Items copies the stored values, oldest first.
func (cb *CircularBuffer[T]) Items() []T {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	var out []T
	cb.each(func(v T) bool {
		out = append(out, v)
		return true
	})
	return out
}

// Find returns the newest value matching fn.
func (cb *CircularBuffer[T]) Find(fn func(T) bool) (T, bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	var (
		found T
		ok    bool
	)
	cb.each(func(v T) bool {
		if fn(v) {
			found, ok = v, true
		}
		return true
	})
	return found, ok
}
