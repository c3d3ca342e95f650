package ring

import (
	"sync"
)

// Buffer is a thread-safe bounded FIFO buffer.
// When the buffer reaches its capacity, the oldest item is evicted to make
// room for the newest one. The newest item can be taken back with Pop.
type Buffer[T any] struct {
	items    []T
	capacity int
	mu       sync.Mutex
}

// New creates a new buffer with the specified capacity.
// The capacity must be positive, otherwise it panics.
func New[T any](capacity int) *Buffer[T] {
	if capacity <= 0 {
		panic("ring buffer capacity must be positive")
	}
	return &Buffer[T]{
		items:    make([]T, 0, capacity),
		capacity: capacity,
	}
}

// Push appends a value as the newest item.
// If the buffer is full, the oldest item is evicted and returned together
// with true; otherwise the zero value and false.
func (b *Buffer[T]) Push(v T) (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.items) == b.capacity {
		evicted := b.items[0]
		copy(b.items, b.items[1:])
		b.items[len(b.items)-1] = v
		return evicted, true
	}

	b.items = append(b.items, v)

	var zero T
	return zero, false
}

// Pop removes and returns the newest item.
// Returns the zero value and false when the buffer is empty.
func (b *Buffer[T]) Pop() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.items) == 0 {
		var zero T
		return zero, false
	}

	last := len(b.items) - 1
	v := b.items[last]

	// Zero the vacated slot so the buffer does not pin the popped value
	var zero T
	b.items[last] = zero
	b.items = b.items[:last]

	return v, true
}

// Items returns a copy of the buffered items, oldest first.
func (b *Buffer[T]) Items() []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]T, len(b.items))
	copy(out, b.items)
	return out
}

// Len returns the number of buffered items.
func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Cap returns the buffer capacity.
func (b *Buffer[T]) Cap() int {
	return b.capacity
}

// Clear removes all buffered items, keeping the capacity.
func (b *Buffer[T]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	var zero T
	for i := range b.items {
		b.items[i] = zero
	}
	b.items = b.items[:0]
}
