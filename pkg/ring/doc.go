// Package ring provides a generic, thread-safe bounded FIFO buffer.
//
// The buffer holds up to a fixed number of items. Pushing into a full buffer
// evicts the oldest item, so the buffer always contains the most recent
// pushes in insertion order. The newest item can be taken back with Pop,
// which makes the buffer usable as a bounded undo stack.
//
// # Usage
//
// Create a buffer with a fixed capacity:
//
//	b := ring.New[string](10)
//
// Basic operations:
//
//	b.Push("a")
//	b.Push("b")
//
//	// Oldest-first view of the contents
//	items := b.Items() // ["a", "b"]
//
//	// Take the newest item back
//	v, ok := b.Pop() // "b", true
//
//	// Evicted items are reported by Push
//	evicted, ok := b.Push("c")
//
// # Thread Safety
//
// All operations are safe for concurrent use. Items returns a copy, so the
// caller can iterate without holding up writers.
package ring
