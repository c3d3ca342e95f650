package fsmkit

import (
	"maps"
)

// Update computes a new context value from the old one, used by To, Set and
// Step. Updates are plain functions, so any func(C) C literal works
// directly; Replace and Patch cover the common forms.
type Update[C any] func(old C) C

// Replace swaps the context wholesale for the given value.
func Replace[C any](v C) Update[C] {
	return func(C) C {
		return v
	}
}

// Patch shallow-merges delta over a copy of the old map context. Keys in
// delta win; the old map is never mutated.
func Patch[K comparable, V any](delta map[K]V) Update[map[K]V] {
	return func(old map[K]V) map[K]V {
		merged := make(map[K]V, len(old)+len(delta))
		maps.Copy(merged, old)
		maps.Copy(merged, delta)
		return merged
	}
}
