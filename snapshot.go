package fsmkit

import (
	"reflect"
	"sync"

	"github.com/mitchellh/copystructure"
)

// Snapshot is a detached capture of a machine's state name and context.
// Snapshots returned by Machine.Snapshot and Machine.History hold deep
// copies of the context, so mutating the machine afterwards never affects
// them, and vice versa. Contexts the default cloner cannot deep-copy pass
// through as plain value copies; see WithCloner.
type Snapshot[C any] struct {
	State   string
	Context C
}

// Cloner produces a detached copy of a context value. The machine uses it
// whenever a snapshot must not alias the live context: Snapshot, History,
// history pushes during To, and the copy Restore installs.
type Cloner[C any] func(C) C

// defaultClone deep-copies the context by walking its structure. Contexts
// holding channels, functions or unexported struct fields anywhere in their
// value graph are returned as plain value copies instead; callers who need
// deep copies of such contexts supply their own cloner via WithCloner.
func defaultClone[C any](data C) C {
	rv := reflect.ValueOf(&data).Elem()
	switch cloneModeOf(rv.Type()) {
	case cloneShared:
		return data
	case cloneInspect:
		if !valueCloneable(rv, make(map[visit]bool)) {
			return data
		}
	}
	copied, err := copystructure.Copy(data)
	if err != nil {
		return data
	}
	out, ok := copied.(C)
	if !ok {
		return data
	}
	return out
}

// cloneMode classifies how defaultClone treats a context type. Modes are
// ordered by severity so combining verdicts is a max.
type cloneMode int8

const (
	// cloneDeep marks types a structural copy reproduces faithfully.
	cloneDeep cloneMode = iota
	// cloneInspect marks types containing interfaces; the concrete values
	// behind them decide cloneability per call.
	cloneInspect
	// cloneShared marks types a structural copy would corrupt (channels,
	// functions, unexported struct fields); such contexts pass through as
	// plain value copies.
	cloneShared
)

var cloneModes sync.Map // reflect.Type -> cloneMode

func cloneModeOf(t reflect.Type) cloneMode {
	if m, ok := cloneModes.Load(t); ok {
		return m.(cloneMode)
	}
	m := walkCloneMode(t, make(map[reflect.Type]bool))
	cloneModes.Store(t, m)
	return m
}

// walkCloneMode computes the clone mode of t over every type reachable from
// it. visiting breaks type cycles; a revisited type contributes no verdict of
// its own because the walk that first reached it covers its fields.
func walkCloneMode(t reflect.Type, visiting map[reflect.Type]bool) cloneMode {
	if visiting[t] {
		return cloneDeep
	}
	visiting[t] = true

	switch t.Kind() {
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return cloneShared
	case reflect.Interface:
		return cloneInspect
	case reflect.Ptr, reflect.Slice, reflect.Array:
		return walkCloneMode(t.Elem(), visiting)
	case reflect.Map:
		return max(walkCloneMode(t.Key(), visiting), walkCloneMode(t.Elem(), visiting))
	case reflect.Struct:
		mode := cloneDeep
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				return cloneShared
			}
			mode = max(mode, walkCloneMode(f.Type, visiting))
			if mode == cloneShared {
				return cloneShared
			}
		}
		return mode
	default:
		return cloneDeep
	}
}

// visit keys a reference already walked by valueCloneable. len disambiguates
// slices sharing a backing array.
type visit struct {
	ptr uintptr
	typ reflect.Type
	len int
}

// valueCloneable reports whether every concrete value reachable from v,
// including values behind interfaces, survives a structural copy. seen breaks
// reference cycles.
func valueCloneable(v reflect.Value, seen map[visit]bool) bool {
	if !v.IsValid() {
		return true
	}
	switch cloneModeOf(v.Type()) {
	case cloneDeep:
		return true
	case cloneShared:
		return false
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return true
		}
		return valueCloneable(v.Elem(), seen)
	case reflect.Ptr:
		if v.IsNil() {
			return true
		}
		key := visit{ptr: v.Pointer(), typ: v.Type()}
		if seen[key] {
			return true
		}
		seen[key] = true
		return valueCloneable(v.Elem(), seen)
	case reflect.Map:
		if v.IsNil() {
			return true
		}
		key := visit{ptr: v.Pointer(), typ: v.Type()}
		if seen[key] {
			return true
		}
		seen[key] = true
		iter := v.MapRange()
		for iter.Next() {
			if !valueCloneable(iter.Key(), seen) || !valueCloneable(iter.Value(), seen) {
				return false
			}
		}
		return true
	case reflect.Slice:
		if v.IsNil() {
			return true
		}
		key := visit{ptr: v.Pointer(), typ: v.Type(), len: v.Len()}
		if seen[key] {
			return true
		}
		seen[key] = true
		for i := 0; i < v.Len(); i++ {
			if !valueCloneable(v.Index(i), seen) {
				return false
			}
		}
		return true
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if !valueCloneable(v.Index(i), seen) {
				return false
			}
		}
		return true
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if !valueCloneable(v.Field(i), seen) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
