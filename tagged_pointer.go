package hmmap

import "sync/atomic"

// linkState is the value type carried by a taggedPointer: a successor
// pointer paired with its deletion mark. It is always replaced wholesale
// (never mutated in place), so two linkState values are the "same marked
// pointer" in the Harris–Michael sense iff they are the same linkState
// object — exactly the comparison a CAS needs.
//
// The classic formulation packs the mark into the pointer's low bit. Go
// rules that out: the garbage collector must always see a real,
// unmodified *T to keep an object reachable, and a *T with a stolen low
// bit does not address the start of an object. One level of indirection
// (atomic.Pointer[linkState[T]]) buys the same single-CAS-over-both-fields
// contract without lying to the GC.
type linkState[T any] struct {
	ptr    *T
	marked bool
}

// taggedPointer is an atomic (successor, mark) pair loaded and CASed as
// one unit. The zero value is a valid, unmarked nil pointer.
type taggedPointer[T any] struct {
	state atomic.Pointer[linkState[T]]
}

func newTaggedPointer[T any](ptr *T) *taggedPointer[T] {
	tp := &taggedPointer[T]{}
	tp.state.Store(&linkState[T]{ptr: ptr})
	return tp
}

// Load returns the current (successor, mark) snapshot. The returned
// *linkState[T] is safe to hold and later pass as `expected` to
// CompareAndSwap or to a Handle's AcquireIfEqual.
func (tp *taggedPointer[T]) Load() *linkState[T] {
	s := tp.state.Load()
	if s == nil {
		// zero-value taggedPointer: synthesize the canonical empty state.
		empty := &linkState[T]{}
		tp.state.CompareAndSwap(nil, empty)
		return tp.state.Load()
	}
	return s
}

// CompareAndSwap atomically replaces the pointer/mark pair, succeeding
// only if the current value is exactly `expected` (the same *linkState
// object previously returned by Load). Go's atomic.Pointer operations
// are sequentially consistent, which subsumes the release-CAS /
// acquire-load pairing the list algorithm needs: a walker that observes
// an entry through Load sees that entry's key, value and initial next
// fully initialized.
func (tp *taggedPointer[T]) CompareAndSwap(expected *linkState[T], newPtr *T, newMark bool) bool {
	return tp.state.CompareAndSwap(expected, &linkState[T]{ptr: newPtr, marked: newMark})
}
