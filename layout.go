package hmmap

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLineSize is used to pad hot structures to avoid false sharing
// between unrelated buckets. Detected via golang.org/x/sys rather than
// hard-coded.
const CacheLineSize = unsafe.Sizeof(cpu.CacheLinePad{})

// defaultBuckets is used when a Map is used at its zero value, i.e.
// without a call to New.
const defaultBuckets = 32

// bucketHead is one cache-line-padded bucket slot: a bucket's tagged
// atomic head pointer plus trailing padding so that CAS traffic on one
// bucket never bounces a cache line shared with its neighbor in the
// Map.buckets slice. Buckets never interact logically; the padding
// makes that true physically too.
//
// The pad length is computed from the pointer word size rather than
// unsafe.Sizeof(head): head is always exactly one pointer word
// regardless of K and V, and a Sizeof over a type-parameter-dependent
// struct is not a constant expression.
type bucketHead[K comparable, V any] struct {
	head taggedPointer[Entry[K, V]]

	//lint:ignore U1000 prevents false sharing
	pad [(CacheLineSize - unsafe.Sizeof(uintptr(0))%CacheLineSize) % CacheLineSize]byte
}
