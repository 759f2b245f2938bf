package hmmap

import (
	"cmp"
	"reflect"
	"unsafe"
)

// CompareFunc reports the order of two keys: negative if a sorts before
// b, zero if they are equal, positive if a sorts after b. Like hashing,
// key ordering is a capability the map consumes rather than implements.
//
// Total-order obligation: compare must be consistent with == (zero iff
// the keys are equal) and transitive for the entire lifetime of one
// Map. The behavior under an inconsistent comparison is undefined; this
// package does not detect it at runtime.
type CompareFunc[K comparable] func(a, b K) int

// defaultCompare derives a comparison for K from its underlying kind,
// covering every kind the built-in < operator orders. It backs
// zero-value Maps and New, neither of which receives an explicit
// CompareFunc; key types outside these kinds (structs, arrays,
// channels, pointers) have no derivable order, so the Map must be
// constructed with NewWithCompare instead.
//
// As with defaultHasher, the kind dispatch happens once; the returned
// closure does a single unsafe cast per call.
func defaultCompare[K comparable]() CompareFunc[K] {
	var zero K
	switch reflect.TypeOf(zero).Kind() {
	case reflect.Int:
		return castCompare[K, int]()
	case reflect.Int8:
		return castCompare[K, int8]()
	case reflect.Int16:
		return castCompare[K, int16]()
	case reflect.Int32:
		return castCompare[K, int32]()
	case reflect.Int64:
		return castCompare[K, int64]()
	case reflect.Uint:
		return castCompare[K, uint]()
	case reflect.Uint8:
		return castCompare[K, uint8]()
	case reflect.Uint16:
		return castCompare[K, uint16]()
	case reflect.Uint32:
		return castCompare[K, uint32]()
	case reflect.Uint64:
		return castCompare[K, uint64]()
	case reflect.Uintptr:
		return castCompare[K, uintptr]()
	case reflect.Float32:
		return castCompare[K, float32]()
	case reflect.Float64:
		return castCompare[K, float64]()
	case reflect.String:
		return castCompare[K, string]()
	default:
		panic("hmmap: key type " + reflect.TypeOf(zero).String() +
			" has no built-in ordering; construct the map with NewWithCompare")
	}
}

// castCompare compares two K values through their underlying ordered
// representation U. Sound because the caller dispatches on K's kind, so
// K and U share size and layout.
func castCompare[K comparable, U cmp.Ordered]() CompareFunc[K] {
	return func(a, b K) int {
		return cmp.Compare(*(*U)(unsafe.Pointer(&a)), *(*U)(unsafe.Pointer(&b)))
	}
}
