package hmmap

import "unsafe"

// HashFunc computes a hash for a key given a per-map seed. Hashing is a
// capability the map consumes, not something it implements: the kernel
// only ever uses it to pick a bucket.
//
// Determinism obligation: HashFunc must return the same value for the
// same key for the entire lifetime of one Map. A non-deterministic hash
// silently breaks the per-bucket ordering and uniqueness invariants;
// this package does not and cannot detect that at runtime.
type HashFunc[K comparable] func(key K, seed uintptr) uintptr

// defaultHasher obtains Go's own runtime hash function for K by reading
// the Hasher field off the runtime type descriptor for map[K]struct{}.
// This avoids writing (and maintaining) a hash function per concrete
// key type ourselves, and it is guaranteed to exist for every K
// accepted by the comparable constraint, since the Go runtime must
// already hash K to implement builtin maps over it.
//
// This relies on Go's internal type representation and should be
// re-verified on each Go version upgrade.
func defaultHasher[K comparable]() HashFunc[K] {
	var m map[K]struct{}
	mt := iTypeOf(m).mapType()
	hasher := mt.Hasher
	return func(key K, seed uintptr) uintptr {
		return hasher(noescape(unsafe.Pointer(&key)), seed)
	}
}

// The following mirrors just enough of the runtime's internal abi.Type
// layout to reach MapType.Hasher.

type iTFlag uint8
type iKind uint8
type iNameOff int32
type iTypeOff int32

type iType struct {
	size       uintptr
	ptrBytes   uintptr
	hash       uint32
	tFlag      iTFlag
	align      uint8
	fieldAlign uint8
	kind       iKind
	equal      func(unsafe.Pointer, unsafe.Pointer) bool
	gcData     *byte
	str        iNameOff
	ptrToThis  iTypeOff
}

func (t *iType) mapType() *iMapType {
	return (*iMapType)(unsafe.Pointer(t))
}

type iMapType struct {
	iType
	Key    *iType
	Elem   *iType
	Group  *iType
	Hasher func(unsafe.Pointer, uintptr) uintptr
}

type iEmptyInterface struct {
	Type *iType
	Data unsafe.Pointer
}

func iTypeOf(a any) *iType {
	eface := *(*iEmptyInterface)(unsafe.Pointer(&a))
	return (*iType)(noescape(unsafe.Pointer(eface.Type)))
}

// noescape hides a pointer from escape analysis.
//
//go:nosplit
func noescape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0) //nolint:staticcheck
}
