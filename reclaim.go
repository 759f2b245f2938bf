package hmmap

// Reclaimer is the safe-memory-reclamation collaborator of the list
// kernel. The kernel (find.go) and the map/iterator operations never
// free a node directly; they hand it to a Handle's Retire and trust the
// Reclaimer to defer the node's actual collection until no Handle
// protects it anymore.
//
// A conforming Reclaimer must guarantee: once NewHandle().Acquire(src)
// (or AcquireIfEqual) returns a non-nil pointer, that pointer remains
// safe to dereference until the Handle is Released or Reset, even if a
// concurrent goroutine unlinks and retires the node in the meantime.
//
// Map[K, V] takes its Reclaimer by interface so that callers may
// substitute any conforming scheme (hazard pointers, epoch-based
// reclamation, reference counting); hazard.go supplies the default.
type Reclaimer[T any] interface {
	// NewHandle returns a fresh, unprotected Handle bound to this
	// Reclaimer. Handles are cheap and are meant to be created and
	// discarded liberally by cursors and iterators; implementations
	// should pool the underlying protection slot.
	NewHandle() Handle[T]
}

// Handle is a scoped, single-owner protection token: while it protects
// a pointer, the Reclaimer will not recycle that pointer's storage.
type Handle[T any] interface {
	// Acquire loads src, publishes protection for the observed
	// pointee, and revalidates (reloads src and checks it still
	// points at the same node) before returning. It must not hand back a
	// pointer that might already be retired.
	Acquire(src *taggedPointer[T]) *linkState[T]

	// AcquireIfEqual protects expected.ptr only if src currently
	// still holds exactly `expected`; otherwise it returns ok=false
	// and protects nothing. Required by the find kernel, which must
	// publish protection for a pointer it has already observed
	// without racing a concurrent mutation of src.
	AcquireIfEqual(src *taggedPointer[T], expected *linkState[T]) (ptr *T, ok bool)

	// Get returns the pointer currently protected by this handle, or
	// nil if none.
	Get() *T

	// Release drops protection. The handle may be reused afterwards.
	Release()

	// Reset is an alias for Release; some call sites read more
	// clearly as "reset" than "release".
	Reset()

	// Retire hands the currently-protected node to the Reclaimer for
	// eventual reclamation, then releases this handle's protection of
	// it. Retire must only be called by the goroutine that just won
	// the CAS physically unlinking the node.
	Retire()

	// Clone returns a new, independent Handle protecting the same
	// pointer this one currently protects (or nothing, if this handle
	// protects nothing). The find kernel uses Clone to keep a restart
	// anchor alive across retries while the cursor's own curr/save
	// handles are reassigned underneath it.
	Clone() Handle[T]
}
