package hmmap

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// hazardScanBatch is the retire-list length at which a HazardReclaimer
// sweeps its slot registry for nodes that are no longer protected.
const hazardScanBatch = 64

// hazardSlot is one entry in the reclaimer's registry: a single
// published protected pointer plus an active flag used to hand the slot
// back out once its owning Handle is done with it.
type hazardSlot[T any] struct {
	active    atomic.Bool
	protected atomic.Pointer[T]
}

// HazardReclaimer is the default Reclaimer: a classic hazard-pointer
// scheme. Each Handle owns one slot from a growable registry; Retire
// batches unlinked nodes and only drops Go's last reference to one once
// a sweep finds no slot still protecting it, at which point the garbage
// collector is free to reclaim it.
type HazardReclaimer[T any] struct {
	slots atomic.Pointer[[]*hazardSlot[T]]
	grow  sync.Mutex

	retireMu sync.Mutex
	retired  []*T
}

// NewHazardReclaimer constructs an empty hazard-pointer registry. The
// zero value is also usable directly; NewHazardReclaimer exists for
// symmetry with the rest of the package's New* constructors.
func NewHazardReclaimer[T any]() *HazardReclaimer[T] {
	return &HazardReclaimer[T]{}
}

func (r *HazardReclaimer[T]) loadSlots() []*hazardSlot[T] {
	if p := r.slots.Load(); p != nil {
		return *p
	}
	return nil
}

// acquireSlot returns an inactive slot, reusing one from the registry
// when possible and growing the registry (copy-on-grow published by
// atomic pointer swap) only when every existing slot is taken.
func (r *HazardReclaimer[T]) acquireSlot() *hazardSlot[T] {
	for {
		slots := r.loadSlots()
		for _, s := range slots {
			if s.active.CompareAndSwap(false, true) {
				return s
			}
		}
		r.growSlots(len(slots))
	}
}

func (r *HazardReclaimer[T]) growSlots(observedLen int) {
	r.grow.Lock()
	defer r.grow.Unlock()
	slots := r.loadSlots()
	if len(slots) != observedLen {
		// someone else grew the registry already; let the caller retry.
		return
	}
	next := make([]*hazardSlot[T], len(slots), len(slots)+1)
	copy(next, slots)
	fresh := &hazardSlot[T]{}
	next = append(next, fresh)
	r.slots.Store(&next)
}

// NewHandle implements Reclaimer[T].
func (r *HazardReclaimer[T]) NewHandle() Handle[T] {
	slot := r.acquireSlot()
	h := &hazardHandle[T]{reclaimer: r, slot: slot}
	runtime.SetFinalizer(h, (*hazardHandle[T]).finalize)
	return h
}

func (r *HazardReclaimer[T]) retire(node *T) {
	r.retireMu.Lock()
	r.retired = append(r.retired, node)
	var batch []*T
	if len(r.retired) >= hazardScanBatch {
		batch = r.retired
		r.retired = nil
	}
	r.retireMu.Unlock()
	if batch != nil {
		r.sweep(batch)
	}
}

// sweep drops HazardReclaimer's own reference to every node in batch
// that no active slot currently protects, letting Go's collector do the
// actual freeing. Nodes still protected are carried over to the next
// retire list so a later sweep can retry them.
func (r *HazardReclaimer[T]) sweep(batch []*T) {
	hazarded := make(map[*T]struct{}, len(batch))
	for _, s := range r.loadSlots() {
		if p := s.protected.Load(); p != nil {
			hazarded[p] = struct{}{}
		}
	}

	var survivors []*T
	for _, n := range batch {
		if _, stillProtected := hazarded[n]; stillProtected {
			survivors = append(survivors, n)
		}
	}
	if len(survivors) == 0 {
		return
	}
	r.retireMu.Lock()
	r.retired = append(r.retired, survivors...)
	r.retireMu.Unlock()
}

type hazardHandle[T any] struct {
	reclaimer *HazardReclaimer[T]
	slot      *hazardSlot[T]
	current   *linkState[T]
}

func (h *hazardHandle[T]) Acquire(src *taggedPointer[T]) *linkState[T] {
	for {
		ls := src.Load()
		h.slot.protected.Store(ls.ptr)
		ls2 := src.Load()
		if ls2.ptr == ls.ptr {
			h.current = ls2
			return ls2
		}
	}
}

func (h *hazardHandle[T]) AcquireIfEqual(src *taggedPointer[T], expected *linkState[T]) (*T, bool) {
	if src.Load() != expected {
		return nil, false
	}
	h.slot.protected.Store(expected.ptr)
	if src.Load() != expected {
		h.slot.protected.Store(nil)
		return nil, false
	}
	h.current = expected
	return expected.ptr, true
}

func (h *hazardHandle[T]) Get() *T {
	if h.current == nil {
		return nil
	}
	return h.current.ptr
}

func (h *hazardHandle[T]) Release() {
	h.current = nil
	h.slot.protected.Store(nil)
}

func (h *hazardHandle[T]) Reset() {
	h.Release()
}

func (h *hazardHandle[T]) Retire() {
	if node := h.Get(); node != nil {
		h.reclaimer.retire(node)
	}
	h.Release()
}

// Clone returns a new handle independently protecting whatever this
// one currently protects.
func (h *hazardHandle[T]) Clone() Handle[T] {
	clone := &hazardHandle[T]{reclaimer: h.reclaimer, slot: h.reclaimer.acquireSlot()}
	if h.current != nil {
		clone.slot.protected.Store(h.current.ptr)
		clone.current = h.current
	}
	runtime.SetFinalizer(clone, (*hazardHandle[T]).finalize)
	return clone
}

// finalize runs once a Handle becomes unreachable, whether or not it was
// Released first: Release only clears the published pointer, and this
// is the only place a slot's active flag is cleared. It returns the
// slot to the registry so long-lived maps don't accumulate one
// permanently active slot per discarded handle.
func (h *hazardHandle[T]) finalize() {
	h.slot.protected.Store(nil)
	h.slot.active.Store(false)
}
