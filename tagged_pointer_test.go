package hmmap

import "testing"

func TestTaggedPointerZeroValueLoadsUnmarkedNil(t *testing.T) {
	var tp taggedPointer[int]
	ls := tp.Load()
	if ls.ptr != nil || ls.marked {
		t.Fatalf("zero taggedPointer loaded (%v, %v), want (nil, false)", ls.ptr, ls.marked)
	}
}

func TestTaggedPointerCASRequiresExactState(t *testing.T) {
	n := new(int)
	tp := newTaggedPointer(n)

	stale := tp.Load()
	if !tp.CompareAndSwap(stale, n, true) {
		t.Fatal("CAS against the freshly loaded state should succeed")
	}
	if tp.CompareAndSwap(stale, nil, false) {
		t.Fatal("CAS against a stale, already-replaced state must fail")
	}

	ls := tp.Load()
	if ls.ptr != n || !ls.marked {
		t.Fatalf("state = (%v, %v), want (%v, true)", ls.ptr, ls.marked, n)
	}
}

func TestTaggedPointerMarkAndUnlinkSequence(t *testing.T) {
	a, b := new(int), new(int)
	prev := newTaggedPointer(a)
	link := newTaggedPointer(b)

	// logical delete: mark the successor link.
	obs := link.Load()
	if !link.CompareAndSwap(obs, obs.ptr, true) {
		t.Fatal("marking CAS should succeed")
	}
	// physical unlink: splice prev past the marked owner.
	p := prev.Load()
	if !prev.CompareAndSwap(p, link.Load().ptr, false) {
		t.Fatal("unlink CAS should succeed")
	}
	if got := prev.Load(); got.ptr != b || got.marked {
		t.Fatalf("after unlink prev = (%v, %v), want (%v, false)", got.ptr, got.marked, b)
	}
}
