package hmmap

import "testing"

func TestSpinBackoffEventuallyReturns(t *testing.T) {
	b := NewSpinBackoff()
	for i := 0; i < 200; i++ {
		b.Backoff()
	}
}

func TestNoBackoffIsNoop(t *testing.T) {
	var b NoBackoff
	b.Backoff()
}

func TestWithBackoffOverrideIsUsed(t *testing.T) {
	calls, made := 0, 0
	m := New[int, string](
		WithBuckets[int, string](1),
		WithBackoff[int, string](func() Backoff {
			made++
			return countingBackoff{&calls}
		}),
	)
	for i := 0; i < 8; i++ {
		m.Emplace(i, "v")
	}
	// Uncontended inserts never fail a CAS, so Backoff itself is never
	// invoked; the override factory is still called once per operation.
	if made != 8 {
		t.Fatalf("backoff factory called %d times for 8 inserts, want 8", made)
	}
	_ = calls
}

type countingBackoff struct{ n *int }

func (c countingBackoff) Backoff() { *c.n++ }
