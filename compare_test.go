package hmmap

import "testing"

type point struct{ x, y int }

func comparePoints(a, b point) int {
	if c := a.x - b.x; c != 0 {
		return c
	}
	return a.y - b.y
}

func TestNewWithCompareStructKeys(t *testing.T) {
	m := NewWithCompare[point, string](comparePoints, WithBuckets[point, string](4))

	pts := []point{{2, 1}, {1, 3}, {1, 2}, {3, 0}}
	for _, p := range pts {
		if !m.Emplace(p, "v") {
			t.Fatalf("Emplace(%v) should have inserted", p)
		}
	}
	for _, p := range pts {
		if !m.Contains(p) {
			t.Errorf("Contains(%v) = false, want true", p)
		}
	}
	if m.Contains(point{9, 9}) {
		t.Error("Contains of an absent struct key should be false")
	}
	if !m.Erase(point{1, 2}) {
		t.Fatal("Erase of a present struct key should return true")
	}
	if m.Contains(point{1, 2}) {
		t.Error("erased struct key should be gone")
	}
}

func TestWithCompareReversesListOrder(t *testing.T) {
	m := New[int, int](
		WithBuckets[int, int](1),
		WithCompare[int, int](func(a, b int) int { return b - a }),
	)
	for _, k := range []int{2, 5, 1, 4, 3} {
		m.Emplace(k, k)
	}

	got := m.DebugSnapshot()[0]
	want := []int{5, 4, 3, 2, 1}
	if len(got) != len(want) {
		t.Fatalf("bucket list = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bucket list = %v, want %v", got, want)
		}
	}
}

func TestNewWithCompareNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewWithCompare(nil) should panic")
		}
	}()
	NewWithCompare[point, int](nil)
}

func TestZeroValueMapWithUnorderedKeyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("a zero Map over an unordered key type should panic on first use")
		}
	}()
	var m Map[[2]int, int]
	m.Contains([2]int{1, 2})
}

func TestDefaultCompareMatchesBuiltinOrder(t *testing.T) {
	type myInt int32

	cases := []struct {
		a, b myInt
		want int
	}{
		{1, 2, -1},
		{2, 1, 1},
		{3, 3, 0},
		{-5, 5, -1},
	}
	compare := defaultCompare[myInt]()
	for _, c := range cases {
		got := compare(c.a, c.b)
		if (got < 0) != (c.want < 0) || (got > 0) != (c.want > 0) || (got == 0) != (c.want == 0) {
			t.Errorf("compare(%d, %d) = %d, want sign of %d", c.a, c.b, got, c.want)
		}
	}
}
