package hmmap

import (
	"testing"

	"github.com/go-quicktest/qt"
)

func TestCursorSaveNilIffPrevIsBucketHead(t *testing.T) {
	m := New[int, string](WithBuckets[int, string](4))
	m.Emplace(1, "a")
	m.Emplace(5, "b")

	bucketIdx := m.bucketFor(1)
	cur := newCursor[int, string](&m.buckets[bucketIdx].head, m.reclaimer)
	defer cur.release()

	found := m.find(1, bucketIdx, &cur, NoBackoff{})
	qt.Assert(t, qt.IsTrue(found))
	qt.Check(t, qt.Equals(cur.prev, &m.buckets[bucketIdx].head))
	qt.Check(t, qt.IsNil(cur.save.Get()))
}

func TestCursorSaveProtectsPredecessorMidList(t *testing.T) {
	m := New[int, string](WithBuckets[int, string](1))
	m.Emplace(1, "a")
	m.Emplace(5, "b")

	bucketIdx := m.bucketFor(5)
	cur := newCursor[int, string](&m.buckets[bucketIdx].head, m.reclaimer)
	defer cur.release()

	found := m.find(5, bucketIdx, &cur, NoBackoff{})
	qt.Assert(t, qt.IsTrue(found))
	qt.Check(t, qt.Not(qt.Equals(cur.prev, &m.buckets[bucketIdx].head)))
	qt.Check(t, qt.IsNotNil(cur.save.Get()))
	qt.Check(t, qt.Equals(cur.save.Get().key, 1))
}

func TestCursorReleaseIsIdempotent(t *testing.T) {
	m := New[int, string](WithBuckets[int, string](4))
	m.Emplace(1, "a")

	bucketIdx := m.bucketFor(1)
	cur := newCursor[int, string](&m.buckets[bucketIdx].head, m.reclaimer)
	m.find(1, bucketIdx, &cur, NoBackoff{})

	cur.release()
	cur.release()
}
