package hmmap

// Iterator is a forward cursor that spans every bucket in order,
// self-healing across concurrent mutation of the bucket it currently
// addresses. A zero Iterator is not valid; obtain one from Map's
// Begin, End or FindIter.
//
// Key/Value are read-only accessors; there is no SetValue, because an
// entry's value is immutable after publication.
//
// Iteration is single-pass: advancing one copy of an iterator does not
// keep another copy meaningful, since healing may reposition the cursor
// past entries removed mid-traversal.
type Iterator[K comparable, V any] struct {
	m      *Map[K, V]
	bucket int
	cur    cursor[K, V]
}

// Begin returns an iterator positioned at the first live entry of
// bucket 0, advancing through empty leading buckets, or at End if the
// map holds nothing.
func (m *Map[K, V]) Begin() *Iterator[K, V] {
	m.init()
	it := &Iterator[K, V]{m: m, bucket: 0, cur: newCursor[K, V](&m.buckets[0].head, m.reclaimer)}
	ls := it.cur.curr.Acquire(&m.buckets[0].head)
	assertUnmarkedHead(ls)
	if ls.ptr == nil {
		it.moveToNextBucket()
	}
	return it
}

// End returns the canonical past-the-end iterator; its bucket index
// saturates at the bucket count and it protects nothing.
func (m *Map[K, V]) End() *Iterator[K, V] {
	m.init()
	return &Iterator[K, V]{m: m, bucket: len(m.buckets)}
}

// FindIter is Find's iterator-returning form, for callers that want to
// chain into EraseIter or keep walking from the found position.
// Map.Find (value, bool) stays the idiomatic accessor for the common
// case.
func (m *Map[K, V]) FindIter(key K) *Iterator[K, V] {
	m.init()
	bucketIdx := m.bucketFor(key)
	cur := newCursor[K, V](&m.buckets[bucketIdx].head, m.reclaimer)
	if !m.find(key, bucketIdx, &cur, m.backoff()) {
		cur.release()
		return m.End()
	}
	return &Iterator[K, V]{m: m, bucket: bucketIdx, cur: cur}
}

// Done reports whether it has reached End. Equivalent to it.Equal(m.End()).
func (it *Iterator[K, V]) Done() bool {
	return it.bucket >= len(it.m.buckets)
}

// entry returns the protected entry, or nil for an End iterator, whose
// cursor never held any handles.
func (it *Iterator[K, V]) entry() *Entry[K, V] {
	if it.cur.curr == nil {
		return nil
	}
	return it.cur.curr.Get()
}

// Equal reports whether it and other address the same entry: two
// iterators compare equal iff their current entry pointers are
// identical. Two End iterators (both protecting nothing) are equal.
func (it *Iterator[K, V]) Equal(other *Iterator[K, V]) bool {
	return it.entry() == other.entry()
}

// Key returns the key the iterator currently addresses. Dereferencing
// End is a contract violation; it panics rather than returning a zero
// value.
func (it *Iterator[K, V]) Key() K {
	e := it.entry()
	if e == nil {
		panic("hmmap: dereference of end iterator")
	}
	return e.key
}

// Value returns the value the iterator currently addresses. See Key
// for the End-dereference panic.
func (it *Iterator[K, V]) Value() V {
	e := it.entry()
	if e == nil {
		panic("hmmap: dereference of end iterator")
	}
	return e.value
}

// Next advances the iterator by one position: it tries a lock-free
// single-step advance first, falling back to a healing find() when the
// current entry was concurrently marked for deletion, then crosses into
// the next bucket if the walk ran off the end of this one.
func (it *Iterator[K, V]) Next() {
	if it.Done() {
		panic("hmmap: Next called on end iterator")
	}
	curr := it.cur.curr.Get()
	observed := curr.next.Load()
	advanced := false
	if !observed.marked {
		next := it.m.reclaimer.NewHandle()
		if _, ok := next.AcquireIfEqual(&curr.next, observed); ok {
			it.cur.prev = &curr.next
			it.cur.save.Release()
			it.cur.save = it.cur.curr
			it.cur.curr = next
			it.cur.next = observed
			advanced = true
		} else {
			next.Release()
		}
	}
	if !advanced {
		// curr is being removed (or its successor link just changed);
		// find both helps complete the removal and repositions the
		// cursor at the first live key >= curr's.
		it.m.find(curr.key, it.bucket, &it.cur, it.m.backoff())
	}
	if it.cur.curr.Get() == nil {
		it.moveToNextBucket()
	}
}

// moveToNextBucket releases the cursor's save handle and scans forward
// from the next bucket index for the first non-empty one, saturating at
// the bucket count (End) if every remaining bucket is empty.
func (it *Iterator[K, V]) moveToNextBucket() {
	it.cur.save.Release()
	it.cur.save = it.m.reclaimer.NewHandle()
	for it.bucket++; it.bucket < len(it.m.buckets); it.bucket++ {
		head := &it.m.buckets[it.bucket].head
		it.cur.prev = head
		ls := it.cur.curr.Acquire(head)
		assertUnmarkedHead(ls)
		if ls.ptr != nil {
			return
		}
	}
	it.bucket = len(it.m.buckets)
	it.cur.curr.Release()
}

// EraseIter removes the entry it currently addresses and returns it,
// now repositioned at the entry's live successor. it must not be End.
func (m *Map[K, V]) EraseIter(it *Iterator[K, V]) *Iterator[K, V] {
	if it.Done() {
		panic("hmmap: EraseIter called on end iterator")
	}
	curr := it.cur.curr.Get()
	for {
		next := curr.next.Load()
		if next.marked {
			break
		}
		if curr.next.CompareAndSwap(next, next.ptr, true) {
			break
		}
	}

	observed := curr.next.Load()
	succ := m.reclaimer.NewHandle()
	if _, ok := succ.AcquireIfEqual(&curr.next, observed); ok && it.cur.prev.CompareAndSwap(it.cur.next, observed.ptr, false) {
		it.cur.curr.Retire()
		it.cur.curr = succ
		// Re-read *prev so the cursor's expected value matches the link
		// the splice just installed; a racing mutation in between only
		// means a later CAS fails and repairs via find.
		it.cur.next = it.cur.prev.Load()
	} else {
		// A helper or another eraser interfered. Drop the successor
		// guard before re-finding, then let find repair the cursor at
		// curr's live successor rather than trust our stale prev/next.
		succ.Release()
		m.find(curr.key, it.bucket, &it.cur, m.backoff())
	}
	if it.cur.curr.Get() == nil {
		it.moveToNextBucket()
	}
	return it
}
