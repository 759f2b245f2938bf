//go:build hmdebug

package hmmap

// assertUnmarkedHead checks that a bucket head is never observed with
// its deletion mark set: buckets are not entries and cannot be
// logically deleted, so a marked head means a CAS targeted the wrong
// slot. Compiled in only under -tags hmdebug.
func assertUnmarkedHead[T any](ls *linkState[T]) {
	if ls.marked {
		panic("hmmap: bucket head observed with deletion mark set")
	}
}

// assertCursorConsistent checks the cursor invariant: save protects the
// entry owning *prev, or save protects nothing iff prev is the bucket
// head itself (never mid-list).
func assertCursorConsistent[K comparable, V any](head *taggedPointer[Entry[K, V]], cur *cursor[K, V]) {
	isHead := cur.prev == head
	savesNothing := cur.save.Get() == nil
	if isHead != savesNothing {
		panic("hmmap: cursor.save/prev inconsistency")
	}
}
