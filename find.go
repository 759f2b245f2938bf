package hmmap

// find is the Harris-Michael list kernel. It walks the sorted singly
// linked list of one bucket starting from cur.prev, helping unlink any
// marked (logically deleted) entry it encounters along the way, until
// it either lands on an entry whose key equals key (returns true,
// cur.curr protects that entry) or on the first entry whose key sorts
// after key (returns false, cur.curr protects that entry), or the end
// of the list (returns false, cur.curr protects nil).
//
// On return, cur.prev/cur.save always describe the true predecessor of
// the returned position and cur.curr/cur.next describe the position
// itself, so callers can immediately attempt an insert or delete CAS
// against *cur.prev without re-walking.
func (m *Map[K, V]) find(key K, bucketIdx int, cur *cursor[K, V], backoff Backoff) bool {
	head := &m.buckets[bucketIdx].head

	// anchor/anchorGuard are the restart position: either the caller's
	// original predecessor (while it stays unmarked) or, once that
	// predecessor is found to be marked, the bucket head for the rest
	// of this call. anchorGuard is a clone of cur.save kept strictly
	// apart from the curr/save rotation below, so a failed attempt deep
	// in the list can always fall back to a position it still protects.
	// Restarting mid-list without that protection would be unsound.
	anchor := cur.prev
	anchorGuard := cur.save.Clone()
	defer func() { anchorGuard.Release() }()

retry:
	for {
		cur.prev = anchor
		cur.save.Release()
		cur.save = anchorGuard.Clone()

		ls := cur.prev.Load()
		if cur.prev == head {
			assertUnmarkedHead(ls)
		}
		if ls.marked {
			// The anchor's owner is itself logically deleted; the only
			// safe restart position left is the bucket head.
			anchor = head
			anchorGuard.Release()
			anchorGuard = m.reclaimer.NewHandle()
			continue retry
		}
		cur.next = ls

		for {
			ptr, ok := cur.curr.AcquireIfEqual(cur.prev, cur.next)
			if !ok {
				continue retry
			}
			if ptr == nil {
				assertCursorConsistent(head, cur)
				return false
			}

			succ := ptr.next.Load()
			if succ.marked {
				// Help unlink: splice the successor directly into
				// *prev, then retire the marked entry. Does not
				// advance prev — the helping walker re-examines the
				// same position with the new successor. Leaving a
				// marked entry behind and stepping past it is not an
				// option; every walker that sees one must unlink it.
				if !cur.prev.CompareAndSwap(cur.next, succ.ptr, false) {
					backoff.Backoff()
					continue retry
				}
				cur.curr.Retire()
				cur.next = cur.prev.Load()
				continue
			}

			if cur.prev.Load().ptr != ptr {
				// Another goroutine spliced us out from under prev.
				continue retry
			}

			switch c := m.compare(ptr.key, key); {
			case c == 0:
				assertCursorConsistent(head, cur)
				return true
			case c > 0:
				assertCursorConsistent(head, cur)
				return false
			default:
				cur.prev = &ptr.next
				cur.curr, cur.save = cur.save, cur.curr
				cur.next = succ
			}
		}
	}
}
