// Package verify provides debug/test-only concurrent invariant checks
// for hmmap. It is internal because it is infrastructure for this
// module's own test suite, not part of the public API surface.
package verify

import (
	"cmp"
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Buckets checks two invariants against buckets, a point-in-time
// snapshot such as Map.DebugSnapshot's result: adjacent live keys in a
// bucket are strictly increasing, and (as a consequence) a key appears
// at most once per bucket. One goroutine scans each bucket
// independently via errgroup.Group — buckets never interact and the
// check is embarrassingly parallel; errgroup returns the first
// failure, and the other scans still run to completion.
//
// Uniqueness across the whole map follows from per-bucket strict
// ordering plus hash determinism: a key can only ever land in one
// bucket, so duplicate detection never needs to compare across bucket
// boundaries.
func Buckets[K cmp.Ordered](ctx context.Context, buckets [][]K) error {
	g, _ := errgroup.WithContext(ctx)
	for i, keys := range buckets {
		i, keys := i, keys
		g.Go(func() error {
			for j := 1; j < len(keys); j++ {
				if !(keys[j-1] < keys[j]) {
					return fmt.Errorf("bucket %d: keys not strictly increasing at index %d: %v then %v", i, j, keys[j-1], keys[j])
				}
			}
			return nil
		})
	}
	return g.Wait()
}
