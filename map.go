package hmmap

import "cmp"

// Config holds the construction-time knobs for a Map. The zero Config,
// like the zero Map, is valid: every field falls back to a package
// default the first time it's needed.
type Config[K comparable, V any] struct {
	buckets   int
	hasher    HashFunc[K]
	compare   CompareFunc[K]
	backoff   func() Backoff
	reclaimer Reclaimer[Entry[K, V]]
}

// Option configures a Map at construction time. Options are only
// consumed by New/NewWithCompare; a Map's bucket count, hasher,
// comparison, backoff factory and reclaimer are fixed for its lifetime.
// There is no resizing.
type Option[K comparable, V any] func(*Config[K, V])

// WithBuckets sets the fixed number of independent sorted lists. Must
// be positive; the option panics otherwise. Defaults to defaultBuckets.
func WithBuckets[K comparable, V any](n int) Option[K, V] {
	return func(c *Config[K, V]) {
		if n <= 0 {
			panic("hmmap: bucket count must be positive")
		}
		c.buckets = n
	}
}

// WithHasher overrides the default runtime-derived hasher. The
// determinism obligation in HashFunc's doc comment applies.
func WithHasher[K comparable, V any](h HashFunc[K]) Option[K, V] {
	return func(c *Config[K, V]) { c.hasher = h }
}

// WithCompare overrides the key ordering, the way WithHasher overrides
// hashing. The total-order obligation in CompareFunc's doc comment
// applies.
func WithCompare[K comparable, V any](compare CompareFunc[K]) Option[K, V] {
	return func(c *Config[K, V]) { c.compare = compare }
}

// WithBackoff overrides the default SpinBackoff factory. f is called
// once per list operation (find, EmplaceOrGet, Erase, ...), never
// shared across concurrent callers.
func WithBackoff[K comparable, V any](f func() Backoff) Option[K, V] {
	return func(c *Config[K, V]) { c.backoff = f }
}

// WithReclaimer overrides the default HazardReclaimer with any
// conforming Reclaimer[Entry[K, V]] (hazard pointers, epoch-based,
// reference counting).
func WithReclaimer[K comparable, V any](r Reclaimer[Entry[K, V]]) Option[K, V] {
	return func(c *Config[K, V]) { c.reclaimer = r }
}

// Map is a lock-free concurrent hash map built on the Harris-Michael
// ordered-list algorithm: B independent buckets, each a sorted singly
// linked list of Entry nodes with mark-bit-on-next-pointer logical
// deletion. A zero Map is immediately usable, lazily initialized on
// first use, provided K is ordered by the built-in < operator; other
// key types must come through NewWithCompare.
type Map[K comparable, V any] struct {
	buckets   []bucketHead[K, V]
	hasher    HashFunc[K]
	compare   CompareFunc[K]
	seed      uintptr
	backoff   func() Backoff
	reclaimer Reclaimer[Entry[K, V]]
}

// New constructs a Map for a key type the built-in < operator orders,
// comparing keys with cmp.Compare. Passing no options is equivalent to
// using a zero Map directly.
func New[K cmp.Ordered, V any](opts ...Option[K, V]) *Map[K, V] {
	return newMap(cmp.Compare[K], opts)
}

// NewWithCompare constructs a Map whose key order is defined by compare
// instead of the built-in < operator, admitting any comparable key type
// (struct keys, case-folded strings, reversed orders, ...). compare
// must satisfy CompareFunc's total-order obligation.
func NewWithCompare[K comparable, V any](compare CompareFunc[K], opts ...Option[K, V]) *Map[K, V] {
	if compare == nil {
		panic("hmmap: nil CompareFunc")
	}
	return newMap(compare, opts)
}

func newMap[K comparable, V any](compare CompareFunc[K], opts []Option[K, V]) *Map[K, V] {
	cfg := Config[K, V]{compare: compare}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.buckets <= 0 {
		cfg.buckets = defaultBuckets
	}
	return &Map[K, V]{
		buckets:   make([]bucketHead[K, V], cfg.buckets),
		hasher:    cfg.hasher,
		compare:   cfg.compare,
		backoff:   cfg.backoff,
		reclaimer: cfg.reclaimer,
	}
}

// init lazily fills in any field a zero-value Map was constructed
// without, the first time it's needed.
func (m *Map[K, V]) init() {
	if m.buckets == nil {
		m.buckets = make([]bucketHead[K, V], defaultBuckets)
	}
	if m.hasher == nil {
		m.hasher = defaultHasher[K]()
	}
	if m.compare == nil {
		m.compare = defaultCompare[K]()
	}
	if m.backoff == nil {
		m.backoff = func() Backoff { return NewSpinBackoff() }
	}
	if m.reclaimer == nil {
		m.reclaimer = NewHazardReclaimer[Entry[K, V]]()
	}
}

func (m *Map[K, V]) bucketFor(key K) int {
	h := m.hasher(key, m.seed)
	return int(h % uintptr(len(m.buckets)))
}

// Contains reports whether key is present. It never mutates the list
// and never helps unlink marked entries beyond what find already does
// while walking past them.
func (m *Map[K, V]) Contains(key K) bool {
	m.init()
	bucketIdx := m.bucketFor(key)
	cur := newCursor[K, V](&m.buckets[bucketIdx].head, m.reclaimer)
	defer cur.release()
	found := m.find(key, bucketIdx, &cur, m.backoff())
	return found
}

// Find returns the value stored for key and true if present, or the
// zero value and false otherwise. Find never allocates an entry.
func (m *Map[K, V]) Find(key K) (V, bool) {
	m.init()
	bucketIdx := m.bucketFor(key)
	cur := newCursor[K, V](&m.buckets[bucketIdx].head, m.reclaimer)
	defer cur.release()
	if !m.find(key, bucketIdx, &cur, m.backoff()) {
		var zero V
		return zero, false
	}
	return cur.curr.Get().value, true
}

// EmplaceOrGet inserts (key, value) if key is absent, or returns the
// existing entry's value if present. The returned bool is true iff
// this call performed the insertion. The candidate entry is allocated
// exactly once and reused across CAS retries; it is discarded only if
// the key turns out to be present. Callers that build value expensively
// should prefer GetOrEmplaceLazy.
func (m *Map[K, V]) EmplaceOrGet(key K, value V) (V, bool) {
	m.init()
	bucketIdx := m.bucketFor(key)
	cur := newCursor[K, V](&m.buckets[bucketIdx].head, m.reclaimer)
	defer cur.release()
	backoff := m.backoff()

	entry := newEntry[K, V](key, value)
	for {
		if m.find(key, bucketIdx, &cur, backoff) {
			return cur.curr.Get().value, false
		}
		entry.next.state.Store(cur.next)
		if cur.prev.CompareAndSwap(cur.next, entry, false) {
			return value, true
		}
		backoff.Backoff()
	}
}

// GetOrEmplace returns the existing value for key if present, otherwise
// inserts value and returns it. Identical race behavior to
// EmplaceOrGet; only the emphasis of the name differs.
func (m *Map[K, V]) GetOrEmplace(key K, value V) (V, bool) {
	got, inserted := m.EmplaceOrGet(key, value)
	return got, inserted
}

// GetOrEmplaceLazy is GetOrEmplace but only calls makeValue once the
// first find has reported key absent, so the fast already-present path
// never constructs anything. The entry is then built exactly once and
// reused across CAS retries, like EmplaceOrGet's.
//
// Within one call makeValue therefore runs at most once; it can still
// run without its result being published, when a racing insert of the
// same key wins after our find reported absent — the loser returns the
// winner's value and discards its own. Across N racing callers the
// factory runs between 1 and N times.
func (m *Map[K, V]) GetOrEmplaceLazy(key K, makeValue func() V) (V, bool) {
	m.init()
	bucketIdx := m.bucketFor(key)
	cur := newCursor[K, V](&m.buckets[bucketIdx].head, m.reclaimer)
	defer cur.release()
	backoff := m.backoff()

	var entry *Entry[K, V]
	var value V
	for {
		if m.find(key, bucketIdx, &cur, backoff) {
			return cur.curr.Get().value, false
		}
		if entry == nil {
			value = makeValue()
			entry = newEntry[K, V](key, value)
		}
		entry.next.state.Store(cur.next)
		if cur.prev.CompareAndSwap(cur.next, entry, false) {
			return value, true
		}
		backoff.Backoff()
	}
}

// Emplace is EmplaceOrGet with the resulting value discarded: it
// reports only whether this call inserted.
func (m *Map[K, V]) Emplace(key K, value V) bool {
	_, inserted := m.EmplaceOrGet(key, value)
	return inserted
}

// Erase removes key if present, returning true iff this call performed
// the removal (not a concurrent racer). It marks the entry's next
// pointer first (logical deletion), then attempts the physical unlink
// itself; a failed physical unlink is repaired by re-running find so
// this call doesn't leave its own just-marked entry visible to a
// subsequent call on the same goroutine.
func (m *Map[K, V]) Erase(key K) bool {
	m.init()
	bucketIdx := m.bucketFor(key)
	cur := newCursor[K, V](&m.buckets[bucketIdx].head, m.reclaimer)
	defer cur.release()
	backoff := m.backoff()

	if !m.find(key, bucketIdx, &cur, backoff) {
		return false
	}
	entry := cur.curr.Get()
	for {
		next := entry.next.Load()
		if next.marked {
			// another eraser won the logical delete.
			return false
		}
		if entry.next.CompareAndSwap(next, next.ptr, true) {
			break
		}
	}
	if cur.prev.CompareAndSwap(cur.next, entry.next.Load().ptr, false) {
		cur.curr.Retire()
	} else {
		// A helper or inserter interfered; re-find so this goroutine's
		// own next call doesn't trip over the mark it just set.
		m.find(key, bucketIdx, &cur, backoff)
	}
	return true
}

// Len performs a full O(n) scan across every bucket, counting unmarked
// entries. It gives a point-in-time snapshot only: under concurrent
// mutation the true count may have already changed by the time Len
// returns. Intended for tests and debugging, not hot paths.
func (m *Map[K, V]) Len() int {
	m.init()
	n := 0
	for i := range m.buckets {
		ls := m.buckets[i].head.Load()
		for ls.ptr != nil {
			// An entry is logically deleted when its own next carries the
			// mark, not when the link leading to it does.
			next := ls.ptr.next.Load()
			if !next.marked {
				n++
			}
			ls = next
		}
	}
	return n
}

// DebugSnapshot returns each bucket's live (unmarked) keys in list
// order, a sequential, non-atomic O(n) scan intended for tests that
// verify per-bucket ordering and uniqueness — see
// internal/verify.Buckets, which checks the result concurrently. Like
// Len, it is a point-in-time view only.
func (m *Map[K, V]) DebugSnapshot() [][]K {
	m.init()
	out := make([][]K, len(m.buckets))
	for i := range m.buckets {
		ls := m.buckets[i].head.Load()
		for ls.ptr != nil {
			next := ls.ptr.next.Load()
			if !next.marked {
				out[i] = append(out[i], ls.ptr.key)
			}
			ls = next
		}
	}
	return out
}

// Destroy tears the map down sequentially, dropping every entry without
// going through the Reclaimer's protected-handle protocol. Callers
// must guarantee no concurrent access during or after Destroy; Destroy
// does not itself enforce this, since a runtime check would cost every
// other caller a synchronization point.
func (m *Map[K, V]) Destroy() {
	for i := range m.buckets {
		m.buckets[i].head.state.Store(nil)
	}
}
