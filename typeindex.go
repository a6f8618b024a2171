package typeindex

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/hupe1980/typeindex/internal/hash"
	"github.com/hupe1980/typeindex/internal/mmap"
	"github.com/hupe1980/typeindex/internal/overflow"
	"github.com/hupe1980/typeindex/internal/sequence"
	"github.com/hupe1980/typeindex/internal/table"
)

const (
	// DefaultCapacity is the primary table size used when New is called with
	// a non-positive capacity.
	DefaultCapacity = 1 << 16
	// MaxCapacity bounds the primary table at 16 GiB of mapped memory.
	MaxCapacity = 1 << 30
)

// Index assigns every distinct identity a unique, stable, dense index
// starting at 1. It is safe for concurrent use by any number of goroutines.
//
// Identities are placed in a fixed-capacity, lock-free primary table whose
// slots live in off-heap memory; identities the table cannot place within
// its probe bound go to a concurrent overflow map. Both draw from one
// counter, so indices are unique across the two.
//
// An Index must be closed to release its table memory.
type Index struct {
	opts     options
	mapping  *mmap.Mapping
	table    *table.Table
	overflow *overflow.Map
	counter  sequence.Counter

	closed    atomic.Bool
	inflight  atomic.Int64
	fallbacks atomic.Int64
	reserved  int64
}

// Stats is a point-in-time view of an Index.
type Stats struct {
	Capacity      int
	ProbeLimit    int
	TableEntries  int
	OverflowSize  int
	Fallbacks     int64
	LastIndex     uint32
	MappedBytes   int
	FallbackAllow bool
}

// New creates an Index whose primary table holds capacity slots.
// capacity <= 0 selects DefaultCapacity.
func New(capacity int, optFns ...Option) (*Index, error) {
	o := applyOptions(optFns)

	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if capacity > MaxCapacity {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrInvalidCapacity, capacity, MaxCapacity)
	}

	size := table.MemorySize(capacity)
	if err := o.rc.AcquireMemory(int64(size)); err != nil {
		return nil, fmt.Errorf("typeindex: reserve table memory: %w", err)
	}

	m, err := mmap.MapAnon(size)
	if err != nil {
		o.rc.ReleaseMemory(int64(size))
		return nil, fmt.Errorf("typeindex: map table memory: %w", err)
	}
	if err := m.Advise(mmap.AccessRandom); err != nil {
		o.logger.Debug("madvise failed", "error", err)
	}

	t, err := table.New(m.Bytes(), capacity, o.probeLimit)
	if err != nil {
		_ = m.Close()
		o.rc.ReleaseMemory(int64(size))
		return nil, fmt.Errorf("typeindex: %w", err)
	}

	ix := &Index{
		opts:     o,
		mapping:  m,
		table:    t,
		overflow: overflow.New(o.overflowHint),
		reserved: int64(size),
	}

	o.logger.LogCreated(context.Background(), capacity, t.ProbeLimit(), o.fallback)

	return ix, nil
}

// AddIdentity registers k and returns its index. It is idempotent: a key
// that is already registered gets its existing index back. The returned
// index is never 0.
func (ix *Index) AddIdentity(k Key) (uint32, error) {
	if k == 0 {
		return 0, ErrInvalidKey
	}
	if err := ix.enter(); err != nil {
		return 0, err
	}
	defer ix.exit()

	var start time.Time
	if ix.opts.metricsCollector != nil {
		start = time.Now()
	}

	idx, created, err := ix.getOrAdd(k, hash.Identity(uint64(k)))

	if ix.opts.metricsCollector != nil {
		ix.opts.metricsCollector.RecordAdd(time.Since(start), created, err)
	}
	return idx, err
}

// GetIndexOrAdd resolves k to its index, registering it if needed.
// It behaves exactly like AddIdentity.
func (ix *Index) GetIndexOrAdd(k Key) (uint32, error) {
	return ix.AddIdentity(k)
}

// GetIndex returns the index of k, or 0 if k has not been registered.
// It never mutates the index.
func (ix *Index) GetIndex(k Key) (uint32, error) {
	if k == 0 {
		return 0, ErrInvalidKey
	}
	if err := ix.enter(); err != nil {
		return 0, err
	}
	defer ix.exit()

	idx := ix.lookup(k, hash.Identity(uint64(k)))

	if ix.opts.metricsCollector != nil {
		ix.opts.metricsCollector.RecordLookup(idx != 0)
	}
	return idx, nil
}

// Size returns the number of distinct identities registered so far, counting
// both primary table and overflow entries exactly once.
func (ix *Index) Size() (int, error) {
	if err := ix.enter(); err != nil {
		return 0, err
	}
	defer ix.exit()

	return ix.size(), nil
}

// Range calls fn for every registered identity, in no particular order,
// until fn returns false. Entries added concurrently may or may not be seen.
//
// The entries are collected first and fn runs outside the operation, so fn
// may call any method of ix, including Close.
func (ix *Index) Range(fn func(k Key, index uint32) bool) error {
	entries, err := ix.entries()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !fn(e.key, e.index) {
			break
		}
	}
	return nil
}

type entry struct {
	key   Key
	index uint32
}

func (ix *Index) entries() ([]entry, error) {
	if err := ix.enter(); err != nil {
		return nil, err
	}
	defer ix.exit()

	out := make([]entry, 0, ix.size())
	collect := func(key uint64, idx uint32) bool {
		out = append(out, entry{key: Key(key), index: idx})
		return true
	}
	ix.table.Range(collect)
	ix.overflow.Range(collect)
	return out, nil
}

// Stats returns a point-in-time view of the index.
func (ix *Index) Stats() (Stats, error) {
	if err := ix.enter(); err != nil {
		return Stats{}, err
	}
	defer ix.exit()

	return Stats{
		Capacity:      ix.table.Capacity(),
		ProbeLimit:    ix.table.ProbeLimit(),
		TableEntries:  ix.table.Len(),
		OverflowSize:  ix.overflow.Len(),
		Fallbacks:     ix.fallbacks.Load(),
		LastIndex:     ix.counter.Last(),
		MappedBytes:   ix.mapping.Size(),
		FallbackAllow: ix.opts.fallback,
	}, nil
}

func (ix *Index) size() int {
	return ix.table.Len() + ix.overflow.Len()
}

// getOrAdd resolves k against the primary table and, if its probe sequence
// is exhausted, the overflow map. A counter value is drawn only by the
// goroutine that owns the new entry.
func (ix *Index) getOrAdd(k Key, h uint64) (uint32, bool, error) {
	key := uint64(k)

	idx, slot, res := ix.table.TryReserve(key, h)
	switch res {
	case table.Existing:
		return idx, false, nil
	case table.Reserved:
		idx = ix.counter.Next()
		ix.table.Fill(slot, idx)
		return idx, true, nil
	}

	if !ix.opts.fallback {
		ix.opts.logger.LogCapacityExhausted(context.Background(), k, ix.table.Capacity(), ix.table.ProbeLimit())
		return 0, false, &CapacityExhaustedError{
			Key:        k,
			Capacity:   ix.table.Capacity(),
			ProbeLimit: ix.table.ProbeLimit(),
		}
	}

	idx, loaded := ix.overflow.GetOrAdd(key, ix.counter.Next)
	if !loaded {
		total := ix.fallbacks.Add(1)
		ix.opts.logger.LogFallback(context.Background(), k, idx, total)
		if ix.opts.metricsCollector != nil {
			ix.opts.metricsCollector.RecordFallback()
		}
	}
	return idx, !loaded, nil
}

func (ix *Index) lookup(k Key, h uint64) uint32 {
	if idx := ix.table.Lookup(uint64(k), h); idx != 0 {
		return idx
	}
	if !ix.opts.fallback {
		return 0
	}
	return ix.overflow.Get(uint64(k))
}

// enter admits an operation unless the index is closed. Close waits for every
// admitted operation to exit before unmapping the table.
func (ix *Index) enter() error {
	ix.inflight.Add(1)
	if ix.closed.Load() {
		ix.inflight.Add(-1)
		return ErrClosed
	}
	return nil
}

func (ix *Index) exit() {
	ix.inflight.Add(-1)
}

// quiesce blocks until no admitted operation is running.
func (ix *Index) quiesce() {
	for ix.inflight.Load() > 0 {
		runtime.Gosched()
	}
}
