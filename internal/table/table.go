package table

import (
	"errors"
	"math/bits"
	"runtime"
	"sync/atomic"
	"unsafe"
)

// SlotSize is the number of bytes one slot occupies in backing memory.
const SlotSize = int(unsafe.Sizeof(slot{}))

var (
	// ErrInvalidCapacity is returned when capacity is not positive.
	ErrInvalidCapacity = errors.New("table: capacity must be positive")
	// ErrShortMemory is returned when the backing memory cannot hold capacity slots.
	ErrShortMemory = errors.New("table: backing memory too small")
	// ErrMisaligned is returned when the backing memory is not 8-byte aligned.
	ErrMisaligned = errors.New("table: backing memory not 8-byte aligned")
)

// Result is the outcome of TryReserve.
type Result uint8

const (
	// Existing means the key was already registered; its index is returned.
	Existing Result = iota
	// Reserved means the caller now owns an empty slot and must Fill it.
	Reserved
	// Full means the probe bound was exhausted without a match or a free slot.
	Full
)

func (r Result) String() string {
	switch r {
	case Existing:
		return "existing"
	case Reserved:
		return "reserved"
	case Full:
		return "full"
	default:
		return "unknown"
	}
}

type slot struct {
	key   atomic.Uint64
	index atomic.Uint32
	_     uint32
}

// Table is a lock-free open-addressed identity table.
type Table struct {
	slots      []slot
	n          uint64
	probeLimit int
	filled     atomic.Int64
}

// MemorySize returns the number of backing bytes needed for capacity slots.
func MemorySize(capacity int) int {
	return capacity * SlotSize
}

// DefaultProbeLimit bounds linear probing at four times the bit length of
// capacity, never more than capacity itself.
func DefaultProbeLimit(capacity int) int {
	return min(capacity, 4*bits.Len(uint(capacity)))
}

// New lays a table of capacity slots over mem. mem must be zero-filled, at
// least MemorySize(capacity) bytes long and 8-byte aligned; the table does not
// own it. A probeLimit <= 0 selects DefaultProbeLimit.
func New(mem []byte, capacity, probeLimit int) (*Table, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	if len(mem) < MemorySize(capacity) {
		return nil, ErrShortMemory
	}
	if uintptr(unsafe.Pointer(&mem[0]))%8 != 0 {
		return nil, ErrMisaligned
	}
	if probeLimit <= 0 {
		probeLimit = DefaultProbeLimit(capacity)
	}

	return &Table{
		slots:      unsafe.Slice((*slot)(unsafe.Pointer(&mem[0])), capacity),
		n:          uint64(capacity),
		probeLimit: min(probeLimit, capacity),
	}, nil
}

// home maps a hash onto [0, n) without division.
func (t *Table) home(h uint64) int {
	hi, _ := bits.Mul64(h, t.n)
	return int(hi)
}

// TryReserve probes for key starting at its home slot.
//
// On Existing the returned index is the key's published index. On Reserved the
// caller owns the returned slot and must publish an index with Fill; other
// writers of the same key block until it does. On Full the slot is -1.
func (t *Table) TryReserve(key, h uint64) (uint32, int, Result) {
	i := t.home(h)
	for p := 0; p < t.probeLimit; p++ {
		s := &t.slots[i]

		k := s.key.Load()
		if k == 0 {
			if s.key.CompareAndSwap(0, key) {
				return 0, i, Reserved
			}
			k = s.key.Load()
		}
		if k == key {
			return s.await(), i, Existing
		}

		if i++; uint64(i) == t.n {
			i = 0
		}
	}
	return 0, -1, Full
}

// Fill publishes index for a slot returned by TryReserve as Reserved.
func (t *Table) Fill(slot int, index uint32) {
	t.slots[slot].index.Store(index)
	t.filled.Add(1)
}

// Lookup returns the published index for key, or 0 if the key is absent or its
// insert has not been published yet.
func (t *Table) Lookup(key, h uint64) uint32 {
	i := t.home(h)
	for p := 0; p < t.probeLimit; p++ {
		s := &t.slots[i]

		switch s.key.Load() {
		case 0:
			return 0
		case key:
			return s.index.Load()
		}

		if i++; uint64(i) == t.n {
			i = 0
		}
	}
	return 0
}

// Range calls fn for every filled slot until fn returns false.
func (t *Table) Range(fn func(key uint64, index uint32) bool) {
	for i := range t.slots {
		s := &t.slots[i]
		idx := s.index.Load()
		if idx == 0 {
			continue
		}
		if !fn(s.key.Load(), idx) {
			return
		}
	}
}

// Len returns the number of filled slots.
func (t *Table) Len() int {
	return int(t.filled.Load())
}

// Capacity returns the number of slots.
func (t *Table) Capacity() int {
	return int(t.n)
}

// ProbeLimit returns the maximum number of slots examined per operation.
func (t *Table) ProbeLimit() int {
	return t.probeLimit
}

// await spins until the owner of a reserved slot publishes its index. The
// owner holds no locks between claim and publish, so the wait is short.
func (s *slot) await() uint32 {
	for {
		if idx := s.index.Load(); idx != 0 {
			return idx
		}
		runtime.Gosched()
	}
}
