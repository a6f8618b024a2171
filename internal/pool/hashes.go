// Package pool provides buffer pools for allocation-free batch operations.
package pool

import "sync"

const (
	// DefaultBatchSize is the initial capacity of a pooled hash buffer.
	DefaultBatchSize = 128

	// MaxRetained is the largest buffer returned to the pool. Larger buffers
	// are left to the garbage collector so one huge batch does not pin memory.
	MaxRetained = 1 << 16
)

// Hashes holds the precomputed identity hashes of one batch.
type Hashes struct {
	H []uint64
}

var hashesPool = sync.Pool{
	New: func() any {
		return &Hashes{H: make([]uint64, 0, DefaultBatchSize)}
	},
}

// GetHashes returns a buffer with len(H) == n.
func GetHashes(n int) *Hashes {
	h := hashesPool.Get().(*Hashes)
	if cap(h.H) < n {
		h.H = make([]uint64, n)
	}
	h.H = h.H[:n]
	return h
}

// PutHashes returns h to the pool.
func PutHashes(h *Hashes) {
	if h == nil || cap(h.H) > MaxRetained {
		return
	}
	h.H = h.H[:0]
	hashesPool.Put(h)
}
