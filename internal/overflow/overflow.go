// Package overflow hosts identities the primary table could not place.
//
// It is the slow path: a general-purpose concurrent map with fine-grained
// bucket locking (github.com/puzpuzpuz/xsync), used only once a key's probe
// sequence in the primary table is exhausted.
package overflow

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// Map is a concurrent identity-key to index map with get-or-add semantics.
type Map struct {
	m *xsync.MapOf[uint64, uint32]
}

// New creates an empty Map. sizeHint presizes the underlying table.
func New(sizeHint int) *Map {
	if sizeHint <= 0 {
		return &Map{m: xsync.NewMapOf[uint64, uint32]()}
	}
	return &Map{m: xsync.NewMapOf[uint64, uint32](xsync.WithPresize(sizeHint))}
}

// GetOrAdd returns the index stored for key, or stores next() and returns it.
// next runs at most once per key across all concurrent callers; loaded reports
// whether the key already existed.
func (m *Map) GetOrAdd(key uint64, next func() uint32) (index uint32, loaded bool) {
	return m.m.LoadOrCompute(key, next)
}

// Get returns the index stored for key, or 0.
func (m *Map) Get(key uint64) uint32 {
	idx, _ := m.m.Load(key)
	return idx
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return m.m.Size()
}

// Range calls fn for each entry until fn returns false.
func (m *Map) Range(fn func(key uint64, index uint32) bool) {
	m.m.Range(fn)
}
