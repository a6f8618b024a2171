// Package sequence provides the monotonic index counter shared by the
// primary table and the overflow map.
package sequence

import (
	"math"
	"sync/atomic"
)

// Counter hands out indices 1, 2, 3, ... Zero is never produced; it is the
// "no entry" sentinel.
//
// A single Counter is owned by the index facade and passed by pointer to every
// path that creates an entry, so ids stay globally unique across sub-structures.
type Counter struct {
	last atomic.Uint32
}

// Next draws the next index. Callers draw only once they own the entry that
// will be stamped with it.
func (c *Counter) Next() uint32 {
	v := c.last.Add(1)
	if v == 0 {
		panic("sequence: index space exhausted")
	}
	return v
}

// Skip consumes n indices without assigning them and returns the last one
// consumed.
func (c *Counter) Skip(n uint32) uint32 {
	for {
		cur := c.last.Load()
		if uint64(cur)+uint64(n) > math.MaxUint32 {
			panic("sequence: index space exhausted")
		}
		if c.last.CompareAndSwap(cur, cur+n) {
			return cur + n
		}
	}
}

// Last returns the most recently drawn index (0 before the first draw).
func (c *Counter) Last() uint32 {
	return c.last.Load()
}
