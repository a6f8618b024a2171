package sequence

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter_StartsAtOne(t *testing.T) {
	var c Counter
	assert.Equal(t, uint32(0), c.Last())
	assert.Equal(t, uint32(1), c.Next())
	assert.Equal(t, uint32(2), c.Next())
	assert.Equal(t, uint32(2), c.Last())
}

func TestCounter_Skip(t *testing.T) {
	var c Counter
	c.Next()
	assert.Equal(t, uint32(4), c.Skip(3))
	assert.Equal(t, uint32(5), c.Next())
	assert.Equal(t, uint32(5), c.Skip(0))
}

func TestCounter_ConcurrentDrawsAreUnique(t *testing.T) {
	const (
		workers = 8
		draws   = 1000
	)

	var (
		c    Counter
		mu   sync.Mutex
		seen = make(map[uint32]struct{}, workers*draws)
		wg   sync.WaitGroup
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]uint32, 0, draws)
			for i := 0; i < draws; i++ {
				local = append(local, c.Next())
			}
			mu.Lock()
			for _, v := range local {
				seen[v] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*draws)
	assert.Equal(t, uint32(workers*draws), c.Last())
}

func TestCounter_ExhaustionPanics(t *testing.T) {
	var c Counter
	c.Skip(^uint32(0))
	assert.Panics(t, func() { c.Next() })
	assert.Panics(t, func() { c.Skip(1) })
}
