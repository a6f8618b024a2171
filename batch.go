package typeindex

import (
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/typeindex/internal/hash"
	"github.com/hupe1980/typeindex/internal/pool"
)

// GetIndexOrAddBatch resolves every key in keys, registering the ones that
// are new, and returns their indices in input order. Duplicate keys within
// the batch resolve to the same index.
//
// All keys are validated before any is registered, so an invalid key leaves
// the index untouched. If registration fails part way (capacity exhausted
// with fallback disabled), entries registered before the failure remain.
func (ix *Index) GetIndexOrAddBatch(keys []Key) ([]uint32, error) {
	return ix.AppendIndexOrAddBatch(make([]uint32, 0, len(keys)), keys)
}

// AppendIndexOrAddBatch is like GetIndexOrAddBatch but appends the indices
// to dst and returns the extended slice. On error dst is returned unchanged.
func (ix *Index) AppendIndexOrAddBatch(dst []uint32, keys []Key) ([]uint32, error) {
	if len(keys) == 0 {
		return dst, nil
	}
	if err := ix.enter(); err != nil {
		return dst, err
	}
	defer ix.exit()

	var start time.Time
	if ix.opts.metricsCollector != nil {
		start = time.Now()
	}

	out, err := ix.appendBatch(dst, keys)

	if ix.opts.metricsCollector != nil {
		ix.opts.metricsCollector.RecordBatch(len(keys), time.Since(start), err)
	}
	if err != nil {
		return dst, err
	}
	return out, nil
}

func (ix *Index) appendBatch(dst []uint32, keys []Key) ([]uint32, error) {
	hs := pool.GetHashes(len(keys))
	defer pool.PutHashes(hs)

	for i, k := range keys {
		if k == 0 {
			return dst, fmt.Errorf("%w: batch position %d", ErrInvalidKey, i)
		}
		hs.H[i] = hash.Identity(uint64(k))
	}

	for i, k := range keys {
		idx, _, err := ix.getOrAdd(k, hs.H[i])
		if err != nil {
			return dst, err
		}
		dst = append(dst, idx)
	}
	return dst, nil
}

// GetIndexOrAddMask resolves keys like GetIndexOrAddBatch and returns the
// set of their indices as a bitmap, e.g. a component signature.
func (ix *Index) GetIndexOrAddMask(keys ...Key) (*roaring.Bitmap, error) {
	ids, err := ix.GetIndexOrAddBatch(keys)
	if err != nil {
		return nil, err
	}
	return roaring.BitmapOf(ids...), nil
}
