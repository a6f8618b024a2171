package typeindex

import (
	"context"
	"errors"
	"fmt"
)

// Close releases the primary table's memory. It marks the index closed,
// waits for operations already in progress to finish and then unmaps the
// table exactly once; every later call, including a second Close, fails with
// ErrClosed.
func (ix *Index) Close() error {
	if ix == nil {
		return nil
	}
	if ix.closed.Swap(true) {
		return ErrClosed
	}

	ix.quiesce()

	size := ix.size()
	err := ix.mapping.Close()
	ix.opts.rc.ReleaseMemory(ix.reserved)
	if err != nil {
		err = fmt.Errorf("typeindex: unmap table: %w", err)
	}

	ix.opts.logger.LogClose(context.Background(), size, err)

	return err
}

// Scoped creates an Index, passes it to fn and closes it on every exit path,
// including a panic in fn (which is re-raised after the release).
//
//	err := typeindex.Scoped(1024, func(idx *typeindex.Index) error {
//	    _, err := idx.AddIdentity(typeindex.KeyFor[Position]())
//	    return err
//	})
func Scoped(capacity int, fn func(*Index) error, optFns ...Option) (err error) {
	ix, err := New(capacity, optFns...)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, ix.Close())
	}()

	return fn(ix)
}
