package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations return an error that satisfies errors.Is(err, ErrNotFound).
var ErrNotFound = os.ErrNotExist

// ErrExists is returned when creating a blob whose name is already taken.
var ErrExists = os.ErrExist

// BlobStore reads and writes named blobs.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Put writes a blob atomically, replacing any blob of the same name.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the sorted names of all blobs with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Creator is implemented by stores that can atomically write a blob only if
// no blob of that name exists.
type Creator interface {
	// PutIfNotExists writes data under name, or fails with an error matching
	// ErrExists.
	PutIfNotExists(ctx context.Context, name string, data []byte) error
}

// Create writes a new blob and never replaces an existing one. Stores that
// implement Creator do this atomically; for others the existence check and
// the write are separate steps.
func Create(ctx context.Context, s BlobStore, name string, data []byte) error {
	if c, ok := s.(Creator); ok {
		return c.PutIfNotExists(ctx, name, data)
	}

	b, err := s.Open(ctx, name)
	switch {
	case err == nil:
		_ = b.Close()
		return fmt.Errorf("blobstore: %s: %w", name, ErrExists)
	case !errors.Is(err, ErrNotFound):
		return err
	}
	return s.Put(ctx, name, data)
}

// Blob is a read-only handle to a blob.
type Blob interface {
	io.Closer
	// ReadAt reads len(p) bytes at offset off. It follows io.ReaderAt
	// semantics: n < len(p) implies a non-nil error (io.EOF at the end).
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	// Size returns the size of the blob in bytes.
	Size() int64
}

// ReadAll opens name and returns its full contents.
func ReadAll(ctx context.Context, s BlobStore, name string) ([]byte, error) {
	b, err := s.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = b.Close() }()

	size := b.Size()
	if size < 0 || size > int64(^uint(0)>>1) {
		return nil, fmt.Errorf("blobstore: %s: invalid size %d", name, size)
	}

	buf := make([]byte, size)
	n, err := b.ReadAt(ctx, buf, 0)
	if err != nil && (err != io.EOF || int64(n) != size) {
		return nil, fmt.Errorf("blobstore: read %s: %w", name, err)
	}
	return buf[:n], nil
}

// bytesBlob serves reads from a byte slice.
type bytesBlob struct {
	data []byte
}

// NewBytesBlob returns a Blob reading from data. The slice is not copied.
func NewBytesBlob(data []byte) Blob {
	return &bytesBlob{data: data}
}

func (b *bytesBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return readAt(b.data, p, off)
}

func (b *bytesBlob) Size() int64 { return int64(len(b.data)) }

func (b *bytesBlob) Close() error { return nil }

func readAt(data, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("blobstore: negative offset %d", off)
	}
	if off >= int64(len(data)) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
