package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/typeindex/internal/fs"
	"github.com/hupe1980/typeindex/internal/mmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBlobStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)

	ctx := context.Background()

	// 1. Put a blob
	blobName := "snapshots/world-001.tidx"
	data := []byte("hello world, this is a test blob for typeindex")

	require.NoError(t, store.Put(ctx, blobName, data))

	_, err := os.Stat(filepath.Join(tmpDir, "snapshots", "world-001.tidx"))
	require.NoError(t, err)

	// 2. Open and ReadAt
	blob, err := store.Open(ctx, blobName)
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "world", string(buf))

	// 3. List
	require.NoError(t, store.Put(ctx, "snapshots/world-002.tidx", []byte("x")))
	require.NoError(t, store.Put(ctx, "CURRENT", []byte("snapshots/world-002.tidx")))

	blobs, err := store.List(ctx, "snapshots/")
	require.NoError(t, err)
	require.Equal(t, []string{"snapshots/world-001.tidx", "snapshots/world-002.tidx"}, blobs)

	// 4. Delete
	require.NoError(t, store.Delete(ctx, blobName))
	require.NoError(t, store.Delete(ctx, blobName), "deleting twice is not an error")

	blobsAfter, err := store.List(ctx, "snapshots/")
	require.NoError(t, err)
	require.Equal(t, []string{"snapshots/world-002.tidx"}, blobsAfter)

	_, err = store.Open(ctx, blobName)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalBlobStore_Overwrite(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "CURRENT", []byte("first-longer-value")))
	require.NoError(t, store.Put(ctx, "CURRENT", []byte("second")))

	got, err := ReadAll(ctx, store, "CURRENT")
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"CURRENT"}, names, "no temp files are left behind")
}

func TestLocalBlobStore_ReadAt_Boundaries(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "boundary.bin", []byte("0123456789")))

	blob, err := store.Open(ctx, "boundary.bin")
	require.NoError(t, err)
	defer blob.Close()

	// Read past end
	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 8)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, "89", string(buf[:n]))

	// Offset past EOF
	n, err = blob.ReadAt(ctx, buf, 20)
	require.ErrorIs(t, err, io.EOF)
	require.Zero(t, n)
}

func TestLocalBlobStore_EmptyBlob(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "empty", nil))

	got, err := ReadAll(ctx, store, "empty")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLocalBlobStore_InvalidName(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	assert.Error(t, store.Put(ctx, "../escape", []byte("x")))
	_, err := store.Open(ctx, "")
	assert.Error(t, err)
}

func TestLocalBlobStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "missing"))

	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalBlobStore_FailedWriteKeepsPrevious(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		fault fs.Fault
	}{
		{"write", fs.Fault{FailAfterBytes: 3}},
		{"sync", fs.Fault{FailAfterBytes: -1, FailOnSync: true}},
		{"close", fs.Fault{FailAfterBytes: -1, FailOnClose: true}},
		{"rename", fs.Fault{FailAfterBytes: -1, FailOnRename: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			ffs := fs.NewFaultyFS(nil)
			store := newLocalStoreFS(dir, ffs)

			require.NoError(t, store.Put(ctx, "CURRENT", []byte("v1")))
			assert.Equal(t, 1, ffs.Renamed())

			ffs.AddRule(tmpPrefix+"CURRENT", tt.fault)
			err := store.Put(ctx, "CURRENT", []byte("version-two"))
			require.ErrorIs(t, err, fs.ErrInjected)

			got, err := ReadAll(ctx, store, "CURRENT")
			require.NoError(t, err)
			assert.Equal(t, "v1", string(got))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			require.Len(t, entries, 1, "temp file is removed after a failed write")
		})
	}
}

func TestLocalBlobStore_PutIfNotExists(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)
	ctx := context.Background()

	require.NoError(t, store.PutIfNotExists(ctx, "snapshots/a.tidx", []byte("v1")))
	err := store.PutIfNotExists(ctx, "snapshots/a.tidx", []byte("v2"))
	require.ErrorIs(t, err, ErrExists)

	got, err := ReadAll(ctx, store, "snapshots/a.tidx")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got))

	entries, err := os.ReadDir(filepath.Join(dir, "snapshots"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestLocalBlobStore_ReadAfterClose(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "blob", []byte("payload")))
	blob, err := store.Open(ctx, "blob")
	require.NoError(t, err)
	require.NoError(t, blob.Close())

	_, err = blob.ReadAt(ctx, make([]byte, 4), 0)
	require.ErrorIs(t, err, mmap.ErrClosed)
}
