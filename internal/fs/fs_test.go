package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	lfs := LocalFS{}

	require.NoError(t, lfs.MkdirAll(dir, 0o755))

	path := filepath.Join(dir, "blob")
	f, err := lfs.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	assert.Equal(t, path, f.Name())

	_, err = f.Write([]byte("payload"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	moved := path + ".moved"
	require.NoError(t, lfs.Rename(path, moved))
	data, err := os.ReadFile(moved)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	require.NoError(t, lfs.Remove(moved))
	_, err = os.Stat(moved)
	assert.True(t, os.IsNotExist(err))
}

func TestFaultyFS_WriteLimit(t *testing.T) {
	ffs := NewFaultyFS(nil)
	ffs.AddRule("limited", Fault{FailAfterBytes: 5})

	f, err := ffs.OpenFile(filepath.Join(t.TempDir(), "limited.txt"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	defer f.Close()

	n, err := f.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = f.Write([]byte("!"))
	require.ErrorIs(t, err, ErrInjected)
	assert.Equal(t, 0, n)
	assert.Equal(t, int64(5), ffs.Written())
}

func TestFaultyFS_SyncCloseRename(t *testing.T) {
	dir := t.TempDir()
	custom := os.ErrDeadlineExceeded

	ffs := NewFaultyFS(LocalFS{})
	ffs.AddRule("sync", Fault{FailAfterBytes: -1, FailOnSync: true})
	ffs.AddRule("close", Fault{FailAfterBytes: -1, FailOnClose: true, Err: custom})
	ffs.AddRule("rename", Fault{FailAfterBytes: -1, FailOnRename: true})

	f, err := ffs.OpenFile(filepath.Join(dir, "sync"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	require.ErrorIs(t, f.Sync(), ErrInjected)
	require.NoError(t, f.Close())

	f, err = ffs.OpenFile(filepath.Join(dir, "close"), os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	require.ErrorIs(t, f.Close(), custom)

	src := filepath.Join(dir, "rename")
	require.NoError(t, os.WriteFile(src, nil, 0o644))
	require.ErrorIs(t, ffs.Rename(src, src+".x"), ErrInjected)
	assert.Equal(t, 0, ffs.Renamed())

	other := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(other, nil, 0o644))
	require.NoError(t, ffs.Rename(other, other+".x"))
	assert.Equal(t, 1, ffs.Renamed())
	require.NoError(t, ffs.Remove(other+".x"))
}
