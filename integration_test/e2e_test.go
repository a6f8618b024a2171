package integration_test

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"runtime"
	"testing"

	"github.com/hupe1980/typeindex"
	"github.com/hupe1980/typeindex/blobstore"
	miniostore "github.com/hupe1980/typeindex/blobstore/minio"
	"github.com/hupe1980/typeindex/resource"
	"github.com/hupe1980/typeindex/testutil"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// registerConcurrently registers every type from several goroutines, each
// in its own random order, against a deliberately small table.
func registerConcurrently(t *testing.T, ti *typeindex.TypeIndex, types []reflect.Type, workers int) {
	t.Helper()
	rng := testutil.NewRNG(7)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		order := rng.Perm(len(types))
		g.Go(func() error {
			for _, i := range order {
				if _, err := ti.IndexOf(types[i]); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func indexMap(t *testing.T, ti *typeindex.TypeIndex, types []reflect.Type) map[reflect.Type]uint32 {
	t.Helper()
	out := make(map[reflect.Type]uint32, len(types))
	for _, typ := range types {
		idx, err := ti.Lookup(typ)
		require.NoError(t, err)
		out[typ] = idx
	}
	return out
}

func runRestart(t *testing.T, store blobstore.BlobStore) {
	ctx := context.Background()
	types := testutil.ArrayTypes(reflect.TypeFor[testutil.Object](), 300)

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   1 << 20,
		IOLimitBytesPerSec: 1 << 20,
	})

	// 1. Concurrent registration, forcing overflow
	src, err := typeindex.NewTypeIndex(32, typeindex.WithResourceController(rc))
	require.NoError(t, err)
	registerConcurrently(t, src, types, 6)

	stats, err := src.Stats()
	require.NoError(t, err)
	require.Equal(t, uint32(len(types)), stats.LastIndex)
	require.Positive(t, stats.OverflowSize)

	want := indexMap(t, src, types)

	// 2. Two snapshot generations; CURRENT points at the second
	require.NoError(t, src.SaveCurrent(ctx, store, "gen/1.tidx"))
	extra := reflect.TypeFor[struct{ Late bool }]()
	lateIdx, err := src.IndexOf(extra)
	require.NoError(t, err)
	require.Equal(t, uint32(len(types)+1), lateIdx)
	require.NoError(t, src.SaveCurrent(ctx, store, "gen/2.tidx"))
	require.NoError(t, src.Close())
	assert.Zero(t, rc.MemoryUsage())

	// 3. Restart and restore
	dst, err := typeindex.NewTypeIndex(1024, typeindex.WithResourceController(rc))
	require.NoError(t, err)
	defer dst.Close()

	all := append(slicesClone(types), extra)
	name, err := dst.RestoreCurrent(ctx, store, typeindex.Resolver(all...))
	require.NoError(t, err)
	assert.Equal(t, "gen/2.tidx", name)

	assert.Equal(t, want, indexMap(t, dst, types))
	idx, err := dst.Lookup(extra)
	require.NoError(t, err)
	assert.Equal(t, lateIdx, idx)

	// New registrations continue after the restored sequence.
	next, err := typeindex.IndexFor[struct{ Fresh int }](dst)
	require.NoError(t, err)
	assert.Equal(t, lateIdx+1, next)

	names, err := store.List(ctx, "gen/")
	require.NoError(t, err)
	assert.Equal(t, []string{"gen/1.tidx", "gen/2.tidx"}, names)
}

func slicesClone(in []reflect.Type) []reflect.Type {
	return append([]reflect.Type(nil), in...)
}

func TestE2E_RestartLocal(t *testing.T) {
	runRestart(t, blobstore.NewLocalStore(t.TempDir()))
}

func TestE2E_RestartMemory(t *testing.T) {
	runRestart(t, blobstore.NewMemoryStore())
}

// TestE2E_RestartMinio requires a running MinIO server reachable at
// MINIO_ENDPOINT (e.g. localhost:9000) with the default credentials.
func TestE2E_RestartMinio(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("Skipping MinIO e2e test: MINIO_ENDPOINT not set")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	require.NoError(t, err)

	ctx := context.Background()
	bucket := "test-typeindex-e2e"
	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	runRestart(t, miniostore.NewStore(client, bucket, fmt.Sprintf("%s/", t.Name())))
}

func TestE2E_ObjectIdentities(t *testing.T) {
	const n = 5000
	objs := testutil.Objects(n)
	keys := make([]typeindex.Key, n)
	for i, o := range objs {
		keys[i] = typeindex.KeyOf(o)
	}

	err := typeindex.Scoped(256, func(ix *typeindex.Index) error {
		var g errgroup.Group
		for w := 0; w < 4; w++ {
			g.Go(func() error {
				for off := 0; off < n; off += 100 {
					if _, err := ix.GetIndexOrAddBatch(keys[off : off+100]); err != nil {
						return err
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		seen := make(map[uint32]bool, n)
		for _, k := range keys {
			idx, err := ix.GetIndex(k)
			if err != nil {
				return err
			}
			if idx == 0 || idx > n || seen[idx] {
				return fmt.Errorf("index %d is not a fresh index in 1..%d", idx, n)
			}
			seen[idx] = true
		}
		return nil
	})
	require.NoError(t, err)
	runtime.KeepAlive(objs)
}
