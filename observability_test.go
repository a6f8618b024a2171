package typeindex_test

import (
	"bytes"
	"context"
	"log/slog"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/typeindex"
	"github.com/hupe1980/typeindex/blobstore"
	"github.com/hupe1980/typeindex/testutil"
)

func TestMetricsCollector(t *testing.T) {
	metrics := &typeindex.BasicMetricsCollector{}
	idx := newIndex(t, 4, typeindex.WithMetricsCollector(metrics))

	objs := testutil.Objects(6)
	keys := objectKeys(objs)

	for _, k := range keys {
		_, err := idx.AddIdentity(k)
		require.NoError(t, err)
	}
	_, err := idx.AddIdentity(keys[0])
	require.NoError(t, err)

	_, err = idx.GetIndex(keys[1])
	require.NoError(t, err)
	_, err = idx.GetIndex(typeindex.KeyFor[health]())
	require.NoError(t, err)

	_, err = idx.GetIndexOrAddBatch(keys[:3])
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(7), stats.AddCount)
	assert.Equal(t, int64(6), stats.AddCreated)
	assert.Zero(t, stats.AddErrors)
	assert.Equal(t, int64(2), stats.LookupCount)
	assert.Equal(t, int64(1), stats.LookupMisses)
	assert.Equal(t, int64(1), stats.BatchCount)
	assert.Equal(t, int64(3), stats.BatchKeys)
	assert.Equal(t, int64(2), stats.FallbackCount, "capacity 4 holds four of six")
	runtime.KeepAlive(objs)
}

func TestNoopMetricsCollector(t *testing.T) {
	idx := newIndex(t, 8, typeindex.WithMetricsCollector(typeindex.NoopMetricsCollector{}))

	_, err := idx.AddIdentity(typeindex.KeyFor[position]())
	require.NoError(t, err)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := typeindex.NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})).
		WithContext("world-1")

	ti := newTypeIndex(t, 2, typeindex.WithLogger(logger))

	objs := testutil.Objects(4)
	for _, k := range objectKeys(objs) {
		_, err := ti.AddIdentity(k)
		require.NoError(t, err)
	}
	require.NoError(t, ti.Save(context.Background(), blobstore.NewMemoryStore(), "s"))
	require.NoError(t, ti.Close())

	out := buf.String()
	assert.Contains(t, out, `"msg":"index created"`)
	assert.Contains(t, out, `"msg":"overflow map activated"`)
	assert.Contains(t, out, `"msg":"snapshot saved"`)
	assert.Contains(t, out, `"msg":"index closed"`)
	assert.Contains(t, out, `"context":"world-1"`)

	// At most one sampled pressure warning within the test's runtime.
	assert.LessOrEqual(t, strings.Count(out, "capacity pressure"), 1)
	runtime.KeepAlive(objs)
}

func TestLogger_CapacityExhausted(t *testing.T) {
	var buf bytes.Buffer
	logger := typeindex.NewLogger(slog.NewTextHandler(&buf, nil))

	idx := newIndex(t, 1, typeindex.WithFallback(false), typeindex.WithLogger(logger))

	objs := testutil.Objects(2)
	keys := objectKeys(objs)
	_, err := idx.AddIdentity(keys[0])
	require.NoError(t, err)
	_, err = idx.AddIdentity(keys[1])
	require.ErrorIs(t, err, typeindex.ErrCapacityExhausted)

	assert.Contains(t, buf.String(), "primary table capacity exhausted")
	runtime.KeepAlive(objs)
}

func TestWithLogger_Nil(t *testing.T) {
	idx := newIndex(t, 4, typeindex.WithLogger(nil))

	_, err := idx.AddIdentity(typeindex.KeyFor[position]())
	require.NoError(t, err)
}
