package benchmark_test

import (
	"reflect"
	"runtime"
	"testing"

	"github.com/hupe1980/typeindex"
	"github.com/hupe1980/typeindex/testutil"
	"github.com/stretchr/testify/require"
)

// fixture holds n distinct object identities. The objects stay reachable for
// the lifetime of the benchmark so their addresses remain unique.
type fixture struct {
	objs []*testutil.Object
	keys []typeindex.Key
}

func newFixture(b *testing.B, n int) *fixture {
	b.Helper()
	objs := testutil.Objects(n)
	keys := make([]typeindex.Key, n)
	for i, o := range objs {
		keys[i] = typeindex.KeyOf(o)
	}
	b.Cleanup(func() { runtime.KeepAlive(objs) })
	return &fixture{objs: objs, keys: keys}
}

func newIndex(b *testing.B, capacity int, opts ...typeindex.Option) *typeindex.Index {
	b.Helper()
	ix, err := typeindex.New(capacity, opts...)
	require.NoError(b, err)
	b.Cleanup(func() { _ = ix.Close() })
	return ix
}

func populate(b *testing.B, ix *typeindex.Index, keys []typeindex.Key) {
	b.Helper()
	for _, k := range keys {
		_, err := ix.AddIdentity(k)
		require.NoError(b, err)
	}
}

func componentTypes() []reflect.Type {
	return testutil.ArrayTypes(reflect.TypeFor[testutil.Object](), 128)
}
