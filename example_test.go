package typeindex_test

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hupe1980/typeindex"
	"github.com/hupe1980/typeindex/blobstore"
)

type Transform struct{ X, Y, Z float32 }
type Sprite struct{ Atlas string }

func Example() {
	idx, err := typeindex.New(1024)
	if err != nil {
		panic(err)
	}
	defer idx.Close()

	a, _ := idx.AddIdentity(typeindex.KeyFor[Transform]())
	b, _ := idx.AddIdentity(typeindex.KeyFor[Sprite]())
	c, _ := idx.GetIndexOrAdd(typeindex.KeyFor[Transform]())
	size, _ := idx.Size()

	fmt.Println(a, b, c, size)
	// Output: 1 2 1 2
}

func ExampleScoped() {
	err := typeindex.Scoped(64, func(idx *typeindex.Index) error {
		ids, err := idx.GetIndexOrAddBatch([]typeindex.Key{
			typeindex.KeyFor[Sprite](),
			typeindex.KeyFor[Transform](),
			typeindex.KeyFor[Sprite](),
		})
		fmt.Println(ids)
		return err
	})
	fmt.Println(err)
	// Output:
	// [1 2 1]
	// <nil>
}

func ExampleTypeIndex_Mask() {
	ti, _ := typeindex.NewTypeIndex(64)
	defer ti.Close()

	mask, _ := ti.Mask(reflect.TypeFor[Transform](), reflect.TypeFor[Sprite]())
	fmt.Println(mask.ToArray())
	// Output: [1 2]
}

func ExampleTypeIndex_SaveCurrent() {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	types := []reflect.Type{reflect.TypeFor[Transform](), reflect.TypeFor[Sprite]()}

	src, _ := typeindex.NewTypeIndex(64)
	defer src.Close()
	_, _ = src.IndexOfBatch(types...)
	_ = src.SaveCurrent(ctx, store, "types-001")

	dst, _ := typeindex.NewTypeIndex(64)
	defer dst.Close()
	name, _ := dst.RestoreCurrent(ctx, store, typeindex.Resolver(types...))
	sprite, _ := typeindex.IndexFor[Sprite](dst)

	fmt.Println(name, sprite)
	// Output: types-001 2
}
