package typeindex

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/puzpuzpuz/xsync/v3"
)

// Assignment pairs a type name with the index it was assigned.
type Assignment struct {
	Name  string `json:"name"`
	Index uint32 `json:"index"`
}

// TypeIndex is an Index keyed by reflect.Type. It remembers which type each
// key came from, so assignments can be listed by name and persisted with
// Save.
type TypeIndex struct {
	*Index
	types *xsync.MapOf[Key, reflect.Type]
}

// NewTypeIndex creates a TypeIndex; see New for capacity and options.
func NewTypeIndex(capacity int, optFns ...Option) (*TypeIndex, error) {
	ix, err := New(capacity, optFns...)
	if err != nil {
		return nil, err
	}
	return &TypeIndex{
		Index: ix,
		types: xsync.NewMapOf[Key, reflect.Type](),
	}, nil
}

// IndexOf returns the index of t, registering it if needed.
func (ti *TypeIndex) IndexOf(t reflect.Type) (uint32, error) {
	if t == nil {
		return 0, ErrInvalidKey
	}
	k := TypeKey(t)
	idx, err := ti.AddIdentity(k)
	if err != nil {
		return 0, err
	}
	ti.types.Store(k, t)
	return idx, nil
}

// Lookup returns the index of t, or 0 if t has not been registered.
func (ti *TypeIndex) Lookup(t reflect.Type) (uint32, error) {
	if t == nil {
		return 0, ErrInvalidKey
	}
	return ti.GetIndex(TypeKey(t))
}

// IndexOfBatch resolves ts in one pass; see Index.GetIndexOrAddBatch.
func (ti *TypeIndex) IndexOfBatch(ts ...reflect.Type) ([]uint32, error) {
	keys := make([]Key, len(ts))
	for i, t := range ts {
		if t == nil {
			return nil, fmt.Errorf("%w: batch position %d", ErrInvalidKey, i)
		}
		keys[i] = TypeKey(t)
	}

	ids, err := ti.GetIndexOrAddBatch(keys)
	if err != nil {
		return nil, err
	}
	for i, t := range ts {
		ti.types.Store(keys[i], t)
	}
	return ids, nil
}

// Mask returns the set of indices of ts, registering any that are new.
func (ti *TypeIndex) Mask(ts ...reflect.Type) (*roaring.Bitmap, error) {
	ids, err := ti.IndexOfBatch(ts...)
	if err != nil {
		return nil, err
	}
	return roaring.BitmapOf(ids...), nil
}

// Types returns the types whose indices are set in mask, in index order.
// Indices without a known type are skipped. A nil mask is empty.
func (ti *TypeIndex) Types(mask *roaring.Bitmap) ([]reflect.Type, error) {
	if mask == nil {
		return nil, nil
	}
	byIndex := make(map[uint32]reflect.Type)
	err := ti.Range(func(k Key, idx uint32) bool {
		if mask.Contains(idx) {
			if t, ok := ti.types.Load(k); ok {
				byIndex[idx] = t
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	out := make([]reflect.Type, 0, len(byIndex))
	it := mask.Iterator()
	for it.HasNext() {
		if t, ok := byIndex[it.Next()]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// Assignments lists every type registered through this TypeIndex, sorted by
// index. Keys registered directly with AddIdentity have no name and are not
// listed.
func (ti *TypeIndex) Assignments() ([]Assignment, error) {
	var out []Assignment
	err := ti.Range(func(k Key, idx uint32) bool {
		if t, ok := ti.types.Load(k); ok {
			out = append(out, Assignment{Name: TypeName(t), Index: idx})
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b Assignment) int {
		return cmp.Compare(a.Index, b.Index)
	})
	return out, nil
}

// IndexFor returns the index of T in ti, registering it if needed.
//
//	pos, err := typeindex.IndexFor[Position](ti)
func IndexFor[T any](ti *TypeIndex) (uint32, error) {
	return ti.IndexOf(reflect.TypeFor[T]())
}

// TypeName returns a process-independent name for t: the import path
// qualified name for named types, the type literal otherwise.
func TypeName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// Resolver builds a name lookup over ts for Restore.
func Resolver(ts ...reflect.Type) func(string) (reflect.Type, bool) {
	m := make(map[string]reflect.Type, len(ts))
	for _, t := range ts {
		if t != nil {
			m[TypeName(t)] = t
		}
	}
	return func(name string) (reflect.Type, bool) {
		t, ok := m[name]
		return t, ok
	}
}
