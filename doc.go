// Package typeindex assigns dense, stable integer indices to identities.
//
// An identity is the address of a runtime type descriptor or of a live
// object. The first time an identity is seen it receives the next index
// (1, 2, 3, ...); every later lookup, from any goroutine, returns the same
// index. Indices are never reused or removed, which makes them suitable as
// component ids and bit positions in entity-component-system signatures.
//
// # Quick Start
//
//	idx, _ := typeindex.New(1024)
//	defer idx.Close()
//
//	pos, _ := idx.AddIdentity(typeindex.KeyFor[Position]())  // 1
//	vel, _ := idx.AddIdentity(typeindex.KeyFor[Velocity]())  // 2
//	pos, _ = idx.GetIndexOrAdd(typeindex.KeyFor[Position]()) // 1 again
//
// Scoped acquisition releases the table on every exit path:
//
//	err := typeindex.Scoped(1024, func(idx *typeindex.Index) error {
//	    ids, err := idx.GetIndexOrAddBatch(keys)
//	    ...
//	})
//
// # Storage Model
//
// Identities live in a fixed-capacity, lock-free open-addressed table whose
// slots are mapped outside the Go heap. A key whose bounded probe sequence
// finds neither itself nor a free slot goes to a concurrent overflow map
// (disable with WithFallback(false) to get *CapacityExhaustedError instead).
// Both structures draw from one counter, so indices stay unique and dense.
//
// # Types and Snapshots
//
// TypeIndex keys the index by reflect.Type, builds roaring bitmap masks and
// persists its assignments to any blobstore.BlobStore (local disk, memory,
// S3, MinIO), so a restarted process can reproduce the same indices:
//
//	ti, _ := typeindex.NewTypeIndex(0)
//	mask, _ := ti.Mask(reflect.TypeFor[Position](), reflect.TypeFor[Velocity]())
//	_ = ti.SaveCurrent(ctx, blobstore.NewLocalStore("./state"), "types-001")
package typeindex
