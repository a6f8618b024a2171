package typeindex

import "reflect"

// Key is an opaque identity: the address of a runtime type descriptor or of
// a live object. Two keys are equal only if they name the same underlying
// object; nothing behind the address is ever compared.
//
// The zero Key is invalid.
type Key uintptr

// TypeKey returns the identity of a runtime type descriptor.
//
// Type descriptors are never moved or freed, so the key is stable for the
// life of the process. Types built at run time with reflect (SliceOf, ArrayOf,
// ...) are canonicalized by the runtime, so constructing the same type twice
// yields the same key.
func TypeKey(t reflect.Type) Key {
	if t == nil {
		return 0
	}
	return Key(reflect.ValueOf(t).Pointer())
}

// KeyFor returns the identity of the type T.
func KeyFor[T any]() Key {
	return TypeKey(reflect.TypeFor[T]())
}

// KeyOf returns the identity of the object p points to.
//
// p escapes to the heap, so the object never moves with a growing goroutine
// stack and its key stays fixed. The caller must keep the object reachable
// for as long as the key is in use; once collected, its address may be reused
// by an unrelated object. Pointers to distinct zero-sized values may share an
// address and therefore a key.
func KeyOf[T any](p *T) Key {
	if p == nil {
		return 0
	}
	return Key(reflect.ValueOf(p).Pointer())
}
