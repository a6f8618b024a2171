package testutil

import (
	"math/rand"
	"reflect"
	"sync"
)

// Object is a non-zero-sized allocation whose address serves as an identity.
type Object struct {
	ID int
	_  [8]byte
}

// Objects allocates n distinct objects. Keep the returned slice reachable
// for as long as their addresses are used as keys.
func Objects(n int) []*Object {
	out := make([]*Object, n)
	for i := range out {
		out[i] = &Object{ID: i}
	}
	return out
}

// ArrayTypes returns n distinct runtime types, [1]base through [n]base.
// The runtime canonicalizes constructed types, so calling ArrayTypes twice
// yields identical reflect.Type values.
func ArrayTypes(base reflect.Type, n int) []reflect.Type {
	out := make([]reflect.Type, n)
	for i := range out {
		out[i] = reflect.ArrayOf(i+1, base)
	}
	return out
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Shuffle pseudo-randomizes the order of n elements using swap.
func (r *RNG) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Shuffle(n, swap)
}

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}
