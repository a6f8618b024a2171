package hash

import "math/bits"

const (
	prime64x1 = 0x9E3779B185EBCA87
	prime64x2 = 0xC2B2AE3D27D4EB4F
	prime64x3 = 0x165667B19E3779F9
)

// Identity returns the probe hash for an identity key.
//
// The function is pure and allocation-free; it runs on every table operation.
func Identity(key uint64) uint64 {
	h := key*prime64x2 + prime64x3
	h = bits.RotateLeft64(h, 31) * prime64x1
	h ^= h >> 33
	h *= prime64x2
	h ^= h >> 29
	h *= prime64x3
	h ^= h >> 32
	return h
}
