// Package hash provides the hashing primitives used by typeindex.
//
// # Identity hashing
//
// Identity derives a probe hash from an identity key (an address or opaque
// token), never from the content behind it. The mix is an xxHash64-style
// avalanche so that addresses which differ only in their low alignment bits
// still spread across the primary table:
//
//	h := hash.Identity(uint64(key))
//
// # CRC32-Castagnoli (CRC32C)
//
// Snapshot blobs carry a CRC32C checksum of their payload, computed with
// github.com/klauspost/crc32, which uses SSE4.2 / ARM CRC instructions when
// available and matches hash/crc32 bit for bit.
//
//	checksum := hash.CRC32C(data)
package hash
