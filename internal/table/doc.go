// Package table implements the fixed-capacity, lock-free primary slot table.
//
// # Layout
//
// The table is an open-addressed array of 16-byte slots laid over memory the
// caller owns (an anonymous mapping in production). A slot is
//
//	key   uint64  identity key, 0 = empty
//	index uint32  assigned index, 0 = not yet published
//
// which gives three states: Empty (key == 0), Reserved (key != 0, index == 0)
// and Filled (key != 0, index != 0). Filled slots never change again.
//
// # Protocol
//
// A writer claims a slot by CAS'ing its key from 0 to the identity, draws an
// index from the shared counter and publishes it with Fill. Because the claim
// installs the key itself, a racing writer that loses the CAS can tell at once
// whether the winner registered the same identity (wait for its index) or a
// different one (keep probing). Slots are never released, so a probe sequence
// that is exhausted once stays exhausted: Full is permanent for that key and
// the caller escalates to the overflow map.
//
// There is no resizing. Probing is linear and bounded by ProbeLimit.
package table
