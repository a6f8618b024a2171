package typeindex

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by every operation invoked after Close.
	ErrClosed = errors.New("typeindex: index is closed")

	// ErrCapacityExhausted is returned when the primary table cannot place a
	// key and the overflow map is disabled.
	ErrCapacityExhausted = errors.New("typeindex: primary table capacity exhausted")

	// ErrInvalidKey is returned for the zero Key.
	ErrInvalidKey = errors.New("typeindex: invalid identity key")

	// ErrInvalidCapacity is returned when the requested capacity is out of range.
	ErrInvalidCapacity = errors.New("typeindex: invalid capacity")

	// ErrNotEmpty is returned when restoring a snapshot into an index that
	// already holds entries.
	ErrNotEmpty = errors.New("typeindex: index is not empty")

	// ErrInvalidSnapshot is returned when a snapshot blob is malformed or corrupt.
	ErrInvalidSnapshot = errors.New("typeindex: invalid snapshot")

	// ErrSnapshotMismatch is returned when a restored type does not receive
	// the index recorded in the snapshot.
	ErrSnapshotMismatch = errors.New("typeindex: snapshot index mismatch")
)

// CapacityExhaustedError reports a key the primary table could not place
// while the overflow map was disabled.
//
// It matches ErrCapacityExhausted with errors.Is.
type CapacityExhaustedError struct {
	Key        Key
	Capacity   int
	ProbeLimit int
}

func (e *CapacityExhaustedError) Error() string {
	return fmt.Sprintf("%s: key %#x found no slot within %d probes (capacity %d, fallback disabled)",
		ErrCapacityExhausted, uintptr(e.Key), e.ProbeLimit, e.Capacity)
}

func (e *CapacityExhaustedError) Unwrap() error { return ErrCapacityExhausted }

// MismatchError describes a snapshot entry that was restored under a
// different index than recorded.
//
// It matches ErrSnapshotMismatch with errors.Is.
type MismatchError struct {
	Name     string
	Expected uint32
	Actual   uint32
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: %s expected %d, got %d", ErrSnapshotMismatch, e.Name, e.Expected, e.Actual)
}

func (e *MismatchError) Unwrap() error { return ErrSnapshotMismatch }
