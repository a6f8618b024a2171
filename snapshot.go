package typeindex

import (
	"bytes"
	"cmp"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"
	"slices"

	"github.com/hupe1980/typeindex/blobstore"
	"github.com/hupe1980/typeindex/codec"
	"github.com/hupe1980/typeindex/internal/compress"
	"github.com/hupe1980/typeindex/internal/conv"
	"github.com/hupe1980/typeindex/internal/hash"
)

// CurrentBlob is the name of the pointer blob written by SaveCurrent.
const CurrentBlob = "CURRENT"

const (
	snapshotMagic   = "TIDX"
	snapshotVersion = 1
)

// Compression selects how snapshot payloads are compressed.
type Compression = compress.Type

// Supported snapshot compressions.
const (
	CompressionNone = compress.None
	CompressionLZ4  = compress.LZ4
	CompressionZSTD = compress.ZSTD
)

type snapshotOptions struct {
	codec       codec.Codec
	compression Compression
}

// SnapshotOption configures Save.
type SnapshotOption func(*snapshotOptions)

// WithSnapshotCodec sets the payload codec. Defaults to codec.Default.
func WithSnapshotCodec(c codec.Codec) SnapshotOption {
	return func(o *snapshotOptions) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithSnapshotCompression sets the payload compression. Defaults to ZSTD.
func WithSnapshotCompression(c Compression) SnapshotOption {
	return func(o *snapshotOptions) {
		o.compression = c
	}
}

type snapshotPayload struct {
	Last    uint32       `json:"last"`
	Entries []Assignment `json:"entries"`
}

// Save writes the current type assignments to store under name. Snapshots
// are immutable: saving to a name that already exists fails with an error
// matching blobstore.ErrExists.
//
// The snapshot records every named assignment and the counter position, so
// Restore into a fresh index reproduces the same indices even for types the
// restoring process cannot resolve.
func (ti *TypeIndex) Save(ctx context.Context, store blobstore.BlobStore, name string, optFns ...SnapshotOption) (err error) {
	var entries, size int
	defer func() {
		ti.opts.logger.LogSnapshot(ctx, name, entries, size, err)
	}()

	o := snapshotOptions{codec: codec.Default, compression: CompressionZSTD}
	for _, fn := range optFns {
		fn(&o)
	}

	rc := ti.opts.rc
	if err := rc.AcquireBackground(ctx); err != nil {
		return err
	}
	defer rc.ReleaseBackground()

	assignments, err := ti.Assignments()
	if err != nil {
		return err
	}
	entries = len(assignments)

	data, err := encodeSnapshot(snapshotPayload{
		Last:    ti.counter.Last(),
		Entries: assignments,
	}, o)
	if err != nil {
		return err
	}
	size = len(data)

	if err := rc.AcquireIO(ctx, len(data)); err != nil {
		return err
	}
	if err := blobstore.Create(ctx, store, name, data); err != nil {
		return fmt.Errorf("typeindex: write snapshot %s: %w", name, err)
	}
	return nil
}

// Restore replays the snapshot stored under name into ti, which must be
// empty. resolve maps recorded type names back to types; names it cannot
// resolve still consume their index so later indices line up. Restore must
// not run concurrently with other registrations on ti.
func (ti *TypeIndex) Restore(ctx context.Context, store blobstore.BlobStore, name string, resolve func(string) (reflect.Type, bool)) (err error) {
	var restored, skipped int
	defer func() {
		ti.opts.logger.LogRestore(ctx, name, restored, skipped, err)
	}()

	size, err := ti.Size()
	if err != nil {
		return err
	}
	if size != 0 || ti.counter.Last() != 0 {
		return ErrNotEmpty
	}

	rc := ti.opts.rc
	if err := rc.AcquireBackground(ctx); err != nil {
		return err
	}
	defer rc.ReleaseBackground()

	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return fmt.Errorf("typeindex: read snapshot %s: %w", name, err)
	}
	if err := rc.AcquireIO(ctx, len(data)); err != nil {
		return err
	}

	p, err := decodeSnapshot(data)
	if err != nil {
		return err
	}

	for _, e := range p.Entries {
		if gap := e.Index - ti.counter.Last() - 1; gap > 0 {
			ti.counter.Skip(gap)
		}

		var t reflect.Type
		ok := false
		if resolve != nil {
			t, ok = resolve(e.Name)
		}
		if !ok || t == nil {
			ti.counter.Skip(1)
			skipped++
			continue
		}

		idx, err := ti.IndexOf(t)
		if err != nil {
			return err
		}
		if idx != e.Index {
			return &MismatchError{Name: e.Name, Expected: e.Index, Actual: idx}
		}
		restored++
	}

	if last := ti.counter.Last(); p.Last > last {
		ti.counter.Skip(p.Last - last)
	}
	return nil
}

// SaveCurrent saves a snapshot under name and then points CurrentBlob at it.
// With a store that commits CurrentBlob atomically (s3.DDBCommitStore) a
// concurrent publisher makes the second step fail rather than be lost.
func (ti *TypeIndex) SaveCurrent(ctx context.Context, store blobstore.BlobStore, name string, optFns ...SnapshotOption) error {
	if err := ti.Save(ctx, store, name, optFns...); err != nil {
		return err
	}
	if err := store.Put(ctx, CurrentBlob, []byte(name)); err != nil {
		return fmt.Errorf("typeindex: publish %s: %w", name, err)
	}
	return nil
}

// RestoreCurrent restores the snapshot CurrentBlob points at and returns its
// name.
func (ti *TypeIndex) RestoreCurrent(ctx context.Context, store blobstore.BlobStore, resolve func(string) (reflect.Type, bool)) (string, error) {
	ptr, err := blobstore.ReadAll(ctx, store, CurrentBlob)
	if err != nil {
		return "", fmt.Errorf("typeindex: read %s: %w", CurrentBlob, err)
	}
	name := string(bytes.TrimSpace(ptr))
	if name == "" {
		return "", fmt.Errorf("%w: empty %s", ErrInvalidSnapshot, CurrentBlob)
	}
	return name, ti.Restore(ctx, store, name, resolve)
}

// Snapshot layout:
//
//	magic "TIDX" | version u8 | compression u8 | codec name len u8 | codec name |
//	crc32c u32 LE of frame | frame
//
// where frame is the compress framing of the codec-encoded snapshotPayload.
func encodeSnapshot(p snapshotPayload, o snapshotOptions) ([]byte, error) {
	raw, err := o.codec.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("typeindex: encode snapshot: %w", err)
	}
	frame, err := compress.Encode(raw, o.compression)
	if err != nil {
		return nil, fmt.Errorf("typeindex: compress snapshot: %w", err)
	}

	codecName := o.codec.Name()
	nameLen, err := conv.IntToUint8(len(codecName))
	if err != nil {
		return nil, fmt.Errorf("typeindex: codec name %q: %w", codecName, err)
	}

	out := make([]byte, 0, len(snapshotMagic)+3+len(codecName)+4+len(frame))
	out = append(out, snapshotMagic...)
	out = append(out, snapshotVersion, byte(o.compression), nameLen)
	out = append(out, codecName...)
	out = binary.LittleEndian.AppendUint32(out, hash.CRC32C(frame))
	out = append(out, frame...)
	return out, nil
}

func decodeSnapshot(data []byte) (snapshotPayload, error) {
	var p snapshotPayload

	const fixed = len(snapshotMagic) + 3
	if len(data) < fixed || string(data[:len(snapshotMagic)]) != snapshotMagic {
		return p, fmt.Errorf("%w: bad magic", ErrInvalidSnapshot)
	}
	hdr := data[len(snapshotMagic):]
	if hdr[0] != snapshotVersion {
		return p, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, hdr[0])
	}
	compression := Compression(hdr[1])
	if !compression.Valid() {
		return p, fmt.Errorf("%w: unknown compression %d", ErrInvalidSnapshot, hdr[1])
	}
	nameLen := int(hdr[2])

	rest := data[fixed:]
	if len(rest) < nameLen+4 {
		return p, fmt.Errorf("%w: truncated header", ErrInvalidSnapshot)
	}
	c, ok := codec.ByName(string(rest[:nameLen]))
	if !ok {
		return p, fmt.Errorf("%w: unknown codec %q", ErrInvalidSnapshot, rest[:nameLen])
	}
	sum := binary.LittleEndian.Uint32(rest[nameLen:])
	frame := rest[nameLen+4:]
	if hash.CRC32C(frame) != sum {
		return p, fmt.Errorf("%w: checksum mismatch", ErrInvalidSnapshot)
	}

	raw, err := compress.Decode(frame, compression)
	if err != nil {
		return p, errors.Join(ErrInvalidSnapshot, err)
	}
	if err := c.Unmarshal(raw, &p); err != nil {
		return p, errors.Join(ErrInvalidSnapshot, err)
	}

	slices.SortFunc(p.Entries, func(a, b Assignment) int {
		return cmp.Compare(a.Index, b.Index)
	})
	var prev uint32
	for _, e := range p.Entries {
		if e.Index <= prev || e.Index > p.Last {
			return p, fmt.Errorf("%w: entry %q has index %d", ErrInvalidSnapshot, e.Name, e.Index)
		}
		prev = e.Index
	}
	return p, nil
}
