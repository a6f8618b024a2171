// Package compress frames snapshot payloads with optional LZ4 or ZSTD
// compression.
//
// Frame layout: [rawSize uint32][packedSize uint32][data...]. A packedSize of
// zero marks data stored raw, which happens whenever compression does not
// save at least a tenth of the input.
package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type selects the compression algorithm of a frame.
type Type uint8

const (
	// None stores the payload raw.
	None Type = 0
	// LZ4 favours speed.
	LZ4 Type = 1
	// ZSTD favours ratio.
	ZSTD Type = 2
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compress.Type(%d)", uint8(t))
	}
}

// Valid reports whether t is a known algorithm.
func (t Type) Valid() bool {
	return t <= ZSTD
}

const headerSize = 8

var (
	// ErrCorrupt is returned when a frame cannot be decoded.
	ErrCorrupt = errors.New("compress: corrupt frame")
	// ErrUnknownType is returned for an unrecognized algorithm.
	ErrUnknownType = errors.New("compress: unknown type")
)

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

// Encode frames data using algorithm t.
func Encode(data []byte, t Type) ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, t)
	}
	if uint64(len(data)) > 1<<32-1 {
		return nil, fmt.Errorf("compress: payload of %d bytes too large", len(data))
	}

	var packed []byte
	switch {
	case t == None || len(data) == 0:
	case t == LZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("compress: lz4: %w", err)
		}
		packed = buf[:n]
	case t == ZSTD:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, fmt.Errorf("compress: zstd: %w", err)
		}
		packed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	}

	out := make([]byte, headerSize, headerSize+len(data))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))

	if len(packed) == 0 || float64(len(packed)) > float64(len(data))*0.9 {
		return append(out, data...), nil
	}

	binary.LittleEndian.PutUint32(out[4:], uint32(len(packed)))
	return append(out, packed...), nil
}

// Decode reverses Encode. t must be the algorithm the frame was written with.
func Decode(frame []byte, t Type) ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, t)
	}
	if len(frame) < headerSize {
		return nil, fmt.Errorf("%w: short header", ErrCorrupt)
	}

	rawSize := binary.LittleEndian.Uint32(frame[0:])
	packedSize := binary.LittleEndian.Uint32(frame[4:])
	body := frame[headerSize:]

	if packedSize == 0 {
		if uint64(len(body)) != uint64(rawSize) {
			return nil, fmt.Errorf("%w: raw size %d, have %d", ErrCorrupt, rawSize, len(body))
		}
		return body, nil
	}
	if uint64(len(body)) != uint64(packedSize) {
		return nil, fmt.Errorf("%w: packed size %d, have %d", ErrCorrupt, packedSize, len(body))
	}

	out := make([]byte, rawSize)
	switch t {
	case LZ4:
		n, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrCorrupt, err)
		}
		if uint32(n) != rawSize {
			return nil, fmt.Errorf("%w: lz4 size mismatch", ErrCorrupt)
		}
		return out, nil
	case ZSTD:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, fmt.Errorf("compress: zstd: %w", err)
		}
		defer zstdDecoderPool.Put(dec)

		decoded, err := dec.DecodeAll(body, out[:0])
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrCorrupt, err)
		}
		if uint32(len(decoded)) != rawSize {
			return nil, fmt.Errorf("%w: zstd size mismatch", ErrCorrupt)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("%w: packed frame for type %s", ErrCorrupt, t)
	}
}
