// Package codec encodes snapshot payloads.
//
// Snapshots record the codec name in their header, so a snapshot written with
// one codec is always decoded with the same one. Changing Default only
// affects new snapshots.
package codec

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default is the codec used for new snapshots.
var Default Codec = GoJSON{}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case GoJSON{}.Name():
		return GoJSON{}, true
	case Sonnet{}.Name():
		return Sonnet{}, true
	default:
		return nil, false
	}
}
