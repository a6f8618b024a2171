package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string `json:"name"`
	Index uint32 `json:"index"`
}

func TestByName(t *testing.T) {
	for _, name := range []string{"go-json", "sonnet"} {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("gob")
	assert.False(t, ok)
}

func TestCodecs_Interchangeable(t *testing.T) {
	in := []entry{{Name: "ecs.Position", Index: 1}, {Name: "[4]int", Index: 7}}

	for _, enc := range []Codec{GoJSON{}, Sonnet{}} {
		for _, dec := range []Codec{GoJSON{}, Sonnet{}} {
			t.Run(enc.Name()+"->"+dec.Name(), func(t *testing.T) {
				data, err := enc.Marshal(in)
				require.NoError(t, err)
				var out []entry
				require.NoError(t, dec.Unmarshal(data, &out))
				assert.Equal(t, in, out)
			})
		}
	}
}
