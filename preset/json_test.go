package preset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePreset(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "preset.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadJSONAppliesOverDefaults(t *testing.T) {
	path := writePreset(t, `{"duration_mult": 12.5, "slices": 3, "filter_on": false, "seed": 44}`)
	s, err := LoadJSON(path)
	require.NoError(t, err)

	assert.Equal(t, 12.5, s.DurationMult)
	assert.Equal(t, 3, s.Slices)
	assert.False(t, s.FilterOn)
	assert.Equal(t, int64(44), s.Seed)

	// Unset fields keep their defaults.
	def := Default()
	assert.Equal(t, def.Extreme, s.Extreme)
	assert.Equal(t, def.PaulWin, s.PaulWin)
	assert.Equal(t, def.Blocks, s.Blocks)
}

func TestLoadJSONValidates(t *testing.T) {
	cases := map[string]string{
		"duration below one":  `{"duration_mult": 0.25}`,
		"slices out of range": `{"slices": 11}`,
		"negative extreme":    `{"extreme": -2}`,
		"bad paul win":        `{"paul_win": 9}`,
		"negative blocks":     `{"blocks": -1}`,
		"malformed json":      `{"slices": `,
	}
	for name, body := range cases {
		_, err := LoadJSON(writePreset(t, body))
		assert.Error(t, err, name)
	}
}

func TestLoadJSONMissingFile(t *testing.T) {
	_, err := LoadJSON(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestApplyNilFileIsNoop(t *testing.T) {
	s := Default()
	require.NoError(t, Apply(&s, nil))
	assert.Equal(t, Default(), s)
	require.Error(t, Apply(nil, &File{}))
}
