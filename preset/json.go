// Package preset loads stretch run settings from JSON files.
package preset

import (
	"encoding/json"
	"fmt"
	"os"
)

// Settings is a complete set of run parameters, flags-equivalent.
type Settings struct {
	DurationMult float64
	Slices       int
	Extreme      int
	FilterOn     bool
	PaulWin      int
	Blocks       int
	Seed         int64
}

// Default returns the settings used when neither preset nor flag
// overrides a field.
func Default() Settings {
	return Settings{
		DurationMult: 8.0,
		Slices:       9,
		Extreme:      0,
		FilterOn:     true,
		PaulWin:      1,
	}
}

// File is the JSON schema for run presets. Absent fields keep their
// current value.
type File struct {
	DurationMult *float64 `json:"duration_mult"`
	Slices       *int     `json:"slices"`
	Extreme      *int     `json:"extreme"`
	FilterOn     *bool    `json:"filter_on"`
	PaulWin      *int     `json:"paul_win"`
	Blocks       *int     `json:"blocks"`
	Seed         *int64   `json:"seed"`
}

// LoadJSON loads a preset file and applies it on top of the defaults.
func LoadJSON(path string) (Settings, error) {
	s := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return s, fmt.Errorf("preset %s: %w", path, err)
	}
	if err := Apply(&s, &f); err != nil {
		return s, fmt.Errorf("preset %s: %w", path, err)
	}
	return s, nil
}

// Apply validates f and merges its set fields into dst.
func Apply(dst *Settings, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination settings")
	}
	if f == nil {
		return nil
	}

	if f.DurationMult != nil {
		if *f.DurationMult < 1 {
			return fmt.Errorf("duration_mult must be >= 1")
		}
		dst.DurationMult = *f.DurationMult
	}
	if f.Slices != nil {
		if *f.Slices < 1 || *f.Slices > 10 {
			return fmt.Errorf("slices must be 1..10")
		}
		dst.Slices = *f.Slices
	}
	if f.Extreme != nil {
		if *f.Extreme < 0 {
			return fmt.Errorf("extreme must be >= 0")
		}
		dst.Extreme = *f.Extreme
	}
	if f.FilterOn != nil {
		dst.FilterOn = *f.FilterOn
	}
	if f.PaulWin != nil {
		if *f.PaulWin < 1 || *f.PaulWin > 3 {
			return fmt.Errorf("paul_win must be 1..3")
		}
		dst.PaulWin = *f.PaulWin
	}
	if f.Blocks != nil {
		if *f.Blocks < 0 {
			return fmt.Errorf("blocks must be >= 0")
		}
		dst.Blocks = *f.Blocks
	}
	if f.Seed != nil {
		dst.Seed = *f.Seed
	}
	return nil
}
