// Package siggen synthesizes deterministic test signals.
package siggen

import (
	"fmt"
	"math"
	"math/rand"
)

const pinkRows = 16

// Config controls signal generation.
type Config struct {
	SampleRate int
	DurationS  float64
	Seed       int64
}

func (c Config) Validate() error {
	if c.SampleRate < 8000 {
		return fmt.Errorf("sample rate too low: %d", c.SampleRate)
	}
	if c.DurationS <= 0 {
		return fmt.Errorf("duration must be > 0")
	}
	return nil
}

// Frames returns the sample count for the configured duration.
func (c Config) Frames() int {
	n := int(math.Round(c.DurationS * float64(c.SampleRate)))
	if n < 1 {
		n = 1
	}
	return n
}

// Silence returns an all-zero signal.
func (c Config) Silence() []float64 {
	return make([]float64, c.Frames())
}

// Sine returns a sine tone at freq Hz with the given amplitude.
func (c Config) Sine(freq, amp float64) []float64 {
	out := make([]float64, c.Frames())
	w := 2 * math.Pi * freq / float64(c.SampleRate)
	for i := range out {
		out[i] = amp * math.Sin(w*float64(i))
	}
	return out
}

// Impulse returns a single-sample impulse at time zero.
func (c Config) Impulse(amp float64) []float64 {
	out := make([]float64, c.Frames())
	out[0] = amp
	return out
}

// PinkNoise returns seeded Voss-McCartney pink noise scaled so its peak
// does not exceed amp.
func (c Config) PinkNoise(amp float64) []float64 {
	out := make([]float64, c.Frames())
	rng := rand.New(rand.NewSource(c.Seed))

	var rows [pinkRows]float64
	var running float64
	for i := range rows {
		rows[i] = rng.Float64()*2 - 1
		running += rows[i]
	}

	peak := 0.0
	for i := range out {
		// Update the row selected by the trailing zeros of the counter.
		row := 0
		for n := i + 1; n&1 == 0 && row < pinkRows-1; n >>= 1 {
			row++
		}
		running -= rows[row]
		rows[row] = rng.Float64()*2 - 1
		running += rows[row]

		v := running / pinkRows
		out[i] = v
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak > 0 {
		g := amp / peak
		for i := range out {
			out[i] *= g
		}
	}
	return out
}
