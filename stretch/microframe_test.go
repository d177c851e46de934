package stretch

import (
	"math"
	"testing"
)

// prepareSpectrum forward-transforms a deterministic windowed signal
// into b.spec, the state stretchBand leaves behind for the sub-band
// loops.
func prepareSpectrum(t *testing.T, e *Engine, freq float64) *bandState {
	t.Helper()
	b := e.bands[0]
	for i := range b.part {
		b.part[i] = math.Sin(2*math.Pi*freq*float64(i)/float64(b.winLen)) * b.window[i]
	}
	b.fft.forward(b.spec, b.part)
	return b
}

func TestMicroFrameKeepsBestTrial(t *testing.T) {
	e := newTestEngine(t, Config{
		DurationMult: 2,
		Channels:     1,
		NumBands:     1,
		Extreme:      1, // 10 correlation trials
		Seed:         42,
		MaxWinSize:   8192,
	})
	b := prepareSpectrum(t, e, 12.5)
	half := b.winLen / 2

	// Seed the tail from a first frame so the second call has a real
	// correlation target.
	tail := make([]float64, half)
	y, _ := e.microFrame(b, b.rngs[0], tail, b.masks[0])
	copy(tail, y[half:])

	_, corr := e.microFrame(b, b.rngs[0], tail, b.masks[0])
	corrs := b.frame.corrs
	if len(corrs) != 10 {
		t.Fatalf("expected 10 trial correlations, got %d", len(corrs))
	}
	best := math.Abs(corr)
	if best < math.Abs(corrs[0]) {
		t.Fatalf("kept |r|=%g below first trial |r|=%g", best, math.Abs(corrs[0]))
	}
	for i, c := range corrs {
		if math.Abs(c) > best+1e-15 {
			t.Fatalf("trial %d |r|=%g beats kept |r|=%g", i, math.Abs(c), best)
		}
	}
}

func TestMicroFrameSignFlipAlignsWithTail(t *testing.T) {
	e := newTestEngine(t, Config{
		DurationMult: 2,
		Channels:     1,
		NumBands:     1,
		Extreme:      1,
		Seed:         7,
		MaxWinSize:   8192,
	})
	b := prepareSpectrum(t, e, 5)
	half := b.winLen / 2

	tail := make([]float64, half)
	y, _ := e.microFrame(b, b.rngs[0], tail, b.masks[0])
	copy(tail, y[half:])

	y, corr := e.microFrame(b, b.rngs[0], tail, b.masks[0])
	var dot float64
	for i := 0; i < half; i++ {
		dot += tail[i] * y[i]
	}
	if dot < 0 {
		t.Fatalf("fade region anti-correlated with prior tail: dot=%g corr=%g", dot, corr)
	}
}

func TestMicroFrameZeroTailReportsZeroCorrelation(t *testing.T) {
	e := newTestEngine(t, Config{
		DurationMult: 2,
		Channels:     1,
		NumBands:     1,
		Extreme:      1,
		Seed:         3,
		MaxWinSize:   8192,
	})
	b := prepareSpectrum(t, e, 20)
	tail := make([]float64, b.winLen/2)

	y, corr := e.microFrame(b, b.rngs[0], tail, b.masks[0])
	if corr != 0 {
		t.Fatalf("zero tail produced correlation %g", corr)
	}
	for _, c := range b.frame.corrs {
		if c != 0 {
			t.Fatalf("zero tail produced trial correlation %g", c)
		}
	}
	var energy float64
	for _, v := range y {
		energy += v * v
	}
	if energy == 0 {
		t.Fatal("non-zero spectrum produced a silent frame")
	}
}

func TestMicroFrameCarriesRawSecondHalf(t *testing.T) {
	e := newTestEngine(t, Config{
		DurationMult: 2,
		Channels:     1,
		NumBands:     1,
		Seed:         11,
		MaxWinSize:   8192,
	})
	b := prepareSpectrum(t, e, 8)
	half := b.winLen / 2
	tail := make([]float64, half)

	y, _ := e.microFrame(b, b.rngs[0], tail, b.masks[0])
	// With a zero tail the fade region is the candidate shaped by the
	// c=0 ness window; the carry half must be the raw candidate, and
	// neither half may be silent.
	for i := 0; i < half; i++ {
		if y[half+i] != b.frame.best[half+i] {
			t.Fatalf("carry sample %d is %g, raw candidate is %g", i, y[half+i], b.frame.best[half+i])
		}
	}
	var fade, carry float64
	for i := 0; i < half; i++ {
		fade += y[i] * y[i]
		carry += y[half+i] * y[half+i]
	}
	if carry == 0 {
		t.Fatal("carry half is silent")
	}
	if fade == 0 {
		t.Fatal("fade half is silent")
	}
}
