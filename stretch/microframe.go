package stretch

import (
	"math"
	"math/cmplx"
	"math/rand"
)

// microScratch holds the per-band work buffers of the phase-randomizing
// inner loop, reused across frames and chunks.
type microScratch struct {
	spec  []complex128 // randomized spectrum copy
	cand  []float64    // current trial candidate
	best  []float64    // best-correlated candidate so far
	out   []float64    // fade half followed by raw carry half
	corrs []float64    // per-trial signed correlations, in draw order
}

func newMicroScratch(winLen int) *microScratch {
	return &microScratch{
		spec: make([]complex128, winLen/2+1),
		cand: make([]float64, winLen),
		best: make([]float64, winLen),
		out:  make([]float64, winLen),
	}
}

// microFrame turns one analysis spectrum (b.spec) into a randomized
// synthesis frame for a single sub-band loop. It draws e.trials phase
// randomizations, keeps the one whose first half correlates strongest
// with tail, flips its sign if the correlation is negative, and
// crossfades it against tail with a ness window shaped by the achieved
// correlation. The returned slice holds the crossfaded fade half
// followed by the raw second half (the next frame's correlation
// target); it aliases band scratch and is valid until the next call.
// The signed correlation of the kept trial is returned alongside.
func (e *Engine) microFrame(b *bandState, rng *rand.Rand, tail, mask []float64) ([]float64, float64) {
	s := b.frame
	half := b.winLen / 2

	var tt float64
	for _, v := range tail {
		tt += v * v
	}

	s.corrs = s.corrs[:0]
	chosen := false
	bestCorr := 0.0
	bestAbs := 0.0
	for trial := 0; trial < e.trials; trial++ {
		// DC and Nyquist keep their original magnitude and phase.
		s.spec[0] = b.spec[0]
		s.spec[half] = b.spec[half]
		for i := 1; i < half; i++ {
			mag := cmplx.Abs(b.spec[i])
			if e.filterOn {
				mag *= mask[i]
			}
			phase := rng.Float64()*math.Pi - math.Pi/2
			s.spec[i] = cmplx.Rect(mag, phase)
		}
		b.fft.inverse(s.cand, s.spec)

		corr := 0.0
		if tt != 0 {
			var tx float64
			for i := 0; i < half; i++ {
				tx += tail[i] * s.cand[i]
			}
			corr = tx / tt
		}
		s.corrs = append(s.corrs, corr)

		if a := math.Abs(corr); a > bestAbs {
			bestCorr, bestAbs = corr, a
			copy(s.best, s.cand)
			chosen = true
		}
	}
	if !chosen {
		// Every trial correlated at zero; any draw works.
		copy(s.best, s.cand)
	}

	if bestCorr < 0 {
		for i := range s.best {
			s.best[i] = -s.best[i]
		}
	}

	c := bestAbs
	if c > 1 {
		c = 1
	}
	ness := NessWindow(b.winLen, c)
	for i := 0; i < half; i++ {
		s.out[i] = s.best[i]*ness[i] + tail[i]*ness[half-1-i]
	}
	copy(s.out[half:], s.best[half:])
	return s.out, bestCorr
}
