package analysis

import (
	"errors"
	"math"
	"math/cmplx"
	"sync"

	algofft "github.com/cwbudde/algo-fft"
)

var spectralPlanCache sync.Map // map[int]*spectralFFTPlan

type spectralFFTPlan struct {
	mu   sync.Mutex
	fast *algofft.FastPlanReal64
	safe *algofft.PlanRealT[float64, complex128]
}

// Peak returns the absolute peak of x.
func Peak(x []float64) float64 {
	var p float64
	for _, v := range x {
		if a := math.Abs(v); a > p {
			p = a
		}
	}
	return p
}

// RMS returns the root-mean-square level of x.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

// DB converts a linear level to decibels with a -240 dB floor.
func DB(x float64) float64 {
	if x < 1e-12 {
		x = 1e-12
	}
	return 20.0 * math.Log10(x)
}

// RMSEnvelope returns windowed RMS levels of x at the given frame and
// hop sizes.
func RMSEnvelope(x []float64, frame, hop int) []float64 {
	if frame <= 0 || hop <= 0 || len(x) < frame {
		return nil
	}
	n := 1 + (len(x)-frame)/hop
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		start := i * hop
		out[i] = RMS(x[start : start+frame])
	}
	return out
}

// ZeroCrossings counts sign changes in x.
func ZeroCrossings(x []float64) int {
	n := 0
	for i := 1; i < len(x); i++ {
		if (x[i-1] < 0) != (x[i] < 0) {
			n++
		}
	}
	return n
}

// SpectralRMSEDB compares the magnitude spectra of two equal-position
// windows of a and b and returns the RMS error in dB across bins
// 1..n/2-1. The window size adapts to the shorter signal, capped at
// 4096 samples. Signals shorter than 512 samples return 0.
func SpectralRMSEDB(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n < 512 {
		return 0
	}
	if n > 4096 {
		n = 4096
	}
	n &^= 1 // real FFT plans require an even length

	aw := make([]float64, n)
	bw := make([]float64, n)
	for i := 0; i < n; i++ {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		aw[i] = a[i] * w
		bw[i] = b[i] * w
	}

	bins := n / 2
	plan, err := getSpectralFFTPlan(n)
	if err != nil {
		return 0
	}
	specA := make([]complex128, bins+1)
	specB := make([]complex128, bins+1)
	plan.forward(specA, aw)
	plan.forward(specB, bw)

	var sum float64
	for k := 1; k < bins; k++ {
		d := DB(cmplx.Abs(specA[k])) - DB(cmplx.Abs(specB[k]))
		sum += d * d
	}
	return math.Sqrt(sum / float64(bins-1))
}

func getSpectralFFTPlan(n int) (*spectralFFTPlan, error) {
	if v, ok := spectralPlanCache.Load(n); ok {
		return v.(*spectralFFTPlan), nil
	}

	p := &spectralFFTPlan{}

	fast, err := algofft.NewFastPlanReal64(n)
	if err == nil {
		p.fast = fast
	} else if !errors.Is(err, algofft.ErrNotImplemented) {
		// Ignore fast-plan setup errors and rely on the safe plan.
	}

	safe, err := algofft.NewPlanReal64(n)
	if err != nil {
		if p.fast == nil {
			return nil, err
		}
	} else {
		p.safe = safe
	}

	actual, _ := spectralPlanCache.LoadOrStore(n, p)
	return actual.(*spectralFFTPlan), nil
}

func (p *spectralFFTPlan) forward(dst []complex128, src []float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fast != nil {
		p.fast.Forward(dst, src)
		return
	}
	if err := p.safe.Forward(dst, src); err != nil {
		panic(err)
	}
}
