package stretch

import (
	"errors"
	"fmt"
	"sync"

	algofft "github.com/cwbudde/algo-fft"
)

var planCache sync.Map // map[int]*fftPlan

// fftPlan pairs the optimized real-FFT plan with the generic fallback;
// the fast path is not implemented for every length on every platform.
// Plans are cached per window length for the lifetime of the process.
type fftPlan struct {
	mu   sync.Mutex
	n    int
	fast *algofft.FastPlanReal64
	safe *algofft.PlanRealT[float64, complex128]
}

func planFor(n int) (*fftPlan, error) {
	if v, ok := planCache.Load(n); ok {
		return v.(*fftPlan), nil
	}

	p := &fftPlan{n: n}

	fast, err := algofft.NewFastPlanReal64(n)
	if err == nil {
		p.fast = fast
	} else if !errors.Is(err, algofft.ErrNotImplemented) {
		// Ignore fast-plan setup errors and rely on the safe plan.
	}

	safe, err := algofft.NewPlanReal64(n)
	if err != nil {
		if p.fast == nil {
			return nil, fmt.Errorf("stretch: fft plan for length %d: %w", n, err)
		}
	} else {
		p.safe = safe
	}

	actual, _ := planCache.LoadOrStore(n, p)
	return actual.(*fftPlan), nil
}

// forward computes the real forward transform of src (length n) into
// dst (n/2+1 bins). Length mismatches are programming errors.
func (p *fftPlan) forward(dst []complex128, src []float64) {
	if len(src) != p.n || len(dst) != p.n/2+1 {
		panic(fmt.Sprintf("stretch: fft forward length mismatch: n=%d src=%d dst=%d", p.n, len(src), len(dst)))
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fast != nil {
		p.fast.Forward(dst, src)
		return
	}
	if err := p.safe.Forward(dst, src); err != nil {
		panic(fmt.Sprintf("stretch: fft forward length %d: %v", p.n, err))
	}
}

// inverse computes the normalized inverse transform of src (n/2+1 bins)
// into dst (length n), so that inverse(forward(x)) == x.
func (p *fftPlan) inverse(dst []float64, src []complex128) {
	if len(dst) != p.n || len(src) != p.n/2+1 {
		panic(fmt.Sprintf("stretch: fft inverse length mismatch: n=%d src=%d dst=%d", p.n, len(src), len(dst)))
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fast != nil {
		p.fast.Inverse(dst, src)
		return
	}
	if err := p.safe.Inverse(dst, src); err != nil {
		panic(fmt.Sprintf("stretch: fft inverse length %d: %v", p.n, err))
	}
}
