package stretch

import (
	"fmt"
	"math/rand"
)

const (
	maxBands   = 10
	minWinExp  = 8 // band 0 analysis window is 1 << minWinExp samples
	lrOrder    = 64.0
	baseMaxWin = 65536

	// bandSeedStride and chanSeedStride decorrelate the per-band,
	// per-channel generators derived from one user seed. Channels get
	// independent streams so a channel's output does not depend on how
	// many neighbors it has.
	bandSeedStride int64 = 0x1e3779b97f4a7c15
	chanSeedStride int64 = 0x2545f4914f6cdd1d
)

// Config holds the user-facing stretch parameters.
type Config struct {
	// DurationMult is the output duration multiplier, >= 1.
	DurationMult float64

	// SampleRate of the input audio in Hz. It selects the largest
	// analysis window (65536 below 88.2 kHz, doubling with the rate)
	// and the spectral slice cap. Optional when MaxWinSize is set.
	SampleRate int

	// Channels is the input channel count, >= 1.
	Channels int

	// NumBands is the number of spectral slices, 1..=10. Requests above
	// the sample-rate cap (9 below 88.2 kHz, 10 at or above) are
	// silently clamped.
	NumBands int

	// Extreme selects the slicing/trial strategy: 0 single sub-band per
	// slice, 1 adds 10 correlation trials, 2 splits each slice into 4
	// sub-bands, 3 into 2 sub-bands with 3 trials, and values above 3
	// run that many trials with the mode-0 layout.
	Extreme int

	// FilterOn applies the Linkwitz-Riley band masks to the slice
	// magnitudes. Forced off on the single-band path.
	FilterOn bool

	// PaulWin selects the single-band analysis window: 1, 2 or 3 for
	// 8192, 16384 or 32768 samples. Has no effect when NumBands > 1,
	// but is validated for every band count. Zero defaults to 1.
	PaulWin int

	// Seed feeds the per-band phase generators. Equal seeds give
	// bit-identical output.
	Seed int64

	// MaxWinSize overrides the sample-rate-derived largest window.
	// Zero derives it; a non-zero value must be a power of two at
	// least as large as the largest active band window.
	MaxWinSize int
}

// bandState is the per-band slice of the engine: everything one band
// task touches, so bands never share mutable memory.
type bandState struct {
	index  int // ordinal in the window-size ladder, 0..9
	winLen int
	hop    float64
	window []float64    // Paul analysis window, winLen samples
	masks  [][]float64  // one Linkwitz-Riley mask per sub-band loop
	tail   []float64    // channels * 2*winLen carry-over
	rngs   []*rand.Rand // one phase generator per channel
	fft    *fftPlan
	frame  *microScratch
	out    []float64 // channels * maxWin band output
	part   []float64 // windowed analysis frame scratch
	spec   []complex128
}

// Engine is the chunk-batch stretcher. It owns all per-band state and
// is not safe for concurrent ProcessChunk calls.
type Engine struct {
	cfg      Config
	maxWin   int
	loops    int
	trials   int
	filterOn bool
	single   bool
	bands    []*bandState

	inChunk  [][]float64 // channels x 2*maxWin, zero-padded input slice
	chunkOut [][]float64 // channels x maxWin
}

// NewEngine validates cfg, precomputes windows, filters, hops and tail
// buffers, and returns a ready engine. Tail buffers start zeroed, so
// the first frames fade in from silence.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.DurationMult < 1 {
		return nil, fmt.Errorf("stretch: duration multiplier must be >= 1, got %g", cfg.DurationMult)
	}
	if cfg.Channels < 1 {
		return nil, fmt.Errorf("stretch: channel count must be >= 1, got %d", cfg.Channels)
	}
	if cfg.NumBands < 1 {
		return nil, fmt.Errorf("stretch: slice count must be >= 1, got %d", cfg.NumBands)
	}
	if cfg.Extreme < 0 {
		return nil, fmt.Errorf("stretch: extreme mode must be >= 0, got %d", cfg.Extreme)
	}
	if cfg.PaulWin == 0 {
		cfg.PaulWin = 1
	}
	if cfg.PaulWin < 1 || cfg.PaulWin > 3 {
		return nil, fmt.Errorf("stretch: paul window selector must be 1..3, got %d", cfg.PaulWin)
	}

	// Only the higher sample rates fit ten slices.
	sliceCap := maxBands - 1
	if cfg.SampleRate >= 88200 {
		sliceCap = maxBands
	}
	if cfg.NumBands > sliceCap {
		cfg.NumBands = sliceCap
	}

	maxWin := cfg.MaxWinSize
	if maxWin == 0 {
		if cfg.SampleRate <= 0 {
			return nil, fmt.Errorf("stretch: sample rate must be > 0 when MaxWinSize is not set, got %d", cfg.SampleRate)
		}
		maxWin = baseMaxWin * (cfg.SampleRate / 44100)
		if maxWin < baseMaxWin {
			maxWin = baseMaxWin
		}
	}
	if maxWin <= 0 || maxWin&(maxWin-1) != 0 {
		return nil, fmt.Errorf("stretch: max window size must be a power of two, got %d", maxWin)
	}
	cfg.MaxWinSize = maxWin

	e := &Engine{
		cfg:      cfg,
		maxWin:   maxWin,
		loops:    loopsForMode(cfg.Extreme),
		trials:   trialsForMode(cfg.Extreme),
		filterOn: cfg.FilterOn,
		single:   cfg.NumBands == 1,
	}

	var indices []int
	if e.single {
		// The single-band fast path runs one fixed mid-size window and
		// never masks the spectrum.
		indices = []int{4 + cfg.PaulWin}
		e.filterOn = false
	} else {
		indices = make([]int, cfg.NumBands)
		for i := range indices {
			indices[i] = i
		}
	}

	cutMax := float64(maxWin) / 512.0
	for _, idx := range indices {
		winLen := 1 << (minWinExp + idx)
		if winLen > maxWin {
			return nil, fmt.Errorf("stretch: band window %d exceeds max window %d", winLen, maxWin)
		}

		var cut []float64
		if e.single || idx == cfg.NumBands-1 {
			// Bottom band reaches down to bin 1.
			cut = []float64{1, cutMax / 4, cutMax / 2, 3 * cutMax / 4, cutMax}
		} else {
			cut = []float64{cutMax / 2, 5 * cutMax / 8, 3 * cutMax / 4, 7 * cutMax / 8, cutMax}
		}
		switch cfg.Extreme {
		case 2:
			// Keep all five cutoffs: four sub-band loops per slice.
		case 3:
			cut[1], cut[2] = cut[2], cut[4]
		default:
			// Modes 0, 1 and >3 collapse each slice to one sub-band.
			cut[1] = cut[4]
		}

		masks := make([][]float64, e.loops)
		for l := range masks {
			masks[l] = BandpassMask(winLen/2+1, cut[l], cut[l+1], lrOrder)
		}

		plan, err := planFor(winLen)
		if err != nil {
			return nil, err
		}

		rngs := make([]*rand.Rand, cfg.Channels)
		for ch := range rngs {
			rngs[ch] = rand.New(rand.NewSource(cfg.Seed + int64(idx)*bandSeedStride + int64(ch)*chanSeedStride))
		}

		e.bands = append(e.bands, &bandState{
			index:  idx,
			winLen: winLen,
			hop:    float64(winLen) / 2.0 / cfg.DurationMult,
			window: PaulWindow(winLen),
			masks:  masks,
			tail:   make([]float64, cfg.Channels*2*winLen),
			rngs:   rngs,
			fft:    plan,
			frame:  newMicroScratch(winLen),
			out:    make([]float64, cfg.Channels*maxWin),
			part:   make([]float64, winLen),
			spec:   make([]complex128, winLen/2+1),
		})
	}

	e.inChunk = make([][]float64, cfg.Channels)
	e.chunkOut = make([][]float64, cfg.Channels)
	for ch := range e.inChunk {
		e.inChunk[ch] = make([]float64, 2*maxWin)
		e.chunkOut[ch] = make([]float64, maxWin)
	}
	return e, nil
}

func loopsForMode(extreme int) int {
	switch extreme {
	case 2:
		return 4
	case 3:
		return 2
	default:
		return 1
	}
}

func trialsForMode(extreme int) int {
	switch {
	case extreme == 1:
		return 10
	case extreme == 3:
		return 3
	case extreme > 3:
		return extreme
	default:
		return 1
	}
}

// Config returns the normalized configuration (slice clamp and window
// derivation applied).
func (e *Engine) Config() Config { return e.cfg }

// MaxWinSize returns the largest analysis window, which is also the
// output chunk length per channel.
func (e *Engine) MaxWinSize() int { return e.maxWin }

// NumBands returns the active band count after sample-rate clamping.
func (e *Engine) NumBands() int { return e.cfg.NumBands }

// BandWindowSizes lists the analysis window length of each active band.
func (e *Engine) BandWindowSizes() []int {
	sizes := make([]int, len(e.bands))
	for i, b := range e.bands {
		sizes[i] = b.winLen
	}
	return sizes
}
