package stretch

import "math"

// PaulWindow returns the Paulstretch analysis window of length n:
// w[i] = (1 - ((2i/(n-1)) - 1)^2)^1.25. Endpoints are exactly zero.
func PaulWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		v := float64(i)/float64(n-1)*2.0 - 1.0
		w[i] = math.Pow(1.0-v*v, 1.25)
	}
	return w
}

// NessWindow returns the first half (length n/2) of the correlation-shaped
// synthesis crossfade window for a frame of length n. The half-window is
// the fade-in ramp; its reverse is the fade-out applied to the previous
// tail. With correlation 0 the pair is power-complementary; higher
// correlation tightens the fade toward a linear-amplitude crossfade.
func NessWindow(n int, correlation float64) []float64 {
	half := n / 2
	w := make([]float64, half)
	for i := range w {
		x := math.Tan(math.Pi * float64(i) / float64(n-1))
		x *= x
		w[i] = x / math.Sqrt(1.0+2.0*correlation*x+x*x)
	}
	return w
}

// LowpassMask returns a Linkwitz-Riley lowpass magnitude mask over n
// real-FFT bins with the -6 dB point at bin hiBin. A hiBin of zero
// yields an all-pass mask.
func LowpassMask(n int, hiBin, order float64) []float64 {
	mask := make([]float64, n)
	for i := range mask {
		mask[i] = 1.0
	}
	if hiBin != 0 {
		for i := range mask {
			mask[i] = 1.0 / (1.0 + math.Pow(float64(i)/hiBin, order))
		}
	}
	return mask
}

// HighpassMask is the pointwise complement of LowpassMask at lowBin.
// A lowBin of zero yields an all-pass mask, like LowpassMask.
func HighpassMask(n int, lowBin, order float64) []float64 {
	mask := make([]float64, n)
	for i := range mask {
		mask[i] = 1.0
	}
	if lowBin != 0 {
		for i := range mask {
			mask[i] = 1.0 - 1.0/(1.0+math.Pow(float64(i)/lowBin, order))
		}
	}
	return mask
}

// BandpassMask multiplies the lowpass mask at hiBin with the highpass
// mask at lowBin. lowBin <= 0 degenerates to a pure lowpass and
// hiBin >= n-2 to a pure highpass, so band edges at the ends of the
// spectrum keep a flat pass side.
func BandpassMask(n int, lowBin, hiBin, order float64) []float64 {
	if lowBin <= 0 {
		return LowpassMask(n, hiBin, order)
	}
	if hiBin >= float64(n-2) {
		return HighpassMask(n, lowBin, order)
	}
	mask := LowpassMask(n, hiBin, order)
	hp := HighpassMask(n, lowBin, order)
	for i := range mask {
		mask[i] *= hp[i]
	}
	return mask
}
