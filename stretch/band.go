package stretch

import "math"

// stretchBand runs one band over every channel of the current input
// chunk: slide the Paul window at the band hop, forward-FFT each
// analysis frame, run the sub-band loops against their tail slices and
// overlap-add the fade halves into the band output. Only band-owned
// state is mutated, so bands run concurrently without locks.
func (e *Engine) stretchBand(b *bandState) {
	halfWin := b.winLen / 2
	frames := e.maxWin / halfWin
	// Analysis frames are centered in the chunk the same way for every
	// band, so all bands read the same region of the input.
	offset := e.maxWin/2 - halfWin

	for i := range b.out {
		b.out[i] = 0
	}

	for ch := 0; ch < e.cfg.Channels; ch++ {
		in := e.inChunk[ch]
		out := b.out[ch*e.maxWin : (ch+1)*e.maxWin]
		tail := b.tail[ch*2*b.winLen : (ch+1)*2*b.winLen]
		rng := b.rngs[ch]

		for k := 0; k < frames; k++ {
			pos := int(math.Round(float64(k)*b.hop)) + offset
			for i := 0; i < b.winLen; i++ {
				b.part[i] = in[pos+i] * b.window[i]
			}
			b.fft.forward(b.spec, b.part)

			outPos := k * halfWin
			for l := 0; l < e.loops; l++ {
				t := tail[l*halfWin : (l+1)*halfWin]
				y, _ := e.microFrame(b, rng, t, b.masks[l])
				copy(t, y[halfWin:])
				for i := 0; i < halfWin; i++ {
					out[outPos+i] += y[i]
				}
			}
		}
	}
}
