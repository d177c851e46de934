package stretch

import (
	"fmt"
	"math"
	"sync"
)

// NumChunks returns the number of output chunks for a per-channel input
// length, before any user cap.
func (e *Engine) NumChunks(inputLen int) int {
	return int(math.Ceil(float64(inputLen) / float64(e.maxWin) * e.cfg.DurationMult))
}

func (e *Engine) chunkOrigin(n int) int {
	return int(math.Round(float64(n) * float64(e.maxWin) / e.cfg.DurationMult))
}

// ProcessChunk renders output chunk n from the planar input signal and
// returns channels x MaxWinSize samples. Reads past the end of the
// input are zero, so short inputs and the final chunks fade out over
// silence. The returned buffers are reused by the next call.
//
// Chunks must be processed in increasing order: each call advances the
// per-band tail state that the next chunk crossfades against.
func (e *Engine) ProcessChunk(n int, input [][]float64) [][]float64 {
	origin := e.chunkOrigin(n)
	for ch := 0; ch < e.cfg.Channels; ch++ {
		src := input[ch]
		dst := e.inChunk[ch]
		for i := range dst {
			p := origin + i
			if p < len(src) {
				dst[i] = src[p]
			} else {
				dst[i] = 0
			}
		}
	}

	if e.single {
		e.stretchBand(e.bands[0])
	} else {
		var wg sync.WaitGroup
		for _, b := range e.bands {
			wg.Add(1)
			go func(b *bandState) {
				defer wg.Done()
				e.stretchBand(b)
			}(b)
		}
		wg.Wait()
	}

	for ch := range e.chunkOut {
		out := e.chunkOut[ch]
		for i := range out {
			out[i] = 0
		}
		for _, b := range e.bands {
			band := b.out[ch*e.maxWin : (ch+1)*e.maxWin]
			for i, v := range band {
				out[i] += v
			}
		}
	}
	return e.chunkOut
}

// Render processes every chunk of input in order and hands each to
// emit. A positive blocks value caps the chunk count; zero derives it
// from the duration multiplier.
func (e *Engine) Render(input [][]float64, blocks int, emit func(chunk [][]float64) error) error {
	if len(input) != e.cfg.Channels {
		return fmt.Errorf("stretch: input has %d channels, engine configured for %d", len(input), e.cfg.Channels)
	}
	for ch := 1; ch < len(input); ch++ {
		if len(input[ch]) != len(input[0]) {
			return fmt.Errorf("stretch: channel %d length %d differs from channel 0 length %d", ch, len(input[ch]), len(input[0]))
		}
	}

	n := e.NumChunks(len(input[0]))
	if blocks > 0 {
		n = blocks
	}
	for i := 0; i < n; i++ {
		if err := emit(e.ProcessChunk(i, input)); err != nil {
			return err
		}
	}
	return nil
}
