package wavio

import (
	"fmt"
	"os"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// ReadPlanar decodes a WAV file into planar float64 channels plus the
// sample rate. The decoder normalizes integer formats, so samples
// arrive in [-1, 1] regardless of source bit depth.
func ReadPlanar(path string) ([][]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, fmt.Errorf("invalid wav buffer: %s", path)
	}
	if buf.Format.SampleRate <= 0 {
		return nil, 0, fmt.Errorf("invalid wav sample-rate: %d", buf.Format.SampleRate)
	}

	ch := buf.Format.NumChannels
	frames := len(buf.Data) / ch
	if frames == 0 {
		return nil, 0, fmt.Errorf("empty wav data: %s", path)
	}

	out := make([][]float64, ch)
	for c := range out {
		out[c] = make([]float64, frames)
		for i := 0; i < frames; i++ {
			out[c][i] = float64(buf.Data[i*ch+c])
		}
	}
	return out, buf.Format.SampleRate, nil
}

// DownmixMono averages planar channels into a single mono signal.
func DownmixMono(planar [][]float64) []float64 {
	if len(planar) == 0 {
		return nil
	}
	frames := len(planar[0])
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := range planar {
			sum += planar[c][i]
		}
		out[i] = sum / float64(len(planar))
	}
	return out
}

// Writer appends planar float64 chunks to a 32-bit float WAV file.
type Writer struct {
	f        *os.File
	enc      *wav.Encoder
	sr       int
	channels int
	scratch  []float32
}

// NewWriter creates path and prepares a 32-bit float encoder for it.
func NewWriter(path string, sampleRate, channels int) (*Writer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample-rate: %d", sampleRate)
	}
	if channels < 1 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	// audioFormat 3 = IEEE float.
	enc := wav.NewEncoder(f, sampleRate, 32, channels, 3)
	return &Writer{f: f, enc: enc, sr: sampleRate, channels: channels}, nil
}

// WriteChunk interleaves one planar chunk and appends it to the file.
// All channels must carry the same frame count.
func (w *Writer) WriteChunk(planar [][]float64) error {
	if len(planar) != w.channels {
		return fmt.Errorf("chunk has %d channels, writer configured for %d", len(planar), w.channels)
	}
	frames := len(planar[0])
	for c := 1; c < w.channels; c++ {
		if len(planar[c]) != frames {
			return fmt.Errorf("channel %d has %d frames, channel 0 has %d", c, len(planar[c]), frames)
		}
	}

	need := frames * w.channels
	if cap(w.scratch) < need {
		w.scratch = make([]float32, need)
	}
	data := w.scratch[:need]
	for i := 0; i < frames; i++ {
		for c := 0; c < w.channels; c++ {
			data[i*w.channels+c] = float32(planar[c][i])
		}
	}

	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  w.sr,
			NumChannels: w.channels,
		},
		Data:           data,
		SourceBitDepth: 32,
	}
	return w.enc.Write(buf)
}

// Close finalizes the WAV header and closes the file.
func (w *Writer) Close() error {
	encErr := w.enc.Close()
	fileErr := w.f.Close()
	if encErr != nil {
		return encErr
	}
	return fileErr
}
