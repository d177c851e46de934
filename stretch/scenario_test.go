package stretch_test

import (
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-stretch/internal/wavio"
	"github.com/cwbudde/algo-stretch/siggen"
	"github.com/cwbudde/algo-stretch/stretch"
)

// End-to-end over real WAV files: silence in, a longer silence out,
// with the driver-side chunk accounting intact.
func TestFileRoundTripSilence(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.wav")
	outPath := filepath.Join(dir, "out.wav")

	gen := siggen.Config{SampleRate: 44100, DurationS: 0.5}
	zeros := gen.Silence()

	w, err := wavio.NewWriter(inPath, 44100, 1)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.WriteChunk([][]float64{zeros}); err != nil {
		t.Fatalf("WriteChunk: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	indata, sr, err := wavio.ReadPlanar(inPath)
	if err != nil {
		t.Fatalf("ReadPlanar: %v", err)
	}

	engine, err := stretch.NewEngine(stretch.Config{
		DurationMult: 4,
		SampleRate:   sr,
		Channels:     len(indata),
		NumBands:     2,
		Seed:         1,
		MaxWinSize:   4096,
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	out, err := wavio.NewWriter(outPath, sr, len(indata))
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := engine.Render(indata, 0, out.WriteChunk); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, _, err := wavio.ReadPlanar(outPath)
	if err != nil {
		t.Fatalf("ReadPlanar: %v", err)
	}
	wantLen := engine.NumChunks(len(indata[0])) * engine.MaxWinSize()
	if len(got[0]) != wantLen {
		t.Fatalf("output length %d, want %d", len(got[0]), wantLen)
	}
	for i, v := range got[0] {
		if v != 0 {
			t.Fatalf("silent stretch produced %g at sample %d", v, i)
		}
	}
}
