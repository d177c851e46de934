// Command spectral-compare reports level and magnitude-spectrum
// differences between two WAV files, e.g. a stretch input against a
// window of its output.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/cwbudde/algo-stretch/analysis"
	"github.com/cwbudde/algo-stretch/internal/wavio"
)

func main() {
	positions := pflag.Int("positions", 5, "Spectral comparison windows spread across the shorter file")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <a.wav> <b.wav>\n\nFlags:\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() != 2 {
		pflag.Usage()
		os.Exit(2)
	}

	a, srA, err := wavio.ReadPlanar(pflag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "a: %v\n", err)
		os.Exit(1)
	}
	b, srB, err := wavio.ReadPlanar(pflag.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "b: %v\n", err)
		os.Exit(1)
	}
	if srA != srB {
		fmt.Fprintf(os.Stderr, "sample-rate mismatch: %d vs %d\n", srA, srB)
		os.Exit(1)
	}

	monoA := wavio.DownmixMono(a)
	monoB := wavio.DownmixMono(b)

	peakA, peakB := analysis.Peak(monoA), analysis.Peak(monoB)
	rmsA, rmsB := analysis.RMS(monoA), analysis.RMS(monoB)
	fmt.Printf("Frames: a=%d (%.2fs)  b=%d (%.2fs)\n",
		len(monoA), float64(len(monoA))/float64(srA), len(monoB), float64(len(monoB))/float64(srB))
	fmt.Printf("Peak: a=%.4f (%.1f dB)  b=%.4f (%.1f dB)  gap=%+.1f dB\n",
		peakA, analysis.DB(peakA), peakB, analysis.DB(peakB), analysis.DB(peakB)-analysis.DB(peakA))
	fmt.Printf("RMS:  a=%.4f (%.1f dB)  b=%.4f (%.1f dB)  gap=%+.1f dB\n",
		rmsA, analysis.DB(rmsA), rmsB, analysis.DB(rmsB), analysis.DB(rmsB)-analysis.DB(rmsA))

	n := len(monoA)
	if len(monoB) < n {
		n = len(monoB)
	}
	if *positions < 1 {
		*positions = 1
	}
	const win = 4096
	if n < win {
		fmt.Printf("Spectral RMSE: %.2f dB\n", analysis.SpectralRMSEDB(monoA, monoB))
		return
	}
	stride := (n - win) / *positions
	if stride < 1 {
		stride = 1
	}
	var total float64
	count := 0
	for pos := 0; pos+win <= n && count < *positions; pos += stride {
		rmse := analysis.SpectralRMSEDB(monoA[pos:pos+win], monoB[pos:pos+win])
		fmt.Printf("Spectral RMSE @ %7.2fs: %6.2f dB\n", float64(pos)/float64(srA), rmse)
		total += rmse
		count++
	}
	if count > 0 {
		fmt.Printf("Spectral RMSE mean: %.2f dB\n", total/float64(count))
	}
}
