// Command stretch-render time-stretches a WAV file by a constant
// duration multiplier using the multi-resolution spectral engine.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/cwbudde/algo-stretch/internal/wavio"
	"github.com/cwbudde/algo-stretch/preset"
	"github.com/cwbudde/algo-stretch/stretch"
)

func main() {
	duration := pflag.Float64("duration", 8.0, "Stretch duration multiplier (>= 1)")
	slices := pflag.Int("slices", 9, "Number of spectral slices (1-10; capped by sample rate)")
	extreme := pflag.Int("extreme", 0, "Extreme mode: 0 standard, 1 = 10 correlation trials, 2 = 4 sub-bands per slice, 3 = 2 sub-bands with 3 trials, >3 = that many trials")
	filter := pflag.Int("filter", 1, "Apply Linkwitz-Riley band masks to slice magnitudes (0|1)")
	paulWin := pflag.Int("paul-win", 1, "Single-slice window selector: 1=8192, 2=16384, 3=32768 samples")
	blocks := pflag.Int("blocks", 0, "Cap on output chunks (0 = derive from duration)")
	seed := pflag.Int64("seed", 0, "Random seed (0 = time-derived)")
	presetPath := pflag.String("preset", "", "JSON preset file applied underneath the other flags")
	verbose := pflag.Int("verbose", 0, "Print run configuration and chunk progress (0|1)")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <input.wav> <output.wav>\n\nFlags:\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() != 2 {
		pflag.Usage()
		os.Exit(2)
	}
	inPath := pflag.Arg(0)
	outPath := pflag.Arg(1)

	settings := preset.Default()
	if *presetPath != "" {
		var err error
		settings, err = preset.LoadJSON(*presetPath)
		if err != nil {
			log.Error("loading preset", "err", err)
			os.Exit(1)
		}
	}
	// Explicit flags win over the preset file.
	if pflag.CommandLine.Changed("duration") {
		settings.DurationMult = *duration
	}
	if pflag.CommandLine.Changed("slices") {
		settings.Slices = *slices
	}
	if pflag.CommandLine.Changed("extreme") {
		settings.Extreme = *extreme
	}
	if pflag.CommandLine.Changed("filter") {
		settings.FilterOn = *filter != 0
	}
	if pflag.CommandLine.Changed("paul-win") {
		settings.PaulWin = *paulWin
	}
	if pflag.CommandLine.Changed("blocks") {
		settings.Blocks = *blocks
	}
	if pflag.CommandLine.Changed("seed") {
		settings.Seed = *seed
	}
	if settings.Seed == 0 {
		settings.Seed = time.Now().UnixNano()
	}

	indata, sampleRate, err := wavio.ReadPlanar(inPath)
	if err != nil {
		log.Error("reading input", "path", inPath, "err", err)
		os.Exit(1)
	}

	engine, err := stretch.NewEngine(stretch.Config{
		DurationMult: settings.DurationMult,
		SampleRate:   sampleRate,
		Channels:     len(indata),
		NumBands:     settings.Slices,
		Extreme:      settings.Extreme,
		FilterOn:     settings.FilterOn,
		PaulWin:      settings.PaulWin,
		Seed:         settings.Seed,
	})
	if err != nil {
		log.Error("configuring engine", "err", err)
		os.Exit(1)
	}

	numChunks := engine.NumChunks(len(indata[0]))
	if settings.Blocks > 0 {
		numChunks = settings.Blocks
	}

	if *verbose == 1 {
		log.Info("stretch", "input", inPath, "channels", len(indata), "sample-rate", sampleRate,
			"duration-mult", settings.DurationMult, "seed", settings.Seed)
		log.Info("engine", "max-window", engine.MaxWinSize(), "slices", engine.NumBands(),
			"window-sizes", engine.BandWindowSizes(), "chunks", numChunks)
		if engine.NumBands() == 1 {
			log.Info("paulstretch mode", "window", engine.BandWindowSizes()[0])
		}
	}

	writer, err := wavio.NewWriter(outPath, sampleRate, len(indata))
	if err != nil {
		log.Error("creating output", "path", outPath, "err", err)
		os.Exit(1)
	}

	start := time.Now()
	chunk := 0
	err = engine.Render(indata, settings.Blocks, func(out [][]float64) error {
		if *verbose == 1 && chunk%25 == 0 {
			log.Info("progress", "chunk", chunk, "of", numChunks)
		}
		chunk++
		return writer.WriteChunk(out)
	})
	if err != nil {
		writer.Close()
		log.Error("rendering", "err", err)
		os.Exit(1)
	}
	if err := writer.Close(); err != nil {
		log.Error("finalizing output", "path", outPath, "err", err)
		os.Exit(1)
	}

	if *verbose == 1 {
		log.Info("done", "chunks", chunk, "elapsed", time.Since(start))
	}
}
