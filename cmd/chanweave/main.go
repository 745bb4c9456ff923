// SPDX-License-Identifier: EPL-2.0

// Command chanweave processes a console recording session: it
// de-interleaves the numbered multichannel WAVs of an input directory
// into per-channel tracks and stereo buses, and optionally splits
// everything into tempo-tagged sections along the click track.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sethvargo/go-envconfig"

	"github.com/ik5/chanweave"
	"github.com/ik5/chanweave/audio"
	"github.com/ik5/chanweave/config"
	"github.com/ik5/chanweave/pipeline"
	"github.com/ik5/chanweave/report"
)

// env holds the settings that make more sense per machine than per
// invocation.
type env struct {
	BlockFrames int    `env:"CHANWEAVE_BLOCK_FRAMES, default=32768"`
	LogLevel    string `env:"CHANWEAVE_LOG_LEVEL, default=info"`
	LogFormat   string `env:"CHANWEAVE_LOG_FORMAT, default=text"`
	NoProgress  bool   `env:"CHANWEAVE_NO_PROGRESS"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "chanweave:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		inputDir    = flag.String("input", "", "directory of numbered multichannel WAV files")
		outputDir   = flag.String("output", "", "output directory (suffixed _v2, _v3, ... on conflict)")
		configPath  = flag.String("config", "", "YAML session configuration")
		bitDepth    = flag.String("bit-depth", "source", "output bit depth: source, 16, 24, or 32float")
		keepTemp    = flag.Bool("keep-temp", false, "keep the temporary segment directory")
		splitFlag   = flag.Bool("split-sections", false, "enable click-based section splitting")
		gap         = flag.Float64("gap", 0, "override the section gap threshold in seconds")
		minSection  = flag.Float64("min-section", 0, "override the minimum section length in seconds")
		bpmChange   = flag.Int("bpm-threshold", 0, "override the BPM change threshold")
		sessionJSON = flag.String("session-json", "", "write the final section list as JSON to this path")
	)
	flag.Parse()

	if *inputDir == "" || *outputDir == "" {
		flag.Usage()
		return fmt.Errorf("-input and -output are required")
	}

	var cfg env
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	session := &config.Session{SectionSplitting: config.DefaultSectionSplitting()}
	if *configPath != "" {
		session, err = config.Load(*configPath)
		if err != nil {
			return err
		}
	}

	session.TargetBitDepth, err = parseBitDepth(*bitDepth)
	if err != nil {
		return err
	}
	if *splitFlag {
		session.SectionSplitting.Enabled = true
	}
	if *gap > 0 {
		session.SectionSplitting.GapThresholdSeconds = *gap
	}
	if *minSection > 0 {
		session.SectionSplitting.MinSectionLengthSeconds = *minSection
	}
	if *bpmChange > 0 {
		session.SectionSplitting.BPMChangeThreshold = *bpmChange
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var progress report.Progress = report.NopProgress()
	var finish func()
	if !cfg.NoProgress {
		progress, finish = newProgress()
		defer finish()
	}

	result, err := chanweave.Process(ctx, pipeline.Options{
		InputDir:        *inputDir,
		OutputDir:       *outputDir,
		Session:         session,
		KeepTemp:        *keepTemp,
		BlockFrames:     cfg.BlockFrames,
		SessionJSONPath: *sessionJSON,
		Report:          report.NewSlogHandler(logger),
		Progress:        progress,
	})
	if err != nil {
		return err
	}

	logger.Info("session complete",
		"output", result.OutputDir,
		"tracks", len(result.Tracks),
		"sections", len(result.Sections))
	return nil
}

func newLogger(cfg env) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("bad CHANWEAVE_LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	default:
		return nil, fmt.Errorf("bad CHANWEAVE_LOG_FORMAT %q (want text or json)", cfg.LogFormat)
	}
	return slog.New(handler), nil
}

func parseBitDepth(s string) (audio.BitDepth, error) {
	switch strings.ToLower(s) {
	case "source":
		return audio.BitDepthSource, nil
	case "16":
		return audio.BitDepthInt16, nil
	case "24":
		return audio.BitDepthInt24, nil
	case "32float", "32":
		return audio.BitDepthFloat32, nil
	}
	return 0, fmt.Errorf("bad bit depth %q (want source, 16, 24, or 32float)", s)
}
