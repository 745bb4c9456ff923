// SPDX-License-Identifier: EPL-2.0

// Package pipeline sequences the full session: discovery, validation,
// extraction, track building, click analysis, section processing, and
// section splitting. The orchestrator owns the output and temp
// directory lifecycles; every other component only writes inside the
// subtree it was handed.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ik5/chanweave/audio"
	"github.com/ik5/chanweave/click"
	"github.com/ik5/chanweave/config"
	"github.com/ik5/chanweave/convert"
	"github.com/ik5/chanweave/formats/wav"
	"github.com/ik5/chanweave/report"
	"github.com/ik5/chanweave/split"
	"github.com/ik5/chanweave/track"
)

// ErrOutputDirConflict is returned when the output directory and all of
// its _vN fallbacks already exist.
var ErrOutputDirConflict = errors.New("cannot allocate output directory")

// maxOutputDirVersions bounds the _v2, _v3, ... conflict suffixes.
const maxOutputDirVersions = 99

// Options configure one session run. Channels and buses must already be
// parsed; the pipeline never reads configuration files.
type Options struct {
	InputDir  string
	OutputDir string
	Session   *config.Session

	// KeepTemp leaves the segment directory in place after the run.
	KeepTemp bool
	// BlockFrames is the session-wide block size; <1 selects the
	// adapter default.
	BlockFrames int
	// SessionJSONPath, when set, receives the final section list as
	// JSON after the run.
	SessionJSONPath string

	Report   report.Handler
	Progress report.Progress

	// Detector overrides the built-in click analyzer; nil selects it.
	Detector click.Detector
}

// Result summarizes a finished session.
type Result struct {
	SessionID string
	Params    audio.Params
	OutputDir string
	Tracks    []string
	Sections  []click.SectionInfo
}

// Pipeline runs sessions. Construct with New; a zero Pipeline is not
// usable.
type Pipeline struct {
	opts     Options
	reporter report.Handler
	progress report.Progress
}

// New validates the static parts of opts and returns a Pipeline.
func New(opts Options) (*Pipeline, error) {
	if opts.InputDir == "" || opts.OutputDir == "" {
		return nil, fmt.Errorf("%w: input and output directories are required", config.ErrInvalid)
	}
	if opts.Session == nil {
		return nil, fmt.Errorf("%w: session configuration is required", config.ErrInvalid)
	}

	p := &Pipeline{
		opts:     opts,
		reporter: opts.Report,
		progress: opts.Progress,
	}
	if p.reporter == nil {
		p.reporter = report.Nop()
	}
	if p.progress == nil {
		p.progress = report.NopProgress()
	}
	return p, nil
}

// Run executes the session. The temp directory is removed on every exit
// path unless KeepTemp is set; errors name the failing component and
// path.
func (p *Pipeline) Run(ctx context.Context) (_ *Result, err error) {
	opts := p.opts
	sessionID := uuid.NewString()

	files, err := audio.Discover(opts.InputDir)
	if err != nil {
		return nil, err
	}
	p.reporter.Info("discovered input files", "count", len(files), "dir", opts.InputDir)

	params, err := audio.Validate(files)
	if err != nil {
		return nil, err
	}
	p.reporter.Info("validated input audio", "params", params.String())

	session := opts.Session
	if err := session.Validate(params.Channels); err != nil {
		return nil, err
	}
	channels := session.Complete(params.Channels)

	depth, err := convert.Resolve(session.TargetBitDepth, params.BitDepth)
	if err != nil {
		return nil, err
	}
	enc, err := convert.ForBitDepth(depth)
	if err != nil {
		return nil, err
	}

	outDir, err := allocateOutputDir(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	tempDir := filepath.Join(outDir, "tmp_"+sessionID[:8])
	defer func() {
		if opts.KeepTemp {
			p.reporter.Info("keeping temp directory", "dir", tempDir)
			return
		}
		if rmErr := os.RemoveAll(tempDir); rmErr != nil && err == nil {
			err = fmt.Errorf("pipeline: temp cleanup: %w", rmErr)
		}
	}()

	extractor := &audio.Extractor{
		Params:      params,
		TempDir:     tempDir,
		Enc:         enc,
		BlockFrames: opts.BlockFrames,
		Report:      p.reporter,
		Progress:    p.progress,
	}
	segments, err := extractor.Extract(ctx, files, config.Extracted(channels))
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	builder := &track.Builder{
		SampleRate:  params.SampleRate,
		BlockFrames: opts.BlockFrames,
		Enc:         enc,
		OutDir:      outDir,
		Report:      p.reporter,
		Progress:    p.progress,
	}
	tracks, err := builder.Build(ctx, channels, session.Buses, segments)
	if err != nil {
		return nil, err
	}

	result := &Result{
		SessionID: sessionID,
		Params:    params,
		OutputDir: outDir,
		Tracks:    tracks,
	}

	if session.SectionSplitting.Enabled {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		sections, err := p.splitSections(ctx, session, channels, outDir, params, enc)
		if err != nil {
			return nil, err
		}
		result.Sections = sections
	}

	if opts.SessionJSONPath != "" {
		if err := writeSessionJSON(opts.SessionJSONPath, sessionID, params.SampleRate, result.Sections); err != nil {
			p.reporter.Warn("failed to write session JSON",
				"path", opts.SessionJSONPath, "error", err)
		}
	}

	return result, nil
}

// splitSections runs click analysis, merging, classification, and the
// splitter. Analysis failures degrade to a single speaking section so
// the session still completes.
func (p *Pipeline) splitSections(ctx context.Context, session *config.Session, channels []config.ChannelConfig, outDir string, params audio.Params, enc wav.Encoder) ([]click.SectionInfo, error) {
	clickCh, ok := config.ClickChannel(channels)
	if !ok {
		// Session.Validate already requires one; defensive only.
		return nil, nil
	}
	clickPath := track.MonoPath(outDir, clickCh.OutputChannel, clickCh.Name)

	detector := p.opts.Detector
	if detector == nil {
		detector = click.New(session.SectionSplitting, p.opts.BlockFrames)
	}

	sections, err := detector.Analyze(ctx, clickPath)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		p.reporter.Warn("click analysis failed, falling back to a single section",
			"file", clickPath, "error", err)
		info, probeErr := wav.Probe(clickPath)
		if probeErr != nil {
			return nil, fmt.Errorf("%w: %v", click.ErrAnalysisFailed, probeErr)
		}
		sections = []click.SectionInfo{{
			Number:      1,
			StartSample: 0,
			EndSample:   info.Frames,
			Type:        click.Speaking,
		}}
	}

	sections = click.MergeShort(sections,
		session.SectionSplitting.MinSectionLengthSeconds, params.SampleRate)
	sections = click.Classify(sections)

	for _, s := range sections {
		p.reporter.Info("detected section",
			"section", s.Number,
			"type", s.Type.String(),
			"start_seconds", fmt.Sprintf("%.3f", s.StartSeconds(params.SampleRate)),
			"duration_seconds", fmt.Sprintf("%.3f", s.Seconds(params.SampleRate)),
			"bpm", s.BPM)
	}

	splitter := &split.Splitter{
		BlockFrames: p.opts.BlockFrames,
		Enc:         enc,
		Report:      p.reporter,
		Progress:    p.progress,
	}
	if err := splitter.Split(ctx, outDir, sections); err != nil {
		return nil, err
	}
	return sections, nil
}

// allocateOutputDir creates dir, or dir_v2 .. dir_v99 when taken.
func allocateOutputDir(dir string) (string, error) {
	if parent := filepath.Dir(dir); parent != "." {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return "", fmt.Errorf("%w: %v", ErrOutputDirConflict, err)
		}
	}

	candidate := dir
	for v := 1; v <= maxOutputDirVersions; v++ {
		if v > 1 {
			candidate = fmt.Sprintf("%s_v%d", dir, v)
		}
		err := os.Mkdir(candidate, 0o755)
		if err == nil {
			return candidate, nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("%w: %v", ErrOutputDirConflict, err)
		}
	}
	return "", fmt.Errorf("%w: %s and %d fallbacks exist",
		ErrOutputDirConflict, dir, maxOutputDirVersions-1)
}
