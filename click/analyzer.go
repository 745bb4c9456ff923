// SPDX-License-Identifier: EPL-2.0

package click

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/chanweave/config"
	"github.com/ik5/chanweave/formats/wav"
)

// Signal-chain parameters. These are fixed properties of the detector,
// not user configuration.
const (
	bandLowHz             = 1000.0
	bandHighHz            = 8000.0
	filterOrder           = 4
	envelopeWindowSeconds = 0.005
	minOnsetDistanceMS    = 150
	bpmWindowIOIs         = 12
	minIOIsForBPM         = 4
	minPlausibleBPM       = 45
	maxPlausibleBPM       = 300
)

// ErrAnalysisFailed covers signal-chain failures such as I/O errors on
// the click track. Callers may recover by falling back to a single
// speaking section.
var ErrAnalysisFailed = errors.New("click analysis failed")

// Detector is the capability the orchestrator needs from a click
// analyzer; Analyzer is the built-in signal-chain implementation.
type Detector interface {
	Analyze(ctx context.Context, path string) ([]SectionInfo, error)
}

// Analyzer detects musical sections on a click track: a bandpass →
// envelope → novelty → peak-pick chain finds click onsets, inter-onset
// intervals estimate tempo, and gaps or tempo changes become section
// boundaries.
//
// The analyzer streams the file twice: the first pass gathers novelty
// statistics for the peak thresholds, the second picks peaks. No pass
// buffers more than one block plus the filter and window state.
type Analyzer struct {
	cfg         config.SectionSplitting
	blockFrames int
}

// New returns an Analyzer for the given section-splitting settings.
func New(cfg config.SectionSplitting, blockFrames int) *Analyzer {
	return &Analyzer{cfg: cfg, blockFrames: blockFrames}
}

// Analyze returns the raw ordered sections of the click track at path,
// covering [0, frame count). Short-section merging is the caller's
// concern (see MergeShort). Fewer than two onsets yield a single
// speaking section.
func (a *Analyzer) Analyze(ctx context.Context, path string) ([]SectionInfo, error) {
	onsets, total, rate, err := a.detectOnsets(ctx, path)
	if err != nil {
		return nil, err
	}
	return buildSections(onsets, total, rate, a.cfg.GapThresholdSeconds,
		a.cfg.BPMChangeThreshold), nil
}

func (a *Analyzer) detectOnsets(ctx context.Context, path string) ([]int64, int64, int, error) {
	stats := &runningStats{}
	total, rate, err := a.runChain(ctx, path, func(_ int64, novelty float64) {
		stats.add(novelty)
	})
	if err != nil {
		return nil, 0, 0, wrapAnalysis(path, err)
	}

	std := stats.std()
	height := stats.mean + 2*std
	prominence := 1.5 * std
	if height <= 0 {
		height = 1e-12
	}

	minDist := int64(minOnsetDistanceMS) * int64(rate) / 1000
	picker := newPeakPicker(minDist, height, prominence)

	if _, _, err := a.runChain(ctx, path, func(_ int64, novelty float64) {
		picker.feed(novelty)
	}); err != nil {
		return nil, 0, 0, wrapAnalysis(path, err)
	}

	return picker.peaks, total, rate, nil
}

// wrapAnalysis marks chain failures as ErrAnalysisFailed but lets
// cancellation through untouched so callers do not mistake an abort for
// a recoverable analysis failure.
func wrapAnalysis(path string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("click analyzer: %w", err)
	}
	return fmt.Errorf("%w: %s: %v", ErrAnalysisFailed, path, err)
}

// runChain streams the file through the filter → envelope → novelty
// chain, emitting one novelty value per frame. Filter, envelope, and
// difference state carry across blocks; multichannel input is averaged
// to mono first.
func (a *Analyzer) runChain(ctx context.Context, path string, emit func(idx int64, novelty float64)) (frames int64, sampleRate int, err error) {
	r, err := wav.NewReader(path, a.blockFrames)
	if err != nil {
		return 0, 0, err
	}
	defer r.Close()

	info := r.Info()
	chain, err := newBandpass(filterOrder, bandLowHz, bandHighHz, float64(info.SampleRate))
	if err != nil {
		return 0, 0, err
	}
	env := newMovingAverage(int(envelopeWindowSeconds * float64(info.SampleRate)))

	var (
		idx     int64
		prevEnv float64
		primed  bool
	)
	for {
		if err := ctx.Err(); err != nil {
			return 0, 0, err
		}

		block, err := r.ReadBlock()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, 0, err
		}

		channels := block.Format.NumChannels
		blockFrames := len(block.Data) / channels
		for f := range blockFrames {
			var x float64
			for ch := range channels {
				x += float64(block.Data[f*channels+ch])
			}
			x /= float64(channels)

			filtered := chain.process(x)
			if filtered < 0 {
				filtered = -filtered
			}
			e := env.process(filtered)

			if !primed {
				prevEnv = e
				primed = true
			}
			novelty := e - prevEnv
			if novelty < 0 {
				novelty = 0
			}
			prevEnv = e

			emit(idx, novelty)
			idx++
		}
	}
	return idx, info.SampleRate, nil
}
