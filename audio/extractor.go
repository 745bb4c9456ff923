// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/ik5/chanweave/formats/wav"
	"github.com/ik5/chanweave/report"
)

// SegmentMap maps a channel number to its mono segment files, in input
// file order. Concatenating a channel's segments in order reconstructs
// its continuous signal sample-exactly.
type SegmentMap map[int][]string

// Extractor streams each input file once and fans its frames out to
// per-channel mono segment writers in the temp directory. Channels not
// listed in the extraction set are skipped entirely.
type Extractor struct {
	Params      Params
	TempDir     string
	Enc         wav.Encoder
	BlockFrames int
	Report      report.Handler
	Progress    report.Progress
}

// Extract produces one segment per extracted channel per input file,
// named ch{ch:02d}_{index:04d}.wav with a 1-based file index. Any I/O
// or decode error is fatal: partial writers for the current file are
// removed and ErrExtractionFailed propagates. The temp directory itself
// is not cleaned here.
func (e *Extractor) Extract(ctx context.Context, files []InputFile, channels []int) (SegmentMap, error) {
	if err := os.MkdirAll(e.TempDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	extracted := make([]int, len(channels))
	copy(extracted, channels)
	sort.Ints(extracted)

	segments := make(SegmentMap, len(extracted))
	for _, ch := range extracted {
		segments[ch] = nil
	}

	reporter := e.Report
	if reporter == nil {
		reporter = report.Nop()
	}
	progress := e.Progress
	if progress == nil {
		progress = report.NopProgress()
	}

	for index, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("extractor: %w", err)
		}

		paths, err := e.extractFile(file.Path, index+1, extracted)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrExtractionFailed, file.Path, err)
		}
		for _, ch := range extracted {
			segments[ch] = append(segments[ch], paths[ch])
		}
		progress.Step("extract", index+1, len(files))
	}

	reporter.Info("wrote mono segments",
		"dir", e.TempDir, "channels", len(extracted), "files", len(files))
	return segments, nil
}

// extractFile de-interleaves one input file. All writers for the file
// are closed before the next file is opened; on failure every partial
// segment of this file is removed.
func (e *Extractor) extractFile(path string, index int, channels []int) (map[int]string, error) {
	r, err := wav.NewReader(path, e.BlockFrames)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	paths := make(map[int]string, len(channels))
	writers := make(map[int]*wav.Writer, len(channels))
	abort := func() {
		for _, w := range writers {
			w.Abort()
		}
	}

	for _, ch := range channels {
		segment := filepath.Join(e.TempDir, fmt.Sprintf("ch%02d_%04d.wav", ch, index))
		w, err := wav.NewWriter(segment, e.Params.SampleRate, 1, e.Enc)
		if err != nil {
			abort()
			return nil, err
		}
		paths[ch] = segment
		writers[ch] = w
	}

	column := make([]float32, e.blockFrames())
	for {
		block, err := r.ReadBlock()
		if err == io.EOF {
			break
		}
		if err != nil {
			abort()
			return nil, err
		}

		frames := len(block.Data) / block.Format.NumChannels
		for _, ch := range channels {
			col := column[:frames]
			for f := range frames {
				col[f] = block.Data[f*block.Format.NumChannels+ch-1]
			}
			if err := writers[ch].WriteSamples(col); err != nil {
				abort()
				return nil, err
			}
		}
	}

	for _, ch := range channels {
		w := writers[ch]
		delete(writers, ch)
		if err := w.Close(); err != nil {
			abort()
			for _, p := range paths {
				os.Remove(p)
			}
			return nil, err
		}
	}
	return paths, nil
}

func (e *Extractor) blockFrames() int {
	if e.BlockFrames < 1 {
		return wav.DefaultBlockFrames
	}
	return e.BlockFrames
}
