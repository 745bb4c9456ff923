// SPDX-License-Identifier: EPL-2.0

// Package split rewrites the output directory into numbered section
// subdirectories: every final track is cut at the detected section
// boundaries and song sections get their BPM embedded as metadata.
package split

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ik5/chanweave/click"
	"github.com/ik5/chanweave/formats/wav"
	"github.com/ik5/chanweave/report"
	"github.com/ik5/chanweave/tags"
)

// ErrSplitFailed covers I/O errors during section writing. A single
// file's failure leaves that file intact at the top level; the session
// fails only when no file could be split at all.
var ErrSplitFailed = errors.New("section split failed")

// Splitter cuts final tracks into per-section files. All section files
// of one section span identical sample ranges, keeping every track
// aligned when loaded into a DAW.
type Splitter struct {
	BlockFrames int
	Enc         wav.Encoder
	Report      report.Handler
	Progress    report.Progress
}

func (s *Splitter) handler() report.Handler {
	if s.Report == nil {
		return report.Nop()
	}
	return s.Report
}

func (s *Splitter) progress() report.Progress {
	if s.Progress == nil {
		return report.NopProgress()
	}
	return s.Progress
}

// Split cuts every top-level WAV in outputDir into
// section_NN/<basename> files and deletes each original only after all
// of its sections were written. Afterwards each song section's files
// receive a TBPM tag; tag failures are warnings, not errors.
func (s *Splitter) Split(ctx context.Context, outputDir string, sections []click.SectionInfo) error {
	if len(sections) == 0 {
		return nil
	}

	files, err := topLevelWavs(outputDir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSplitFailed, err)
	}
	if len(files) == 0 {
		// a second run over an already-split directory is a no-op
		return nil
	}

	pad := 2
	if len(sections) > 99 {
		pad = 3
	}
	for _, section := range sections {
		dir := sectionDir(outputDir, section.Number, pad)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrSplitFailed, err)
		}
	}

	var failed []string
	done := 0
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("splitter: %w", err)
		}

		if err := s.splitFile(ctx, outputDir, file, sections, pad); err != nil {
			s.handler().Error("failed to split track, keeping original",
				"file", filepath.Base(file), "error", err)
			failed = append(failed, file)
			continue
		}
		if err := os.Remove(file); err != nil {
			return fmt.Errorf("%w: remove %s: %v", ErrSplitFailed, file, err)
		}
		done++
		s.progress().Step("split", done, len(files))
	}

	if done == 0 {
		return fmt.Errorf("%w: no file produced any section output", ErrSplitFailed)
	}

	s.tagSections(outputDir, sections, pad)
	return nil
}

// splitFile writes all sections of one track. On failure every partial
// section file of this track is removed and the original stays.
func (s *Splitter) splitFile(ctx context.Context, outputDir, file string, sections []click.SectionInfo, pad int) error {
	base := filepath.Base(file)
	var written []string

	cleanup := func() {
		for _, p := range written {
			os.Remove(p)
		}
	}

	for _, section := range sections {
		if err := ctx.Err(); err != nil {
			cleanup()
			return err
		}
		out := filepath.Join(sectionDir(outputDir, section.Number, pad), base)
		if err := s.writeRange(file, out, section.StartSample, section.EndSample); err != nil {
			cleanup()
			return err
		}
		written = append(written, out)
	}
	return nil
}

// writeRange streams frames [start, end) of src into an atomic writer
// at dst, in the adapter's block size.
func (s *Splitter) writeRange(src, dst string, start, end int64) error {
	r, err := wav.NewReader(src, s.BlockFrames)
	if err != nil {
		return err
	}
	defer r.Close()

	info := r.Info()
	w, err := wav.NewAtomicWriter(dst, info.SampleRate, info.Channels, s.Enc)
	if err != nil {
		return err
	}

	var pos int64
	for pos < end {
		block, err := r.ReadBlock()
		if err == io.EOF {
			break
		}
		if err != nil {
			w.Abort()
			return err
		}

		frames := int64(len(block.Data) / info.Channels)
		blockStart := pos
		pos += frames

		// clip the block to [start, end)
		from := int64(0)
		if start > blockStart {
			from = start - blockStart
		}
		to := frames
		if end < blockStart+frames {
			to = end - blockStart
		}
		if from >= to {
			continue
		}

		slice := block.Data[from*int64(info.Channels) : to*int64(info.Channels)]
		if err := w.WriteSamples(slice); err != nil {
			w.Abort()
			return err
		}
	}

	return w.Close()
}

// tagSections writes the TBPM frame into every file of every song
// section. Failures are logged and ignored; section audio is already
// final at this point.
func (s *Splitter) tagSections(outputDir string, sections []click.SectionInfo, pad int) {
	for _, section := range sections {
		if section.BPM <= 0 {
			continue
		}
		dir := sectionDir(outputDir, section.Number, pad)
		entries, err := os.ReadDir(dir)
		if err != nil {
			s.handler().Warn("cannot list section directory", "dir", dir, "error", err)
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".wav") {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if err := tags.WriteBPM(path, section.BPM); err != nil {
				s.handler().Warn("failed to write BPM tag",
					"file", path, "bpm", section.BPM, "error", err)
			}
		}
	}
}

func sectionDir(outputDir string, number, pad int) string {
	return filepath.Join(outputDir, fmt.Sprintf("section_%0*d", pad, number))
}

func topLevelWavs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".wav") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
