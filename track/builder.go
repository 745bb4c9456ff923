// SPDX-License-Identifier: EPL-2.0

// Package track assembles final output files from the extractor's mono
// segments: per-channel mono tracks and stereo bus tracks, both written
// atomically with sample-exact boundary continuity.
package track

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	gaudio "github.com/go-audio/audio"

	"github.com/ik5/chanweave/config"
	"github.com/ik5/chanweave/formats/wav"
	"github.com/ik5/chanweave/report"
)

// Builder writes final tracks into OutDir. All writers share the
// session encoder and block size.
type Builder struct {
	SampleRate  int
	BlockFrames int
	Enc         wav.Encoder
	OutDir      string
	Report      report.Handler
	Progress    report.Progress
}

func (b *Builder) handler() report.Handler {
	if b.Report == nil {
		return report.Nop()
	}
	return b.Report
}

func (b *Builder) progress() report.Progress {
	if b.Progress == nil {
		return report.NopProgress()
	}
	return b.Progress
}

// WriteMono concatenates a channel's segments into NN_Name.wav. Frame
// counts across segment junctions add up exactly; there is no
// crossfade, padding, or dropout. The segments themselves are left in
// place — cleanup belongs to the orchestrator.
func (b *Builder) WriteMono(ctx context.Context, cfg config.ChannelConfig, segments []string) (string, error) {
	if len(segments) == 0 {
		return "", fmt.Errorf("%w: no segments for channel %d (%s)",
			ErrInternalInvariant, cfg.Channel, cfg.Name)
	}

	path := MonoPath(b.OutDir, cfg.OutputChannel, cfg.Name)
	w, err := wav.NewAtomicWriter(path, b.SampleRate, 1, b.Enc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}

	for _, segment := range segments {
		if err := ctx.Err(); err != nil {
			w.Abort()
			return "", fmt.Errorf("track builder: %w", err)
		}
		if err := b.appendSegment(w, segment); err != nil {
			w.Abort()
			return "", fmt.Errorf("%w: %s: %v", ErrBuildFailed, segment, err)
		}
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}
	b.handler().Info("created mono track", "file", filepath.Base(path), "frames", w.Frames())
	return path, nil
}

func (b *Builder) appendSegment(w *wav.Writer, segment string) error {
	r, err := wav.NewReader(segment, b.BlockFrames)
	if err != nil {
		return err
	}
	defer r.Close()

	for {
		block, err := r.ReadBlock()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := w.WriteBlock(block); err != nil {
			return err
		}
	}
}

// WriteStereo interleaves the left and right channel segments of a bus
// into one 2-channel file. The two segment lists must pair up with
// identical frame counts — the extractor guarantees it, so a mismatch
// is ErrInternalInvariant, not an input error.
func (b *Builder) WriteStereo(ctx context.Context, bus config.BusConfig, left, right []string) (string, error) {
	if len(left) != len(right) {
		return "", fmt.Errorf("%w: bus %s has %d left vs %d right segments",
			ErrInternalInvariant, bus.FileName, len(left), len(right))
	}
	if len(left) == 0 {
		return "", fmt.Errorf("%w: bus %s has no segments", ErrInternalInvariant, bus.FileName)
	}

	path := BusPath(b.OutDir, bus.FileName)
	w, err := wav.NewAtomicWriter(path, b.SampleRate, 2, b.Enc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}

	for i := range left {
		if err := ctx.Err(); err != nil {
			w.Abort()
			return "", fmt.Errorf("track builder: %w", err)
		}
		if err := b.appendStereoSegment(w, bus, left[i], right[i]); err != nil {
			w.Abort()
			return "", err
		}
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}
	b.handler().Info("created stereo bus", "file", filepath.Base(path), "frames", w.Frames())
	return path, nil
}

// appendStereoSegment streams one left/right segment pair in lock-step,
// stacking each pair of mono blocks column-wise. Reads truncate to the
// shorter block; the per-segment totals still match because paired
// segments hold the same frame count.
func (b *Builder) appendStereoSegment(w *wav.Writer, bus config.BusConfig, leftPath, rightPath string) error {
	l, err := wav.NewReader(leftPath, b.BlockFrames)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}
	defer l.Close()

	r, err := wav.NewReader(rightPath, b.BlockFrames)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}
	defer r.Close()

	if l.Info().Frames != r.Info().Frames {
		return fmt.Errorf("%w: bus %s segment frame counts differ: %s has %d, %s has %d",
			ErrInternalInvariant, bus.FileName,
			filepath.Base(leftPath), l.Info().Frames,
			filepath.Base(rightPath), r.Info().Frames)
	}

	stereo := &gaudio.Float32Buffer{
		Format: &gaudio.Format{NumChannels: 2, SampleRate: b.SampleRate},
		Data:   make([]float32, 2*b.blockFrames()),
	}

	for {
		lb, lerr := l.ReadBlock()
		rb, rerr := r.ReadBlock()
		if lerr == io.EOF && rerr == io.EOF {
			return nil
		}
		if lerr == io.EOF || rerr == io.EOF {
			return fmt.Errorf("%w: bus %s: one channel ended prematurely",
				ErrInternalInvariant, bus.FileName)
		}
		if lerr != nil {
			return fmt.Errorf("%w: %s: %v", ErrBuildFailed, leftPath, lerr)
		}
		if rerr != nil {
			return fmt.Errorf("%w: %s: %v", ErrBuildFailed, rightPath, rerr)
		}

		frames := len(lb.Data)
		if len(rb.Data) < frames {
			frames = len(rb.Data)
		}
		stereo.Data = stereo.Data[:2*frames]
		for f := range frames {
			stereo.Data[2*f] = lb.Data[f]
			stereo.Data[2*f+1] = rb.Data[f]
		}
		if err := w.WriteBlock(stereo); err != nil {
			return fmt.Errorf("%w: %v", ErrBuildFailed, err)
		}
	}
}

// Build writes every mono track (actions process and click) and every
// bus, returning the created paths in write order.
func (b *Builder) Build(ctx context.Context, channels []config.ChannelConfig, buses []config.BusConfig, segments map[int][]string) ([]string, error) {
	total := 0
	for _, ch := range channels {
		if ch.Action == config.ActionProcess || ch.Action == config.ActionClick {
			total++
		}
	}
	total += len(buses)

	var paths []string
	for _, ch := range channels {
		if ch.Action != config.ActionProcess && ch.Action != config.ActionClick {
			continue
		}
		path, err := b.WriteMono(ctx, ch, segments[ch.Channel])
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
		b.progress().Step("build", len(paths), total)
	}

	for _, bus := range buses {
		path, err := b.WriteStereo(ctx, bus, segments[bus.Slots.Left], segments[bus.Slots.Right])
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
		b.progress().Step("build", len(paths), total)
	}
	return paths, nil
}

func (b *Builder) blockFrames() int {
	if b.BlockFrames < 1 {
		return wav.DefaultBlockFrames
	}
	return b.BlockFrames
}
