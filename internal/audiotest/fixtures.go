// SPDX-License-Identifier: EPL-2.0

// Package audiotest generates WAV fixtures for tests: deterministic
// waveforms, multichannel files, and synthetic click tracks with tempo
// segments and gaps.
package audiotest

import (
	"io"
	"math"
	"testing"

	"github.com/ik5/chanweave/audio"
	"github.com/ik5/chanweave/convert"
	"github.com/ik5/chanweave/formats/wav"
)

// Waveform generates the sample value for a frame/channel pair.
type Waveform func(frame, channel int) float32

// Silence generates all zeros.
func Silence() Waveform {
	return func(int, int) float32 { return 0 }
}

// Constant generates the same value on every channel.
func Constant(value float32) Waveform {
	return func(int, int) float32 { return value }
}

// Sine generates a sine wave of the given frequency, phase-shifted a
// quarter period per channel so channels are distinguishable.
func Sine(sampleRate int, frequency float64) Waveform {
	return func(frame, channel int) float32 {
		t := float64(frame) / float64(sampleRate)
		phase := float64(channel) * math.Pi / 2
		return float32(0.5 * math.Sin(2*math.Pi*frequency*t+phase))
	}
}

// Ramp generates frame/total on every channel, useful for asserting
// sample-exact boundaries.
func Ramp(total int) Waveform {
	return func(frame, _ int) float32 {
		return float32(frame) / float32(total)
	}
}

// WriteWAV writes frames of gen to path with the given parameters.
func WriteWAV(tb testing.TB, path string, sampleRate, channels int, depth audio.BitDepth, frames int, gen Waveform) {
	tb.Helper()

	enc, err := convert.ForBitDepth(depth)
	if err != nil {
		tb.Fatalf("encoder: %v", err)
	}
	w, err := wav.NewWriter(path, sampleRate, channels, enc)
	if err != nil {
		tb.Fatalf("writer: %v", err)
	}

	const blockFrames = 4096
	block := make([]float32, 0, blockFrames*channels)
	for f := 0; f < frames; f++ {
		for ch := 0; ch < channels; ch++ {
			block = append(block, gen(f, ch))
		}
		if len(block) == blockFrames*channels {
			if err := w.WriteSamples(block); err != nil {
				tb.Fatalf("write: %v", err)
			}
			block = block[:0]
		}
	}
	if len(block) > 0 {
		if err := w.WriteSamples(block); err != nil {
			tb.Fatalf("write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		tb.Fatalf("close: %v", err)
	}
}

// ReadAll drains a file into one interleaved slice. Test-only; the
// pipeline itself never reads a whole file.
func ReadAll(tb testing.TB, path string) ([]float32, wav.Info) {
	tb.Helper()

	r, err := wav.NewReader(path, 4096)
	if err != nil {
		tb.Fatalf("reader: %v", err)
	}
	defer r.Close()

	var all []float32
	for {
		block, err := r.ReadBlock()
		if err == io.EOF {
			break
		}
		if err != nil {
			tb.Fatalf("read: %v", err)
		}
		all = append(all, block.Data...)
	}
	return all, r.Info()
}

// ClickSegment describes one stretch of a synthetic click track. A
// BPM of 0 produces silence for Seconds.
type ClickSegment struct {
	BPM     int
	Seconds float64
}

// ClickTrack builds a Waveform of metronome clicks: 3 ms bursts of a
// 4 kHz tone at each beat, silence elsewhere. It also returns the total
// frame count. Beats continue from segment to segment without a seam
// larger than one period.
func ClickTrack(sampleRate int, segments []ClickSegment) (Waveform, int) {
	type click struct{ start, end int }

	var clicks []click
	burst := sampleRate * 3 / 1000
	pos := 0
	for _, seg := range segments {
		length := int(seg.Seconds * float64(sampleRate))
		if seg.BPM > 0 {
			period := sampleRate * 60 / seg.BPM
			for off := 0; off < length; off += period {
				clicks = append(clicks, click{start: pos + off, end: pos + off + burst})
			}
		}
		pos += length
	}

	total := pos
	gen := func(frame, _ int) float32 {
		for _, c := range clicks {
			if frame >= c.start && frame < c.end {
				t := float64(frame-c.start) / float64(sampleRate)
				return float32(0.9 * math.Sin(2*math.Pi*4000*t))
			}
			if c.start > frame {
				break
			}
		}
		return 0
	}
	return gen, total
}
