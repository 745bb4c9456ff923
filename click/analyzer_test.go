// SPDX-License-Identifier: EPL-2.0

package click_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ik5/chanweave/audio"
	"github.com/ik5/chanweave/click"
	"github.com/ik5/chanweave/config"
	"github.com/ik5/chanweave/internal/audiotest"
)

const testRate = 44100

func analyzerConfig() config.SectionSplitting {
	return config.SectionSplitting{
		Enabled:                 true,
		GapThresholdSeconds:     3,
		MinSectionLengthSeconds: 5,
		BPMChangeThreshold:      1,
	}
}

func writeClickTrack(t *testing.T, segments []audiotest.ClickSegment) (string, int) {
	t.Helper()

	gen, frames := audiotest.ClickTrack(testRate, segments)
	path := filepath.Join(t.TempDir(), "15_Click.wav")
	audiotest.WriteWAV(t, path, testRate, 1, audio.BitDepthInt16, frames, gen)
	return path, frames
}

func TestAnalyzeSilentTrack(t *testing.T) {
	t.Parallel()

	path, frames := writeClickTrack(t, []audiotest.ClickSegment{{BPM: 0, Seconds: 4}})

	sections, err := click.New(analyzerConfig(), 4096).Analyze(context.Background(), path)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(sections))
	}
	s := sections[0]
	if s.StartSample != 0 || s.EndSample != int64(frames) {
		t.Errorf("section spans [%d..%d), want [0..%d)", s.StartSample, s.EndSample, frames)
	}
	if s.Type != click.Speaking || s.BPM != 0 {
		t.Errorf("section = %v, want speaking without BPM", s)
	}
}

func TestAnalyzeSteadyClicks(t *testing.T) {
	t.Parallel()

	path, frames := writeClickTrack(t, []audiotest.ClickSegment{{BPM: 120, Seconds: 15}})

	sections, err := click.New(analyzerConfig(), 4096).Analyze(context.Background(), path)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(sections) != 1 {
		t.Fatalf("got %d sections, want 1: %v", len(sections), sections)
	}
	s := sections[0]
	if s.BPM < 118 || s.BPM > 122 {
		t.Errorf("BPM = %d, want 120±2", s.BPM)
	}
	if s.Type != click.Song {
		t.Errorf("type = %s, want song", s.Type)
	}
	if s.EndSample != int64(frames) {
		t.Errorf("section ends at %d, want %d", s.EndSample, frames)
	}
}

func TestAnalyzeTempoChange(t *testing.T) {
	t.Parallel()

	path, _ := writeClickTrack(t, []audiotest.ClickSegment{
		{BPM: 100, Seconds: 10},
		{BPM: 140, Seconds: 10},
	})

	sections, err := click.New(analyzerConfig(), 4096).Analyze(context.Background(), path)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2: %v", len(sections), sections)
	}
	if sections[0].BPM < 98 || sections[0].BPM > 102 {
		t.Errorf("section 1 BPM = %d, want 100±2", sections[0].BPM)
	}
	if sections[1].BPM < 138 || sections[1].BPM > 142 {
		t.Errorf("section 2 BPM = %d, want 140±2", sections[1].BPM)
	}

	// boundary within one old-tempo click period of the 10 s transition
	transition := int64(10 * testRate)
	period := int64(testRate * 60 / 100)
	boundary := sections[1].StartSample
	if boundary < transition-period || boundary > transition+period {
		t.Errorf("boundary at %d, want %d ± %d", boundary, transition, period)
	}
}

func TestAnalyzeGap(t *testing.T) {
	t.Parallel()

	path, _ := writeClickTrack(t, []audiotest.ClickSegment{
		{BPM: 120, Seconds: 10},
		{BPM: 0, Seconds: 5},
		{BPM: 120, Seconds: 10},
	})

	sections, err := click.New(analyzerConfig(), 4096).Analyze(context.Background(), path)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(sections) != 3 {
		t.Fatalf("got %d sections, want 3: %v", len(sections), sections)
	}
	if sections[0].Type != click.Song || sections[0].BPM < 118 || sections[0].BPM > 122 {
		t.Errorf("section 1 = %v, want song at 120", sections[0])
	}
	if sections[1].Type != click.Speaking {
		t.Errorf("section 2 = %v, want speaking", sections[1])
	}
	if sections[2].Type != click.Song || sections[2].BPM < 118 || sections[2].BPM > 122 {
		t.Errorf("section 3 = %v, want song at 120", sections[2])
	}

	// the speaking section starts at the last click before the silence,
	// within one click period of the 10 s mark
	period := int64(testRate * 60 / 120)
	silenceStart := int64(10 * testRate)
	if start := sections[1].StartSample; start < silenceStart-period || start > silenceStart+period {
		t.Errorf("speaking starts at %d, want %d ± %d", start, silenceStart, period)
	}
}

func TestAnalyzeMissingFile(t *testing.T) {
	t.Parallel()

	_, err := click.New(analyzerConfig(), 4096).
		Analyze(context.Background(), filepath.Join(t.TempDir(), "absent.wav"))
	if err == nil {
		t.Fatal("Analyze accepted a missing file")
	}
}
