// SPDX-License-Identifier: EPL-2.0

package click

import "testing"

// onsetGrid builds onsets at a fixed BPM starting at start.
func onsetGrid(start int64, bpm, count, sampleRate int) []int64 {
	period := int64(sampleRate * 60 / bpm)
	onsets := make([]int64, count)
	for i := range onsets {
		onsets[i] = start + int64(i)*period
	}
	return onsets
}

func checkCoverage(t *testing.T, sections []SectionInfo, total int64) {
	t.Helper()
	if len(sections) == 0 {
		t.Fatal("no sections")
	}
	if sections[0].StartSample != 0 {
		t.Errorf("first section starts at %d, want 0", sections[0].StartSample)
	}
	if sections[len(sections)-1].EndSample != total {
		t.Errorf("last section ends at %d, want %d", sections[len(sections)-1].EndSample, total)
	}
	for i := range sections {
		if sections[i].EndSample <= sections[i].StartSample {
			t.Errorf("section %d is empty: %+v", i, sections[i])
		}
		if i > 0 && sections[i].StartSample != sections[i-1].EndSample {
			t.Errorf("gap between section %d and %d", i-1, i)
		}
		if sections[i].Number != i+1 {
			t.Errorf("section %d numbered %d", i, sections[i].Number)
		}
	}
}

func TestBuildSectionsFewOnsets(t *testing.T) {
	t.Parallel()

	for _, onsets := range [][]int64{nil, {4800}} {
		sections := buildSections(onsets, 96000, 48000, 3, 1)
		if len(sections) != 1 {
			t.Fatalf("got %d sections, want 1", len(sections))
		}
		s := sections[0]
		if s.StartSample != 0 || s.EndSample != 96000 {
			t.Errorf("section spans [%d..%d), want [0..96000)", s.StartSample, s.EndSample)
		}
		if s.Type != Speaking || s.BPM != 0 {
			t.Errorf("section is %s with bpm %d, want speaking without bpm", s.Type, s.BPM)
		}
	}
}

func TestBuildSectionsSteadyTempo(t *testing.T) {
	t.Parallel()

	const sr = 44100
	onsets := onsetGrid(0, 120, 40, sr) // 20 seconds of 120 BPM
	total := onsets[len(onsets)-1] + sr

	sections := buildSections(onsets, total, sr, 3, 1)
	checkCoverage(t, sections, total)

	if len(sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(sections))
	}
	if sections[0].BPM != 120 {
		t.Errorf("BPM = %d, want 120", sections[0].BPM)
	}
	if sections[0].Type != Song {
		t.Errorf("type = %s, want song", sections[0].Type)
	}
}

func TestBuildSectionsGap(t *testing.T) {
	t.Parallel()

	const sr = 44100
	// 10 s @ 120 BPM, 5 s silence, 10 s @ 120 BPM
	first := onsetGrid(0, 120, 20, sr)
	lastFirst := first[len(first)-1] // 9.5 s
	secondStart := lastFirst + int64(5.5*sr)
	second := onsetGrid(secondStart, 120, 20, sr)
	onsets := append(append([]int64{}, first...), second...)
	total := second[len(second)-1] + sr

	sections := buildSections(onsets, total, sr, 3, 1)
	checkCoverage(t, sections, total)

	if len(sections) != 3 {
		t.Fatalf("got %d sections, want 3: %v", len(sections), sections)
	}
	if sections[0].Type != Song || sections[0].BPM != 120 {
		t.Errorf("section 1 = %v, want song at 120", sections[0])
	}
	if sections[1].Type != Speaking || sections[1].BPM != 0 {
		t.Errorf("section 2 = %v, want speaking", sections[1])
	}
	if sections[2].Type != Song || sections[2].BPM != 120 {
		t.Errorf("section 3 = %v, want song at 120", sections[2])
	}

	// the speaking span runs from the last onset of the first run to
	// the first onset of the second
	if sections[1].StartSample != lastFirst {
		t.Errorf("speaking starts at %d, want %d", sections[1].StartSample, lastFirst)
	}
	if sections[1].EndSample != secondStart {
		t.Errorf("speaking ends at %d, want %d", sections[1].EndSample, secondStart)
	}
}

func TestBuildSectionsTempoChange(t *testing.T) {
	t.Parallel()

	const sr = 44100
	// 10 s of 100 BPM, then 140 BPM continuing with no gap
	first := onsetGrid(0, 100, 17, sr) // onsets 0 .. 9.6 s
	changeStart := first[len(first)-1] + int64(sr*60/140)
	second := onsetGrid(changeStart, 140, 24, sr)
	onsets := append(append([]int64{}, first...), second...)
	total := second[len(second)-1] + sr

	sections := buildSections(onsets, total, sr, 3, 1)
	checkCoverage(t, sections, total)

	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2: %v", len(sections), sections)
	}
	if sections[0].BPM < 98 || sections[0].BPM > 102 {
		t.Errorf("section 1 BPM = %d, want 100±2", sections[0].BPM)
	}
	if sections[1].BPM < 138 || sections[1].BPM > 142 {
		t.Errorf("section 2 BPM = %d, want 140±2", sections[1].BPM)
	}

	// the boundary must land within one click period of the change
	period := int64(sr * 60 / 100)
	boundary := sections[1].StartSample
	if diff := boundary - changeStart; diff > period || diff < -period {
		t.Errorf("boundary at %d, want within %d of %d", boundary, period, changeStart)
	}
}

func TestBuildSectionsImplausibleTempoIsSpeaking(t *testing.T) {
	t.Parallel()

	const sr = 44100
	// clicks every 2 s → 30 BPM, below the plausible floor
	onsets := onsetGrid(0, 30, 10, sr)
	total := onsets[len(onsets)-1] + sr

	sections := buildSections(onsets, total, sr, 3, 1)
	checkCoverage(t, sections, total)
	for _, s := range sections {
		if s.Type != Speaking {
			t.Errorf("section %d = %v, want speaking", s.Number, s)
		}
	}
}

func TestWindowBPMs(t *testing.T) {
	t.Parallel()

	const sr = 48000
	period := int64(sr * 60 / 100)
	iois := make([]int64, 20)
	for i := range iois {
		iois[i] = period
	}

	ests := windowBPMs(iois, sr)
	if len(ests) != len(iois) {
		t.Fatalf("got %d estimates, want %d", len(ests), len(iois))
	}
	for i, e := range ests {
		if i <= len(iois)-minIOIsForBPM {
			if e != 100 {
				t.Errorf("window %d = %d, want 100", i, e)
			}
		} else if e != 0 {
			t.Errorf("tail window %d = %d, want 0 (too few intervals)", i, e)
		}
	}
}

func TestMedianInt64(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []int64
		want   float64
	}{
		{name: "empty", values: nil, want: 0},
		{name: "single", values: []int64{5}, want: 5},
		{name: "odd", values: []int64{9, 1, 5}, want: 5},
		{name: "even", values: []int64{1, 9, 3, 5}, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := medianInt64(tt.values); got != tt.want {
				t.Errorf("medianInt64(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}
