// SPDX-License-Identifier: EPL-2.0

package click

import "fmt"

// SectionType classifies a detected section.
type SectionType int

const (
	// Speaking sections have no stable click tempo.
	Speaking SectionType = iota
	// Song sections carry a BPM estimate.
	Song
)

func (t SectionType) String() string {
	if t == Song {
		return "song"
	}
	return "speaking"
}

// SectionInfo is one contiguous range of the click track. Sections are
// ordered, non-overlapping, and cover [0, total) of the analyzed file.
// BPM is 0 when no tempo was estimated; Type is Song exactly when BPM
// is set.
type SectionInfo struct {
	Number      int
	StartSample int64
	EndSample   int64
	Type        SectionType
	BPM         int
}

func (s SectionInfo) String() string {
	if s.BPM > 0 {
		return fmt.Sprintf("section %d [%d..%d) %s %d bpm",
			s.Number, s.StartSample, s.EndSample, s.Type, s.BPM)
	}
	return fmt.Sprintf("section %d [%d..%d) %s",
		s.Number, s.StartSample, s.EndSample, s.Type)
}

// Frames in the section.
func (s SectionInfo) Frames() int64 { return s.EndSample - s.StartSample }

// Seconds the section lasts at the given rate.
func (s SectionInfo) Seconds(sampleRate int) float64 {
	return float64(s.Frames()) / float64(sampleRate)
}

// StartSeconds of the section at the given rate.
func (s SectionInfo) StartSeconds(sampleRate int) float64 {
	return float64(s.StartSample) / float64(sampleRate)
}
