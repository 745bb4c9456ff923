// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ik5/chanweave/click"
)

type sessionJSON struct {
	SessionID  string        `json:"session_id"`
	SampleRate int           `json:"sample_rate"`
	Sections   []sectionJSON `json:"sections"`
}

type sectionJSON struct {
	Section         string  `json:"section"`
	StartSeconds    float64 `json:"start_seconds"`
	StartHMS        string  `json:"start_hms"`
	DurationSeconds float64 `json:"duration_seconds"`
	DurationHMS     string  `json:"duration_hms"`
	Type            string  `json:"type"`
	BPM             *int    `json:"bpm"`
}

// writeSessionJSON dumps the section list the splitter used, atomically
// (write to .tmp, then rename).
func writeSessionJSON(path, sessionID string, sampleRate int, sections []click.SectionInfo) error {
	out := sessionJSON{
		SessionID:  sessionID,
		SampleRate: sampleRate,
		Sections:   make([]sectionJSON, 0, len(sections)),
	}
	for _, s := range sections {
		entry := sectionJSON{
			Section:         fmt.Sprintf("section_%02d", s.Number),
			StartSeconds:    round3(s.StartSeconds(sampleRate)),
			StartHMS:        formatHMS(s.StartSeconds(sampleRate)),
			DurationSeconds: round3(s.Seconds(sampleRate)),
			DurationHMS:     formatHMS(s.Seconds(sampleRate)),
			Type:            s.Type.String(),
		}
		if s.BPM > 0 {
			bpm := s.BPM
			entry.BPM = &bpm
		}
		out.Sections = append(out.Sections, entry)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func round3(v float64) float64 {
	return float64(int64(v*1000+0.5)) / 1000
}

func formatHMS(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}
