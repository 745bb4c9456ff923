// SPDX-License-Identifier: EPL-2.0

package click

import (
	"math"
	"sort"
)

// median of a slice of sample intervals.
func medianInt64(values []int64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]int64, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return (float64(sorted[mid-1]) + float64(sorted[mid])) / 2
}

func medianInt(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return int(math.Round((float64(sorted[mid-1]) + float64(sorted[mid])) / 2))
}

// bpmFromInterval converts one inter-onset interval to BPM, or 0 when
// the result is implausible as a musical tempo.
func bpmFromInterval(ioi int64, sampleRate int) int {
	if ioi <= 0 {
		return 0
	}
	bpm := int(math.Round(float64(sampleRate) * 60.0 / float64(ioi)))
	if bpm < minPlausibleBPM || bpm > maxPlausibleBPM {
		return 0
	}
	return bpm
}

// windowBPMs estimates a BPM per sliding window of bpmWindowIOIs
// consecutive intervals; est[i] covers the window starting at interval
// i. Windows with fewer than minIOIsForBPM intervals, or a median
// outside the plausible range, estimate 0.
func windowBPMs(iois []int64, sampleRate int) []int {
	ests := make([]int, len(iois))
	for i := range iois {
		end := i + bpmWindowIOIs
		if end > len(iois) {
			end = len(iois)
		}
		if end-i < minIOIsForBPM {
			continue
		}
		med := medianInt64(iois[i:end])
		if med <= 0 {
			continue
		}
		bpm := int(math.Round(float64(sampleRate) * 60.0 / med))
		if bpm < minPlausibleBPM || bpm > maxPlausibleBPM {
			continue
		}
		ests[i] = bpm
	}
	return ests
}
