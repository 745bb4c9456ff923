// SPDX-License-Identifier: EPL-2.0

package click

// buildSections turns the onset list into contiguous raw sections
// covering [0, total). Boundaries come from two sources: inter-onset
// gaps of at least gapSeconds (the span between two onset runs becomes
// a speaking section) and tempo changes of at least bpmChangeThreshold
// inside one run.
func buildSections(onsets []int64, total int64, sampleRate int, gapSeconds float64, bpmChangeThreshold int) []SectionInfo {
	if len(onsets) < 2 {
		return []SectionInfo{{
			Number:      1,
			StartSample: 0,
			EndSample:   total,
			Type:        Speaking,
		}}
	}

	gapSamples := int64(gapSeconds * float64(sampleRate))
	if gapSamples < 1 {
		gapSamples = 1
	}

	type onsetRun struct{ start, end int } // inclusive onset index range
	var runs []onsetRun
	runStart := 0
	for i := 1; i < len(onsets); i++ {
		if onsets[i]-onsets[i-1] >= gapSamples {
			runs = append(runs, onsetRun{start: runStart, end: i - 1})
			runStart = i
		}
	}
	runs = append(runs, onsetRun{start: runStart, end: len(onsets) - 1})

	var sections []SectionInfo
	cursor := int64(0)

	for ri, r := range runs {
		runOnsets := onsets[r.start : r.end+1]
		starts, bpms := tempoSplit(runOnsets, sampleRate, bpmChangeThreshold)

		lastRun := ri == len(runs)-1
		for si, localIdx := range starts {
			start := runOnsets[localIdx]
			if si == 0 {
				start = cursor
			}

			var end int64
			switch {
			case si < len(starts)-1:
				end = runOnsets[starts[si+1]]
			case lastRun:
				end = total
			default:
				// the run's last onset closes the song; the gap up to
				// the next run becomes a speaking section below
				end = runOnsets[len(runOnsets)-1]
			}
			if end <= start {
				continue
			}

			sections = append(sections, SectionInfo{
				StartSample: start,
				EndSample:   end,
				BPM:         bpms[si],
			})
		}

		if !lastRun {
			gapStart := runOnsets[len(runOnsets)-1]
			nextStart := onsets[runs[ri+1].start]
			if nextStart > gapStart {
				sections = append(sections, SectionInfo{
					StartSample: gapStart,
					EndSample:   nextStart,
					Type:        Speaking,
				})
			}
			cursor = nextStart
		}
	}

	for i := range sections {
		sections[i].Number = i + 1
	}
	return Classify(sections)
}

// tempoSplit finds tempo-change boundaries inside one onset run. It
// returns the local onset indices that start each subsection (the first
// is always 0) and the BPM per subsection (0 = none).
//
// Detection compares each sliding-window estimate against the previous
// non-zero estimate of the same subsection; a hit is then refined to the
// first interval whose own implied tempo deviates from that previous
// estimate, and the boundary lands on that interval's later onset.
func tempoSplit(runOnsets []int64, sampleRate, threshold int) (starts []int, bpms []int) {
	iois := make([]int64, len(runOnsets)-1)
	for i := range iois {
		iois[i] = runOnsets[i+1] - runOnsets[i]
	}
	ests := windowBPMs(iois, sampleRate)

	starts = []int{0}
	ref := 0
	searchFrom := 0

	for i := 0; i < len(ests); i++ {
		e := ests[i]
		if e == 0 {
			continue
		}
		if ref == 0 {
			ref = e
			continue
		}
		if abs(e-ref) < threshold {
			ref = e
			continue
		}

		k := refineChange(iois, searchFrom, i, ref, threshold, sampleRate)
		boundary := k + 1
		if boundary >= 1 && boundary <= len(runOnsets)-2 && boundary > starts[len(starts)-1] {
			starts = append(starts, boundary)
			searchFrom = boundary
			ref = 0
			if i < boundary {
				i = boundary - 1
			}
			continue
		}
		ref = e
	}

	bpms = make([]int, len(starts))
	for si, s := range starts {
		end := len(iois)
		if si < len(starts)-1 {
			end = starts[si+1]
		}
		var inside []int
		for k := s; k < end && k < len(ests); k++ {
			if ests[k] > 0 {
				inside = append(inside, ests[k])
			}
		}
		bpms[si] = medianInt(inside)
	}
	return starts, bpms
}

// refineChange scans for the first interval whose single-interval tempo
// deviates from ref by at least threshold. The window comparison that
// triggered the scan lags the actual change by up to a window length,
// so the scan covers one window on both sides of the trigger.
func refineChange(iois []int64, searchFrom, trigger, ref, threshold, sampleRate int) int {
	from := trigger - bpmWindowIOIs
	if from < searchFrom {
		from = searchFrom
	}
	to := trigger + bpmWindowIOIs
	if to > len(iois) {
		to = len(iois)
	}

	for k := from; k < to; k++ {
		b := bpmFromInterval(iois[k], sampleRate)
		if b == 0 || abs(b-ref) >= threshold {
			return k
		}
	}
	return trigger
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
