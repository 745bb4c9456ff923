// SPDX-License-Identifier: EPL-2.0

package click

import "math"

// runningStats accumulates mean and standard deviation with Welford's
// method during the first analysis pass.
type runningStats struct {
	count int64
	mean  float64
	m2    float64
}

func (s *runningStats) add(x float64) {
	s.count++
	delta := x - s.mean
	s.mean += delta / float64(s.count)
	s.m2 += delta * (x - s.mean)
}

func (s *runningStats) std() float64 {
	if s.count < 2 {
		return 0
	}
	return math.Sqrt(s.m2 / float64(s.count))
}

// peakPicker finds local maxima of the novelty stream subject to a
// height threshold, a minimum peak distance, and a prominence floor.
// Prominence is measured against the running minimum since the last
// accepted peak; the novelty of a click track returns to zero between
// beats, so the local minimum is the true base.
//
// Distance conflicts resolve greedily in time order: a higher peak
// within minDist of the last accepted one replaces it.
type peakPicker struct {
	minDist    int64
	height     float64
	prominence float64

	idx      int64
	prev     float64
	prevPrev float64
	started  bool

	peaks    []int64
	lastVal  float64
	minSince float64
}

func newPeakPicker(minDist int64, height, prominence float64) *peakPicker {
	if minDist < 1 {
		minDist = 1
	}
	return &peakPicker{
		minDist:    minDist,
		height:     height,
		prominence: prominence,
		minSince:   math.Inf(1),
	}
}

func (p *peakPicker) feed(x float64) {
	if p.started && p.idx >= 2 && p.prevPrev < p.prev && p.prev > x {
		p.candidate(p.idx-1, p.prev)
	}
	if x < p.minSince {
		p.minSince = x
	}
	p.prevPrev = p.prev
	p.prev = x
	p.idx++
	p.started = true
}

func (p *peakPicker) candidate(at int64, val float64) {
	if val < p.height {
		return
	}
	if val-p.minSince < p.prominence {
		return
	}

	if n := len(p.peaks); n > 0 && at-p.peaks[n-1] < p.minDist {
		if val > p.lastVal {
			p.peaks[n-1] = at
			p.lastVal = val
			p.minSince = math.Inf(1)
		}
		return
	}

	p.peaks = append(p.peaks, at)
	p.lastVal = val
	p.minSince = math.Inf(1)
}
