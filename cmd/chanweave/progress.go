// SPDX-License-Identifier: EPL-2.0

package main

import (
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/ik5/chanweave/report"
)

// barProgress renders one mpb bar per pipeline stage.
type barProgress struct {
	mtx  sync.Mutex
	p    *mpb.Progress
	bars map[string]*mpb.Bar
}

// newProgress returns the progress sink and a finish function that
// waits for the bars to render their final state.
func newProgress() (report.Progress, func()) {
	bp := &barProgress{
		p:    mpb.New(mpb.WithWidth(48)),
		bars: make(map[string]*mpb.Bar),
	}
	return bp, func() { bp.p.Wait() }
}

func (bp *barProgress) Step(stage string, done, total int) {
	bp.mtx.Lock()
	defer bp.mtx.Unlock()

	bar, ok := bp.bars[stage]
	if !ok {
		bar = bp.p.New(int64(total),
			mpb.BarStyle(),
			mpb.PrependDecorators(
				decor.Name(stage+" "),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(decor.Percentage()),
		)
		bp.bars[stage] = bar
	}
	bar.SetTotal(int64(total), false)
	bar.SetCurrent(int64(done))
	if done >= total {
		bar.SetTotal(int64(total), true)
	}
}
