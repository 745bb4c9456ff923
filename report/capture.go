// SPDX-License-Identifier: EPL-2.0

package report

import "sync"

// Capture is a Handler that records messages for tests.
type Capture struct {
	mtx      sync.Mutex
	Infos    []string
	Warnings []string
	Errors   []string
}

func (c *Capture) Info(msg string, _ ...any) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.Infos = append(c.Infos, msg)
}

func (c *Capture) Warn(msg string, _ ...any) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.Warnings = append(c.Warnings, msg)
}

func (c *Capture) Error(msg string, _ ...any) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.Errors = append(c.Errors, msg)
}
