// SPDX-License-Identifier: EPL-2.0

package chanweave

import (
	"context"
	"fmt"

	"github.com/ik5/chanweave/pipeline"
)

// Process runs one full session: discovery, validation, extraction,
// track building, and — when enabled in the session configuration —
// click analysis and section splitting. It is a thin convenience over
// pipeline.New followed by Run.
func Process(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error) {
	p, err := pipeline.New(opts)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	result, err := p.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return result, nil
}
