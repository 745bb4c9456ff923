// SPDX-License-Identifier: EPL-2.0

package track

import "errors"

var (
	// ErrBuildFailed covers I/O errors during concatenation or
	// interleaving. Fatal; partial output files are removed.
	ErrBuildFailed = errors.New("track build failed")
	// ErrInternalInvariant signals a violated extractor guarantee, such
	// as bus channels with mismatched segment lists. A programmer
	// error, not an input error.
	ErrInternalInvariant = errors.New("internal invariant violated")
)
