// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	// ErrInputInvalid covers an empty input directory, an unreadable
	// file, or an inter-file parameter mismatch. Fatal, pre-extraction.
	ErrInputInvalid = errors.New("invalid input files")
	// ErrExtractionFailed covers I/O or decode errors while
	// de-interleaving. Fatal to the session.
	ErrExtractionFailed = errors.New("extraction failed")
	ErrUnresolvedBitDepth = errors.New("unresolved bit depth")
)
