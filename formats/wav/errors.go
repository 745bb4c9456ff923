package wav

import "errors"

var (
	ErrNotWavFile           = errors.New("not a WAV file")
	ErrUnsupportedSubtype   = errors.New("unsupported WAV subtype")
	ErrChannelCountMismatch = errors.New("block channel count does not match writer")
	ErrWriterClosed         = errors.New("writer already closed")
)
