// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"

	"github.com/ik5/chanweave/formats/wav"
)

// BitDepth selects the sample encoding of produced files.
type BitDepth int

const (
	// BitDepthSource resolves to the session's input bit depth before
	// any writer is opened; it never reaches the pipeline itself.
	BitDepthSource BitDepth = iota
	BitDepthInt16
	BitDepthInt24
	BitDepthFloat32
)

func (d BitDepth) String() string {
	switch d {
	case BitDepthSource:
		return "source"
	case BitDepthInt16:
		return "16"
	case BitDepthInt24:
		return "24"
	case BitDepthFloat32:
		return "32float"
	}
	return fmt.Sprintf("BitDepth(%d)", int(d))
}

// Subtype returns the WAV subtype this depth is stored as.
func (d BitDepth) Subtype() (wav.Subtype, error) {
	switch d {
	case BitDepthInt16:
		return wav.SubtypePCM16, nil
	case BitDepthInt24:
		return wav.SubtypePCM24, nil
	case BitDepthFloat32:
		return wav.SubtypeFloat, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnresolvedBitDepth, d)
}

// BitDepthFromSubtype maps a probed WAV subtype to its bit depth.
func BitDepthFromSubtype(s wav.Subtype) (BitDepth, error) {
	switch s {
	case wav.SubtypePCM16:
		return BitDepthInt16, nil
	case wav.SubtypePCM24:
		return BitDepthInt24, nil
	case wav.SubtypeFloat:
		return BitDepthFloat32, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnresolvedBitDepth, s)
}

// Params are the session audio parameters, established once during
// validation and read-only afterwards. Every input file must match them
// exactly.
type Params struct {
	SampleRate int
	Channels   int
	BitDepth   BitDepth
}

func (p Params) String() string {
	return fmt.Sprintf("%d ch @ %d Hz, bit depth %s", p.Channels, p.SampleRate, p.BitDepth)
}
