// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"path/filepath"

	"github.com/ik5/chanweave/formats/wav"
)

// Validate probes every input file and checks that sample rate, channel
// count, and subtype are homogeneous across the session. The first file
// establishes the expected parameters; any mismatch is ErrInputInvalid
// naming the attribute and the offending file.
func Validate(files []InputFile) (Params, error) {
	if len(files) == 0 {
		return Params{}, fmt.Errorf("%w: no input files", ErrInputInvalid)
	}

	first, err := wav.Probe(files[0].Path)
	if err != nil {
		return Params{}, fmt.Errorf("%w: %v", ErrInputInvalid, err)
	}

	for _, file := range files[1:] {
		info, err := wav.Probe(file.Path)
		if err != nil {
			return Params{}, fmt.Errorf("%w: %v", ErrInputInvalid, err)
		}

		name := filepath.Base(file.Path)
		if info.SampleRate != first.SampleRate {
			return Params{}, fmt.Errorf(
				"%w: sample rate mismatch: %s has %d Hz (expected %d)",
				ErrInputInvalid, name, info.SampleRate, first.SampleRate)
		}
		if info.Channels != first.Channels {
			return Params{}, fmt.Errorf(
				"%w: channel count mismatch: %s has %d channels (expected %d)",
				ErrInputInvalid, name, info.Channels, first.Channels)
		}
		if info.Subtype != first.Subtype {
			return Params{}, fmt.Errorf(
				"%w: bit depth mismatch: %s uses %s (expected %s)",
				ErrInputInvalid, name, info.Subtype, first.Subtype)
		}
	}

	depth, err := BitDepthFromSubtype(first.Subtype)
	if err != nil {
		return Params{}, fmt.Errorf("%w: %v", ErrInputInvalid, err)
	}

	return Params{
		SampleRate: first.SampleRate,
		Channels:   first.Channels,
		BitDepth:   depth,
	}, nil
}
