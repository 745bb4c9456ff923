// SPDX-License-Identifier: EPL-2.0

// Package convert holds the bit-depth encoder set: one stateless
// strategy per target subtype, chosen once per session and shared by
// every writer.
package convert

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ik5/chanweave/audio"
	"github.com/ik5/chanweave/formats/wav"
	"github.com/ik5/chanweave/utils"
)

// Resolve replaces the SOURCE pseudo-depth with the session's input
// depth. This happens exactly once, before any writer opens; the
// pipeline never sees SOURCE.
func Resolve(requested, source audio.BitDepth) (audio.BitDepth, error) {
	if requested != audio.BitDepthSource {
		return requested, nil
	}
	if source == audio.BitDepthSource {
		return 0, fmt.Errorf("%w: source depth unknown", audio.ErrUnresolvedBitDepth)
	}
	return source, nil
}

// ForBitDepth returns the encoder for a resolved bit depth.
func ForBitDepth(d audio.BitDepth) (wav.Encoder, error) {
	switch d {
	case audio.BitDepthInt16:
		return Int16Encoder{}, nil
	case audio.BitDepthInt24:
		return Int24Encoder{}, nil
	case audio.BitDepthFloat32:
		return Float32Encoder{}, nil
	}
	return nil, fmt.Errorf("%w: %s", audio.ErrUnresolvedBitDepth, d)
}

// Float32Encoder passes float data through unchanged.
type Float32Encoder struct{}

func (Float32Encoder) Subtype() wav.Subtype { return wav.SubtypeFloat }

func (Float32Encoder) Encode(dst []byte, src []float32) int {
	for i, x := range src {
		binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(x))
	}
	return len(src) * 4
}

// Int24Encoder scales by 2^23, rounds half to even, and clips to the
// 24-bit signed range.
type Int24Encoder struct{}

func (Int24Encoder) Subtype() wav.Subtype { return wav.SubtypePCM24 }

func (Int24Encoder) Encode(dst []byte, src []float32) int {
	for i, x := range src {
		v := utils.Float32ToInt24(x)
		dst[3*i] = byte(v)
		dst[3*i+1] = byte(v >> 8)
		dst[3*i+2] = byte(v >> 16)
	}
	return len(src) * 3
}

// Int16Encoder scales by 2^15, rounds half to even, and clips to the
// 16-bit signed range.
type Int16Encoder struct{}

func (Int16Encoder) Subtype() wav.Subtype { return wav.SubtypePCM16 }

func (Int16Encoder) Encode(dst []byte, src []float32) int {
	for i, x := range src {
		binary.LittleEndian.PutUint16(dst[2*i:], uint16(utils.Float32ToInt16(x)))
	}
	return len(src) * 2
}
