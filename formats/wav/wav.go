// SPDX-License-Identifier: EPL-2.0

package wav

// Subtype identifies the on-wire sample encoding of a WAV file.
type Subtype string

const (
	SubtypePCM16 Subtype = "PCM_16"
	SubtypePCM24 Subtype = "PCM_24"
	SubtypeFloat Subtype = "FLOAT"
)

// DefaultBlockFrames is the session-wide block size used by readers and
// writers unless overridden. Back-to-back blocks of the same size
// concatenate without any resampling or overlap.
const DefaultBlockFrames = 32768

// BytesPerSample returns the storage width of one sample.
func (s Subtype) BytesPerSample() int {
	switch s {
	case SubtypePCM16:
		return 2
	case SubtypePCM24:
		return 3
	case SubtypeFloat:
		return 4
	}
	return 0
}

// audioFormat returns the WAVE fmt-chunk format tag (1 = PCM, 3 = IEEE float).
func (s Subtype) audioFormat() uint16 {
	if s == SubtypeFloat {
		return 3
	}
	return 1
}

func (s Subtype) bitsPerSample() uint16 {
	return uint16(s.BytesPerSample() * 8)
}

// Info describes a probed WAV file.
type Info struct {
	SampleRate int
	Channels   int
	Subtype    Subtype
	Frames     int64
}

// Encoder turns normalized float32 samples in [-1, 1] into on-wire
// sample bytes. Implementations must be stateless across calls so a
// single encoder can serve every writer of a session.
type Encoder interface {
	// Subtype of the samples produced by Encode.
	Subtype() Subtype
	// Encode writes len(src) samples into dst and returns the number of
	// bytes written. dst must hold at least
	// len(src)*Subtype().BytesPerSample() bytes.
	Encode(dst []byte, src []float32) int
}
