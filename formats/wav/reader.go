// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/riff"
	gwav "github.com/go-audio/wav"
)

// Reader streams a WAV file as interleaved float32 blocks. The header
// and chunk layout are parsed with go-audio; sample decoding is done
// here so that PCM 16/24-bit and IEEE float data all normalize to
// [-1, 1] float32.
//
// Readers are restartable in the sense that the same path may be opened
// any number of times per session; a single Reader instance only moves
// forward.
type Reader struct {
	f           *os.File
	pcm         *riff.Chunk
	info        Info
	blockFrames int
	remaining   int64 // frames left in the data chunk
	scratch     []byte
	buf         *gaudio.Float32Buffer
}

// NewReader opens path and positions the stream at the first frame.
// blockFrames controls how many frames each ReadBlock call yields;
// values < 1 fall back to DefaultBlockFrames.
func NewReader(path string, blockFrames int) (*Reader, error) {
	if blockFrames < 1 {
		blockFrames = DefaultBlockFrames
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	d := gwav.NewDecoder(f)
	d.ReadInfo()
	if err := d.Err(); err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w: %v", path, ErrNotWavFile, err)
	}
	if !d.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrNotWavFile)
	}

	subtype, err := subtypeFromFormat(d.WavAudioFormat, d.BitDepth)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if err := d.FwdToPCM(); err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w: %v", path, ErrNotWavFile, err)
	}

	channels := int(d.NumChans)
	frameBytes := channels * subtype.BytesPerSample()
	frames := int64(d.PCMChunk.Size) / int64(frameBytes)

	r := &Reader{
		f:   f,
		pcm: d.PCMChunk,
		info: Info{
			SampleRate: int(d.SampleRate),
			Channels:   channels,
			Subtype:    subtype,
			Frames:     frames,
		},
		blockFrames: blockFrames,
		remaining:   frames,
		scratch:     make([]byte, blockFrames*frameBytes),
		buf: &gaudio.Float32Buffer{
			Format: &gaudio.Format{
				NumChannels: channels,
				SampleRate:  int(d.SampleRate),
			},
			Data: make([]float32, blockFrames*channels),
		},
	}
	return r, nil
}

func subtypeFromFormat(format, bits uint16) (Subtype, error) {
	switch {
	case format == 1 && bits == 16:
		return SubtypePCM16, nil
	case format == 1 && bits == 24:
		return SubtypePCM24, nil
	case format == 3 && bits == 32:
		return SubtypeFloat, nil
	}
	return "", fmt.Errorf("%w: format %d, %d bits", ErrUnsupportedSubtype, format, bits)
}

// Info returns the probed parameters of the open file.
func (r *Reader) Info() Info { return r.info }

// ReadBlock returns the next block of up to blockFrames interleaved
// frames. The returned buffer is reused by the next call; callers must
// consume or copy it first. Returns io.EOF once the data chunk is
// exhausted.
func (r *Reader) ReadBlock() (*gaudio.Float32Buffer, error) {
	if r.remaining <= 0 {
		return nil, io.EOF
	}

	frames := int64(r.blockFrames)
	if frames > r.remaining {
		frames = r.remaining
	}
	frameBytes := r.info.Channels * r.info.Subtype.BytesPerSample()
	want := frames * int64(frameBytes)

	n, err := io.ReadFull(r.pcm, r.scratch[:want])
	if err != nil && err != io.ErrUnexpectedEOF {
		if err == io.EOF && n == 0 {
			r.remaining = 0
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read pcm: %w", err)
	}

	gotFrames := n / frameBytes
	if gotFrames == 0 {
		r.remaining = 0
		return nil, io.EOF
	}
	r.remaining -= int64(gotFrames)

	samples := gotFrames * r.info.Channels
	r.buf.Data = r.buf.Data[:samples]
	r.decode(r.scratch[:gotFrames*frameBytes], r.buf.Data)
	return r.buf, nil
}

func (r *Reader) decode(src []byte, dst []float32) {
	switch r.info.Subtype {
	case SubtypePCM16:
		for i := range dst {
			v := int16(binary.LittleEndian.Uint16(src[2*i:]))
			dst[i] = float32(v) / 32768.0
		}
	case SubtypePCM24:
		for i := range dst {
			b := src[3*i : 3*i+3]
			v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
			// sign extend from 24 bits
			v = v << 8 >> 8
			dst[i] = float32(v) / 8388608.0
		}
	case SubtypeFloat:
		for i := range dst {
			dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[4*i:]))
		}
	}
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	if err := r.f.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// Probe opens path just long enough to report its parameters. Fails
// with ErrNotWavFile or ErrUnsupportedSubtype when the file cannot be
// parsed as a supported WAV.
func Probe(path string) (Info, error) {
	r, err := NewReader(path, 1)
	if err != nil {
		return Info{}, err
	}
	info := r.Info()
	if err := r.Close(); err != nil {
		return Info{}, err
	}
	return info, nil
}
