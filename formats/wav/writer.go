// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"

	gaudio "github.com/go-audio/audio"
)

// Writer is a buffered frame sink for one WAV file. The header is
// written up front with zero sizes and patched on Close, so a Writer
// can stream an unknown number of frames. A failed Writer removes its
// partial file on Close or Abort; readers never observe a broken WAV.
type Writer struct {
	f         *os.File
	bw        *bufio.Writer
	enc       Encoder
	path      string
	finalPath string // non-empty for atomic writers
	rate      int
	channels  int
	frames    int64
	scratch   []byte
	err       error
	closed    bool
}

// NewWriter creates path and writes the WAV header for the encoder's
// subtype. Appended blocks are buffered; Close finalizes the container.
func NewWriter(path string, sampleRate, channels int, enc Encoder) (*Writer, error) {
	return newWriter(path, "", sampleRate, channels, enc)
}

// NewAtomicWriter writes to path + ".tmp" and renames to path on a
// successful Close. Required for every final output so readers never
// observe partial files.
func NewAtomicWriter(path string, sampleRate, channels int, enc Encoder) (*Writer, error) {
	return newWriter(path+".tmp", path, sampleRate, channels, enc)
}

func newWriter(path, finalPath string, sampleRate, channels int, enc Encoder) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	w := &Writer{
		f:         f,
		bw:        bufio.NewWriterSize(f, 64*1024),
		enc:       enc,
		path:      path,
		finalPath: finalPath,
		rate:      sampleRate,
		channels:  channels,
	}
	if err := w.writeHeader(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	return w, nil
}

// writeHeader emits the canonical 44-byte header. Sizes are patched on
// Close once the frame count is known.
func (w *Writer) writeHeader() error {
	subtype := w.enc.Subtype()
	bits := subtype.bitsPerSample()
	byteRate := uint32(w.rate) * uint32(w.channels) * uint32(bits/8)
	blockAlign := uint16(w.channels) * (bits / 8)

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], subtype.audioFormat())
	binary.LittleEndian.PutUint16(header[22:24], uint16(w.channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(w.rate))
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], bits)
	copy(header[36:40], "data")

	if _, err := w.bw.Write(header); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// WriteBlock appends one interleaved block. The buffer's channel count
// must match the writer's.
func (w *Writer) WriteBlock(buf *gaudio.Float32Buffer) error {
	if buf.Format.NumChannels != w.channels {
		return fmt.Errorf("%w: got %d, want %d",
			ErrChannelCountMismatch, buf.Format.NumChannels, w.channels)
	}
	return w.WriteSamples(buf.Data)
}

// WriteSamples appends interleaved samples; len(samples) must be a
// multiple of the channel count.
func (w *Writer) WriteSamples(samples []float32) error {
	if w.err != nil {
		return w.err
	}
	if w.closed {
		return ErrWriterClosed
	}

	bps := w.enc.Subtype().BytesPerSample()
	need := len(samples) * bps
	if cap(w.scratch) < need {
		w.scratch = make([]byte, need)
	}
	n := w.enc.Encode(w.scratch[:need], samples)

	if _, err := w.bw.Write(w.scratch[:n]); err != nil {
		w.err = fmt.Errorf("write %s: %w", w.path, err)
		return w.err
	}
	w.frames += int64(len(samples) / w.channels)
	return nil
}

// Frames written so far.
func (w *Writer) Frames() int64 { return w.frames }

// Close flushes, patches the header sizes, and finalizes the file. An
// atomic writer renames its temporary file into place. If the writer
// previously failed, the partial file is removed instead.
func (w *Writer) Close() error {
	if w.closed {
		return ErrWriterClosed
	}
	w.closed = true

	if w.err != nil {
		w.f.Close()
		os.Remove(w.path)
		return w.err
	}

	if err := w.finalize(); err != nil {
		w.f.Close()
		os.Remove(w.path)
		return err
	}
	if err := w.f.Close(); err != nil {
		os.Remove(w.path)
		return fmt.Errorf("close %s: %w", w.path, err)
	}

	if w.finalPath != "" {
		if err := os.Rename(w.path, w.finalPath); err != nil {
			os.Remove(w.path)
			return fmt.Errorf("rename %s: %w", w.finalPath, err)
		}
	}
	return nil
}

func (w *Writer) finalize() error {
	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", w.path, err)
	}

	dataSize := w.frames * int64(w.channels) * int64(w.enc.Subtype().BytesPerSample())
	var sizes [4]byte

	binary.LittleEndian.PutUint32(sizes[:], uint32(36+dataSize))
	if _, err := w.f.WriteAt(sizes[:], 4); err != nil {
		return fmt.Errorf("patch riff size: %w", err)
	}
	binary.LittleEndian.PutUint32(sizes[:], uint32(dataSize))
	if _, err := w.f.WriteAt(sizes[:], 40); err != nil {
		return fmt.Errorf("patch data size: %w", err)
	}
	return nil
}

// Abort discards the writer and removes whatever was written.
func (w *Writer) Abort() {
	if w.closed {
		return
	}
	w.closed = true
	w.f.Close()
	os.Remove(w.path)
}
