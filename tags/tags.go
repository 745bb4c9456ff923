// SPDX-License-Identifier: EPL-2.0

// Package tags reads and writes the BPM metadata of WAV files. The tag
// lives in a RIFF "id3 " chunk appended after the audio data — the
// layout mutagen and common DAWs use for WAVE — holding a standard
// ID3v2 tag whose TBPM text frame carries the integer BPM. Writing
// never touches audio samples; the file only grows by the chunk.
package tags

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// ErrMetadataFailed covers unreadable containers and unsupported chunk
// layouts. Metadata failures never affect section audio; callers treat
// them as warnings.
var ErrMetadataFailed = errors.New("metadata update failed")

const id3ChunkID = "id3 "

// WriteBPM stores bpm in the file's TBPM frame. A bpm of 0 removes the
// frame (by dropping the id3 chunk). An existing id3 chunk is replaced.
func WriteBPM(path string, bpm int) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMetadataFailed, err)
	}
	defer f.Close()

	chunk, fileEnd, err := findID3Chunk(f)
	if err != nil {
		return err
	}

	writeAt := fileEnd
	if chunk != nil {
		if !chunk.last {
			// rewriting mid-file chunks would mean shifting audio data;
			// our own outputs only ever append the tag last
			return fmt.Errorf("%w: %s: id3 chunk is not the final chunk", ErrMetadataFailed, path)
		}
		writeAt = chunk.offset
		if err := f.Truncate(writeAt); err != nil {
			return fmt.Errorf("%w: %v", ErrMetadataFailed, err)
		}
	}

	if bpm > 0 {
		payload, err := encodeTag(bpm)
		if err != nil {
			return err
		}
		if err := appendChunk(f, writeAt, payload); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMetadataFailed, path, err)
		}
		writeAt += int64(8 + len(payload) + len(payload)%2)
	}

	if err := patchRiffSize(f, writeAt); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMetadataFailed, path, err)
	}
	return nil
}

// ReadBPM returns the stored BPM, or 0 when no TBPM frame exists.
func ReadBPM(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMetadataFailed, err)
	}
	defer f.Close()

	chunk, _, err := findID3Chunk(f)
	if err != nil {
		return 0, err
	}
	if chunk == nil {
		return 0, nil
	}

	if _, err := f.Seek(chunk.offset+8, io.SeekStart); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMetadataFailed, err)
	}
	tag, err := id3v2.ParseReader(io.LimitReader(f, chunk.size), id3v2.Options{Parse: true})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMetadataFailed, err)
	}

	text := strings.TrimSpace(tag.GetTextFrame("TBPM").Text)
	if text == "" {
		return 0, nil
	}
	bpm, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: bad TBPM value %q", ErrMetadataFailed, text)
	}
	return bpm, nil
}

func encodeTag(bpm int) ([]byte, error) {
	tag := id3v2.NewEmptyTag()
	tag.AddTextFrame("TBPM", id3v2.EncodingISO, strconv.Itoa(bpm))

	var buf bytes.Buffer
	if _, err := tag.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadataFailed, err)
	}
	return buf.Bytes(), nil
}

type id3Chunk struct {
	offset int64 // of the chunk header
	size   int64 // payload bytes
	last   bool
}

// findID3Chunk walks the RIFF chunk list and returns the id3 chunk, if
// any, plus the offset one past the last chunk (the logical file end).
func findID3Chunk(f *os.File) (*id3Chunk, int64, error) {
	var header [12]byte
	if _, err := io.ReadFull(io.NewSectionReader(f, 0, 12), header[:]); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMetadataFailed, err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("%w: not a RIFF WAVE file", ErrMetadataFailed)
	}

	info, err := f.Stat()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMetadataFailed, err)
	}

	var found *id3Chunk
	offset := int64(12)
	for offset+8 <= info.Size() {
		var ch [8]byte
		if _, err := io.ReadFull(io.NewSectionReader(f, offset, 8), ch[:]); err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrMetadataFailed, err)
		}
		size := int64(binary.LittleEndian.Uint32(ch[4:8]))
		if string(ch[0:4]) == id3ChunkID {
			found = &id3Chunk{offset: offset, size: size}
		}

		offset += 8 + size + size%2
	}
	if found != nil {
		found.last = found.offset+8+found.size+found.size%2 >= offset
	}
	return found, offset, nil
}

func appendChunk(f *os.File, at int64, payload []byte) error {
	var header [8]byte
	copy(header[0:4], id3ChunkID)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(payload)))

	if _, err := f.WriteAt(header[:], at); err != nil {
		return err
	}
	if _, err := f.WriteAt(payload, at+8); err != nil {
		return err
	}
	if len(payload)%2 == 1 {
		if _, err := f.WriteAt([]byte{0}, at+8+int64(len(payload))); err != nil {
			return err
		}
	}
	return nil
}

func patchRiffSize(f *os.File, fileEnd int64) error {
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(fileEnd-8))
	_, err := f.WriteAt(size[:], 4)
	return err
}
