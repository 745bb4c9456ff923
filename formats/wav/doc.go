// SPDX-License-Identifier: EPL-2.0

// Package wav is the audio I/O adapter for the pipeline: chunked WAV
// reading and writing, metadata probing, and atomic replacement of
// final outputs.
//
// The package supports the three session subtypes — PCM 16-bit, PCM
// 24-bit, and IEEE float 32-bit — and exchanges audio exclusively as
// interleaved *audio.Float32Buffer blocks of a session-wide size. It is
// the only authorized path to frame data; nothing in the pipeline reads
// a whole file into memory.
//
// Reading:
//
//	r, err := wav.NewReader("take_0001.wav", wav.DefaultBlockFrames)
//	for {
//		block, err := r.ReadBlock()
//		if err == io.EOF {
//			break
//		}
//		// block.Data holds frames × channels float32 samples
//	}
//	r.Close()
//
// Writing goes through an Encoder that quantizes float frames to the
// target subtype. Final outputs use NewAtomicWriter, which writes to a
// .tmp sibling and renames on Close.
package wav
