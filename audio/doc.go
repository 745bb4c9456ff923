// SPDX-License-Identifier: EPL-2.0

// Package audio discovers and validates a session's input files and
// de-interleaves them into per-channel mono segments.
//
// A session is a directory of sequentially numbered multichannel WAV
// files produced by one continuous console recording. Discover sorts
// them by the first decimal integer of the stem, Validate establishes
// the shared Params (every file must match the first exactly), and
// Extractor streams each file once, writing one mono segment per
// extracted channel per input file into the temp directory:
//
//	files, err := audio.Discover(inputDir)
//	params, err := audio.Validate(files)
//	ex := &audio.Extractor{Params: params, TempDir: tmp, Enc: enc}
//	segments, err := ex.Extract(ctx, files, []int{1, 2, 5})
//
// The resulting SegmentMap guarantees len(segments[ch]) ==  len(files)
// for every extracted channel, and segment i holds exactly as many
// frames as input file i.
package audio
