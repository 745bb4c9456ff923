// SPDX-License-Identifier: EPL-2.0

// Package chanweave turns a directory of sequentially numbered
// multichannel WAV recordings into per-channel tracks, stereo bus
// mixes, and — when a click track is configured — tempo-tagged song
// sections.
//
// # Quick Start
//
// The simplest way to run a session is Process:
//
//	session, _ := config.Load("session.yaml")
//	result, err := chanweave.Process(ctx, pipeline.Options{
//		InputDir:  "recording",
//		OutputDir: "out",
//		Session:   session,
//	})
//
// The input files are validated for homogeneous sample rate, channel
// count, and bit depth, de-interleaved into temporary mono segments,
// and concatenated into final tracks named NN_Name.wav (plus one
// stereo file per configured bus). With section splitting enabled the
// click output is analyzed and every track is re-cut into
// section_NN/ subdirectories at sample-identical boundaries, with the
// detected BPM stored as a TBPM tag.
//
// # Pipeline Stages
//
// For more control the stages are usable on their own:
//
//	files, _ := audio.Discover(inputDir)
//	params, _ := audio.Validate(files)
//	segments, _ := extractor.Extract(ctx, files, channels)
//	tracks, _ := builder.Build(ctx, channels, buses, segments)
//	sections, _ := click.New(cfg, 0).Analyze(ctx, clickTrack)
//
// Everything streams in fixed-size blocks; no stage loads a whole file
// into memory.
package chanweave
