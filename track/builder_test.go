// SPDX-License-Identifier: EPL-2.0

package track_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ik5/chanweave/audio"
	"github.com/ik5/chanweave/config"
	"github.com/ik5/chanweave/convert"
	"github.com/ik5/chanweave/formats/wav"
	"github.com/ik5/chanweave/internal/audiotest"
	"github.com/ik5/chanweave/track"
)

func newBuilder(t *testing.T, depth audio.BitDepth) (*track.Builder, string) {
	t.Helper()

	enc, err := convert.ForBitDepth(depth)
	if err != nil {
		t.Fatal(err)
	}
	outDir := t.TempDir()
	return &track.Builder{
		SampleRate:  48000,
		BlockFrames: 512,
		Enc:         enc,
		OutDir:      outDir,
	}, outDir
}

// segment writes a mono float segment file of frames produced by gen.
func segment(t *testing.T, dir, name string, frames int, gen audiotest.Waveform) string {
	t.Helper()
	path := filepath.Join(dir, name)
	audiotest.WriteWAV(t, path, 48000, 1, audio.BitDepthFloat32, frames, gen)
	return path
}

func TestWriteMonoConcatenatesExactly(t *testing.T) {
	t.Parallel()

	b, outDir := newBuilder(t, audio.BitDepthFloat32)
	segDir := t.TempDir()

	// two segments with distinct constants; the junction must be the
	// arithmetic sum of frames with no crossfade or padding
	s1 := segment(t, segDir, "ch01_0001.wav", 700, audiotest.Constant(0.25))
	s2 := segment(t, segDir, "ch01_0002.wav", 300, audiotest.Constant(-0.5))

	cfg := config.ChannelConfig{Channel: 1, Name: "Kick", Action: config.ActionProcess, OutputChannel: 1}
	path, err := b.WriteMono(context.Background(), cfg, []string{s1, s2})
	if err != nil {
		t.Fatalf("WriteMono: %v", err)
	}
	if filepath.Base(path) != "01_Kick.wav" {
		t.Errorf("output named %s, want 01_Kick.wav", filepath.Base(path))
	}
	if filepath.Dir(path) != outDir {
		t.Errorf("output in %s, want %s", filepath.Dir(path), outDir)
	}

	data, info := audiotest.ReadAll(t, path)
	if info.Frames != 1000 {
		t.Fatalf("frames = %d, want 1000", info.Frames)
	}
	for i, v := range data {
		want := float32(0.25)
		if i >= 700 {
			want = -0.5
		}
		if v != want {
			t.Fatalf("sample %d = %v, want %v", i, v, want)
		}
	}
}

func TestWriteMonoNoSegments(t *testing.T) {
	t.Parallel()

	b, _ := newBuilder(t, audio.BitDepthFloat32)
	cfg := config.ChannelConfig{Channel: 1, Name: "Kick", OutputChannel: 1}
	if _, err := b.WriteMono(context.Background(), cfg, nil); !errors.Is(err, track.ErrInternalInvariant) {
		t.Fatalf("error = %v, want ErrInternalInvariant", err)
	}
}

func TestWriteStereoInterleaves(t *testing.T) {
	t.Parallel()

	b, _ := newBuilder(t, audio.BitDepthFloat32)
	segDir := t.TempDir()

	left := segment(t, segDir, "ch03_0001.wav", 1000, audiotest.Constant(0.25))
	right := segment(t, segDir, "ch04_0001.wav", 1000, audiotest.Constant(-0.25))

	bus := config.BusConfig{
		FileName: "Mix",
		Type:     config.BusStereo,
		Slots:    config.BusSlots{Left: 3, Right: 4},
	}
	path, err := b.WriteStereo(context.Background(), bus, []string{left}, []string{right})
	if err != nil {
		t.Fatalf("WriteStereo: %v", err)
	}
	if filepath.Base(path) != "Mix.wav" {
		t.Errorf("output named %s, want Mix.wav", filepath.Base(path))
	}

	data, info := audiotest.ReadAll(t, path)
	if info.Channels != 2 {
		t.Fatalf("channels = %d, want 2", info.Channels)
	}
	if info.Frames != 1000 {
		t.Fatalf("frames = %d, want 1000", info.Frames)
	}
	for f := 0; f < 1000; f++ {
		if data[2*f] != 0.25 {
			t.Fatalf("left frame %d = %v, want 0.25", f, data[2*f])
		}
		if data[2*f+1] != -0.25 {
			t.Fatalf("right frame %d = %v, want -0.25", f, data[2*f+1])
		}
	}
}

func TestWriteStereoSegmentCountMismatch(t *testing.T) {
	t.Parallel()

	b, _ := newBuilder(t, audio.BitDepthFloat32)
	segDir := t.TempDir()
	left := segment(t, segDir, "l.wav", 100, audiotest.Silence())

	bus := config.BusConfig{FileName: "Mix", Slots: config.BusSlots{Left: 3, Right: 4}}
	_, err := b.WriteStereo(context.Background(), bus, []string{left}, nil)
	if !errors.Is(err, track.ErrInternalInvariant) {
		t.Fatalf("error = %v, want ErrInternalInvariant", err)
	}
}

func TestWriteStereoFrameCountMismatch(t *testing.T) {
	t.Parallel()

	b, _ := newBuilder(t, audio.BitDepthFloat32)
	segDir := t.TempDir()
	left := segment(t, segDir, "l.wav", 100, audiotest.Silence())
	right := segment(t, segDir, "r.wav", 99, audiotest.Silence())

	bus := config.BusConfig{FileName: "Mix", Slots: config.BusSlots{Left: 3, Right: 4}}
	_, err := b.WriteStereo(context.Background(), bus, []string{left}, []string{right})
	if !errors.Is(err, track.ErrInternalInvariant) {
		t.Fatalf("error = %v, want ErrInternalInvariant", err)
	}
}

func TestBuildDownConvertsBitDepth(t *testing.T) {
	t.Parallel()

	// float source, int16 target: values become
	// clip(round(x*32768), -32768, 32767) / 32768
	b, _ := newBuilder(t, audio.BitDepthInt16)
	segDir := t.TempDir()
	seg := segment(t, segDir, "ch01_0001.wav", 10, audiotest.Constant(0.3))

	cfg := config.ChannelConfig{Channel: 1, Name: "A", Action: config.ActionProcess, OutputChannel: 1}
	path, err := b.WriteMono(context.Background(), cfg, []string{seg})
	if err != nil {
		t.Fatal(err)
	}

	data, info := audiotest.ReadAll(t, path)
	if info.Subtype != wav.SubtypePCM16 {
		t.Fatalf("subtype = %s, want PCM_16", info.Subtype)
	}
	want := float32(9830) / 32768 // round(0.3 * 32768) = 9830
	for i, v := range data {
		if v != want {
			t.Fatalf("sample %d = %v, want %v", i, v, want)
		}
	}
}

func TestBuildWritesAllTracks(t *testing.T) {
	t.Parallel()

	b, outDir := newBuilder(t, audio.BitDepthFloat32)
	segDir := t.TempDir()

	segments := map[int][]string{
		1: {segment(t, segDir, "ch01.wav", 100, audiotest.Constant(0.1))},
		3: {segment(t, segDir, "ch03.wav", 100, audiotest.Constant(0.3))},
		4: {segment(t, segDir, "ch04.wav", 100, audiotest.Constant(0.4))},
		5: {segment(t, segDir, "ch05.wav", 100, audiotest.Constant(0.5))},
	}
	channels := []config.ChannelConfig{
		{Channel: 1, Name: "Kick", Action: config.ActionProcess, OutputChannel: 1},
		{Channel: 2, Name: "Unused", Action: config.ActionSkip, OutputChannel: 2},
		{Channel: 3, Name: "OH L", Action: config.ActionBus, OutputChannel: 3},
		{Channel: 4, Name: "OH R", Action: config.ActionBus, OutputChannel: 4},
		{Channel: 5, Name: "Click", Action: config.ActionClick, OutputChannel: 5},
	}
	buses := []config.BusConfig{
		{FileName: "Overheads", Type: config.BusStereo, Slots: config.BusSlots{Left: 3, Right: 4}},
	}

	paths, err := b.Build(context.Background(), channels, buses, segments)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []string{"01_Kick.wav", "05_Click.wav", "Overheads.wav"}
	if len(paths) != len(want) {
		t.Fatalf("built %d tracks %v, want %d", len(paths), paths, len(want))
	}
	for i, w := range want {
		if filepath.Base(paths[i]) != w {
			t.Errorf("track %d = %s, want %s", i, filepath.Base(paths[i]), w)
		}
		if filepath.Dir(paths[i]) != outDir {
			t.Errorf("track %d written outside the output dir", i)
		}
	}
}
