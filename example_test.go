// SPDX-License-Identifier: EPL-2.0

package chanweave_test

import (
	"context"
	"fmt"
	"log"

	"github.com/ik5/chanweave"
	"github.com/ik5/chanweave/audio"
	"github.com/ik5/chanweave/config"
	"github.com/ik5/chanweave/pipeline"
)

// Example_session processes a four-channel recording into two mono
// tracks and one stereo bus, splitting along the click track.
func Example_session() {
	session := &config.Session{
		Channels: []config.ChannelConfig{
			{Channel: 1, Name: "Kick", Action: config.ActionProcess},
			{Channel: 2, Name: "Click", Action: config.ActionClick},
			{Channel: 3, Name: "OH L", Action: config.ActionBus},
			{Channel: 4, Name: "OH R", Action: config.ActionBus},
		},
		Buses: []config.BusConfig{
			{FileName: "Overheads", Type: config.BusStereo,
				Slots: config.BusSlots{Left: 3, Right: 4}},
		},
		SectionSplitting: config.SectionSplitting{
			Enabled:                 true,
			GapThresholdSeconds:     3,
			MinSectionLengthSeconds: 15,
			BPMChangeThreshold:      1,
		},
		TargetBitDepth: audio.BitDepthSource,
	}

	result, err := chanweave.Process(context.Background(), pipeline.Options{
		InputDir:  "recording",
		OutputDir: "out",
		Session:   session,
	})
	if err != nil {
		log.Fatal(err)
	}

	for _, section := range result.Sections {
		fmt.Println(section)
	}
}
