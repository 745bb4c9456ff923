// SPDX-License-Identifier: EPL-2.0

// Package config models the user-editable channel, bus, and
// section-splitting configuration: YAML loading, struct validation,
// cross-reference checks, and auto-filling of missing channels.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ik5/chanweave/audio"
)

// ChannelAction decides what happens to one source channel.
type ChannelAction int

const (
	// ActionProcess extracts the channel and writes it as a mono track.
	ActionProcess ChannelAction = iota
	// ActionBus extracts the channel for bus use only; no mono output.
	ActionBus
	// ActionSkip never extracts the channel.
	ActionSkip
	// ActionClick behaves like ActionProcess and additionally feeds the
	// click analyzer. At most one channel may carry it.
	ActionClick
)

var actionNames = map[ChannelAction]string{
	ActionProcess: "process",
	ActionBus:     "bus",
	ActionSkip:    "skip",
	ActionClick:   "click",
}

func (a ChannelAction) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("ChannelAction(%d)", int(a))
}

// UnmarshalYAML accepts the lowercase action names.
func (a *ChannelAction) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	for action, name := range actionNames {
		if name == s {
			*a = action
			return nil
		}
	}
	return fmt.Errorf("%w: unknown channel action %q", ErrInvalid, s)
}

// BusType enumerates the supported bus layouts.
type BusType int

const (
	BusStereo BusType = iota
)

func (t BusType) String() string {
	if t == BusStereo {
		return "stereo"
	}
	return fmt.Sprintf("BusType(%d)", int(t))
}

func (t *BusType) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s != "stereo" {
		return fmt.Errorf("%w: unknown bus type %q", ErrInvalid, s)
	}
	*t = BusStereo
	return nil
}

// ChannelConfig is one source channel's entry. OutputChannel defaults
// to Channel and only affects the output filename prefix.
type ChannelConfig struct {
	Channel       int           `yaml:"channel" validate:"gte=1"`
	Name          string        `yaml:"name" validate:"required"`
	Action        ChannelAction `yaml:"action"`
	OutputChannel int           `yaml:"output_channel,omitempty" validate:"gte=0"`
}

// BusSlots assigns source channels to the stereo sides.
type BusSlots struct {
	Left  int `yaml:"left" validate:"gte=1"`
	Right int `yaml:"right" validate:"gte=1"`
}

// BusConfig synthesizes one stereo output from two extracted channels.
type BusConfig struct {
	FileName string   `yaml:"file_name" validate:"required"`
	Type     BusType  `yaml:"type"`
	Slots    BusSlots `yaml:"slots"`
}

// SectionSplitting configures click-based section detection.
type SectionSplitting struct {
	Enabled                 bool    `yaml:"enabled"`
	GapThresholdSeconds     float64 `yaml:"gap_threshold_seconds" validate:"gt=0"`
	MinSectionLengthSeconds float64 `yaml:"min_section_length_seconds" validate:"gt=0"`
	BPMChangeThreshold      int     `yaml:"bpm_change_threshold" validate:"gte=1"`
}

// DefaultSectionSplitting returns the disabled defaults.
func DefaultSectionSplitting() SectionSplitting {
	return SectionSplitting{
		Enabled:                 false,
		GapThresholdSeconds:     3.0,
		MinSectionLengthSeconds: 15.0,
		BPMChangeThreshold:      1,
	}
}

// Session is the full parsed configuration handed to the pipeline.
// SectionSplitting is only validated when enabled, so a zero value with
// splitting off is fine.
type Session struct {
	Channels         []ChannelConfig  `yaml:"channels" validate:"dive"`
	Buses            []BusConfig      `yaml:"buses" validate:"dive"`
	SectionSplitting SectionSplitting `yaml:"section_splitting" validate:"-"`
	TargetBitDepth   audio.BitDepth   `yaml:"-"`
}
