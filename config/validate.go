// SPDX-License-Identifier: EPL-2.0

package config

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the session against the detected channel count. It
// runs before any extraction; every failure is ErrInvalid.
func (s *Session) Validate(detectedChannels int) error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if s.SectionSplitting.Enabled {
		if err := validate.Struct(s.SectionSplitting); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}

	byNumber := make(map[int]ChannelConfig, len(s.Channels))
	clicks := 0
	for _, ch := range s.Channels {
		if _, dup := byNumber[ch.Channel]; dup {
			return fmt.Errorf("%w: duplicate channel %d", ErrInvalid, ch.Channel)
		}
		if ch.Channel > detectedChannels {
			return fmt.Errorf("%w: channel %d exceeds detected channel count %d",
				ErrInvalid, ch.Channel, detectedChannels)
		}
		byNumber[ch.Channel] = ch
		if ch.Action == ActionClick {
			clicks++
		}
	}
	if clicks > 1 {
		return fmt.Errorf("%w: %d click channels configured, at most one allowed",
			ErrInvalid, clicks)
	}

	for _, bus := range s.Buses {
		if bus.Type != BusStereo {
			return fmt.Errorf("%w: bus %s: unsupported type %s", ErrInvalid, bus.FileName, bus.Type)
		}
		if bus.Slots.Left == bus.Slots.Right {
			return fmt.Errorf("%w: bus %s assigns channel %d to both slots",
				ErrInvalid, bus.FileName, bus.Slots.Left)
		}
		for _, slot := range []int{bus.Slots.Left, bus.Slots.Right} {
			if slot < 1 || slot > detectedChannels {
				return fmt.Errorf("%w: bus %s references channel %d outside 1..%d",
					ErrInvalid, bus.FileName, slot, detectedChannels)
			}
			if ch, ok := byNumber[slot]; ok {
				if ch.Action == ActionProcess || ch.Action == ActionSkip {
					return fmt.Errorf("%w: bus %s references channel %d with action %s "+
						"(must be bus or click)", ErrInvalid, bus.FileName, slot, ch.Action)
				}
			}
		}
	}

	if s.SectionSplitting.Enabled && clicks != 1 {
		return fmt.Errorf("%w: section splitting requires exactly one click channel", ErrInvalid)
	}
	return nil
}

// Complete returns the full channel list for the detected channel
// count: configured channels, bus-referenced channels auto-created with
// action bus, and every remaining index auto-created with action
// process and a generated name. Output channels default to the channel
// number. The result is sorted by channel number.
func (s *Session) Complete(detectedChannels int) []ChannelConfig {
	byNumber := make(map[int]ChannelConfig, detectedChannels)
	for _, ch := range s.Channels {
		if ch.OutputChannel == 0 {
			ch.OutputChannel = ch.Channel
		}
		byNumber[ch.Channel] = ch
	}

	for _, bus := range s.Buses {
		for _, slot := range []int{bus.Slots.Left, bus.Slots.Right} {
			if _, ok := byNumber[slot]; !ok {
				byNumber[slot] = ChannelConfig{
					Channel:       slot,
					Name:          fmt.Sprintf("Ch %02d", slot),
					Action:        ActionBus,
					OutputChannel: slot,
				}
			}
		}
	}

	for ch := 1; ch <= detectedChannels; ch++ {
		if _, ok := byNumber[ch]; !ok {
			byNumber[ch] = ChannelConfig{
				Channel:       ch,
				Name:          fmt.Sprintf("Ch %02d", ch),
				Action:        ActionProcess,
				OutputChannel: ch,
			}
		}
	}

	channels := make([]ChannelConfig, 0, len(byNumber))
	for _, ch := range byNumber {
		channels = append(channels, ch)
	}
	sort.Slice(channels, func(i, j int) bool {
		return channels[i].Channel < channels[j].Channel
	})
	return channels
}

// ClickChannel returns the channel with the click action, if any.
func ClickChannel(channels []ChannelConfig) (ChannelConfig, bool) {
	for _, ch := range channels {
		if ch.Action == ActionClick {
			return ch, true
		}
	}
	return ChannelConfig{}, false
}

// Extracted returns the numbers of all channels that must be
// de-interleaved: everything except skipped channels.
func Extracted(channels []ChannelConfig) []int {
	var out []int
	for _, ch := range channels {
		if ch.Action != ActionSkip {
			out = append(out, ch.Channel)
		}
	}
	return out
}
