// SPDX-License-Identifier: EPL-2.0

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	data := []byte(`
channels:
  - channel: 1
    name: Kick
  - channel: 2
    name: Snare
    action: skip
  - channel: 15
    name: Click
    action: click
buses:
  - file_name: Overheads
    type: stereo
    slots:
      left: 3
      right: 4
section_splitting:
  enabled: true
  gap_threshold_seconds: 2.5
`)

	session, err := Parse(data)
	require.NoError(t, err)

	require.Len(t, session.Channels, 3)
	assert.Equal(t, ActionProcess, session.Channels[0].Action)
	assert.Equal(t, ActionSkip, session.Channels[1].Action)
	assert.Equal(t, ActionClick, session.Channels[2].Action)

	require.Len(t, session.Buses, 1)
	assert.Equal(t, "Overheads", session.Buses[0].FileName)
	assert.Equal(t, 3, session.Buses[0].Slots.Left)
	assert.Equal(t, 4, session.Buses[0].Slots.Right)

	assert.True(t, session.SectionSplitting.Enabled)
	assert.Equal(t, 2.5, session.SectionSplitting.GapThresholdSeconds)
	// Unset fields keep their defaults.
	assert.Equal(t, 15.0, session.SectionSplitting.MinSectionLengthSeconds)
	assert.Equal(t, 1, session.SectionSplitting.BPMChangeThreshold)
}

func TestParseRejectsUnknownAction(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("channels:\n  - channel: 1\n    name: X\n    action: mute\n"))
	require.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := func() *Session {
		return &Session{
			Channels: []ChannelConfig{
				{Channel: 1, Name: "Kick", Action: ActionProcess},
				{Channel: 3, Name: "OH L", Action: ActionBus},
				{Channel: 4, Name: "OH R", Action: ActionBus},
				{Channel: 5, Name: "Click", Action: ActionClick},
			},
			Buses: []BusConfig{
				{FileName: "Overheads", Type: BusStereo, Slots: BusSlots{Left: 3, Right: 4}},
			},
			SectionSplitting: DefaultSectionSplitting(),
		}
	}

	tests := []struct {
		name     string
		mutate   func(*Session)
		detected int
		wantErr  bool
	}{
		{
			name:     "valid session",
			mutate:   func(*Session) {},
			detected: 8,
		},
		{
			name: "duplicate channel number",
			mutate: func(s *Session) {
				s.Channels = append(s.Channels, ChannelConfig{Channel: 1, Name: "Dup"})
			},
			detected: 8,
			wantErr:  true,
		},
		{
			name:     "channel beyond detected count",
			mutate:   func(*Session) {},
			detected: 4,
			wantErr:  true,
		},
		{
			name: "multiple click channels",
			mutate: func(s *Session) {
				s.Channels = append(s.Channels,
					ChannelConfig{Channel: 6, Name: "Click2", Action: ActionClick})
			},
			detected: 8,
			wantErr:  true,
		},
		{
			name: "bus references processed channel",
			mutate: func(s *Session) {
				s.Buses[0].Slots.Left = 1
			},
			detected: 8,
			wantErr:  true,
		},
		{
			name: "bus references skipped channel",
			mutate: func(s *Session) {
				s.Channels[0].Action = ActionSkip
				s.Buses[0].Slots.Left = 1
			},
			detected: 8,
			wantErr:  true,
		},
		{
			name: "bus references out of range channel",
			mutate: func(s *Session) {
				s.Buses[0].Slots.Right = 12
			},
			detected: 8,
			wantErr:  true,
		},
		{
			name: "bus uses same channel twice",
			mutate: func(s *Session) {
				s.Buses[0].Slots.Right = 3
			},
			detected: 8,
			wantErr:  true,
		},
		{
			name: "bus may reference the click channel",
			mutate: func(s *Session) {
				s.Buses[0].Slots.Right = 5
			},
			detected: 8,
		},
		{
			name: "splitting enabled without click channel",
			mutate: func(s *Session) {
				s.Channels[3].Action = ActionProcess
				s.SectionSplitting.Enabled = true
			},
			detected: 8,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			session := base()
			tt.mutate(session)
			err := session.Validate(tt.detected)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalid)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestComplete(t *testing.T) {
	t.Parallel()

	session := &Session{
		Channels: []ChannelConfig{
			{Channel: 2, Name: "Vox", Action: ActionProcess, OutputChannel: 9},
		},
		Buses: []BusConfig{
			{FileName: "Mix", Type: BusStereo, Slots: BusSlots{Left: 3, Right: 4}},
		},
	}

	channels := session.Complete(4)
	require.Len(t, channels, 4)

	// Auto-filled index 1 processes with a generated name.
	assert.Equal(t, 1, channels[0].Channel)
	assert.Equal(t, ActionProcess, channels[0].Action)
	assert.Equal(t, "Ch 01", channels[0].Name)
	assert.Equal(t, 1, channels[0].OutputChannel)

	// Configured channel keeps its explicit output number.
	assert.Equal(t, 9, channels[1].OutputChannel)

	// Bus-referenced channels are auto-created as bus.
	assert.Equal(t, ActionBus, channels[2].Action)
	assert.Equal(t, ActionBus, channels[3].Action)
}

func TestExtracted(t *testing.T) {
	t.Parallel()

	channels := []ChannelConfig{
		{Channel: 1, Action: ActionProcess},
		{Channel: 2, Action: ActionSkip},
		{Channel: 3, Action: ActionBus},
		{Channel: 4, Action: ActionClick},
	}
	assert.Equal(t, []int{1, 3, 4}, Extracted(channels))
}
