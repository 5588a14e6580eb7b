package wfg

import (
	"errors"
	"strings"
)

// Channel selects one of the two outputs.
type Channel uint8

const (
	ChannelA Channel = iota
	ChannelB
	// NumChannels is the number of output channels.
	NumChannels
)

func (ch Channel) String() string {
	switch ch {
	case ChannelA:
		return "A"
	case ChannelB:
		return "B"
	}
	return "invalid"
}

// ParseChannel parses "A" or "B", in either case.
func ParseChannel(s string) (Channel, error) {
	switch strings.ToUpper(s) {
	case "A":
		return ChannelA, nil
	case "B":
		return ChannelB, nil
	}
	return 0, ErrChannel
}

const (
	// DefaultSystemClockHz is the nominal RP2040 system clock. Output
	// frequencies scale with the actual clock if it differs.
	DefaultSystemClockHz = 125e6
	// PinsPerChannel is the width of a channel's output pin group.
	PinsPerChannel = 8

	maxGPIO         = 29
	maxStateMachine = 3
	maxDMAChannel   = 11
)

// ChannelConfig assigns hardware resources to one output channel.
type ChannelConfig struct {
	// StateMachine is the PIO state machine index, 0..3.
	StateMachine uint8
	// DMAData streams the buffer into the state machine's TX FIFO.
	DMAData uint8
	// DMACtrl rewinds DMAData to the buffer start after every pass.
	DMACtrl uint8
	// PinBase is the first of PinsPerChannel consecutive output GPIOs.
	PinBase uint8
	// Default is played from Init until the first Play on this channel.
	Default Waveform
}

// Config holds the engine configuration.
type Config struct {
	SystemClockHz float64
	Channels      [NumChannels]ChannelConfig
}

// Boot waveforms: a square pulse, low for two words then high for two.
var (
	defaultPulseA = [4]uint32{0x00000000, 0x00000000, 0xffffffff, 0xffffffff}
	defaultPulseB = [4]uint32{0x00000000, 0x00000000, 0xffffffff, 0xffffffff}
)

const defaultFrequency = 1e6

// DefaultConfig returns the configuration used by the uWFG board: PIO state
// machines 0 and 1, DMA channels 0..3, channel A on GPIO0..7 and channel B on
// GPIO8..15.
func DefaultConfig() Config {
	return Config{
		SystemClockHz: DefaultSystemClockHz,
		Channels: [NumChannels]ChannelConfig{
			ChannelA: {
				StateMachine: 0,
				DMAData:      0,
				DMACtrl:      1,
				PinBase:      0,
				Default:      Waveform{Samples: WordBytes(defaultPulseA[:]), Frequency: defaultFrequency},
			},
			ChannelB: {
				StateMachine: 1,
				DMAData:      2,
				DMACtrl:      3,
				PinBase:      8,
				Default:      Waveform{Samples: WordBytes(defaultPulseB[:]), Frequency: defaultFrequency},
			},
		},
	}
}

// Validate checks that the channels use disjoint, existing resources.
func (cfg Config) Validate() error {
	if !(cfg.SystemClockHz > 0) {
		return errors.New("wfg: system clock must be positive")
	}
	a, b := cfg.Channels[ChannelA], cfg.Channels[ChannelB]
	for _, c := range cfg.Channels {
		switch {
		case c.StateMachine > maxStateMachine:
			return errors.New("wfg: state machine index out of range")
		case c.DMAData > maxDMAChannel || c.DMACtrl > maxDMAChannel:
			return errors.New("wfg: DMA channel index out of range")
		case c.DMAData == c.DMACtrl:
			return errors.New("wfg: data and control DMA channels must differ")
		case int(c.PinBase)+PinsPerChannel-1 > maxGPIO:
			return errors.New("wfg: pin group exceeds GPIO range")
		}
		if len(c.Default.Samples) == 0 || len(c.Default.Samples)%4 != 0 || !(c.Default.Frequency > 0) {
			return errors.New("wfg: invalid default waveform")
		}
	}
	if a.StateMachine == b.StateMachine {
		return errors.New("wfg: channels share a state machine")
	}
	if a.DMAData == b.DMAData || a.DMAData == b.DMACtrl || a.DMACtrl == b.DMAData || a.DMACtrl == b.DMACtrl {
		return errors.New("wfg: channels share a DMA channel")
	}
	if a.PinBase < b.PinBase+PinsPerChannel && b.PinBase < a.PinBase+PinsPerChannel {
		return errors.New("wfg: channel pin groups overlap")
	}
	return nil
}
