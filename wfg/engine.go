// Package wfg implements a two channel arbitrary waveform output engine for
// the RP2040.
//
// Each channel is a PIO state machine that outputs one byte of a sample
// buffer on eight consecutive pins per divided clock tick. Two chained DMA
// channels keep its TX FIFO fed from the buffer in an endless loop, so once
// started the output needs no CPU time at all. Play swaps the buffer and rate
// of one channel without touching the other.
//
// The engine only writes registers through the Registers interface. See
// rp2-pio/piolib for the hardware implementation and wfg/sim for a simulator.
package wfg

// Panic messages for programming errors.
const (
	badChannel         = "wfg: invalid channel"
	badLength          = "wfg: sample count must be a positive multiple of 4"
	notInitialized     = "wfg: engine not initialized"
	alreadyInitialized = "wfg: engine already initialized"
)

// ChannelState is the last applied configuration of a channel.
type ChannelState struct {
	// Buffer is the sample buffer being streamed. It is a reference to the
	// caller's memory, not a copy.
	Buffer []byte
	// Length is the number of samples in Buffer.
	Length int
	// Frequency is the requested buffer repetition frequency.
	Frequency float64
	// Divider is the applied state machine clock divider.
	Divider Divider
	Ring    RingState
}

type channel struct {
	cfg   ChannelConfig
	ring  ring
	state ChannelState
}

// Engine plays waveforms on the two output channels. It is not safe for
// concurrent use; the hardware it drives runs on its own after each call.
type Engine struct {
	hw     Registers
	cfg    Config
	chans  [NumChannels]channel
	inited bool
}

// New returns an engine that will drive hw. It panics if cfg is invalid.
// Call Init before playing anything.
func New(hw Registers, cfg Config) *Engine {
	if err := cfg.Validate(); err != nil {
		panic(err.Error())
	}
	e := &Engine{hw: hw, cfg: cfg}
	for i := range e.chans {
		c := &e.chans[i]
		c.cfg = cfg.Channels[i]
		c.ring = ring{
			sm:   c.cfg.StateMachine,
			data: c.cfg.DMAData,
			ctrl: c.cfg.DMACtrl,
		}
	}
	return e
}

// Init binds both channels' pins and state machines and starts both transfer
// rings on the configured default waveforms. When Init returns both channels
// are outputting and stay that way.
func (e *Engine) Init() {
	if e.inited {
		panic(alreadyInitialized)
	}
	for i := range e.chans {
		c := &e.chans[i]
		w := c.cfg.Default
		div := ComputeDivider(e.cfg.SystemClockHz, w.Frequency, len(w.Samples))
		e.hw.ConfigureTimingUnit(c.cfg.StateMachine, timingConfig(c.cfg, div))
		c.ring.start(e.hw, w.Samples)
		c.setState(w, div)
	}
	e.inited = true
}

// Play switches channel ch to w. The new buffer is streamed from its start
// and the state machine clock is reprogrammed to repeat it w.Frequency times
// per second, clamped to what the hardware can do. The other channel is not
// touched.
//
// w.Samples is referenced, not copied; see Waveform. Play panics on an
// invalid channel or sample count, callers are expected to range check
// requests first (see Validate).
func (e *Engine) Play(ch Channel, w Waveform) {
	c := e.channel(ch)
	if !e.inited {
		panic(notInitialized)
	}
	n := len(w.Samples)
	if n == 0 || n%4 != 0 {
		panic(badLength)
	}
	div := ComputeDivider(e.cfg.SystemClockHz, w.Frequency, n)
	c.ring.start(e.hw, w.Samples)
	retime(e.hw, c.cfg.StateMachine, div)
	c.setState(w, div)
}

// State returns the current state of channel ch.
func (e *Engine) State(ch Channel) ChannelState {
	return e.channel(ch).state
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) channel(ch Channel) *channel {
	if ch >= NumChannels {
		panic(badChannel)
	}
	return &e.chans[ch]
}

func (c *channel) setState(w Waveform, div Divider) {
	c.state = ChannelState{
		Buffer:    w.Samples,
		Length:    len(w.Samples),
		Frequency: w.Frequency,
		Divider:   div,
		Ring:      c.ring.state,
	}
}
