package main

import (
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/tinygo-org/uwfg/wfg"
	"github.com/tinygo-org/uwfg/wfg/sim"
)

// stepper advances a simulated bus. *sim.Bus implements it.
type stepper interface {
	Run(n uint64)
	StateMachine(sm uint8) sim.SMState
}

// capture samples the pin groups of both channels at a fixed rate and writes
// them as an 8 bit stereo WAV, channel A left and channel B right. Without a
// writer it only advances the simulation.
type capture struct {
	bus    stepper
	sms    [wfg.NumChannels]uint8
	stride uint64
	// phase carries the cycles run since the last sample across calls.
	phase uint64

	enc *wav.Encoder
	buf *audio.IntBuffer
	// Samples counts captured frames.
	Samples int
}

func newCapture(bus stepper, cfg wfg.Config, rate int, w io.WriteSeeker) *capture {
	c := &capture{bus: bus}
	for i := range c.sms {
		c.sms[i] = cfg.Channels[i].StateMachine
	}
	c.stride = uint64(cfg.SystemClockHz / float64(rate))
	if c.stride == 0 {
		c.stride = 1
	}
	if w != nil {
		c.enc = wav.NewEncoder(w, rate, 8, int(wfg.NumChannels), 1)
		c.buf = &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: int(wfg.NumChannels), SampleRate: rate},
			SourceBitDepth: 8,
		}
	}
	return c
}

// run simulates n system clock cycles, capturing a frame every stride
// cycles.
func (c *capture) run(n uint64) error {
	if c.enc == nil {
		c.bus.Run(n)
		return nil
	}
	c.buf.Data = c.buf.Data[:0]
	for n > 0 {
		step := c.stride - c.phase
		if step > n {
			c.bus.Run(n)
			c.phase += n
			break
		}
		c.bus.Run(step)
		n -= step
		c.phase = 0
		for _, sm := range c.sms {
			c.buf.Data = append(c.buf.Data, int(c.bus.StateMachine(sm).Pins))
		}
		c.Samples++
	}
	if len(c.buf.Data) == 0 {
		return nil
	}
	return c.enc.Write(c.buf)
}

func (c *capture) close() error {
	if c.enc == nil {
		return nil
	}
	return c.enc.Close()
}
