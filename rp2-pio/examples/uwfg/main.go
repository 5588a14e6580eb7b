//go:build rp2040

package main

import (
	"machine"
	"time"

	"tinygo.org/x/drivers/sh1106"

	"github.com/tinygo-org/uwfg/monitor"
	pio "github.com/tinygo-org/uwfg/rp2-pio"
	"github.com/tinygo-org/uwfg/rp2-pio/piolib"
	"github.com/tinygo-org/uwfg/scope"
	"github.com/tinygo-org/uwfg/wfg"
)

const (
	loopPeriod = 100 * time.Millisecond
	ledPeriod  = time.Second
	// psModePin high puts the Pico regulator in PWM mode, which has less
	// ripple on the output than the power saving default.
	psModePin = machine.GPIO23
)

func main() {
	// Sleep to catch prints.
	time.Sleep(2 * time.Second)

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led.High()
	psModePin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	psModePin.High()

	cfg := wfg.DefaultConfig()
	cfg.SystemClockHz = float64(machine.CPUFrequency())
	out, err := piolib.NewWaveOut(pio.PIO0, cfg)
	if err != nil {
		panic(err.Error())
	}
	eng := wfg.New(out, cfg)
	eng.Init()
	for ch := wfg.ChannelA; ch < wfg.NumChannels; ch++ {
		c := cfg.Channels[ch]
		if !out.Enabled(c.StateMachine) {
			println("channel", ch.String(), "state machine not running")
		}
		if !out.DMABusy(c.DMAData) && !out.DMABusy(c.DMACtrl) {
			println("channel", ch.String(), "ring not running")
		}
	}

	scr := newPreview(eng)

	mon := monitor.New(eng, machine.Serial)
	mon.Banner()

	lastBlink := time.Now()
	for {
		for machine.Serial.Buffered() > 0 {
			c, err := machine.Serial.ReadByte()
			if err != nil {
				break
			}
			mon.Feed(c)
		}
		scr.update()
		for ch := wfg.ChannelA; ch < wfg.NumChannels; ch++ {
			if out.Stalled(cfg.Channels[ch].StateMachine) {
				println("channel", ch.String(), "output stalled")
			}
		}
		if time.Since(lastBlink) >= ledPeriod {
			led.Set(!led.Get())
			lastBlink = time.Now()
		}
		time.Sleep(loopPeriod)
	}
}

// preview shows both channel buffers on the SH1106 and redraws whenever a
// channel starts playing something else.
type preview struct {
	eng   *wfg.Engine
	scope *scope.Scope
	shown [wfg.NumChannels]shownState
}

type shownState struct {
	buf       *byte
	length    int
	frequency float64
}

func newPreview(eng *wfg.Engine) *preview {
	err := machine.I2C0.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
	})
	if err != nil {
		println("display unavailable:", err.Error())
		return nil
	}
	lcd := sh1106.NewI2C(machine.I2C0)
	lcd.Configure(sh1106.Config{
		Width:   128,
		Height:  64,
		Address: 0x3C,
	})
	return &preview{eng: eng, scope: scope.New(&lcd)}
}

func (p *preview) update() {
	if p == nil {
		return
	}
	changed := false
	var bufs [wfg.NumChannels][]byte
	for ch := range bufs {
		st := p.eng.State(wfg.Channel(ch))
		bufs[ch] = st.Buffer
		now := shownState{length: st.Length, frequency: st.Frequency}
		if len(st.Buffer) > 0 {
			now.buf = &st.Buffer[0]
		}
		if now != p.shown[ch] {
			p.shown[ch] = now
			changed = true
		}
	}
	if !changed {
		return
	}
	if err := p.scope.Show(bufs[:]...); err != nil {
		println("display:", err.Error())
	}
}
