// Package wave synthesizes one period of the standard generator shapes into
// sample buffers for the wfg engine.
package wave

import (
	"errors"
	"strings"
	"time"

	"github.com/tinygo-org/uwfg/wfg"
)

// Shape is a waveform type.
type Shape uint8

const (
	Square Shape = iota
	Triangle
	Sawtooth
	Sine
	Pulse
	numShapes
)

var shapeNames = [numShapes]string{"sqr", "tri", "saw", "sin", "pul"}

func (s Shape) String() string {
	if s < numShapes {
		return shapeNames[s]
	}
	return "invalid"
}

// ParseShape parses a short shape name as printed by Shape.String.
func ParseShape(name string) (Shape, error) {
	name = strings.ToLower(name)
	for i, n := range shapeNames {
		if n == name {
			return Shape(i), nil
		}
	}
	return 0, ErrShape
}

// Buffer length limits in samples.
const (
	MinSamples = 20
	MaxSamples = 2000
)

var (
	ErrShape  = errors.New("wave: unknown shape")
	ErrPeriod = errors.New("wave: period must be positive")
	ErrRate   = errors.New("wave: sample rate must be positive")
	ErrPulse  = errors.New("wave: duty, rise and fall must be within 0..100 percent")
)

// Params describes one period of a waveform. Duty, Rise and Fall are
// percentages of the period and only shape a Pulse; the other shapes use
// fixed values (see Normalize).
type Params struct {
	Shape  Shape
	Period time.Duration
	Duty   int
	Rise   int
	Fall   int
}

// Normalize returns p with the flank settings each shape implies. For a Pulse
// the rise is limited to the duty cycle and the fall to what is left of the
// period.
func (p Params) Normalize() Params {
	switch p.Shape {
	case Square:
		p.Duty, p.Rise, p.Fall = 50, 1, 1
	case Triangle:
		p.Duty, p.Rise, p.Fall = 50, 50, 50
	case Sawtooth:
		p.Duty, p.Rise, p.Fall = 99, 99, 1
	case Sine:
		p.Duty, p.Rise, p.Fall = 50, 0, 0
	case Pulse:
		if p.Rise > p.Duty {
			p.Rise = p.Duty
		}
		if p.Fall > 100-p.Duty {
			p.Fall = 100 - p.Duty
		}
	}
	return p
}

func (p Params) validate() error {
	if p.Shape >= numShapes {
		return ErrShape
	}
	if p.Period <= 0 {
		return ErrPeriod
	}
	if p.Shape == Pulse {
		for _, v := range [...]int{p.Duty, p.Rise, p.Fall} {
			if v < 0 || v > 100 {
				return ErrPulse
			}
		}
	}
	return nil
}

// Length returns the number of samples used for one period at sampleRate:
// the exact count rounded down to a multiple of 4 and kept within
// MinSamples..MaxSamples. Short periods are therefore played with fewer
// samples per period than sampleRate would give.
func Length(sampleRate float64, period time.Duration) int {
	exact := sampleRate * period.Seconds()
	if !(exact < MaxSamples) {
		return MaxSamples
	}
	n := int(exact) &^ 3
	if n < MinSamples {
		n = MinSamples
	}
	return n
}

// Synthesize allocates a buffer for one period of p at sampleRate and fills
// it. The returned waveform repeats once per period.
func Synthesize(p Params, sampleRate float64) (wfg.Waveform, error) {
	if !(sampleRate > 0) {
		return wfg.Waveform{}, ErrRate
	}
	if err := p.validate(); err != nil {
		return wfg.Waveform{}, err
	}
	buf := wfg.NewBuffer(Length(sampleRate, p.Period))
	Fill(buf, p)
	return wfg.Waveform{Samples: buf, Frequency: 1 / p.Period.Seconds()}, nil
}

// Fill writes one period of p across all of buf.
func Fill(buf []byte, p Params) {
	p = p.Normalize()
	n := len(buf)
	switch p.Shape {
	case Square:
		half := n / 2
		for i := range buf {
			if i < half {
				buf[i] = 0xff
			} else {
				buf[i] = 0
			}
		}
	case Triangle:
		half := n / 2
		step := 255 / float64(half)
		for i := 0; i < half; i++ {
			buf[i] = uint8(float64(i) * step)
			buf[i+half] = 255 - buf[i]
		}
		if n%2 != 0 {
			buf[n-1] = 0
		}
	case Sawtooth:
		step := 255 / float64(n)
		for i := range buf {
			buf[i] = uint8(float64(i) * step)
		}
	case Sine:
		for i := range buf {
			buf[i] = sineSample(i, n)
		}
	case Pulse:
		fillPulse(buf, p)
	}
}

// fillPulse ramps up over the rise, holds high until the duty point, ramps
// down over the fall and stays low for the rest of the period.
func fillPulse(buf []byte, p Params) {
	n := len(buf)
	d := p.Duty * n / 100
	r := p.Rise * n / 100
	f := p.Fall * n / 100
	for i := range buf {
		buf[i] = 0
	}
	step := 255 / float64(r)
	for i := 0; i < r; i++ {
		buf[i] = uint8(float64(i) * step)
	}
	for i := r; i < d; i++ {
		buf[i] = 0xff
	}
	step = 255 / float64(f)
	for i := 0; i < f && d+i < n; i++ {
		buf[d+i] = 0xff - uint8(float64(i)*step)
	}
}
