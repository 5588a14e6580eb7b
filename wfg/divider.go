package wfg

// Divider is a raw PIO SMx_CLKDIV register value. The integer part sits in
// bits 31..16 and the fractional part, in 1/256 steps, in bits 15..8.
//
//	Frequency = clock freq / (CLKDIV_INT + CLKDIV_FRAC / 256)
type Divider uint32

const (
	dividerIntPos  = 16
	dividerFracPos = 8
)

const (
	// DividerOne runs the state machine at the system clock, the fastest rate
	// the hardware supports.
	DividerOne Divider = 1 << dividerIntPos
	// DividerMax is the slowest representable divider, 65535 + 255/256.
	DividerMax Divider = 0xffff<<dividerIntPos | 0xff<<dividerFracPos
)

// NewDivider returns the divider for a whole and fractional part.
func NewDivider(whole uint16, frac uint8) Divider {
	return Divider(uint32(whole)<<dividerIntPos | uint32(frac)<<dividerFracPos)
}

// Whole returns the integer part of the divider.
func (d Divider) Whole() uint16 { return uint16(d >> dividerIntPos) }

// Frac returns the fractional part of the divider in 1/256 steps.
func (d Divider) Frac() uint8 { return uint8(d >> dividerFracPos) }

// Float returns the divider as a real number.
func (d Divider) Float() float64 {
	return float64(d.Whole()) + float64(d.Frac())/256
}

// ComputeDivider calculates the state machine clock divider needed to play a
// buffer of length samples frequency times per second. One sample is output
// per divided clock tick, so the required sample rate is frequency*length.
//
// Rates above the system clock clamp to DividerOne and rates below the
// slowest divider saturate at DividerMax. The output frequency then differs
// from the request; this is not reported as an error.
func ComputeDivider(systemClockHz, frequency float64, length int) Divider {
	raw := systemClockHz / (frequency * float64(length))
	if !(raw >= 1) { // NaN and negative ratios land here too.
		return DividerOne
	}
	if raw >= 1<<16 {
		return DividerMax
	}
	whole := uint32(raw)
	frac := uint32((raw - float64(whole)) * 256)
	return NewDivider(uint16(whole), uint8(frac))
}

// EffectiveFrequency returns the buffer repetition frequency the hardware
// actually produces for a divider and buffer length.
func EffectiveFrequency(systemClockHz float64, div Divider, length int) float64 {
	return systemClockHz / (div.Float() * float64(length))
}
