package wfg

// timingConfig returns the state machine configuration for a channel: its
// pin group, byte-wide output, 32 bit autopull shifting right so bytes leave
// each word LSB first, and a joined 8-deep TX FIFO to ride out the DMA ring
// handover.
func timingConfig(c ChannelConfig, div Divider) TimingConfig {
	return TimingConfig{
		PinBase:       c.PinBase,
		PinCount:      PinsPerChannel,
		Divider:       div,
		ShiftRight:    true,
		AutoPull:      true,
		PullThreshold: 32,
		JoinTx:        true,
	}
}

// retime loads a new divider and restarts the divided clock. Without the
// restart the previous rate stays partially in effect until the divider's
// next natural rollover.
func retime(hw Registers, sm uint8, div Divider) {
	hw.SetClkDiv(sm, div)
	hw.ClkDivRestart(sm)
}
