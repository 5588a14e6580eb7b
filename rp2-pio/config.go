//go:build rp2040

package pio

import (
	"device/rp"
	"machine"
)

// StateMachineConfig holds the four configuration registers of a state
// machine. Build it with the setters and apply it with StateMachine.Init.
type StateMachineConfig struct {
	ClkDiv    uint32
	ExecCtrl  uint32
	ShiftCtrl uint32
	PinCtrl   uint32
}

// DefaultStateMachineConfig returns the reset configuration: full speed
// clock, wrap over the whole instruction memory, both shift registers
// shifting right with a 32 bit threshold and no autopush/autopull.
func DefaultStateMachineConfig() StateMachineConfig {
	cfg := StateMachineConfig{}
	cfg.SetClkDivIntFrac(1, 0)
	cfg.SetWrap(0, 31)
	cfg.SetInShift(true, false, 32)
	cfg.SetOutShift(true, false, 32)
	return cfg
}

// SetClkDivIntFrac sets the divider so the state machine runs at
// clock / (whole + frac/256).
func (cfg *StateMachineConfig) SetClkDivIntFrac(whole uint16, frac uint8) {
	cfg.ClkDiv = uint32(frac)<<rp.PIO0_SM0_CLKDIV_FRAC_Pos | uint32(whole)<<rp.PIO0_SM0_CLKDIV_INT_Pos
}

// SetWrap makes execution continue at wrapTarget after the instruction at wrap.
func (cfg *StateMachineConfig) SetWrap(wrapTarget uint8, wrap uint8) {
	const mask = rp.PIO0_SM0_EXECCTRL_WRAP_TOP_Msk | rp.PIO0_SM0_EXECCTRL_WRAP_BOTTOM_Msk
	cfg.ExecCtrl = cfg.ExecCtrl&^mask |
		uint32(wrapTarget)<<rp.PIO0_SM0_EXECCTRL_WRAP_BOTTOM_Pos |
		uint32(wrap)<<rp.PIO0_SM0_EXECCTRL_WRAP_TOP_Pos
}

// SetInShift configures the ISR. A threshold of 32 is encoded as 0.
func (cfg *StateMachineConfig) SetInShift(shiftRight bool, autoPush bool, pushThreshold uint16) {
	const mask = rp.PIO0_SM0_SHIFTCTRL_IN_SHIFTDIR_Msk |
		rp.PIO0_SM0_SHIFTCTRL_AUTOPUSH_Msk |
		rp.PIO0_SM0_SHIFTCTRL_PUSH_THRESH_Msk
	cfg.ShiftCtrl = cfg.ShiftCtrl&^mask |
		boolToBit(shiftRight)<<rp.PIO0_SM0_SHIFTCTRL_IN_SHIFTDIR_Pos |
		boolToBit(autoPush)<<rp.PIO0_SM0_SHIFTCTRL_AUTOPUSH_Pos |
		uint32(pushThreshold&0x1f)<<rp.PIO0_SM0_SHIFTCTRL_PUSH_THRESH_Pos
}

// SetOutShift configures the OSR. With autoPull the OSR is refilled from the
// TX FIFO once pullThreshold bits were shifted out; 32 is encoded as 0.
func (cfg *StateMachineConfig) SetOutShift(shiftRight bool, autoPull bool, pullThreshold uint16) {
	const mask = rp.PIO0_SM0_SHIFTCTRL_OUT_SHIFTDIR_Msk |
		rp.PIO0_SM0_SHIFTCTRL_AUTOPULL_Msk |
		rp.PIO0_SM0_SHIFTCTRL_PULL_THRESH_Msk
	cfg.ShiftCtrl = cfg.ShiftCtrl&^mask |
		boolToBit(shiftRight)<<rp.PIO0_SM0_SHIFTCTRL_OUT_SHIFTDIR_Pos |
		boolToBit(autoPull)<<rp.PIO0_SM0_SHIFTCTRL_AUTOPULL_Pos |
		uint32(pullThreshold&0x1f)<<rp.PIO0_SM0_SHIFTCTRL_PULL_THRESH_Pos
}

// SetOutPins maps OUT PINS onto count pins starting at base. Bit 0 of the
// shifted data lands on base.
func (cfg *StateMachineConfig) SetOutPins(base machine.Pin, count uint8) {
	checkPinBaseAndCount(base, count)
	const mask = rp.PIO0_SM0_PINCTRL_OUT_BASE_Msk | rp.PIO0_SM0_PINCTRL_OUT_COUNT_Msk
	cfg.PinCtrl = cfg.PinCtrl&^mask |
		uint32(base)<<rp.PIO0_SM0_PINCTRL_OUT_BASE_Pos |
		uint32(count)<<rp.PIO0_SM0_PINCTRL_OUT_COUNT_Pos
}

func checkPinBaseAndCount(base machine.Pin, count uint8) {
	if base >= 32 {
		panic("pio:bad pin")
	} else if count > 32 {
		panic("pio:count too large")
	}
}

type FifoJoin uint8

const (
	// FifoJoinNone keeps separate 4 word TX and RX FIFOs.
	FifoJoinNone FifoJoin = iota
	// FifoJoinTx gives the TX FIFO all 8 words.
	FifoJoinTx
	// FifoJoinRx gives the RX FIFO all 8 words.
	FifoJoinRx
)

// SetFIFOJoin selects how the 8 FIFO words are split between TX and RX.
func (cfg *StateMachineConfig) SetFIFOJoin(join FifoJoin) {
	if join > FifoJoinRx {
		panic("SetFIFOJoin: join")
	}
	const mask = rp.PIO0_SM0_SHIFTCTRL_FJOIN_TX_Msk | rp.PIO0_SM0_SHIFTCTRL_FJOIN_RX_Msk
	cfg.ShiftCtrl = cfg.ShiftCtrl&^mask | uint32(join)<<rp.PIO0_SM0_SHIFTCTRL_FJOIN_TX_Pos
}
