//go:build rp2040

package pio

import (
	"device/rp"
	"machine"
	"runtime/volatile"
	"unsafe"
)

// StateMachine is a handle to one state machine of a PIO block. It is a small
// value and may be copied freely.
type StateMachine struct {
	pio   *PIO
	index uint8
}

// IsClaimed reports whether a driver owns the state machine.
func (sm StateMachine) IsClaimed() bool { return sm.pio.claimedSMMask&(1<<sm.index) != 0 }

// TryClaim takes ownership of the state machine. It returns false if it was
// already claimed; either way it is claimed afterwards.
func (sm StateMachine) TryClaim() bool {
	if sm.IsClaimed() {
		return false
	}
	sm.pio.claimedSMMask |= 1 << sm.index
	return true
}

// Unclaim gives up ownership of the state machine.
func (sm StateMachine) Unclaim() { sm.pio.claimedSMMask &^= 1 << sm.index }

// HW returns the state machine's own registers.
func (sm StateMachine) HW() *statemachineHW { return sm.pio.smHW(sm.index) }

// PIO returns the block the state machine belongs to.
func (sm StateMachine) PIO() *PIO {
	sm.pio.BlockIndex() // panics on a bad handle
	return sm.pio
}

// IsValid reports whether sm refers to an existing state machine.
func (sm StateMachine) IsValid() bool {
	return sm.pio != nil && (sm.pio.hw == rp.PIO0 || sm.pio.hw == rp.PIO1) && sm.index <= 3
}

// Init stops the state machine, loads cfg, flushes its FIFOs, clears its
// sticky debug flags, resets shift counters and clock phase, and points it at
// initialPC. A zero cfg means DefaultStateMachineConfig. The state machine is
// left disabled.
func (sm StateMachine) Init(initialPC uint8, cfg StateMachineConfig) {
	if !sm.IsValid() {
		panic(badStateMachineIndex)
	}
	sm.SetEnabled(false)

	if cfg == (StateMachineConfig{}) {
		cfg = DefaultStateMachineConfig()
	}
	sm.SetConfig(cfg)
	sm.ClearFIFOs()

	const fdebugMask = uint32((1 << rp.PIO0_FDEBUG_TXOVER_Pos) |
		(1 << rp.PIO0_FDEBUG_RXUNDER_Pos) |
		(1 << rp.PIO0_FDEBUG_TXSTALL_Pos) |
		(1 << rp.PIO0_FDEBUG_RXSTALL_Pos))
	sm.pio.hw.FDEBUG.Set(fdebugMask << sm.index)

	sm.Restart()
	sm.ClkDivRestart()
	sm.Jmp(initialPC, JmpAlways)
}

// SetEnabled starts or stops the state machine.
func (sm StateMachine) SetEnabled(enabled bool) {
	sm.pio.hw.CTRL.ReplaceBits(boolToBit(enabled), 0x1, rp.PIO0_CTRL_SM_ENABLE_Pos+sm.index)
}

// IsEnabled reports whether the state machine is running.
func (sm StateMachine) IsEnabled() bool {
	return sm.pio.hw.CTRL.HasBits(1 << (rp.PIO0_CTRL_SM_ENABLE_Pos + sm.index))
}

// Restart clears the shift counters and other internal state.
func (sm StateMachine) Restart() {
	sm.pio.hw.CTRL.SetBits(1 << (rp.PIO0_CTRL_SM_RESTART_Pos + sm.index))
}

// ClkDivRestart zeroes the phase of the divided clock, so a divider written
// just before takes effect from the next system clock cycle.
func (sm StateMachine) ClkDivRestart() {
	sm.pio.hw.CTRL.SetBits(1 << (rp.PIO0_CTRL_CLKDIV_RESTART_Pos + sm.index))
}

// SetConfig writes all four configuration registers.
func (sm StateMachine) SetConfig(cfg StateMachineConfig) {
	hw := sm.HW()
	hw.CLKDIV.Set(cfg.ClkDiv)
	hw.EXECCTRL.Set(cfg.ExecCtrl)
	hw.SHIFTCTRL.Set(cfg.ShiftCtrl)
	hw.PINCTRL.Set(cfg.PinCtrl)
}

// SetClkDivRaw writes a complete CLKDIV word: integer part in bits 31..16,
// fraction in 1/256 in bits 15..8. It is safe while the state machine runs.
func (sm StateMachine) SetClkDivRaw(clkdiv uint32) {
	sm.HW().CLKDIV.Set(clkdiv)
}

// TxReg returns the state machine's TX FIFO register, the write address for
// a DMA channel feeding it.
func (sm StateMachine) TxReg() *volatile.Register32 {
	return &sm.pio.HW().TXF[sm.index]
}

// TxDREQ returns the DMA transfer request raised while the state machine's
// TX FIFO has room.
func (sm StateMachine) TxDREQ() uint8 {
	// PIO0 TX0..3 are DREQ 0..3, PIO1 TX0..3 are DREQ 8..11.
	return sm.PIO().BlockIndex()*8 + sm.index
}

// ClearFIFOs empties both FIFOs.
func (sm StateMachine) ClearFIFOs() {
	// Any change of FJOIN_RX flushes the FIFOs; toggling twice keeps the join.
	shiftctl := &sm.HW().SHIFTCTRL
	xorBits(shiftctl, rp.PIO0_SM0_SHIFTCTRL_FJOIN_RX_Msk)
	xorBits(shiftctl, rp.PIO0_SM0_SHIFTCTRL_FJOIN_RX_Msk)
}

// Exec runs one instruction immediately.
func (sm StateMachine) Exec(instr uint16) {
	sm.HW().INSTR.Set(uint32(instr))
}

// Jmp moves the program counter. The state machine should be stopped.
func (sm StateMachine) Jmp(toAddr uint8, cond JmpCond) {
	sm.Exec(AssemblerV0{}.Jmp(toAddr, cond).Encode())
}

// SetPindirsConsecutive makes count pins from pin outputs (isOut) or inputs
// for this state machine. Call it before enabling the state machine.
func (sm StateMachine) SetPindirsConsecutive(pin machine.Pin, count uint8, isOut bool) {
	checkPinBaseAndCount(pin, count)
	sm.setPinExec(SetDestPindirs, makePinmask(uint8(pin), count, uint8(boolToBit(isOut))))
}

// setPinExec points a single SET pin at each pin in pinMask in turn and
// executes a SET of its bit from valueMask, restoring PINCTRL and EXECCTRL
// afterwards.
func (sm StateMachine) setPinExec(dest SetDest, valueMask, pinMask uint32) {
	hw := sm.HW()
	pinctrlSaved := hw.PINCTRL.Get()
	execctrlSaved := hw.EXECCTRL.Get()
	hw.EXECCTRL.ClearBits(1 << rp.PIO0_SM0_EXECCTRL_OUT_STICKY_Pos)
	for i := uint8(0); i < 32; i++ {
		if pinMask&(1<<i) == 0 {
			continue
		}
		hw.PINCTRL.Set(1<<rp.PIO0_SM0_PINCTRL_SET_COUNT_Pos | uint32(i)<<rp.PIO0_SM0_PINCTRL_SET_BASE_Pos)
		sm.Exec(AssemblerV0{}.Set(dest, 0x1&uint8(valueMask>>i)).Encode())
	}
	hw.PINCTRL.Set(pinctrlSaved)
	hw.EXECCTRL.Set(execctrlSaved)
}

// Peripheral registers have an atomic XOR alias 0x1000 above them
// (RP2040 datasheet 2.1.2).
const regAliasXOR = 0x1 << 12

func xorBits(reg *volatile.Register32, bits uint32) {
	alias := uintptr(unsafe.Pointer(reg)) | regAliasXOR
	(*volatile.Register32)(unsafe.Pointer(alias)).Set(bits)
}
