//go:build rp2040

package pio

import (
	"device/rp"
	"errors"
	"machine"
	"runtime/volatile"
	"unsafe"
)

// PIO blocks of the RP2040.
var (
	PIO0 = &PIO{hw: rp.PIO0}
	PIO1 = &PIO{hw: rp.PIO1}
)

var (
	ErrOutOfProgramSpace = errors.New("pio: out of program space")
	ErrNoSpaceAtOffset   = errors.New("pio: program space unavailable at offset")
)

const (
	badStateMachineIndex = "invalid state machine index"
	badPIO               = "invalid PIO"
)

// PIO is one PIO block: 32 words of shared instruction memory and four
// state machines.
type PIO struct {
	hw *rp.PIO0_Type
	// usedSpace marks loaded instruction slots.
	usedSpace programSpace
	// claimedSMMask has bit n set while state machine n is owned by a driver.
	claimedSMMask uint8
	nc            noCopy
}

// BlockIndex returns 0 for PIO0 and 1 for PIO1.
func (pio *PIO) BlockIndex() uint8 {
	switch pio.hw {
	case rp.PIO0:
		return 0
	case rp.PIO1:
		return 1
	}
	panic(badPIO)
}

// StateMachine returns state machine index (0..3) of the block.
func (pio *PIO) StateMachine(index uint8) StateMachine {
	if index > 3 {
		panic(badStateMachineIndex)
	}
	return StateMachine{pio: pio, index: index}
}

// AddProgram copies a program into the first free instruction slots that
// fit it, searching from the top of memory, and returns its offset.
//
// origin is the fixed load address of the program, or -1 when it is
// position independent. Jump targets of relocated programs are patched.
func (pio *PIO) AddProgram(instructions []uint16, origin int8) (offset uint8, _ error) {
	maybeOffset := pio.usedSpace.find(uint8(len(instructions)), origin)
	if maybeOffset < 0 {
		return 0, ErrOutOfProgramSpace
	}
	offset = uint8(maybeOffset)
	return offset, pio.AddProgramAtOffset(instructions, origin, offset)
}

// AddProgramAtOffset copies a program to offset, failing if any of the
// slots it needs is already in use.
func (pio *PIO) AddProgramAtOffset(instructions []uint16, origin int8, offset uint8) error {
	if !pio.CanAddProgramAtOffset(instructions, origin, offset) {
		return ErrNoSpaceAtOffset
	}
	hw := pio.HW()
	for i, instr := range instructions {
		// Only the low half of each instruction memory register is used.
		hw.INSTR_MEM[offset+uint8(i)].Set(uint32(relocate(instr, offset)))
	}
	pio.usedSpace.claim(uint8(len(instructions)), offset)
	return nil
}

// CanAddProgramAtOffset reports whether a program fits at offset.
func (pio *PIO) CanAddProgramAtOffset(instructions []uint16, origin int8, offset uint8) bool {
	return pio.usedSpace.fits(uint8(len(instructions)), origin, offset)
}

// PinMode is the GPIO function that connects a pin to this block.
func (pio *PIO) PinMode() machine.PinMode {
	return machine.PinPIO0 + machine.PinMode(pio.BlockIndex())
}

// TxStalled returns and clears the sticky TXSTALL flags of the state machines
// in smMask. A set flag means a state machine found its TX FIFO empty on
// autopull since the last call.
func (pio *PIO) TxStalled(smMask uint8) uint8 {
	const pos = rp.PIO0_FDEBUG_TXSTALL_Pos
	stalled := uint8(pio.hw.FDEBUG.Get()>>pos) & smMask & 0xf
	// FDEBUG flags are write one to clear.
	pio.hw.FDEBUG.Set(uint32(stalled) << pos)
	return stalled
}

// HW returns the block's registers.
func (pio *PIO) HW() *pioHW { return (*pioHW)(unsafe.Pointer(pio.hw)) }

func (pio *PIO) smHW(index uint8) *statemachineHW {
	if index > 3 {
		panic(badStateMachineIndex)
	}
	return &pio.HW().SM[index]
}

// Per state machine registers, 24 bytes apart starting at SM0_CLKDIV.
type statemachineHW struct {
	CLKDIV    volatile.Register32 // 0xC8 for SM0
	EXECCTRL  volatile.Register32 // 0xCC for SM0
	SHIFTCTRL volatile.Register32 // 0xD0 for SM0
	ADDR      volatile.Register32 // 0xD4 for SM0
	INSTR     volatile.Register32 // 0xD8 for SM0
	PINCTRL   volatile.Register32 // 0xDC for SM0
}

// rp.PIO0_Type with the repeated registers as arrays.
type pioHW struct {
	CTRL              volatile.Register32 // 0x0
	FSTAT             volatile.Register32 // 0x4
	FDEBUG            volatile.Register32 // 0x8
	FLEVEL            volatile.Register32 // 0xC
	TXF               [4]volatile.Register32
	RXF               [4]volatile.Register32
	IRQ               volatile.Register32     // 0x30
	IRQ_FORCE         volatile.Register32     // 0x34
	INPUT_SYNC_BYPASS volatile.Register32     // 0x38
	DBG_PADOUT        volatile.Register32     // 0x3C
	DBG_PADOE         volatile.Register32     // 0x40
	DBG_CFGINFO       volatile.Register32     // 0x44
	INSTR_MEM         [32]volatile.Register32 // 0x48..0xC4
	SM                [4]statemachineHW       // 0xC8..0x124
	INTR              volatile.Register32     // 0x128
	IRQ_INT           [2]irqINTHW             // 0x12C..0x140
}

type irqINTHW struct {
	E volatile.Register32
	F volatile.Register32
	S volatile.Register32
}

// Fails to compile if pioHW does not cover rp.PIO0_Type exactly.
var _ = [1]struct{}{}[unsafe.Sizeof(rp.PIO0_Type{})-unsafe.Sizeof(pioHW{})]

// noCopy may be embedded into structs which must not be copied
// after the first use.
//
// See https://golang.org/issues/8005#issuecomment-190753527
// for details.
type noCopy struct{}

// Lock is a no-op used by -copylocks checker from `go vet`.
func (*noCopy) Lock()   {}
func (*noCopy) UnLock() {}
