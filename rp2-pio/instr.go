package pio

// Major opcode bits of the PIO instructions this package emits.
const (
	_INSTR_BITS_JMP = 0x0000
	_INSTR_BITS_OUT = 0x6000
	_INSTR_BITS_SET = 0xe000

	// Bit mask for instruction code
	_INSTR_BITS_Msk = 0xe000
)

type JmpCond uint8

const (
	// No condition, always jumps.
	JmpAlways JmpCond = iota
	JmpXZero
	JmpXNZeroDec
	JmpYZero
	JmpYNZeroDec
	JmpXNotEqualY
	JmpPinInput
	JmpOSRNotEmpty
)

// OutDest is the destination of an OUT instruction.
type OutDest uint8

const (
	OutDestPins    OutDest = 0b000
	OutDestX       OutDest = 0b001
	OutDestY       OutDest = 0b010
	OutDestNull    OutDest = 0b011
	OutDestPindirs OutDest = 0b100
)

// SetDest is the destination of a SET instruction.
type SetDest uint8

const (
	SetDestPins    SetDest = 0b000
	SetDestX       SetDest = 0b001
	SetDestY       SetDest = 0b010
	SetDestPindirs SetDest = 0b100
)

// AssemblerV0 encodes RP2040 (PIO version 0) instructions. Programs here
// use no side-set, so the delay/side-set field is always zero.
type AssemblerV0 struct{}

type instructionV0 struct {
	instr uint16
}

// Encode returns the instruction word.
func (instr instructionV0) Encode() uint16 { return instr.instr }

func (asm AssemblerV0) instrArgs(instr uint16, arg1 uint8, arg2 uint8) instructionV0 {
	return instructionV0{instr: instr | (uint16(arg1&0b111) << 5) | uint16(arg2&0x1f)}
}

// Jmp jumps to addr if cond is true.
func (asm AssemblerV0) Jmp(addr uint8, cond JmpCond) instructionV0 {
	return asm.instrArgs(_INSTR_BITS_JMP, uint8(cond), addr)
}

// Out shifts bitCount bits out of the OSR into dest. A bitCount of 32 is
// encoded as 0.
func (asm AssemblerV0) Out(dest OutDest, bitCount uint8) instructionV0 {
	return asm.instrArgs(_INSTR_BITS_OUT, uint8(dest), bitCount)
}

// Set writes an immediate value of up to 5 bits to dest.
func (asm AssemblerV0) Set(dest SetDest, value uint8) instructionV0 {
	return asm.instrArgs(_INSTR_BITS_SET, uint8(dest), value)
}
