package pio

// programSpace is a bitmask of used instruction memory. Each PIO has 32
// slots for instructions.
type programSpace uint32

// find returns the offset where a program of length programLen fits, or -1.
// Relocatable programs (origin < 0) are placed as high as possible.
func (used programSpace) find(programLen uint8, origin int8) int8 {
	if programLen == 0 || programLen > 32 {
		return -1
	}
	programMask := programMask(programLen)

	// Program has fixed offset (not relocatable)
	if origin >= 0 {
		if uint32(origin) > 32-uint32(programLen) {
			return -1
		}
		if uint32(used)&(programMask<<uint32(origin)) != 0 {
			return -1
		}
		return origin
	}

	// work down from the top always
	for i := int8(32 - programLen); i >= 0; i-- {
		if uint32(used)&(programMask<<uint32(i)) == 0 {
			return i
		}
	}
	return -1
}

// fits reports whether a program of length programLen can be placed at offset.
func (used programSpace) fits(programLen uint8, origin int8, offset uint8) bool {
	// Non-relocatable programs must be added at offset
	if origin >= 0 && origin != int8(offset) {
		return false
	}
	if uint32(offset)+uint32(programLen) > 32 {
		return false
	}
	return uint32(used)&(programMask(programLen)<<offset) == 0
}

func (used *programSpace) claim(programLen uint8, offset uint8) {
	*used |= programSpace(programMask(programLen) << offset)
}

func (used *programSpace) release(programLen uint8, offset uint8) {
	*used &^= programSpace(programMask(programLen) << offset)
}

func programMask(programLen uint8) uint32 {
	return uint32((uint64(1) << programLen) - 1)
}

// relocate patches jump targets of a position independent program loaded at
// offset. Other instructions are returned unchanged.
func relocate(instr uint16, offset uint8) uint16 {
	if _INSTR_BITS_JMP == instr&_INSTR_BITS_Msk {
		return instr + uint16(offset)
	}
	return instr
}
