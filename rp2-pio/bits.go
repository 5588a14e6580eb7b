package pio

func makePinmask(base, count, bit uint8) (valMask, pinMask uint32) {
	start := uint8(base)
	end := start + count
	for shift := start; shift < end; shift++ {
		valMask |= uint32(bit) << shift
		pinMask |= 1 << shift
	}
	return valMask, pinMask
}

func boolToBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
