package wfg

// DMA CHx_CTRL_TRIG field layout, identical for all RP2040 channels.
const (
	dmaCtrlEN           = 0
	dmaCtrlHighPriority = 1
	dmaCtrlDataSizePos  = 2
	dmaCtrlDataSizeMsk  = 0x3 << dmaCtrlDataSizePos
	dmaCtrlIncrRead     = 4
	dmaCtrlIncrWrite    = 5
	dmaCtrlRingSizePos  = 6
	dmaCtrlRingSizeMsk  = 0xf << dmaCtrlRingSizePos
	dmaCtrlRingSel      = 10
	dmaCtrlChainToPos   = 11
	dmaCtrlChainToMsk   = 0xf << dmaCtrlChainToPos
	dmaCtrlTreqSelPos   = 15
	dmaCtrlTreqSelMsk   = 0x3f << dmaCtrlTreqSelPos
	dmaCtrlIRQQuiet     = 21
	dmaCtrlBSwap        = 22
	dmaCtrlSniffEN      = 23
	dmaCtrlBusy         = 24

	// TreqPermanent selects an unpaced transfer request.
	TreqPermanent = 0x3f
)

type dmaTxSize uint32

const (
	dmaTxSize8 dmaTxSize = iota
	dmaTxSize16
	dmaTxSize32
)

// dmaConfig builds a DMA channel control word.
type dmaConfig struct {
	CTRL uint32
}

func defaultDMAConfig(channel uint8) (cc dmaConfig) {
	cc.setRing(false, 0)
	cc.setBSwap(false)
	cc.setIRQQuiet(false)
	cc.setWriteIncrement(false)
	cc.setSniffEnable(false)
	cc.setHighPriority(false)

	cc.setChainTo(channel)
	cc.setTREQ_SEL(TreqPermanent)
	cc.setReadIncrement(true)
	cc.setTransferDataSize(dmaTxSize32)
	cc.setEnable(true)
	return cc
}

func (cc *dmaConfig) setTREQ_SEL(dreq uint8) {
	cc.CTRL = (cc.CTRL &^ dmaCtrlTreqSelMsk) | (uint32(dreq)<<dmaCtrlTreqSelPos)&dmaCtrlTreqSelMsk
}

func (cc *dmaConfig) setChainTo(chainTo uint8) {
	cc.CTRL = (cc.CTRL &^ dmaCtrlChainToMsk) | (uint32(chainTo)<<dmaCtrlChainToPos)&dmaCtrlChainToMsk
}

func (cc *dmaConfig) setTransferDataSize(size dmaTxSize) {
	cc.CTRL = (cc.CTRL &^ dmaCtrlDataSizeMsk) | uint32(size)<<dmaCtrlDataSizePos
}

func (cc *dmaConfig) setRing(write bool, sizeBits uint32) {
	cc.CTRL = (cc.CTRL &^ dmaCtrlRingSizeMsk) | (sizeBits<<dmaCtrlRingSizePos)&dmaCtrlRingSizeMsk
	setBitPos(&cc.CTRL, dmaCtrlRingSel, write)
}

func (cc *dmaConfig) setReadIncrement(incr bool)  { setBitPos(&cc.CTRL, dmaCtrlIncrRead, incr) }
func (cc *dmaConfig) setWriteIncrement(incr bool) { setBitPos(&cc.CTRL, dmaCtrlIncrWrite, incr) }
func (cc *dmaConfig) setBSwap(bswap bool)         { setBitPos(&cc.CTRL, dmaCtrlBSwap, bswap) }
func (cc *dmaConfig) setIRQQuiet(quiet bool)      { setBitPos(&cc.CTRL, dmaCtrlIRQQuiet, quiet) }
func (cc *dmaConfig) setHighPriority(high bool)   { setBitPos(&cc.CTRL, dmaCtrlHighPriority, high) }
func (cc *dmaConfig) setEnable(enable bool)       { setBitPos(&cc.CTRL, dmaCtrlEN, enable) }
func (cc *dmaConfig) setSniffEnable(sniff bool)   { setBitPos(&cc.CTRL, dmaCtrlSniffEN, sniff) }

// DMACtrl decodes a DMA channel control word as written through
// Registers.SetDMACtrl or Registers.SetDMACtrlTrig.
type DMACtrl uint32

func (c DMACtrl) Enabled() bool      { return c&(1<<dmaCtrlEN) != 0 }
func (c DMACtrl) HighPriority() bool { return c&(1<<dmaCtrlHighPriority) != 0 }
func (c DMACtrl) IncrRead() bool     { return c&(1<<dmaCtrlIncrRead) != 0 }
func (c DMACtrl) IncrWrite() bool    { return c&(1<<dmaCtrlIncrWrite) != 0 }
func (c DMACtrl) IRQQuiet() bool     { return c&(1<<dmaCtrlIRQQuiet) != 0 }

// DataSize returns the bus transfer size in bytes.
func (c DMACtrl) DataSize() uint32 { return 1 << ((c & dmaCtrlDataSizeMsk) >> dmaCtrlDataSizePos) }

// ChainTo returns the channel triggered on completion. A channel chained to
// itself does not chain.
func (c DMACtrl) ChainTo() uint8 { return uint8((c & dmaCtrlChainToMsk) >> dmaCtrlChainToPos) }

// TreqSel returns the transfer request signal pacing the channel.
func (c DMACtrl) TreqSel() uint8 { return uint8((c & dmaCtrlTreqSelMsk) >> dmaCtrlTreqSelPos) }

func setBitPos(cc *uint32, pos uint32, bit bool) {
	if bit {
		*cc |= 1 << pos
	} else {
		*cc &^= 1 << pos
	}
}
