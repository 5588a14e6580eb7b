//go:build rp2040

package piolib

import (
	"device/rp"
	"runtime/volatile"
	"unsafe"
)

type dmaChannel struct {
	hw      *dmaChannelHW
	channel uint8
}

// Single DMA channel. See rp.DMA_Type.
type dmaChannelHW struct {
	READ_ADDR   volatile.Register32
	WRITE_ADDR  volatile.Register32
	TRANS_COUNT volatile.Register32
	CTRL_TRIG   volatile.Register32
	// AL1_CTRL is the first alias of CTRL. Writing it does not trigger the channel.
	AL1_CTRL volatile.Register32
	_        [11]volatile.Register32 // aliases
}

// DMA channels usable on the RP2040.
var dmaChannels = (*[12]dmaChannelHW)(unsafe.Pointer(rp.DMA))

func getDMAChannel(channel uint8) *dmaChannel {
	if channel >= uint8(len(dmaChannels)) {
		panic(badDMAChannel)
	}
	return &dmaChannel{hw: &dmaChannels[channel], channel: channel}
}

// abort aborts the current transfer sequence on the channel and blocks until
// all in-flight transfers have been flushed through the address and data FIFOs.
// After this, it is safe to restart the channel.
func (ch *dmaChannel) abort() {
	// Each bit corresponds to a channel. Writing a 1 aborts whatever transfer
	// sequence is in progress on that channel. The bit will remain high until
	// any in-flight transfers have been flushed through the address and data FIFOs.
	// After writing, this register must be polled until it returns all-zero.
	// Until this point, it is unsafe to restart the channel.
	chMask := uint32(1 << ch.channel)
	rp.DMA.CHAN_ABORT.Set(chMask)
	retries := timeoutRetries
	for rp.DMA.CHAN_ABORT.Get()&chMask != 0 && retries > 0 {
		gosched()
		retries--
	}
	if retries == 0 {
		println("DMA abort timeout")
	}
}

func (ch *dmaChannel) busy() bool {
	return ch.hw.CTRL_TRIG.Get()&rp.DMA_CH0_CTRL_TRIG_BUSY != 0
}

// readAddrReg returns the bus address of the channel's READ_ADDR register,
// the target of a control channel that restarts this one.
func (ch *dmaChannel) readAddrReg() uint32 {
	return uint32(uintptr(unsafe.Pointer(&ch.hw.READ_ADDR)))
}
