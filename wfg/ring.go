package wfg

// RingState is the lifecycle state of a channel's transfer ring. Once
// streaming, the ring keeps going until power off: there is no stop.
type RingState uint8

const (
	RingIdle RingState = iota
	RingStreaming
)

func (s RingState) String() string {
	if s == RingStreaming {
		return "streaming"
	}
	return "idle"
}

// ring is the pair of DMA channels that loops a buffer into one state
// machine's TX FIFO.
//
// The data channel copies the buffer word by word into the FIFO, paced by
// the FIFO's DREQ, and on completion chains to the control channel. The
// control channel copies ptr into the data channel's READ_ADDR and chains
// back, which restarts the data channel at the start of the buffer.
type ring struct {
	sm   uint8
	data uint8
	ctrl uint8
	// ptr is the bus address of the buffer being streamed. The control
	// channel reads it by address, so a ring must not be copied once started.
	ptr   uint32
	state RingState
}

// dataConfig paces the data channel by dreq, the state machine's TX FIFO
// request, and chains it to the control channel.
func (r *ring) dataConfig(dreq uint8) dmaConfig {
	cc := defaultDMAConfig(r.ctrl)
	cc.setTREQ_SEL(dreq)
	cc.setIRQQuiet(true)
	cc.setHighPriority(true)
	return cc
}

// ctrlConfig makes the control channel an unpaced single word copy from the
// pointer cell that chains back to the data channel.
func (r *ring) ctrlConfig() dmaConfig {
	cc := defaultDMAConfig(r.data)
	cc.setReadIncrement(false)
	cc.setIRQQuiet(true)
	cc.setHighPriority(true)
	return cc
}

// start points the ring at buf and triggers the control channel, which
// (re)starts the data channel from buf[0]. Only registers of this ring's two
// DMA channels are written.
//
// Both channels are aborted first: a busy data channel would ignore the
// chain trigger and finish its old count from the new address. The joined TX
// FIFO keeps the state machine fed across the gap.
func (r *ring) start(hw Registers, buf []byte) {
	hw.AbortDMA(r.ctrl)
	hw.AbortDMA(r.data)
	r.ptr = hw.BufferAddr(buf)

	hw.SetDMAReadAddr(r.data, r.ptr)
	hw.SetDMAWriteAddr(r.data, hw.TxFIFOAddr(r.sm))
	hw.SetDMATransCount(r.data, uint32(len(buf)/4))
	hw.SetDMACtrl(r.data, r.dataConfig(hw.TxDREQ(r.sm)).CTRL)

	hw.SetDMAReadAddr(r.ctrl, hw.WordAddr(&r.ptr))
	hw.SetDMAWriteAddr(r.ctrl, hw.DMAReadAddrReg(r.data))
	hw.SetDMATransCount(r.ctrl, 1)
	hw.SetDMACtrlTrig(r.ctrl, r.ctrlConfig().CTRL)

	r.state = RingStreaming
}
