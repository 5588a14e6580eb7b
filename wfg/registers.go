package wfg

// Registers is the register-level surface the engine drives. The RP2040
// implementation lives in rp2-pio/piolib (WaveOut); wfg/sim provides a
// software implementation that records writes and simulates the hardware.
//
// Every method is a plain register write or address lookup and cannot fail.
// Indices passed in are always taken from a validated Config.
type Registers interface {
	// ConfigureTimingUnit binds the pins of a state machine, loads cfg,
	// initializes the state machine at the output program and enables it.
	ConfigureTimingUnit(sm uint8, cfg TimingConfig)
	// SetClkDiv writes the state machine's clock divider register.
	SetClkDiv(sm uint8, div Divider)
	// ClkDivRestart zeroes the divided clock's phase so a new divider takes
	// effect immediately.
	ClkDivRestart(sm uint8)
	// TxFIFOAddr returns the bus address of the state machine's TX FIFO.
	TxFIFOAddr(sm uint8) uint32
	// TxDREQ returns the DMA transfer request number raised by the state
	// machine's TX FIFO.
	TxDREQ(sm uint8) uint8

	SetDMAReadAddr(ch uint8, addr uint32)
	SetDMAWriteAddr(ch uint8, addr uint32)
	SetDMATransCount(ch uint8, count uint32)
	// SetDMACtrl writes the control word through a non-triggering alias.
	SetDMACtrl(ch uint8, ctrl uint32)
	// SetDMACtrlTrig writes the control word and starts the channel.
	SetDMACtrlTrig(ch uint8, ctrl uint32)
	// AbortDMA stops a channel without chaining. Triggering a busy channel
	// is ignored, so a running sequence must be aborted before rewiring.
	AbortDMA(ch uint8)
	// DMAReadAddrReg returns the bus address of a channel's READ_ADDR register.
	DMAReadAddrReg(ch uint8) uint32

	// BufferAddr returns the bus address of buf[0].
	BufferAddr(buf []byte) uint32
	// WordAddr returns the bus address of a word.
	WordAddr(w *uint32) uint32
}

// TimingConfig is the state machine configuration for one output channel.
type TimingConfig struct {
	PinBase  uint8
	PinCount uint8
	Divider  Divider
	// ShiftRight shifts the OSR right so the least significant byte of each
	// FIFO word is output first.
	ShiftRight bool
	AutoPull   bool
	// PullThreshold is the number of bits shifted out before autopull refills
	// the OSR.
	PullThreshold uint8
	// JoinTx joins the RX FIFO onto the TX FIFO, doubling its depth to 8.
	JoinTx bool
}
