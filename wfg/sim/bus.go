// Package sim is a software stand-in for the RP2040 registers driven by the
// wfg engine. It records every register write and can execute the DMA
// channels and PIO state machines cycle by cycle, so the output of a running
// engine can be observed on a host.
//
// Only what the engine uses is modelled: 32 bit DMA transfers paced by PIO0
// TX DREQs or unpaced, chaining and aborts, the CTRL_TRIG and AL1_CTRL
// aliases, and a state machine running "out pins, 8" with autopull.
package sim

import (
	"fmt"

	"github.com/tinygo-org/uwfg/wfg"
)

const (
	numStateMachines = 4
	numDMAChannels   = 12
)

// Op names a register operation issued through the wfg.Registers interface.
type Op uint8

const (
	OpConfigureTimingUnit Op = iota
	OpSetClkDiv
	OpClkDivRestart
	OpDMAReadAddr
	OpDMAWriteAddr
	OpDMATransCount
	OpDMACtrl
	OpDMACtrlTrig
	OpDMAAbort
)

var opNames = [...]string{
	OpConfigureTimingUnit: "SM_CONFIG",
	OpSetClkDiv:           "SM_CLKDIV",
	OpClkDivRestart:       "SM_CLKDIV_RESTART",
	OpDMAReadAddr:         "DMA_READ_ADDR",
	OpDMAWriteAddr:        "DMA_WRITE_ADDR",
	OpDMATransCount:       "DMA_TRANS_COUNT",
	OpDMACtrl:             "DMA_AL1_CTRL",
	OpDMACtrlTrig:         "DMA_CTRL_TRIG",
	OpDMAAbort:            "DMA_ABORT",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "unknown"
}

// IsDMA reports whether op targets a DMA channel rather than a state machine.
func (op Op) IsDMA() bool { return op >= OpDMAReadAddr }

// Write is one recorded register operation. Index is the state machine or
// DMA channel number.
type Write struct {
	Op    Op
	Index uint8
	Value uint32
}

func (w Write) String() string {
	if w.Op.IsDMA() {
		return fmt.Sprintf("CH%d %s=0x%08x", w.Index, w.Op, w.Value)
	}
	return fmt.Sprintf("SM%d %s=0x%08x", w.Index, w.Op, w.Value)
}

// Bus implements wfg.Registers in software. The zero value is not usable;
// create one with New.
type Bus struct {
	writes []Write
	sms    [numStateMachines]stateMachine
	dma    [numDMAChannels]dmaChannel
	mem    []region
	next   uint32
	cycles uint64
	faults uint64
	// MaxHistory bounds the per state machine output history kept by Run.
	MaxHistory int
}

var _ wfg.Registers = (*Bus)(nil)

// New returns an idle bus with nothing mapped.
func New() *Bus {
	return &Bus{next: SRAMBase, MaxHistory: 1 << 16}
}

func (b *Bus) record(op Op, index uint8, v uint32) {
	b.writes = append(b.writes, Write{Op: op, Index: index, Value: v})
}

// Writes returns the register operations recorded since the last ResetWrites.
func (b *Bus) Writes() []Write { return b.writes }

// ResetWrites clears the write log.
func (b *Bus) ResetWrites() { b.writes = b.writes[:0] }

func (b *Bus) ConfigureTimingUnit(sm uint8, cfg wfg.TimingConfig) {
	b.record(OpConfigureTimingUnit, sm, uint32(cfg.Divider))
	b.sms[sm].configure(cfg)
}

func (b *Bus) SetClkDiv(sm uint8, div wfg.Divider) {
	b.record(OpSetClkDiv, sm, uint32(div))
	b.sms[sm].div = div
}

func (b *Bus) ClkDivRestart(sm uint8) {
	b.record(OpClkDivRestart, sm, 0)
	b.sms[sm].acc = 0
}

func (b *Bus) TxFIFOAddr(sm uint8) uint32 { return PIO0Base + pioTXF0Off + 4*uint32(sm) }

// TxDREQ returns DREQ_PIO0_TXn.
func (b *Bus) TxDREQ(sm uint8) uint8 { return sm }

func (b *Bus) SetDMAReadAddr(ch uint8, addr uint32) {
	b.record(OpDMAReadAddr, ch, addr)
	b.dma[ch].readAddr = addr
}

func (b *Bus) SetDMAWriteAddr(ch uint8, addr uint32) {
	b.record(OpDMAWriteAddr, ch, addr)
	b.dma[ch].writeAddr = addr
}

func (b *Bus) SetDMATransCount(ch uint8, count uint32) {
	b.record(OpDMATransCount, ch, count)
	b.dma[ch].transCount = count
}

func (b *Bus) SetDMACtrl(ch uint8, ctrl uint32) {
	b.record(OpDMACtrl, ch, ctrl)
	b.dma[ch].ctrl = ctrlWord(ctrl)
}

func (b *Bus) SetDMACtrlTrig(ch uint8, ctrl uint32) {
	b.record(OpDMACtrlTrig, ch, ctrl)
	b.dma[ch].ctrl = ctrlWord(ctrl)
	b.trigger(ch)
}

// AbortDMA ends the channel's sequence without completing it, so nothing is
// chained.
func (b *Bus) AbortDMA(ch uint8) {
	b.record(OpDMAAbort, ch, 0)
	b.dma[ch].busy = false
	b.dma[ch].remaining = 0
}

func (b *Bus) DMAReadAddrReg(ch uint8) uint32 {
	return DMABase + dmaChannelStride*uint32(ch) + dmaReadAddrOff
}

func (b *Bus) BufferAddr(buf []byte) uint32 { return b.mapBuffer(buf) }

func (b *Bus) WordAddr(w *uint32) uint32 { return b.mapWord(w) }

func ctrlWord(v uint32) wfg.DMACtrl { return wfg.DMACtrl(v) }

// DMAState is a snapshot of one DMA channel.
type DMAState struct {
	ReadAddr  uint32
	WriteAddr uint32
	// TransCount is the count reloaded on each trigger.
	TransCount uint32
	// Remaining is the number of transfers left in the current sequence.
	Remaining uint32
	Ctrl      wfg.DMACtrl
	Busy      bool
	// Sequences counts completed transfer sequences.
	Sequences uint64
}

// DMA returns the state of DMA channel ch.
func (b *Bus) DMA(ch uint8) DMAState {
	d := &b.dma[ch]
	return DMAState{
		ReadAddr:   d.readAddr,
		WriteAddr:  d.writeAddr,
		TransCount: d.transCount,
		Remaining:  d.remaining,
		Ctrl:       d.ctrl,
		Busy:       d.busy,
		Sequences:  d.sequences,
	}
}

// SMState is a snapshot of one state machine.
type SMState struct {
	Config  wfg.TimingConfig
	Divider wfg.Divider
	Enabled bool
	// Pins is the byte currently driven on the output pin group.
	Pins      uint8
	FIFOLevel int
	// Ticks counts divided clock ticks, Stalls the ticks spent waiting on an
	// empty TX FIFO.
	Ticks  uint64
	Stalls uint64
	// Overflows counts words dropped because the TX FIFO was full.
	Overflows uint64
}

// StateMachine returns the state of state machine sm.
func (b *Bus) StateMachine(sm uint8) SMState {
	s := &b.sms[sm]
	return SMState{
		Config:    s.cfg,
		Divider:   s.div,
		Enabled:   s.enabled,
		Pins:      s.pins,
		FIFOLevel: len(s.fifo),
		Ticks:     s.ticks,
		Stalls:    s.stalls,
		Overflows: s.overflows,
	}
}

// Output returns the bytes state machine sm has put on its pins during Run,
// oldest first, bounded by MaxHistory.
func (b *Bus) Output(sm uint8) []byte { return b.sms[sm].history }

// ClearOutput discards the output history of state machine sm.
func (b *Bus) ClearOutput(sm uint8) { b.sms[sm].history = b.sms[sm].history[:0] }

// Cycles returns the number of system clock cycles simulated.
func (b *Bus) Cycles() uint64 { return b.cycles }

// Faults returns the number of DMA accesses to unmapped addresses.
func (b *Bus) Faults() uint64 { return b.faults }

// Run simulates n system clock cycles. In every cycle each busy DMA channel
// whose transfer request is asserted moves one word, then each enabled state
// machine advances its divided clock.
func (b *Bus) Run(n uint64) {
	for ; n > 0; n-- {
		for ch := range b.dma {
			b.stepDMA(uint8(ch))
		}
		for i := range b.sms {
			b.sms[i].step(b.MaxHistory)
		}
		b.cycles++
	}
}
