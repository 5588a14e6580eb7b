//go:build rp2040

package piolib

import (
	"device/rp"
	"machine"
	"runtime/volatile"
	"unsafe"

	pio "github.com/tinygo-org/uwfg/rp2-pio"
	"github.com/tinygo-org/uwfg/wfg"
)

// WaveOut drives the waveform generator engine on RP2040 hardware. It owns
// the state machines and DMA channels named in a wfg.Config and implements
// wfg.Registers on top of them.
type WaveOut struct {
	pio    *pio.PIO
	offset uint8
}

var _ wfg.Registers = (*WaveOut)(nil)

// NewWaveOut loads the byte output program into p and claims the state
// machines and DMA channels of both channels in cfg. DMA channels are aborted
// so a ring left over from before a soft reset cannot write into the FIFOs.
func NewWaveOut(p *pio.PIO, cfg wfg.Config) (*WaveOut, error) {
	for _, c := range cfg.Channels {
		if c.StateMachine > 3 {
			return nil, errBadWaveOutSM
		}
		if c.DMAData >= uint8(len(dmaChannels)) || c.DMACtrl >= uint8(len(dmaChannels)) {
			return nil, errDMAUnavail
		}
	}
	var claimed []pio.StateMachine
	release := func() {
		for _, sm := range claimed {
			sm.Unclaim()
		}
	}
	for _, c := range cfg.Channels {
		sm := p.StateMachine(c.StateMachine)
		if !sm.TryClaim() {
			release()
			return nil, errSMUnavail
		}
		claimed = append(claimed, sm)
	}
	offset, err := p.AddProgram(wfgoutInstructions, wfgoutOrigin)
	if err != nil {
		release()
		return nil, err
	}
	for _, c := range cfg.Channels {
		getDMAChannel(c.DMAData).abort()
		getDMAChannel(c.DMACtrl).abort()
	}
	return &WaveOut{pio: p, offset: offset}, nil
}

// ConfigureTimingUnit hands the pin group to the PIO with fast slew and 8mA
// drive, then starts the state machine on the output program.
func (w *WaveOut) ConfigureTimingUnit(smIndex uint8, tc wfg.TimingConfig) {
	sm := w.pio.StateMachine(smIndex)
	for i := uint8(0); i < tc.PinCount; i++ {
		pin := machine.Pin(tc.PinBase + i)
		pin.Configure(machine.PinConfig{Mode: w.pio.PinMode()})
		setPadFast(pin)
	}
	sm.SetPindirsConsecutive(machine.Pin(tc.PinBase), tc.PinCount, true)

	cfg := wfgoutProgramDefaultConfig(w.offset)
	cfg.SetOutPins(machine.Pin(tc.PinBase), tc.PinCount)
	cfg.SetOutShift(tc.ShiftRight, tc.AutoPull, uint16(tc.PullThreshold))
	if tc.JoinTx {
		cfg.SetFIFOJoin(pio.FifoJoinTx)
	}
	cfg.SetClkDivIntFrac(tc.Divider.Whole(), tc.Divider.Frac())

	sm.Init(w.offset, cfg)
	sm.SetEnabled(true)
}

func (w *WaveOut) SetClkDiv(sm uint8, div wfg.Divider) {
	w.pio.StateMachine(sm).SetClkDivRaw(uint32(div))
}

func (w *WaveOut) ClkDivRestart(sm uint8) {
	w.pio.StateMachine(sm).ClkDivRestart()
}

func (w *WaveOut) TxFIFOAddr(sm uint8) uint32 {
	return uint32(uintptr(unsafe.Pointer(w.pio.StateMachine(sm).TxReg())))
}

func (w *WaveOut) TxDREQ(sm uint8) uint8 {
	return w.pio.StateMachine(sm).TxDREQ()
}

func (w *WaveOut) SetDMAReadAddr(ch uint8, addr uint32) {
	getDMAChannel(ch).hw.READ_ADDR.Set(addr)
}

func (w *WaveOut) SetDMAWriteAddr(ch uint8, addr uint32) {
	getDMAChannel(ch).hw.WRITE_ADDR.Set(addr)
}

func (w *WaveOut) SetDMATransCount(ch uint8, count uint32) {
	getDMAChannel(ch).hw.TRANS_COUNT.Set(count)
}

func (w *WaveOut) SetDMACtrl(ch uint8, ctrl uint32) {
	getDMAChannel(ch).hw.AL1_CTRL.Set(ctrl)
}

func (w *WaveOut) SetDMACtrlTrig(ch uint8, ctrl uint32) {
	getDMAChannel(ch).hw.CTRL_TRIG.Set(ctrl)
}

// AbortDMA stops a DMA channel without chaining and waits for in-flight
// transfers to land.
func (w *WaveOut) AbortDMA(ch uint8) {
	getDMAChannel(ch).abort()
}

func (w *WaveOut) DMAReadAddrReg(ch uint8) uint32 {
	return getDMAChannel(ch).readAddrReg()
}

func (w *WaveOut) BufferAddr(buf []byte) uint32 {
	return uint32(uintptr(unsafe.Pointer(&buf[0])))
}

func (w *WaveOut) WordAddr(word *uint32) uint32 {
	return uint32(uintptr(unsafe.Pointer(word)))
}

// DMABusy reports whether a DMA channel is mid transfer. A streaming ring
// always has its data channel busy, or its control channel about to restart it.
func (w *WaveOut) DMABusy(ch uint8) bool {
	return getDMAChannel(ch).busy()
}

// Enabled reports whether a state machine is running its output program.
func (w *WaveOut) Enabled(sm uint8) bool {
	return w.pio.StateMachine(sm).IsEnabled()
}

// Stalled returns and clears the TX stall flag of a state machine. A stall
// means the DMA ring failed to keep the FIFO fed and a sample was held long.
func (w *WaveOut) Stalled(sm uint8) bool {
	return w.pio.TxStalled(1<<sm) != 0
}

var padsBank0 = (*[30]volatile.Register32)(unsafe.Pointer(&rp.PADS_BANK0.GPIO0))

const padDrive8mA = 2

func setPadFast(pin machine.Pin) {
	pad := &padsBank0[pin]
	pad.ReplaceBits(padDrive8mA, rp.PADS_BANK0_GPIO0_DRIVE_Msk>>rp.PADS_BANK0_GPIO0_DRIVE_Pos, rp.PADS_BANK0_GPIO0_DRIVE_Pos)
	pad.SetBits(rp.PADS_BANK0_GPIO0_SLEWFAST_Msk)
}
