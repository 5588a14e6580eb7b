package sim

import (
	"bytes"
	"testing"

	"github.com/tinygo-org/uwfg/wfg"
)

// permanent is an enabled, unpaced 32 bit read-incrementing CTRL word
// chained to chain.
func permanent(chain uint8) uint32 {
	return 1 | 2<<2 | 1<<4 | uint32(chain)<<11 | wfg.TreqPermanent<<15
}

func timing(div wfg.Divider) wfg.TimingConfig {
	return wfg.TimingConfig{
		PinCount:      8,
		Divider:       div,
		ShiftRight:    true,
		AutoPull:      true,
		PullThreshold: 32,
		JoinTx:        true,
	}
}

func TestMemoryMap(t *testing.T) {
	b := New()
	buf := wfg.NewBuffer(8)
	copy(buf, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	addr := b.BufferAddr(buf)
	if addr != SRAMBase {
		t.Errorf("first region at %#x", addr)
	}
	if again := b.BufferAddr(buf); again != addr {
		t.Errorf("buffer remapped: %#x != %#x", again, addr)
	}
	if sub := b.BufferAddr(buf[:4]); sub == addr {
		t.Error("shorter slice shares the region of the full buffer")
	}
	for _, tc := range []struct {
		addr uint32
		want uint32
		ok   bool
	}{
		{addr, 0x04030201, true},
		{addr + 4, 0x08070605, true},
		{addr + 8, 0, false}, // guard word
		{0x1000_0000, 0, false},
	} {
		v, ok := b.Load(tc.addr)
		if v != tc.want || ok != tc.ok {
			t.Errorf("Load(%#x) = %#x, %v; want %#x, %v", tc.addr, v, ok, tc.want, tc.ok)
		}
	}

	var w uint32 = 0xdeadbeef
	wa := b.WordAddr(&w)
	if v, ok := b.Load(wa); !ok || v != w {
		t.Errorf("word load %#x, %v", v, ok)
	}
	if !b.store(wa, 7) || w != 7 {
		t.Errorf("store through mapped word left %#x", w)
	}
}

func TestDMARegisterAliases(t *testing.T) {
	b := New()
	reg := b.DMAReadAddrReg(5)
	if reg != DMABase+5*0x40 {
		t.Fatalf("READ_ADDR of channel 5 at %#x", reg)
	}
	if !b.store(reg, 0x2000_0100) || b.DMA(5).ReadAddr != 0x2000_0100 {
		t.Error("store to READ_ADDR not applied")
	}
	// AL1_CTRL must not trigger.
	b.SetDMATransCount(5, 3)
	b.store(reg+dmaAl1CtrlOff, permanent(5))
	if b.DMA(5).Busy {
		t.Error("AL1_CTRL write triggered the channel")
	}
	b.store(reg+dmaCtrlTrigOff, permanent(5))
	if d := b.DMA(5); !d.Busy || d.Remaining != 3 {
		t.Errorf("CTRL_TRIG write: busy=%v remaining=%d", d.Busy, d.Remaining)
	}
	if v, _ := b.Load(reg + dmaTransCountOff); v != 3 {
		t.Errorf("TRANS_COUNT read %d, want remaining count 3", v)
	}
}

func TestDMATriggerBusyIgnored(t *testing.T) {
	b := New()
	src := wfg.NewBuffer(16)
	dst := wfg.NewBuffer(16)
	b.SetDMAReadAddr(0, b.BufferAddr(src))
	b.SetDMAWriteAddr(0, b.BufferAddr(dst))
	b.SetDMATransCount(0, 4)
	b.SetDMACtrlTrig(0, permanent(0))
	b.Run(1)
	b.SetDMATransCount(0, 100)
	b.SetDMACtrlTrig(0, permanent(0))
	if d := b.DMA(0); d.Remaining != 3 {
		t.Errorf("retrigger of busy channel reloaded the count: %d", d.Remaining)
	}
	b.Run(10)
	if d := b.DMA(0); d.Busy || d.Sequences != 1 {
		t.Errorf("busy=%v sequences=%d after one sequence", d.Busy, d.Sequences)
	}
	if b.Faults() != 0 {
		t.Errorf("%d faults", b.Faults())
	}
}

func TestDMACopyAndChain(t *testing.T) {
	b := New()
	src := wfg.NewBuffer(8)
	copy(src, "abcdefgh")
	dst := wfg.NewBuffer(8)

	b.SetDMAReadAddr(0, b.BufferAddr(src))
	b.SetDMAWriteAddr(0, b.BufferAddr(dst))
	b.SetDMATransCount(0, 2)
	b.SetDMACtrl(0, permanent(0)|1<<5) // write increment
	// Channel 1 copies nothing and chains to 0.
	b.SetDMATransCount(1, 0)
	b.SetDMACtrlTrig(1, permanent(0))
	b.Run(5)
	if string(dst) != "abcdefgh" {
		t.Errorf("dst = %q", dst)
	}
	if d := b.DMA(0); d.Busy || d.Sequences != 1 {
		t.Errorf("channel 0 busy=%v sequences=%d; chained to itself must stop", d.Busy, d.Sequences)
	}
	if d := b.DMA(1); d.Sequences != 1 {
		t.Errorf("channel 1 sequences=%d", d.Sequences)
	}
}

func TestDMAAbort(t *testing.T) {
	b := New()
	src := wfg.NewBuffer(16)
	dst := wfg.NewBuffer(16)
	b.SetDMAReadAddr(0, b.BufferAddr(src))
	b.SetDMAWriteAddr(0, b.BufferAddr(dst))
	b.SetDMATransCount(0, 4)
	b.SetDMACtrl(1, permanent(1))
	b.SetDMACtrlTrig(0, permanent(1))
	b.Run(1)
	b.AbortDMA(0)
	if d := b.DMA(0); d.Busy || d.Remaining != 0 || d.Sequences != 0 {
		t.Errorf("after abort busy=%v remaining=%d sequences=%d", d.Busy, d.Remaining, d.Sequences)
	}
	b.Run(10)
	if d := b.DMA(1); d.Busy || d.Sequences != 0 {
		t.Errorf("abort chained to channel 1: busy=%v sequences=%d", d.Busy, d.Sequences)
	}
	// A trigger after the abort reloads the count.
	b.SetDMATransCount(0, 2)
	b.SetDMACtrlTrig(0, permanent(0))
	if d := b.DMA(0); !d.Busy || d.Remaining != 2 {
		t.Errorf("retrigger after abort busy=%v remaining=%d, want 2", d.Busy, d.Remaining)
	}
	if b.Faults() != 0 {
		t.Errorf("%d faults", b.Faults())
	}
}

// startRing wires the same two channel loop the engine builds.
func startRing(b *Bus, sm, data, ctrl uint8, buf []byte, ptr *uint32) {
	*ptr = b.BufferAddr(buf)
	dataCtrl := 1 | 1<<1 | 2<<2 | 1<<4 | uint32(ctrl)<<11 | uint32(b.TxDREQ(sm))<<15 | 1<<21
	ctrlCtrl := 1 | 1<<1 | 2<<2 | uint32(data)<<11 | wfg.TreqPermanent<<15 | 1<<21

	b.SetDMAReadAddr(data, *ptr)
	b.SetDMAWriteAddr(data, b.TxFIFOAddr(sm))
	b.SetDMATransCount(data, uint32(len(buf)/4))
	b.SetDMACtrl(data, dataCtrl)
	b.SetDMAReadAddr(ctrl, b.WordAddr(ptr))
	b.SetDMAWriteAddr(ctrl, b.DMAReadAddrReg(data))
	b.SetDMATransCount(ctrl, 1)
	b.SetDMACtrlTrig(ctrl, ctrlCtrl)
}

func TestRingOutput(t *testing.T) {
	for _, tc := range []struct {
		name string
		div  wfg.Divider
		n    int
	}{
		{"full rate", wfg.DividerOne, 8},
		{"full rate long", wfg.DividerOne, 64},
		{"fractional", wfg.NewDivider(2, 128), 12},
		{"slow", wfg.NewDivider(31, 64), 16},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := New()
			buf := wfg.NewBuffer(tc.n)
			for i := range buf {
				buf[i] = uint8(0x10 + i)
			}
			var ptr uint32
			b.ConfigureTimingUnit(2, timing(tc.div))
			startRing(b, 2, 4, 5, buf, &ptr)
			// The state machine can tick once before the first word arrives.
			b.Run(64)
			b.ClearOutput(2)
			stalls := b.StateMachine(2).Stalls

			b.Run(uint64(40 * tc.n * int(tc.div.Whole())))
			s := b.StateMachine(2)
			if s.Stalls != stalls || s.Overflows != 0 || b.Faults() != 0 {
				t.Errorf("stalls=%d overflows=%d faults=%d", s.Stalls-stalls, s.Overflows, b.Faults())
			}
			out := b.Output(2)
			i := bytes.Index(out, buf)
			if i < 0 || i >= tc.n {
				t.Fatalf("buffer first seen at %d", i)
			}
			out = out[i:]
			if len(out) < 3*tc.n {
				t.Fatalf("only %d samples out", len(out))
			}
			want := bytes.Repeat(buf, len(out)/tc.n)
			if !bytes.Equal(out[:len(want)], want) {
				t.Errorf("output does not repeat the buffer LSB first:\n got % x\nwant % x", out[:2*tc.n], want[:2*tc.n])
			}
		})
	}
}

func TestRingBufferSwitch(t *testing.T) {
	b := New()
	var ptr uint32
	bufX := wfg.NewBuffer(32)
	for i := range bufX {
		bufX[i] = 0xa0 | uint8(i&0xf)
	}
	bufY := wfg.NewBuffer(32)
	for i := range bufY {
		bufY[i] = uint8(i)
	}
	b.ConfigureTimingUnit(0, timing(wfg.NewDivider(2, 0)))
	startRing(b, 0, 0, 1, bufX, &ptr)
	b.Run(1000)
	stalls := b.StateMachine(0).Stalls

	startRing(b, 0, 0, 1, bufY, &ptr)
	b.SetClkDiv(0, wfg.NewDivider(3, 0))
	b.ClkDivRestart(0)
	b.ClearOutput(0)
	b.Run(3000)

	s := b.StateMachine(0)
	if s.Stalls != stalls || b.Faults() != 0 {
		t.Errorf("stalls=%d faults=%d across switch", s.Stalls-stalls, b.Faults())
	}
	out := b.Output(0)
	// Words already queued in the FIFO drain first, then the data channel
	// finishes its current sequence from the start of bufY.
	i := bytes.Index(out, bufY)
	if i < 0 || i > 2*len(bufY) {
		t.Fatalf("bufY first seen at %d", i)
	}
	if bytes.Contains(out[i:], bufX[:4]) {
		t.Error("bufX samples after the switch completed")
	}
	rest := out[i:]
	want := bytes.Repeat(bufY, len(rest)/len(bufY))
	if !bytes.Equal(rest[:len(want)], want) {
		t.Errorf("output after switch does not loop bufY")
	}
	if s.Divider != wfg.NewDivider(3, 0) {
		t.Errorf("divider %v", s.Divider.Float())
	}
}

func TestClkDivRestart(t *testing.T) {
	var s stateMachine
	s.configure(timing(wfg.NewDivider(4, 0)))
	s.push(0x44332211)
	for i := 0; i < 3; i++ {
		s.step(0)
	}
	if s.ticks != 0 {
		t.Fatalf("ticked early")
	}
	// Restart zeroes the phase, so the next tick is a full period away.
	s.acc = 0
	for i := 0; i < 3; i++ {
		s.step(0)
	}
	if s.ticks != 0 {
		t.Errorf("tick before a full period after restart")
	}
	s.step(0)
	if s.ticks != 1 || s.pins != 0x11 {
		t.Errorf("ticks=%d pins=%#x", s.ticks, s.pins)
	}
}

func TestStateMachine(t *testing.T) {
	t.Run("fifo depth", func(t *testing.T) {
		var s stateMachine
		s.configure(wfg.TimingConfig{Divider: wfg.DividerOne})
		for i := 0; i < 5; i++ {
			s.push(uint32(i))
		}
		if len(s.fifo) != 4 || s.overflows != 1 {
			t.Errorf("unjoined FIFO level %d overflows %d", len(s.fifo), s.overflows)
		}
		s.configure(timing(wfg.DividerOne))
		for i := 0; i < 9; i++ {
			s.push(uint32(i))
		}
		if len(s.fifo) != 8 || s.overflows != 2 {
			t.Errorf("joined FIFO level %d overflows %d", len(s.fifo), s.overflows)
		}
	})
	t.Run("shift left", func(t *testing.T) {
		var s stateMachine
		cfg := timing(wfg.DividerOne)
		cfg.ShiftRight = false
		s.configure(cfg)
		s.push(0x44332211)
		var got []byte
		for i := 0; i < 4; i++ {
			s.tick(0)
			got = append(got, s.pins)
		}
		if !bytes.Equal(got, []byte{0x44, 0x33, 0x22, 0x11}) {
			t.Errorf("got % x", got)
		}
	})
	t.Run("stall", func(t *testing.T) {
		var s stateMachine
		s.configure(timing(wfg.DividerOne))
		s.tick(0)
		if s.stalls != 1 || s.ticks != 1 {
			t.Errorf("stalls=%d ticks=%d", s.stalls, s.ticks)
		}
	})
	t.Run("threshold", func(t *testing.T) {
		for in, want := range map[uint8]uint8{0: 32, 40: 32, 3: 8, 8: 8, 17: 16, 32: 32} {
			s := stateMachine{cfg: wfg.TimingConfig{PullThreshold: in}}
			if got := s.threshold(); got != want {
				t.Errorf("threshold(%d) = %d, want %d", in, got, want)
			}
		}
	})
	t.Run("history bound", func(t *testing.T) {
		var s stateMachine
		s.configure(wfg.TimingConfig{Divider: wfg.DividerOne, ShiftRight: true, PullThreshold: 8})
		for i := 0; i < 100; i++ {
			s.push(uint32(i))
			s.tick(10)
		}
		if len(s.history) > 10 || s.history[len(s.history)-1] != 99 {
			t.Errorf("history %v", s.history)
		}
	})
}

func TestWriteLog(t *testing.T) {
	b := New()
	b.SetClkDiv(1, wfg.NewDivider(2, 0))
	b.SetDMACtrl(7, 0)
	b.AbortDMA(3)
	w := b.Writes()
	if len(w) != 3 || w[0].Op != OpSetClkDiv || w[1].Op != OpDMACtrl || w[1].Index != 7 || w[2].Op != OpDMAAbort {
		t.Fatalf("writes %v", w)
	}
	if got := w[0].String(); got != "SM1 SM_CLKDIV=0x00020000" {
		t.Errorf("String() = %q", got)
	}
	if got := w[2].String(); got != "CH3 DMA_ABORT=0x00000000" {
		t.Errorf("String() = %q", got)
	}
	b.ResetWrites()
	if len(b.Writes()) != 0 {
		t.Error("ResetWrites left entries")
	}
}
