package sim

import "github.com/tinygo-org/uwfg/wfg"

type dmaChannel struct {
	readAddr   uint32
	writeAddr  uint32
	transCount uint32
	remaining  uint32
	ctrl       wfg.DMACtrl
	busy       bool
	sequences  uint64
}

// trigger starts a transfer sequence. Triggering a busy or disabled channel
// has no effect, as on hardware.
func (b *Bus) trigger(ch uint8) {
	d := &b.dma[ch]
	if d.busy || !d.ctrl.Enabled() {
		return
	}
	d.busy = true
	d.remaining = d.transCount
	if d.remaining == 0 {
		b.complete(ch)
	}
}

func (b *Bus) complete(ch uint8) {
	d := &b.dma[ch]
	d.busy = false
	d.sequences++
	if to := d.ctrl.ChainTo(); to != ch {
		b.trigger(to)
	}
}

// treqAsserted reports whether the transfer request pacing ch is high.
// Only PIO0 TX DREQs (0..3) and the permanent request are modelled.
func (b *Bus) treqAsserted(ch uint8) bool {
	treq := b.dma[ch].ctrl.TreqSel()
	switch {
	case treq == wfg.TreqPermanent:
		return true
	case treq < numStateMachines:
		return !b.sms[treq].full()
	}
	return false
}

func (b *Bus) stepDMA(ch uint8) {
	d := &b.dma[ch]
	if !d.busy || !b.treqAsserted(ch) {
		return
	}
	v, ok := b.Load(d.readAddr)
	if !ok {
		b.faults++
	}
	// The store may rewrite this channel's registers, so advance addresses
	// from the values used for this transfer.
	src, dst := d.readAddr, d.writeAddr
	if d.ctrl.IncrRead() {
		d.readAddr = src + d.ctrl.DataSize()
	}
	if d.ctrl.IncrWrite() {
		d.writeAddr = dst + d.ctrl.DataSize()
	}
	if !b.store(dst, v) {
		b.faults++
	}
	d.remaining--
	if d.remaining == 0 {
		b.complete(ch)
	}
}

type stateMachine struct {
	cfg       wfg.TimingConfig
	div       wfg.Divider
	enabled   bool
	acc       uint32
	fifo      []uint32
	osr       uint32
	osrBits   uint8
	pins      uint8
	ticks     uint64
	stalls    uint64
	overflows uint64
	history   []byte
}

// configure mirrors StateMachine.Init followed by SetEnabled(true): FIFOs
// cleared, shift counters reset, clock phase zeroed.
func (s *stateMachine) configure(cfg wfg.TimingConfig) {
	s.cfg = cfg
	s.div = cfg.Divider
	s.enabled = true
	s.acc = 0
	s.fifo = s.fifo[:0]
	s.osr = 0
	s.osrBits = 0
}

func (s *stateMachine) depth() int {
	if s.cfg.JoinTx {
		return 8
	}
	return 4
}

func (s *stateMachine) full() bool { return len(s.fifo) >= s.depth() }

func (s *stateMachine) push(v uint32) {
	if s.full() {
		s.overflows++
		return
	}
	s.fifo = append(s.fifo, v)
}

// period returns the divided clock period in 1/256 system clock cycles. An
// integer part of 0 means 65536.
func (s *stateMachine) period() uint32 {
	p := uint32(s.div.Whole())<<8 | uint32(s.div.Frac())
	if s.div.Whole() == 0 {
		p += 65536 << 8
	}
	return p
}

func (s *stateMachine) step(maxHistory int) {
	if !s.enabled {
		return
	}
	s.acc += 256
	if p := s.period(); s.acc >= p {
		s.acc -= p
		s.tick(maxHistory)
	}
}

// tick executes "out pins, 8" once, autopulling when the OSR is exhausted.
func (s *stateMachine) tick(maxHistory int) {
	s.ticks++
	if s.osrBits == 0 {
		if len(s.fifo) == 0 {
			s.stalls++
			return
		}
		s.osr = s.fifo[0]
		s.fifo = s.fifo[1:]
		s.osrBits = s.threshold()
	}
	if s.cfg.ShiftRight {
		s.pins = uint8(s.osr)
		s.osr >>= 8
	} else {
		s.pins = uint8(s.osr >> 24)
		s.osr <<= 8
	}
	s.osrBits -= 8
	if maxHistory > 0 {
		if len(s.history) >= maxHistory {
			n := copy(s.history, s.history[len(s.history)-maxHistory/2:])
			s.history = s.history[:n]
		}
		s.history = append(s.history, s.pins)
	}
}

// threshold returns the autopull threshold rounded down to whole bytes. A
// configured threshold of 0 means 32.
func (s *stateMachine) threshold() uint8 {
	t := s.cfg.PullThreshold
	if t == 0 || t > 32 {
		return 32
	}
	if t < 8 {
		return 8
	}
	return t &^ 7
}
