package sim

import (
	"encoding/binary"
	"unsafe"
)

// Simulated address map, laid out like the RP2040's.
const (
	SRAMBase = 0x2000_0000
	DMABase  = 0x5000_0000
	PIO0Base = 0x5020_0000

	dmaChannelStride = 0x40
	dmaReadAddrOff   = 0x00
	dmaWriteAddrOff  = 0x04
	dmaTransCountOff = 0x08
	dmaCtrlTrigOff   = 0x0c
	dmaAl1CtrlOff    = 0x10
	pioTXF0Off       = 0x10
)

// region is host memory mapped into the simulated address space: either a
// byte buffer or a single word.
type region struct {
	addr uint32
	buf  []byte
	word *uint32
}

func (r *region) size() uint32 {
	if r.word != nil {
		return 4
	}
	return uint32(len(r.buf))
}

func (r *region) contains(addr uint32) bool {
	return addr >= r.addr && addr+4 <= r.addr+r.size()
}

func (r *region) load(addr uint32) uint32 {
	if r.word != nil {
		return *r.word
	}
	return binary.LittleEndian.Uint32(r.buf[addr-r.addr:])
}

func (r *region) store(addr, v uint32) {
	if r.word != nil {
		*r.word = v
		return
	}
	binary.LittleEndian.PutUint32(r.buf[addr-r.addr:], v)
}

// mapBuffer returns the address of buf, mapping it on first use. A slice
// sharing memory with a mapped one but of another length gets its own range.
func (b *Bus) mapBuffer(buf []byte) uint32 {
	if len(buf) == 0 {
		panic("sim: empty buffer")
	}
	p := unsafe.Pointer(&buf[0])
	for i := range b.mem {
		r := &b.mem[i]
		if len(r.buf) == len(buf) && unsafe.Pointer(&r.buf[0]) == p {
			return r.addr
		}
	}
	return b.mapRegion(region{buf: buf})
}

// mapWord returns the address of w, mapping it on first use.
func (b *Bus) mapWord(w *uint32) uint32 {
	for i := range b.mem {
		if b.mem[i].word == w {
			return b.mem[i].addr
		}
	}
	return b.mapRegion(region{word: w})
}

func (b *Bus) mapRegion(r region) uint32 {
	r.addr = b.next
	// Keep a guard word between regions so overruns fault.
	b.next += (r.size()+3)&^3 + 4
	b.mem = append(b.mem, r)
	return r.addr
}

func (b *Bus) findRegion(addr uint32) *region {
	for i := range b.mem {
		if b.mem[i].contains(addr) {
			return &b.mem[i]
		}
	}
	return nil
}

// Load reads the word at a simulated address. ok is false for unmapped
// addresses.
func (b *Bus) Load(addr uint32) (v uint32, ok bool) {
	if ch, off, isDMA := dmaRegister(addr); isDMA {
		d := &b.dma[ch]
		switch off {
		case dmaReadAddrOff:
			return d.readAddr, true
		case dmaWriteAddrOff:
			return d.writeAddr, true
		case dmaTransCountOff:
			return d.remaining, true
		case dmaCtrlTrigOff, dmaAl1CtrlOff:
			return uint32(d.ctrl), true
		}
		return 0, false
	}
	if r := b.findRegion(addr); r != nil {
		return r.load(addr), true
	}
	return 0, false
}

// store performs a bus write issued by a DMA channel.
func (b *Bus) store(addr, v uint32) bool {
	if ch, off, isDMA := dmaRegister(addr); isDMA {
		d := &b.dma[ch]
		switch off {
		case dmaReadAddrOff:
			d.readAddr = v
		case dmaWriteAddrOff:
			d.writeAddr = v
		case dmaTransCountOff:
			d.transCount = v
		case dmaCtrlTrigOff:
			d.ctrl = ctrlWord(v)
			b.trigger(ch)
		case dmaAl1CtrlOff:
			d.ctrl = ctrlWord(v)
		default:
			return false
		}
		return true
	}
	if sm, isFIFO := txFIFORegister(addr); isFIFO {
		b.sms[sm].push(v)
		return true
	}
	if r := b.findRegion(addr); r != nil {
		r.store(addr, v)
		return true
	}
	return false
}

func dmaRegister(addr uint32) (ch uint8, off uint32, ok bool) {
	if addr < DMABase || addr >= DMABase+numDMAChannels*dmaChannelStride {
		return 0, 0, false
	}
	rel := addr - DMABase
	return uint8(rel / dmaChannelStride), rel % dmaChannelStride, true
}

func txFIFORegister(addr uint32) (sm uint8, ok bool) {
	start := uint32(PIO0Base + pioTXF0Off)
	if addr < start || addr >= start+4*numStateMachines || addr%4 != 0 {
		return 0, false
	}
	return uint8((addr - start) / 4), true
}
