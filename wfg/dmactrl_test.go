package wfg

import "testing"

func TestRingControlWords(t *testing.T) {
	// PIO0 TX DREQ n is n; channel A uses DMA 0/1 on SM0, B uses DMA 2/3 on SM1.
	a := ring{sm: 0, data: 0, ctrl: 1}
	b := ring{sm: 1, data: 2, ctrl: 3}
	for _, tc := range []struct {
		name string
		got  uint32
		want uint32
	}{
		{"A data", a.dataConfig(0).CTRL, 0x0020081b},
		{"A ctrl", a.ctrlConfig().CTRL, 0x003f800b},
		{"B data", b.dataConfig(1).CTRL, 0x0020981b},
		{"B ctrl", b.ctrlConfig().CTRL, 0x003f900b},
	} {
		if tc.got != tc.want {
			t.Errorf("%s: CTRL %#08x, want %#08x", tc.name, tc.got, tc.want)
		}
	}
}

func TestDMACtrlDecode(t *testing.T) {
	r := ring{sm: 1, data: 2, ctrl: 3}
	data := DMACtrl(r.dataConfig(1).CTRL)
	if !data.Enabled() || !data.HighPriority() || !data.IRQQuiet() {
		t.Error("data channel must be enabled, high priority and quiet")
	}
	if !data.IncrRead() || data.IncrWrite() {
		t.Error("data channel must increment reads only")
	}
	if data.DataSize() != 4 {
		t.Errorf("data size %d, want 4", data.DataSize())
	}
	if data.ChainTo() != 3 || data.TreqSel() != 1 {
		t.Errorf("data chain %d treq %d, want 3 and 1", data.ChainTo(), data.TreqSel())
	}

	ctrl := DMACtrl(r.ctrlConfig().CTRL)
	if ctrl.IncrRead() || ctrl.IncrWrite() {
		t.Error("control channel must not increment")
	}
	if ctrl.ChainTo() != 2 || ctrl.TreqSel() != TreqPermanent {
		t.Errorf("control chain %d treq %#x, want 2 and %#x", ctrl.ChainTo(), ctrl.TreqSel(), TreqPermanent)
	}
}

func TestDMAConfigSetters(t *testing.T) {
	var cc dmaConfig
	cc.setRing(true, 4)
	if cc.CTRL != 1<<dmaCtrlRingSel|4<<dmaCtrlRingSizePos {
		t.Errorf("ring: %#x", cc.CTRL)
	}
	cc.setRing(false, 0)
	cc.setBSwap(true)
	cc.setSniffEnable(true)
	if cc.CTRL != 1<<dmaCtrlBSwap|1<<dmaCtrlSniffEN {
		t.Errorf("bswap+sniff: %#x", cc.CTRL)
	}
	cc.setTransferDataSize(dmaTxSize16)
	if DMACtrl(cc.CTRL).DataSize() != 2 {
		t.Errorf("data size %d, want 2", DMACtrl(cc.CTRL).DataSize())
	}
}
