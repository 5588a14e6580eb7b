package wave

import (
	"math"

	"github.com/tinygo-org/uwfg/wfg"
)

// Built-in sample tables, each one period and word aligned so they can be
// played directly.
var (
	Sine16  = sineTable(16)
	Sine64  = sineTable(64)
	Sine256 = sineTable(256)
	Saw256  = sawTable(256)
	Block16 = blockTable(16)
)

// sineSample returns sample i of an n sample sine period centred on 128.
func sineSample(i, n int) uint8 {
	return uint8(128 + 127.5*math.Sin(2*math.Pi*float64(i)/float64(n)))
}

func sineTable(n int) []byte {
	buf := wfg.NewBuffer(n)
	for i := range buf {
		buf[i] = sineSample(i, n)
	}
	return buf
}

func sawTable(n int) []byte {
	buf := wfg.NewBuffer(n)
	for i := range buf {
		buf[i] = uint8(i * 256 / n)
	}
	return buf
}

// blockTable is low for the first half and high for the second.
func blockTable(n int) []byte {
	buf := wfg.NewBuffer(n)
	for i := n / 2; i < n; i++ {
		buf[i] = 0xff
	}
	return buf
}
