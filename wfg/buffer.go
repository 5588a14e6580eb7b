package wfg

import (
	"errors"
	"math"
	"unsafe"
)

// Waveform is one period of output samples and the rate at which the whole
// buffer repeats.
//
// The engine keeps a reference to Samples for as long as the channel plays
// it: the hardware reads the buffer continuously. Do not modify or reuse a
// buffer until another Waveform has been played on that channel.
type Waveform struct {
	// Samples are output one byte per divided clock tick. The length must be
	// a positive multiple of 4 and the slice must be 4-byte aligned, since the
	// DMA moves whole words. Use NewBuffer to allocate one.
	Samples []byte
	// Frequency is the number of times per second the whole buffer is played.
	Frequency float64
}

// Waveform errors, returned by Validate for callers that range check requests
// before handing them to the engine.
var (
	ErrChannel   = errors.New("wfg: invalid channel")
	ErrLength    = errors.New("wfg: sample count must be a positive multiple of 4")
	ErrFrequency = errors.New("wfg: frequency must be positive and finite")
	ErrAlignment = errors.New("wfg: sample buffer not word aligned")
)

// Validate checks a play request the way the engine expects callers to.
func Validate(ch Channel, w Waveform) error {
	if ch >= NumChannels {
		return ErrChannel
	}
	n := len(w.Samples)
	if n == 0 || n%4 != 0 {
		return ErrLength
	}
	if uintptr(unsafe.Pointer(&w.Samples[0]))%4 != 0 {
		return ErrAlignment
	}
	if !(w.Frequency > 0) || math.IsInf(w.Frequency, 0) {
		return ErrFrequency
	}
	return nil
}

// NewBuffer allocates a word aligned sample buffer of n bytes, rounded up to
// a multiple of 4.
func NewBuffer(n int) []byte {
	if n <= 0 {
		return nil
	}
	words := make([]uint32, (n+3)/4)
	return WordBytes(words)
}

// WordBytes returns the bytes backing words, in memory order. On the
// little-endian RP2040 the first byte of a word is its least significant.
func WordBytes(words []uint32) []byte {
	if len(words) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), 4*len(words))
}
