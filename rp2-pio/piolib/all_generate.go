package piolib

import (
	"errors"
	"math"
	"runtime"
)

const timeoutRetries = math.MaxUint16 * 8

var (
	errDMAUnavail   = errors.New("piolib:DMA channel unavailable")
	errSMUnavail    = errors.New("piolib:state machine unavailable")
	errBadWaveOutSM = errors.New("piolib:state machine index out of range")
)

const badDMAChannel = "piolib: invalid DMA channel"

//go:generate pioasm -o go wfgout.pio wfgout_pio.go

func gosched() {
	runtime.Gosched()
}
