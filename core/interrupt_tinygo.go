//go:build tinygo && avr

package core

import (
	"device/avr"
	"runtime/interrupt"
)

type cpuInterrupts struct{}

// CPU is the AVR global interrupt flag.
var CPU Interrupts = cpuInterrupts{}

func (cpuInterrupts) Disable() InterruptState {
	return InterruptState(interrupt.Disable())
}

func (cpuInterrupts) Restore(state InterruptState) {
	interrupt.Restore(interrupt.State(state))
}

func (cpuInterrupts) Enable() {
	avr.Asm("sei")
}
