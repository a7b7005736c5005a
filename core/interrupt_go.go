//go:build !(tinygo && avr)

package core

type cpuInterrupts struct{}

// CPU is a no-op on regular Go. Host code that needs real interrupt
// behaviour uses the simulator's Machine instead.
var CPU Interrupts = cpuInterrupts{}

func (cpuInterrupts) Disable() InterruptState { return 0 }

func (cpuInterrupts) Restore(state InterruptState) {}

func (cpuInterrupts) Enable() {}
