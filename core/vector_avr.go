//go:build tinygo && avr

package core

import (
	"device/avr"
	"runtime/interrupt"
)

var compareMatchA *Blinker

// BindCompareMatchA installs b as the TIMER1_COMPA handler.
// It must be called once, before b.Arm.
func BindCompareMatchA(b *Blinker) {
	compareMatchA = b
	interrupt.New(avr.IRQ_TIMER1_COMPA, func(interrupt.Interrupt) {
		compareMatchA.OnCompareMatch()
	})
}
