//go:build tinygo && avr

// blink toggles PB5 once a second from the Timer1 compare-match interrupt.
package main

import (
	"blink328/core"
)

// Timer1 runs from the 4 MHz system clock. Rebuild with clockHz = 16000000
// for a stock Arduino Uno.
const (
	clockHz   = 4000000
	prescaler = 256
	periodMs  = 1000
	ledPin    = 5 // PB5

	threshold = (clockHz*periodMs/1000+prescaler/2)/prescaler - 1
)

// Fails to compile when the period does not fit OCR1A.
const _ uint16 = threshold

func main() {
	core.SetDebugWriter(func(s string) { println(s) })
	core.LogBoot("blink")

	b, err := core.New(core.MapPeripheral(core.ATmega328P), core.CPU, core.Config{
		PeriodMs:    periodMs,
		ClockHz:     clockHz,
		Prescaler:   prescaler,
		Pin:         ledPin,
		InitialHigh: true,
	})
	if err != nil {
		core.LogConfigError(err)
		for {
		}
	}

	core.BindCompareMatchA(b)
	b.Arm()
	core.LogArmed(b)

	// All work happens in the handler.
	for {
	}
}
