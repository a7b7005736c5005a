//go:build tinygo && avr

// digitalwrite drives PB5 high, then low, and stops.
package main

import (
	"blink328/core"
)

const ledPin = 5 // PB5

func main() {
	core.SetDebugWriter(func(s string) { println(s) })
	core.LogBoot("digitalwrite")

	led := core.MapPort(core.PortB)
	led.DDR.SetBits(1 << ledPin)
	led.PORT.SetBits(1 << ledPin)
	led.PORT.ClearBits(1 << ledPin)

	for {
	}
}
