//go:build tinygo && avr

// digitalread copies the button on PD7 to the LED on PB5.
package main

import (
	"blink328/core"
)

const (
	buttonPin = 7 // PD7
	ledPin    = 5 // PB5
)

func main() {
	core.SetDebugWriter(func(s string) { println(s) })
	core.LogBoot("digitalread")

	in := core.MapPort(core.PortD)
	out := core.MapPort(core.PortB)

	in.DDR.ClearBits(1 << buttonPin)
	in.PORT.ClearBits(1 << buttonPin) // no pull-up: the button drives the line
	out.DDR.SetBits(1 << ledPin)
	out.PORT.ClearBits(1 << ledPin)

	for {
		core.MirrorStep(in.PIN, 1<<buttonPin, out.PORT, 1<<ledPin)
	}
}
