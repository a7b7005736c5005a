//go:build tinygo && avr

package core

import (
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"
)

func reg8(addr uintptr) *volatile.Register8 {
	return (*volatile.Register8)(unsafe.Pointer(addr))
}

// word16 is a 16-bit Timer1 register. Both halves go through the shared
// TEMP latch: the high byte is written first and read last, with interrupts
// off so a handler cannot reuse TEMP in between.
type word16 struct {
	lo, hi *volatile.Register8
}

func (w word16) Get() uint16 {
	state := interrupt.Disable()
	lo := w.lo.Get()
	hi := w.hi.Get()
	interrupt.Restore(state)
	return uint16(hi)<<8 | uint16(lo)
}

func (w word16) Set(value uint16) {
	state := interrupt.Disable()
	w.hi.Set(uint8(value >> 8))
	w.lo.Set(uint8(value))
	interrupt.Restore(state)
}

func reg16(addr uintptr) word16 {
	return word16{lo: reg8(addr), hi: reg8(addr + 1)}
}

// MapPeripheral binds the registers at the addresses in m.
func MapPeripheral(m RegisterMap) *Peripheral {
	return &Peripheral{
		TCNT1:  reg16(m.Timer1.TCNT1),
		OCR1A:  reg16(m.Timer1.OCR1A),
		TCCR1A: reg8(m.Timer1.TCCR1A),
		TCCR1B: reg8(m.Timer1.TCCR1B),
		TIMSK1: reg8(m.Timer1.TIMSK1),
		TIFR1:  reg8(m.Timer1.TIFR1),
		DDR:    reg8(m.Port.DDR),
		PORT:   reg8(m.Port.PORT),
	}
}

// MapPort binds a GPIO port.
func MapPort(m PortMap) Port {
	return Port{PIN: reg8(m.PIN), DDR: reg8(m.DDR), PORT: reg8(m.PORT)}
}
