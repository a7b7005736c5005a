// Package sim models the parts of an ATmega328 the blinker programs touch:
// the I/O data space, Timer/Counter1, GPIO ports and the global interrupt
// flag. It lets host tests and tools run the real core code against
// registers that behave like the hardware, including side effects on read
// and write.
package sim

import (
	"fmt"

	"blink328/core"
)

// DataSpaceSize covers the register file, I/O and extended I/O space.
const DataSpaceSize = core.IOSpaceEnd

// Device is a peripheral mapped at one or more data-space addresses.
type Device interface {
	Read(addr uint16) uint8
	Write(addr uint16, v uint8)
}

// Access is one bus transaction.
type Access struct {
	Cycle uint64
	Write bool
	Addr  uint16
	Value uint8
}

// Bus is the 8-bit data space. Addresses without a device behave as plain
// storage.
type Bus struct {
	devices [DataSpaceSize]Device
	plain   [DataSpaceSize]uint8

	record bool
	log    []Access

	now     func() uint64
	onWrite func()
}

func newBus(now func() uint64) *Bus {
	return &Bus{now: now}
}

// Map attaches d at addr. Mapping outside the data space or over another
// device is a wiring bug and panics.
func (b *Bus) Map(addr uint16, d Device) {
	if addr >= DataSpaceSize {
		panic(fmt.Sprintf("sim: address %#x outside the data space", addr))
	}
	if prev := b.devices[addr]; prev != nil && prev != d {
		panic(fmt.Sprintf("sim: address %#x already mapped", addr))
	}
	b.devices[addr] = d
}

// Record turns the access log on or off. Turning it on clears it.
func (b *Bus) Record(on bool) {
	b.record = on
	b.log = nil
}

// Accesses returns the recorded transactions in order.
func (b *Bus) Accesses() []Access {
	return b.log
}

func (b *Bus) Read(addr uint16) uint8 {
	var v uint8
	if d := b.devices[addr]; d != nil {
		v = d.Read(addr)
	} else {
		v = b.plain[addr]
	}
	if b.record {
		b.log = append(b.log, Access{Cycle: b.now(), Addr: addr, Value: v})
	}
	return v
}

func (b *Bus) Write(addr uint16, v uint8) {
	if b.record {
		b.log = append(b.log, Access{Cycle: b.now(), Write: true, Addr: addr, Value: v})
	}
	if d := b.devices[addr]; d != nil {
		d.Write(addr, v)
	} else {
		b.plain[addr] = v
	}
	if b.onWrite != nil {
		b.onWrite()
	}
}

// Reg8 returns a register view of addr.
func (b *Bus) Reg8(addr uintptr) core.Register8 {
	return &busReg8{bus: b, addr: uint16(addr)}
}

// Reg16 returns a 16-bit register view whose low byte is at addr. Like the
// AVR compiler it writes the high byte first and reads the low byte first,
// so the Timer1 TEMP latch sees the right order.
func (b *Bus) Reg16(addr uintptr) core.Register16 {
	return &busReg16{bus: b, lo: uint16(addr), hi: uint16(addr) + 1}
}

type busReg8 struct {
	bus  *Bus
	addr uint16
}

func (r *busReg8) Get() uint8           { return r.bus.Read(r.addr) }
func (r *busReg8) Set(v uint8)          { r.bus.Write(r.addr, v) }
func (r *busReg8) SetBits(m uint8)      { r.Set(r.Get() | m) }
func (r *busReg8) ClearBits(m uint8)    { r.Set(r.Get() &^ m) }
func (r *busReg8) HasBits(m uint8) bool { return r.Get()&m != 0 }

type busReg16 struct {
	bus    *Bus
	lo, hi uint16
}

func (r *busReg16) Get() uint16 {
	lo := r.bus.Read(r.lo)
	hi := r.bus.Read(r.hi)
	return uint16(hi)<<8 | uint16(lo)
}

func (r *busReg16) Set(v uint16) {
	r.bus.Write(r.hi, uint8(v>>8))
	r.bus.Write(r.lo, uint8(v))
}
