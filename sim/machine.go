package sim

import (
	"errors"
	"fmt"
	"time"

	"blink328/core"
)

// Interrupt vector numbers (ATmega328P, 1-based like the datasheet table
// minus RESET).
const (
	VectorTimer1CompA = 11
	VectorTimer1Ovf   = 13
)

// DefaultStormLimit bounds how many times interrupts may be dispatched
// without simulated time passing before the machine gives up.
const DefaultStormLimit = 1000

var (
	ErrRetriggerStorm = errors.New("sim: interrupt retriggered without time passing")
	ErrNoHandler      = errors.New("sim: interrupt raised with no handler attached")
)

// Machine is a single-core ATmega328 with Timer1 and GPIO ports.
//
// It implements core.Interrupts, so core code running in the "main"
// context can mask and unmask it. Handlers run to completion with the
// global flag cleared, exactly when an enabled source is flagged and
// interrupts are on: after a bus write, after Enable/Restore, or after
// time advances.
type Machine struct {
	ClockHz    uint32
	StormLimit int

	Bus    *Bus
	Timer1 *Timer1

	ports map[uintptr]*Port

	cycle      uint64
	i          bool // SREG.I
	inHandler  bool
	burst      int
	vectors    map[int]func()
	dispatched map[int]uint64
	fault      error
	sched      schedule
}

// NewMachine builds a machine with Timer1 and the given ports at the given
// addresses.
func NewMachine(clockHz uint32, timer core.Timer1Map, ports ...core.PortMap) *Machine {
	m := &Machine{
		ClockHz:    clockHz,
		StormLimit: DefaultStormLimit,
		ports:      make(map[uintptr]*Port),
		vectors:    make(map[int]func()),
		dispatched: make(map[int]uint64),
	}
	m.Bus = newBus(m.Cycle)
	m.Bus.onWrite = m.service

	m.Timer1 = newTimer1(timer)
	m.Timer1.mapInto(m.Bus)
	for _, pm := range ports {
		p := newPort(pm, m.Cycle)
		p.mapInto(m.Bus)
		m.ports[pm.PORT] = p
	}
	return m
}

// NewATmega328 builds a machine with the ATmega328P register layout.
func NewATmega328(clockHz uint32) *Machine {
	return NewMachine(clockHz, core.Timer1ATmega328P, core.PortB, core.PortC, core.PortD)
}

// Peripheral binds a core register set to this machine's bus.
func (m *Machine) Peripheral(r core.RegisterMap) *core.Peripheral {
	b := m.Bus
	return &core.Peripheral{
		TCNT1:  b.Reg16(r.Timer1.TCNT1),
		OCR1A:  b.Reg16(r.Timer1.OCR1A),
		TCCR1A: b.Reg8(r.Timer1.TCCR1A),
		TCCR1B: b.Reg8(r.Timer1.TCCR1B),
		TIMSK1: b.Reg8(r.Timer1.TIMSK1),
		TIFR1:  b.Reg8(r.Timer1.TIFR1),
		DDR:    b.Reg8(r.Port.DDR),
		PORT:   b.Reg8(r.Port.PORT),
	}
}

// GPIO binds a core port to this machine's bus.
func (m *Machine) GPIO(p core.PortMap) core.Port {
	return core.Port{PIN: m.Bus.Reg8(p.PIN), DDR: m.Bus.Reg8(p.DDR), PORT: m.Bus.Reg8(p.PORT)}
}

// Port returns the simulated port, or nil if none is mapped there.
func (m *Machine) Port(p core.PortMap) *Port {
	return m.ports[p.PORT]
}

// Attach binds h to an interrupt vector, replacing any previous handler.
func (m *Machine) Attach(vector int, h func()) {
	m.vectors[vector] = h
}

// Disable clears SREG.I and returns its previous value.
func (m *Machine) Disable() core.InterruptState {
	prev := m.i
	m.i = false
	if prev {
		return 1
	}
	return 0
}

// Restore sets SREG.I from a value returned by Disable.
func (m *Machine) Restore(state core.InterruptState) {
	m.i = state != 0
	m.service()
}

// Enable sets SREG.I.
func (m *Machine) Enable() {
	m.i = true
	m.service()
}

// InterruptsEnabled reports SREG.I.
func (m *Machine) InterruptsEnabled() bool { return m.i }

// InHandler reports whether an interrupt handler is running.
func (m *Machine) InHandler() bool { return m.inHandler }

// Dispatched returns how many times vector has been serviced.
func (m *Machine) Dispatched(vector int) uint64 { return m.dispatched[vector] }

// Cycle returns the current CPU cycle.
func (m *Machine) Cycle() uint64 { return m.cycle }

// Fault returns the error that stopped the machine, if any.
func (m *Machine) Fault() error { return m.fault }

// Time converts a cycle count into elapsed time.
func (m *Machine) Time(cycle uint64) time.Duration {
	if m.ClockHz == 0 {
		return 0
	}
	sec := cycle / uint64(m.ClockHz)
	rem := cycle % uint64(m.ClockHz)
	return time.Duration(sec)*time.Second + time.Duration(rem*uint64(time.Second)/uint64(m.ClockHz))
}

// Cycles converts a duration into CPU cycles.
func (m *Machine) Cycles(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	sec := uint64(d / time.Second)
	rem := uint64(d % time.Second)
	return sec*uint64(m.ClockHz) + rem*uint64(m.ClockHz)/uint64(time.Second)
}

// At schedules fn to run in the main context at cycle. Past cycles run at
// the next opportunity.
func (m *Machine) At(cycle uint64, fn func()) {
	m.Schedule(&Event{At: cycle, Handler: func(*Event) uint8 {
		fn()
		return EventDone
	}})
}

// Schedule adds a main-context event.
func (m *Machine) Schedule(e *Event) {
	if e.At < m.cycle {
		e.At = m.cycle
	}
	m.sched.insert(e)
}

// Run advances the machine by cycles CPU cycles, dispatching interrupts
// and scheduled events as they fall due.
func (m *Machine) Run(cycles uint64) error {
	end := m.cycle + cycles

	m.service()
	m.sched.dispatch(m.cycle)

	for m.fault == nil && m.cycle < end {
		next := end
		if at, ok := m.sched.next(); ok && at < next {
			next = max(at, m.cycle)
		}
		if d := m.Timer1.cyclesToTick(); d > 0 && m.cycle+d < next {
			next = m.cycle + d
		}

		m.Timer1.Step(next - m.cycle)
		if next > m.cycle {
			m.burst = 0
		}
		m.cycle = next

		m.service()
		m.sched.dispatch(m.cycle)
	}
	return m.fault
}

// RunFor advances the machine by d of simulated time.
func (m *Machine) RunFor(d time.Duration) error {
	return m.Run(m.Cycles(d))
}

// service dispatches pending interrupts until none remain.
func (m *Machine) service() {
	if m.fault != nil || m.inHandler {
		return
	}
	for m.i {
		v, ok := m.Timer1.pending()
		if !ok {
			return
		}
		if m.burst >= m.StormLimit {
			m.fault = fmt.Errorf("%w: vector %d at cycle %d", ErrRetriggerStorm, v, m.cycle)
			return
		}
		h := m.vectors[v]
		if h == nil {
			m.fault = fmt.Errorf("%w: vector %d", ErrNoHandler, v)
			return
		}

		m.burst++
		m.i = false
		m.inHandler = true
		h()
		m.inHandler = false
		m.i = true // RETI
		m.dispatched[v]++
	}
}
