package core

// InterruptState is the saved global interrupt flag returned by Disable.
type InterruptState uintptr

// Interrupts controls the CPU's global interrupt enable (SREG.I on AVR).
type Interrupts interface {
	// Disable masks all interrupts and returns the previous state.
	Disable() InterruptState
	// Restore puts back a state returned by Disable.
	Restore(state InterruptState)
	// Enable unmasks interrupts unconditionally.
	Enable()
}

// Critical runs fn with interrupts disabled and then restores the previous
// state. Main-context code that touches anything a handler also writes must
// go through here once interrupts are on.
func Critical(irq Interrupts, fn func()) {
	state := irq.Disable()
	fn()
	irq.Restore(state)
}
