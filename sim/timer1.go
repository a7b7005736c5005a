package sim

import "blink328/core"

// Timer1 models the 16-bit Timer/Counter1 in normal and CTC (WGM12) modes.
//
// TCNT1 and OCR1A share one TEMP latch for their high bytes: writing the
// high byte only fills TEMP and writing the low byte commits both; reading
// the low byte of TCNT1 copies its high byte into TEMP for the next read.
// TIFR1 flags are cleared by writing a one.
type Timer1 struct {
	addrs core.Timer1Map

	tcnt  uint16
	ocr1a uint16
	temp  uint8

	tccr1a uint8
	tccr1b uint8
	timsk1 uint8
	tifr1  uint8

	acc          uint64 // CPU cycles towards the next timer tick
	blockCompare bool   // a TCNT1 write suppresses the next compare match
}

func newTimer1(addrs core.Timer1Map) *Timer1 {
	return &Timer1{addrs: addrs}
}

func (t *Timer1) mapInto(b *Bus) {
	a := t.addrs
	for _, addr := range []uintptr{
		a.TCNT1, a.TCNT1 + 1,
		a.OCR1A, a.OCR1A + 1,
		a.TCCR1A, a.TCCR1B, a.TIMSK1, a.TIFR1,
	} {
		b.Map(uint16(addr), t)
	}
}

func (t *Timer1) Read(addr uint16) uint8 {
	a := t.addrs
	switch uintptr(addr) {
	case a.TCNT1:
		t.temp = uint8(t.tcnt >> 8)
		return uint8(t.tcnt)
	case a.TCNT1 + 1:
		return t.temp
	case a.OCR1A:
		return uint8(t.ocr1a)
	case a.OCR1A + 1:
		return uint8(t.ocr1a >> 8)
	case a.TCCR1A:
		return t.tccr1a
	case a.TCCR1B:
		return t.tccr1b
	case a.TIMSK1:
		return t.timsk1
	case a.TIFR1:
		return t.tifr1
	}
	return 0
}

func (t *Timer1) Write(addr uint16, v uint8) {
	a := t.addrs
	switch uintptr(addr) {
	case a.TCNT1 + 1, a.OCR1A + 1:
		t.temp = v
	case a.TCNT1:
		t.tcnt = uint16(t.temp)<<8 | uint16(v)
		t.blockCompare = true
	case a.OCR1A:
		t.ocr1a = uint16(t.temp)<<8 | uint16(v)
	case a.TCCR1A:
		t.tccr1a = v
	case a.TCCR1B:
		t.tccr1b = v
	case a.TIMSK1:
		t.timsk1 = v
	case a.TIFR1:
		t.tifr1 &^= v
	}
}

// Divisor returns the CPU cycles per timer tick, or 0 when the clock is
// stopped (or fed from the external T1 pin, which is not modelled).
func (t *Timer1) Divisor() uint64 {
	switch t.tccr1b & 0b111 {
	case 1:
		return 1
	case 2:
		return 8
	case 3:
		return 64
	case 4:
		return 256
	case 5:
		return 1024
	}
	return 0
}

// cyclesToTick returns how many CPU cycles remain before the next tick,
// or 0 when stopped.
func (t *Timer1) cyclesToTick() uint64 {
	d := t.Divisor()
	if d == 0 {
		return 0
	}
	return d - t.acc
}

// Step advances the timer by cycles CPU cycles.
func (t *Timer1) Step(cycles uint64) {
	d := t.Divisor()
	if d == 0 {
		return
	}
	t.acc += cycles
	for t.acc >= d {
		t.acc -= d
		t.tick()
	}
}

func (t *Timer1) ctc() bool {
	return t.tccr1b&(1<<core.WGM12) != 0
}

// tick is one prescaled timer clock. A match is flagged on the clock that
// leaves TCNT1 == OCR1A, the same clock that clears the counter in CTC
// mode, so the period is OCR1A+1 ticks.
func (t *Timer1) tick() {
	if t.tcnt == t.ocr1a && !t.blockCompare {
		t.tifr1 |= 1 << core.OCF1A
	}
	t.blockCompare = false

	switch {
	case t.ctc() && t.tcnt == t.ocr1a:
		t.tcnt = 0
	case t.tcnt == 0xFFFF:
		t.tcnt = 0
		if !t.ctc() {
			t.tifr1 |= 1 << core.TOV1
		}
	default:
		t.tcnt++
	}
}

// pending returns the highest-priority enabled and flagged vector.
func (t *Timer1) pending() (int, bool) {
	active := t.timsk1 & t.tifr1
	switch {
	case active&(1<<core.OCIE1A) != 0:
		return VectorTimer1CompA, true
	case active&(1<<core.TOIE1) != 0:
		return VectorTimer1Ovf, true
	}
	return 0, false
}

// Counter returns TCNT1 without touching the TEMP latch.
func (t *Timer1) Counter() uint16 { return t.tcnt }

// Compare returns OCR1A.
func (t *Timer1) Compare() uint16 { return t.ocr1a }

// Flags returns TIFR1.
func (t *Timer1) Flags() uint8 { return t.tifr1 }
