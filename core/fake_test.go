package core

// In-memory registers that log every access in order.

type access struct {
	reg   string
	write bool
	value uint16
}

type recorder struct {
	log []access
}

func (r *recorder) add(reg string, write bool, v uint16) {
	r.log = append(r.log, access{reg: reg, write: write, value: v})
}

// firstWrite returns the index of the first write to reg, or -1.
func (r *recorder) firstWrite(reg string) int {
	for i, a := range r.log {
		if a.write && a.reg == reg {
			return i
		}
	}
	return -1
}

// lastWrite returns the index of the last write to reg, or -1.
func (r *recorder) lastWrite(reg string) int {
	idx := -1
	for i, a := range r.log {
		if a.write && a.reg == reg {
			idx = i
		}
	}
	return idx
}

func (r *recorder) writes(reg string) []uint16 {
	var out []uint16
	for _, a := range r.log {
		if a.write && a.reg == reg {
			out = append(out, a.value)
		}
	}
	return out
}

type fakeReg8 struct {
	name string
	v    uint8
	w1c  bool // writing 1 clears the bit, like TIFR1
	rec  *recorder
}

func (r *fakeReg8) Get() uint8 {
	r.rec.add(r.name, false, uint16(r.v))
	return r.v
}

func (r *fakeReg8) Set(v uint8) {
	r.rec.add(r.name, true, uint16(v))
	if r.w1c {
		r.v &^= v
		return
	}
	r.v = v
}

func (r *fakeReg8) SetBits(m uint8)      { r.Set(r.Get() | m) }
func (r *fakeReg8) ClearBits(m uint8)    { r.Set(r.Get() &^ m) }
func (r *fakeReg8) HasBits(m uint8) bool { return r.Get()&m != 0 }

type fakeReg16 struct {
	name string
	v    uint16
	rec  *recorder
}

func (r *fakeReg16) Get() uint16 {
	r.rec.add(r.name, false, r.v)
	return r.v
}

func (r *fakeReg16) Set(v uint16) {
	r.rec.add(r.name, true, v)
	r.v = v
}

// fakeIRQ logs global interrupt changes as writes to "SREG.I".
type fakeIRQ struct {
	on       bool
	disables int
	restores int
	rec      *recorder
}

func (i *fakeIRQ) Disable() InterruptState {
	i.disables++
	prev := InterruptState(0)
	if i.on {
		prev = 1
	}
	i.rec.add("SREG.I", true, 0)
	i.on = false
	return prev
}

func (i *fakeIRQ) Restore(s InterruptState) {
	i.restores++
	i.rec.add("SREG.I", true, uint16(s))
	i.on = s != 0
}

func (i *fakeIRQ) Enable() {
	i.rec.add("SREG.I", true, 1)
	i.on = true
}

type bench struct {
	rec recorder

	tcnt1, ocr1a fakeReg16
	tccr1a       fakeReg8
	tccr1b       fakeReg8
	timsk1       fakeReg8
	tifr1        fakeReg8
	ddr          fakeReg8
	port         fakeReg8
	irq          fakeIRQ
}

func newBench() *bench {
	b := &bench{}
	b.tcnt1 = fakeReg16{name: "TCNT1", rec: &b.rec}
	b.ocr1a = fakeReg16{name: "OCR1A", rec: &b.rec}
	b.tccr1a = fakeReg8{name: "TCCR1A", rec: &b.rec}
	b.tccr1b = fakeReg8{name: "TCCR1B", rec: &b.rec}
	b.timsk1 = fakeReg8{name: "TIMSK1", rec: &b.rec}
	b.tifr1 = fakeReg8{name: "TIFR1", w1c: true, rec: &b.rec}
	b.ddr = fakeReg8{name: "DDRB", rec: &b.rec}
	b.port = fakeReg8{name: "PORTB", rec: &b.rec}
	b.irq = fakeIRQ{on: true, rec: &b.rec}
	return b
}

func (b *bench) peripheral() *Peripheral {
	return &Peripheral{
		TCNT1:  &b.tcnt1,
		OCR1A:  &b.ocr1a,
		TCCR1A: &b.tccr1a,
		TCCR1B: &b.tccr1b,
		TIMSK1: &b.timsk1,
		TIFR1:  &b.tifr1,
		DDR:    &b.ddr,
		PORT:   &b.port,
	}
}

var uno = Config{
	PeriodMs:    1000,
	ClockHz:     4_000_000,
	Prescaler:   Prescale256,
	Pin:         5,
	InitialHigh: true,
}
