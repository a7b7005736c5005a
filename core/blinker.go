package core

// Config describes one blinker.
type Config struct {
	PeriodMs    uint32    // time between toggles
	ClockHz     uint32    // Timer1 input clock before the prescaler
	Prescaler   Prescaler // Timer1 clock divider
	Pin         uint8     // bit within the output port
	InitialHigh bool      // level driven before interrupts are enabled
}

// Blinker toggles one output bit from the Timer1 compare-match A interrupt.
//
// Ownership of the output bit is split by phase: before Arm enables the
// interrupt only the main context writes it; afterwards the handler does,
// and main-context writes go through SetLevel, which masks interrupts.
type Blinker struct {
	regs        *Peripheral
	irq         Interrupts
	cfg         Config
	mask        uint8
	threshold   uint16
	clockSelect uint8
	trace       *EdgeTrace

	// handler-owned
	fired uint32
}

// New validates cfg and binds it to regs. It does not touch the hardware.
func New(regs *Peripheral, irq Interrupts, cfg Config) (*Blinker, error) {
	if cfg.Pin > 7 {
		return nil, &ConfigError{
			Op:        "new blinker",
			PeriodMs:  cfg.PeriodMs,
			ClockHz:   cfg.ClockHz,
			Prescaler: cfg.Prescaler,
			Err:       ErrInvalidPin,
		}
	}
	threshold, err := ConfigurePeriod(cfg.PeriodMs, cfg.ClockHz, cfg.Prescaler)
	if err != nil {
		return nil, err
	}
	cs, _ := cfg.Prescaler.ClockSelect()
	return &Blinker{
		regs:        regs,
		irq:         irq,
		cfg:         cfg,
		mask:        1 << cfg.Pin,
		threshold:   threshold,
		clockSelect: cs,
	}, nil
}

// SetTrace makes the handler record every edge into t. Call before Arm.
func (b *Blinker) SetTrace(t *EdgeTrace) { b.trace = t }

// Arm programs Timer1 in CTC mode and enables the compare-match interrupt.
// The handler must already be bound to the vector.
//
// The threshold and pending flag are in a known state, and the initial
// level is on the pin, before the interrupt source is unmasked; global
// interrupts come back on last.
func (b *Blinker) Arm() {
	r := b.regs

	r.TCCR1B.Set(0) // stop the clock while programming
	r.TCCR1A.Set(0)
	r.TCNT1.Set(0)
	r.OCR1A.Set(b.threshold)
	r.TIFR1.Set(1 << OCF1A) // write-one-to-clear, other flags untouched

	// WGM12: clear the counter on match so the period is threshold+1 ticks.
	r.TCCR1B.Set(1<<WGM12 | b.clockSelect)

	r.DDR.SetBits(b.mask)
	if b.cfg.InitialHigh {
		r.PORT.SetBits(b.mask)
	} else {
		r.PORT.ClearBits(b.mask)
	}

	b.irq.Disable()
	r.TIMSK1.Set(1 << OCIE1A)
	b.irq.Enable()
}

// OnCompareMatch is the TIMER1_COMPA handler. It flips the output bit and
// then clears OCF1A; both steps always run. It does not allocate and does
// not stop the counter.
func (b *Blinker) OnCompareMatch() {
	v := ToggleBits(b.regs.PORT, b.mask)
	b.regs.TIFR1.Set(1 << OCF1A)

	b.fired++
	if b.trace != nil {
		b.trace.Record(b.fired, v&b.mask != 0)
	}
}

// SetLevel drives the output from the main context at any time.
func (b *Blinker) SetLevel(high bool) {
	Critical(b.irq, func() {
		if high {
			b.regs.PORT.SetBits(b.mask)
		} else {
			b.regs.PORT.ClearBits(b.mask)
		}
	})
}

// Level reports the current output level.
func (b *Blinker) Level() bool { return b.regs.PORT.HasBits(b.mask) }

// Fired returns how many times the handler has run.
func (b *Blinker) Fired() uint32 {
	var n uint32
	Critical(b.irq, func() { n = b.fired })
	return n
}

// Threshold is the programmed OCR1A value.
func (b *Blinker) Threshold() uint16 { return b.threshold }

// Config returns the configuration the blinker was built from.
func (b *Blinker) Config() Config { return b.cfg }
