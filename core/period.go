package core

import (
	"errors"
	"time"
)

// Prescaler is the Timer1 input clock divider.
type Prescaler uint16

// Dividers reachable through the TCCR1B clock-select bits.
const (
	Prescale1    Prescaler = 1
	Prescale8    Prescaler = 8
	Prescale64   Prescaler = 64
	Prescale256  Prescaler = 256
	Prescale1024 Prescaler = 1024
)

// ClockSelect returns the CS12:CS10 bits for p.
// The second result is false if Timer1 cannot divide by p.
func (p Prescaler) ClockSelect() (uint8, bool) {
	switch p {
	case Prescale1:
		return 1 << CS10, true
	case Prescale8:
		return 1 << CS11, true
	case Prescale64:
		return 1<<CS11 | 1<<CS10, true
	case Prescale256:
		return 1 << CS12, true
	case Prescale1024:
		return 1<<CS12 | 1<<CS10, true
	}
	return 0, false
}

// MaxThreshold is the largest value OCR1A holds.
const MaxThreshold = 0xFFFF

// Configuration errors. Sentinels only, no fmt, so the firmware stays small.
var (
	ErrZeroClock         = errors.New("core: input clock is zero")
	ErrInvalidPrescaler  = errors.New("core: prescaler not supported by timer1")
	ErrPeriodTooShort    = errors.New("core: period shorter than one timer tick")
	ErrThresholdOverflow = errors.New("core: threshold exceeds 16 bits")
	ErrInvalidPin        = errors.New("core: pin must be 0-7")
)

// ConfigError carries the inputs that produced a configuration error.
type ConfigError struct {
	Op        string
	PeriodMs  uint32
	ClockHz   uint32
	Prescaler Prescaler
	Err       error
}

func (e *ConfigError) Error() string {
	return e.Op + ": " + e.Err.Error() +
		" (period_ms=" + utoa(e.PeriodMs) +
		" clock_hz=" + utoa(e.ClockHz) +
		" prescaler=" + utoa(uint32(e.Prescaler)) + ")"
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Ticks returns the number of prescaled timer ticks in periodMs, rounded to
// the nearest tick.
func Ticks(periodMs, clockHz uint32, p Prescaler) uint64 {
	if p == 0 {
		return 0
	}
	return roundDiv(uint64(clockHz)*uint64(periodMs), 1000*uint64(p))
}

// ConfigurePeriod computes the OCR1A compare value for one period:
//
//	threshold = round(clockHz * periodMs / 1000 / prescaler) - 1
//
// A result that does not fit 16 bits is an error, never truncated.
func ConfigurePeriod(periodMs, clockHz uint32, p Prescaler) (uint16, error) {
	fail := func(err error) (uint16, error) {
		return 0, &ConfigError{
			Op:        "configure period",
			PeriodMs:  periodMs,
			ClockHz:   clockHz,
			Prescaler: p,
			Err:       err,
		}
	}

	if clockHz == 0 {
		return fail(ErrZeroClock)
	}
	if _, ok := p.ClockSelect(); !ok {
		return fail(ErrInvalidPrescaler)
	}
	ticks := Ticks(periodMs, clockHz, p)
	if ticks == 0 {
		return fail(ErrPeriodTooShort)
	}
	if ticks-1 > MaxThreshold {
		return fail(ErrThresholdOverflow)
	}
	return uint16(ticks - 1), nil
}

// Resolution is the duration of one prescaled timer tick.
func Resolution(clockHz uint32, p Prescaler) time.Duration {
	if clockHz == 0 {
		return 0
	}
	return time.Duration(uint64(p) * uint64(time.Second) / uint64(clockHz))
}
