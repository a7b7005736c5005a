package core

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestConfigurePeriod(t *testing.T) {
	tests := []struct {
		name     string
		periodMs uint32
		clockHz  uint32
		p        Prescaler
		want     uint16
		err      error
	}{
		{"4MHz/256 1s", 1000, 4_000_000, Prescale256, 15624, nil},
		{"16MHz/256 1s", 1000, 16_000_000, Prescale256, 62499, nil},
		{"16MHz/1024 1s", 1000, 16_000_000, Prescale1024, 15624, nil},
		{"4MHz/1024 1ms rounds", 1, 4_000_000, Prescale1024, 3, nil},
		{"single tick", 1, 1000, Prescale1, 0, nil},
		{"exactly 16 bits", 1000, 16_777_216, Prescale256, 65535, nil},
		{"one past 16 bits", 1000, 16_777_472, Prescale256, 0, ErrThresholdOverflow},
		{"4MHz/256 5s", 5000, 4_000_000, Prescale256, 0, ErrThresholdOverflow},
		{"zero period", 0, 4_000_000, Prescale256, 0, ErrPeriodTooShort},
		{"below one tick", 1, 1000, Prescale1024, 0, ErrPeriodTooShort},
		{"zero clock", 1000, 0, Prescale256, 0, ErrZeroClock},
		{"prescaler 100", 1000, 4_000_000, Prescaler(100), 0, ErrInvalidPrescaler},
		{"prescaler 0", 1000, 4_000_000, Prescaler(0), 0, ErrInvalidPrescaler},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConfigurePeriod(tt.periodMs, tt.clockHz, tt.p)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("ConfigurePeriod() error = %v, want %v", err, tt.err)
				}
				var cerr *ConfigError
				if !errors.As(err, &cerr) {
					t.Fatalf("error %T is not a *ConfigError", err)
				}
				if cerr.PeriodMs != tt.periodMs || cerr.ClockHz != tt.clockHz || cerr.Prescaler != tt.p {
					t.Errorf("ConfigError inputs = %+v", cerr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ConfigurePeriod() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ConfigurePeriod() = %d, want %d", got, tt.want)
			}
		})
	}
}

// The integer path must agree with round(clock*period/1000/prescaler)-1
// wherever the result fits.
func TestConfigurePeriodMatchesFormula(t *testing.T) {
	clocks := []uint32{1_000_000, 4_000_000, 8_000_000, 12_345_678, 16_000_000, 20_000_000}
	prescalers := []Prescaler{Prescale1, Prescale8, Prescale64, Prescale256, Prescale1024}
	periods := []uint32{1, 2, 7, 10, 33, 100, 250, 500, 1000, 2000, 4000}

	checked := 0
	for _, c := range clocks {
		for _, p := range prescalers {
			for _, ms := range periods {
				// one division so exact .5 ties stay exact
				ticks := math.Round(float64(c) * float64(ms) / (1000 * float64(p)))
				got, err := ConfigurePeriod(ms, c, p)
				switch {
				case ticks < 1:
					if !errors.Is(err, ErrPeriodTooShort) {
						t.Fatalf("%d/%d/%d: error = %v, want ErrPeriodTooShort", c, p, ms, err)
					}
				case ticks-1 > MaxThreshold:
					if !errors.Is(err, ErrThresholdOverflow) {
						t.Fatalf("%d/%d/%d: error = %v, want ErrThresholdOverflow", c, p, ms, err)
					}
				default:
					if err != nil {
						t.Fatalf("%d/%d/%d: unexpected error %v", c, p, ms, err)
					}
					if float64(got) != ticks-1 {
						t.Fatalf("%d/%d/%d: got %d, want %.0f", c, p, ms, got, ticks-1)
					}
					checked++
				}
			}
		}
	}
	if checked == 0 {
		t.Fatal("no in-range combinations checked")
	}
}

func TestClockSelect(t *testing.T) {
	tests := []struct {
		p    Prescaler
		bits uint8
		ok   bool
	}{
		{Prescale1, 0b001, true},
		{Prescale8, 0b010, true},
		{Prescale64, 0b011, true},
		{Prescale256, 0b100, true},
		{Prescale1024, 0b101, true},
		{Prescaler(32), 0, false},
	}
	for _, tt := range tests {
		bits, ok := tt.p.ClockSelect()
		if bits != tt.bits || ok != tt.ok {
			t.Errorf("Prescaler(%d).ClockSelect() = %03b, %v, want %03b, %v", tt.p, bits, ok, tt.bits, tt.ok)
		}
	}
}

func TestResolution(t *testing.T) {
	if got, want := Resolution(4_000_000, Prescale256), 64*time.Microsecond; got != want {
		t.Errorf("Resolution(4MHz, 256) = %v, want %v", got, want)
	}
	if got, want := Resolution(16_000_000, Prescale1024), 64*time.Microsecond; got != want {
		t.Errorf("Resolution(16MHz, 1024) = %v, want %v", got, want)
	}
	if got := Resolution(0, Prescale256); got != 0 {
		t.Errorf("Resolution(0, 256) = %v, want 0", got)
	}
}

func TestConfigErrorMessage(t *testing.T) {
	_, err := ConfigurePeriod(5000, 4_000_000, Prescale256)
	if err == nil {
		t.Fatal("expected overflow error")
	}
	want := "configure period: core: threshold exceeds 16 bits (period_ms=5000 clock_hz=4000000 prescaler=256)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !strings.Contains(err.Error(), "prescaler=256") {
		t.Errorf("Error() missing prescaler: %q", err.Error())
	}
}
