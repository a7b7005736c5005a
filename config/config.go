// Package config loads JSON board descriptions for the host tools: clock,
// prescaler, period, output pin and register addresses.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"blink328/core"
)

var (
	ErrRegisterRange   = errors.New("config: register address outside the I/O space")
	ErrRegisterOverlap = errors.New("config: two registers share an address")
)

// BoardConfig describes one blinker build.
type BoardConfig struct {
	Chip        string           `json:"chip"`
	ClockHz     uint32           `json:"clock_hz"`
	Prescaler   uint16           `json:"prescaler"`
	PeriodMs    uint32           `json:"period_ms"`
	Pin         uint8            `json:"pin"`
	InitialHigh bool             `json:"initial_high"`
	Registers   core.RegisterMap `json:"registers"`
}

// LoadConfig parses a JSON configuration. Fields missing from the JSON keep
// the values of DefaultATmega328Config.
func LoadConfig(jsonData []byte) (*BoardConfig, error) {
	config := DefaultATmega328Config()

	err := json.Unmarshal(jsonData, config)
	if err != nil {
		return nil, err
	}

	applyDefaults(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFile reads and parses a configuration file.
func LoadFile(path string) (*BoardConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := LoadConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// applyDefaults fills in values an explicit JSON zero or null wiped out
func applyDefaults(config *BoardConfig) {
	if config.Chip == "" {
		config.Chip = "atmega328p"
	}

	// A zero address never maps a Timer1 or port register.
	def := core.ATmega328P
	t := &config.Registers.Timer1
	if t.TCNT1 == 0 {
		t.TCNT1 = def.Timer1.TCNT1
	}
	if t.OCR1A == 0 {
		t.OCR1A = def.Timer1.OCR1A
	}
	if t.TCCR1A == 0 {
		t.TCCR1A = def.Timer1.TCCR1A
	}
	if t.TCCR1B == 0 {
		t.TCCR1B = def.Timer1.TCCR1B
	}
	if t.TIMSK1 == 0 {
		t.TIMSK1 = def.Timer1.TIMSK1
	}
	if t.TIFR1 == 0 {
		t.TIFR1 = def.Timer1.TIFR1
	}

	p := &config.Registers.Port
	if p.PIN == 0 && p.DDR == 0 && p.PORT == 0 {
		*p = def.Port
	}
}

// DefaultATmega328Config returns the reference configuration: 4 MHz timer
// clock, /256, one toggle per second on PB5, starting high.
func DefaultATmega328Config() *BoardConfig {
	return &BoardConfig{
		Chip:        "atmega328p",
		ClockHz:     4_000_000,
		Prescaler:   uint16(core.Prescale256),
		PeriodMs:    1000,
		Pin:         5,
		InitialHigh: true,
		Registers:   core.ATmega328P,
	}
}

// Validate checks that the timer can produce the configured period.
func (c *BoardConfig) Validate() error {
	if c.Pin > 7 {
		return fmt.Errorf("pin %d: %w", c.Pin, core.ErrInvalidPin)
	}
	if _, err := core.ConfigurePeriod(c.PeriodMs, c.ClockHz, core.Prescaler(c.Prescaler)); err != nil {
		return err
	}
	return checkRegisters(c.Registers)
}

// checkRegisters requires every mapped byte, both halves of the 16-bit
// registers included, to be a distinct I/O address.
func checkRegisters(m core.RegisterMap) error {
	seen := make(map[uintptr]string)
	for _, r := range m.Bytes() {
		if r.Addr < core.IOSpaceStart || r.Addr >= core.IOSpaceEnd {
			return fmt.Errorf("%s at %#x: %w", r.Name, r.Addr, ErrRegisterRange)
		}
		if other, ok := seen[r.Addr]; ok {
			return fmt.Errorf("%s and %s at %#x: %w", other, r.Name, r.Addr, ErrRegisterOverlap)
		}
		seen[r.Addr] = r.Name
	}
	return nil
}

// Blinker returns the core configuration.
func (c *BoardConfig) Blinker() core.Config {
	return core.Config{
		PeriodMs:    c.PeriodMs,
		ClockHz:     c.ClockHz,
		Prescaler:   core.Prescaler(c.Prescaler),
		Pin:         c.Pin,
		InitialHigh: c.InitialHigh,
	}
}
