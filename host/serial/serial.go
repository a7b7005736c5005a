// Package serial opens the UART a board writes its boot records to.
package serial

import (
	"io"
	"time"
)

// Port is the board's UART as seen from the host. Tests substitute an
// in-memory implementation.
type Port interface {
	io.ReadWriteCloser

	// Flush discards anything buffered but not yet read.
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// TinyGo's AVR UART runs at 9600 baud unless the firmware changes it.
	Baud int

	// ReadTimeout bounds each Read; zero blocks.
	ReadTimeout time.Duration
}

// DefaultBaud is the rate the ATmega328P firmware prints at.
const DefaultBaud = 9600

// DefaultConfig returns the configuration for a board on device.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: 500 * time.Millisecond,
	}
}
