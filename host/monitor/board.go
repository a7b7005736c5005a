// Package monitor follows a board's boot over its UART: it reads the
// "blink:" records the firmware prints during setup and checks the timer
// programming they report.
package monitor

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"blink328/host/serial"
)

// ConfigError is a configuration error reported by the board itself. The
// firmware halts after reporting it.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "board: " + e.Msg
}

// ErrTimeout is returned when the board stays silent past the deadline.
var ErrTimeout = errors.New("monitor: timed out waiting for board")

// Board represents a connection to a blinker board
type Board struct {
	port serial.Port

	// partial holds an unterminated line across read timeouts.
	partial strings.Builder
	buf     [64]byte
	lines   []string

	// Unparsed receives every line that is not a boot record.
	Unparsed func(line string)
}

// NewBoard wraps an open port.
func NewBoard(port serial.Port) *Board {
	return &Board{port: port}
}

// Connect opens device with the default UART settings.
func Connect(device string) (*Board, error) {
	return ConnectWithConfig(serial.DefaultConfig(device))
}

// ConnectWithConfig opens the port described by cfg and drops anything
// received before the call.
func ConnectWithConfig(cfg *serial.Config) (*Board, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := port.Flush(); err != nil {
		port.Close()
		return nil, err
	}
	return NewBoard(port), nil
}

// Close closes the port.
func (b *Board) Close() error {
	return b.port.Close()
}

// readLine returns the next complete line. A read timeout on the port
// surfaces as io.EOF with nothing lost.
func (b *Board) readLine() (string, error) {
	for len(b.lines) == 0 {
		n, err := b.port.Read(b.buf[:])
		for _, c := range b.buf[:n] {
			switch c {
			case '\r':
			case '\n':
				b.lines = append(b.lines, b.partial.String())
				b.partial.Reset()
			default:
				b.partial.WriteByte(c)
			}
		}
		if len(b.lines) > 0 {
			break
		}
		if err != nil {
			return "", err
		}
		if n == 0 {
			return "", io.EOF
		}
	}
	line := b.lines[0]
	b.lines = b.lines[1:]
	return line, nil
}

// Next returns the next boot record, skipping other output.
func (b *Board) Next() (*Record, error) {
	for {
		line, err := b.readLine()
		if err != nil {
			return nil, err
		}
		rec, err := ParseRecord(line)
		if errors.Is(err, ErrNotRecord) {
			if b.Unparsed != nil && line != "" {
				b.Unparsed(line)
			}
			continue
		}
		return rec, err
	}
}

// WaitArmed reads records until the board reports its armed timer or a
// configuration error. Every record seen is passed to each, which may be
// nil. The reported threshold is checked against the reported clock.
func (b *Board) WaitArmed(timeout time.Duration, each func(*Record)) (Armed, error) {
	deadline := time.Now().Add(timeout)
	for {
		rec, err := b.Next()
		if errors.Is(err, io.EOF) {
			if time.Now().After(deadline) {
				return Armed{}, ErrTimeout
			}
			continue
		}
		if err != nil {
			return Armed{}, err
		}
		if each != nil {
			each(rec)
		}

		switch rec.Event {
		case "config_error":
			return Armed{}, &ConfigError{Msg: rec.Fields["err"]}
		case "armed":
			a, err := rec.Armed()
			if err != nil {
				return a, err
			}
			if err := a.Check(); err != nil {
				return a, fmt.Errorf("board on pin %d: %w", a.Pin, err)
			}
			return a, nil
		}
	}
}
