package monitor

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"blink328/core"
)

// ErrNotRecord is returned by ParseRecord for lines that are not boot
// records: runtime panics, stray output, line noise.
var ErrNotRecord = errors.New("monitor: not a boot record")

// Record is one parsed "blink: <event> key=value ..." line.
type Record struct {
	Event  string
	Fields map[string]string
}

// ParseRecord parses a boot record. Values may be double-quoted.
func ParseRecord(line string) (*Record, error) {
	line = strings.TrimSpace(line)
	rest, ok := strings.CutPrefix(line, core.RecordPrefix)
	if !ok {
		return nil, ErrNotRecord
	}

	words, err := shlex.Split(rest)
	if err != nil {
		return nil, fmt.Errorf("monitor: %q: %w", line, err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("monitor: %q: missing event", line)
	}

	rec := &Record{Event: words[0], Fields: make(map[string]string, len(words)-1)}
	for _, w := range words[1:] {
		k, v, ok := strings.Cut(w, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("monitor: %q: malformed field %q", line, w)
		}
		rec.Fields[k] = v
	}
	return rec, nil
}

// Uint returns the named field as an unsigned integer of at most bits.
func (r *Record) Uint(key string, bits int) (uint64, error) {
	v, ok := r.Fields[key]
	if !ok {
		return 0, fmt.Errorf("monitor: %s record has no %s", r.Event, key)
	}
	n, err := strconv.ParseUint(v, 10, bits)
	if err != nil {
		return 0, fmt.Errorf("monitor: %s %s: %w", r.Event, key, err)
	}
	return n, nil
}

func (r *Record) String() string {
	var sb strings.Builder
	sb.WriteString(r.Event)
	for _, k := range slices.Sorted(maps.Keys(r.Fields)) {
		v := r.Fields[k]
		if strings.ContainsAny(v, " \t\"") {
			v = strconv.Quote(v)
		}
		sb.WriteString(" " + k + "=" + v)
	}
	return sb.String()
}

// Armed is the timer setup a board reports once its blinker is running.
type Armed struct {
	Threshold   uint16
	Prescaler   core.Prescaler
	PeriodMs    uint32
	ClockHz     uint32
	Pin         uint8
	InitialHigh bool
}

// Armed decodes an "armed" record.
func (r *Record) Armed() (Armed, error) {
	var a Armed
	if r.Event != "armed" {
		return a, fmt.Errorf("monitor: %s record is not armed", r.Event)
	}

	fields := []struct {
		key  string
		bits int
		set  func(uint64)
	}{
		{"threshold", 16, func(n uint64) { a.Threshold = uint16(n) }},
		{"prescaler", 16, func(n uint64) { a.Prescaler = core.Prescaler(n) }},
		{"period_ms", 32, func(n uint64) { a.PeriodMs = uint32(n) }},
		{"clock_hz", 32, func(n uint64) { a.ClockHz = uint32(n) }},
		{"pin", 8, func(n uint64) { a.Pin = uint8(n) }},
	}
	for _, f := range fields {
		n, err := r.Uint(f.key, f.bits)
		if err != nil {
			return a, err
		}
		f.set(n)
	}

	switch lvl := r.Fields["level"]; lvl {
	case "high":
		a.InitialHigh = true
	case "low":
	default:
		return a, fmt.Errorf("monitor: armed level %q", lvl)
	}
	return a, nil
}

// Check recomputes the threshold from the reported clock, prescaler and
// period and compares it with what the board programmed.
func (a Armed) Check() error {
	want, err := core.ConfigurePeriod(a.PeriodMs, a.ClockHz, a.Prescaler)
	if err != nil {
		return err
	}
	if want != a.Threshold {
		return fmt.Errorf("monitor: board programmed threshold %d, want %d for %d ms at %d Hz /%d",
			a.Threshold, want, a.PeriodMs, a.ClockHz, a.Prescaler)
	}
	return nil
}
