// blinkmon follows a board's boot over its UART and checks the timer
// setup it reports.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"blink328/config"
	"blink328/host/monitor"
	"blink328/host/serial"
)

type cli struct {
	Device  string        `arg:"" optional:"" default:"/dev/ttyACM0" help:"serial device of the board"`
	Baud    int           `default:"9600" help:"UART baud rate"`
	Timeout time.Duration `default:"10s" help:"how long to wait for the armed record"`
	Config  string        `short:"c" type:"existingfile" help:"expected board configuration; the armed record must match it"`
	Verbose bool          `short:"v" help:"also print lines that are not boot records"`
}

func (c *cli) Run() error {
	var want *config.BoardConfig
	if c.Config != "" {
		var err error
		if want, err = config.LoadFile(c.Config); err != nil {
			return err
		}
	}

	scfg := serial.DefaultConfig(c.Device)
	scfg.Baud = c.Baud
	fmt.Printf("Connecting to board on %s...\n", c.Device)
	board, err := monitor.ConnectWithConfig(scfg)
	if err != nil {
		return err
	}
	defer board.Close()

	if c.Verbose {
		board.Unparsed = func(line string) { fmt.Printf("  | %s\n", line) }
	}

	armed, err := board.WaitArmed(c.Timeout, func(r *monitor.Record) {
		fmt.Println(r)
	})
	var ce *monitor.ConfigError
	if errors.As(err, &ce) {
		fmt.Fprintf(os.Stderr, "board halted: %s\n", ce.Msg)
		return err
	}
	if err != nil {
		return err
	}

	if want != nil {
		if err := match(armed, want); err != nil {
			return err
		}
	}
	fmt.Printf("armed: threshold=%d, toggling pin %d every %d ms\n", armed.Threshold, armed.Pin, armed.PeriodMs)
	return nil
}

// match compares what the board reports with the expected configuration.
func match(a monitor.Armed, want *config.BoardConfig) error {
	got := config.BoardConfig{
		ClockHz:     a.ClockHz,
		Prescaler:   uint16(a.Prescaler),
		PeriodMs:    a.PeriodMs,
		Pin:         a.Pin,
		InitialHigh: a.InitialHigh,
	}
	exp := config.BoardConfig{
		ClockHz:     want.ClockHz,
		Prescaler:   want.Prescaler,
		PeriodMs:    want.PeriodMs,
		Pin:         want.Pin,
		InitialHigh: want.InitialHigh,
	}
	if got != exp {
		return fmt.Errorf("board reports %+v, configuration says %+v", got, exp)
	}
	return nil
}

func main() {
	var c cli
	ctx := kong.Parse(&c,
		kong.Name("blinkmon"),
		kong.Description("Watch a blinker board boot."),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
