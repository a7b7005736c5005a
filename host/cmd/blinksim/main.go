// blinksim runs the Timer1 blinker on a simulated ATmega328P.
package main

import (
	"fmt"
	"time"

	"github.com/alecthomas/kong"

	"blink328/config"
	"blink328/core"
)

// Globals are the flags shared by every command.
type Globals struct {
	Config string `short:"c" type:"existingfile" help:"board configuration (JSON); defaults to 4 MHz, /256, 1000 ms on PB5"`
	Quiet  bool   `short:"q" help:"suppress boot records"`
}

func (g *Globals) load() (*config.BoardConfig, error) {
	if g.Config == "" {
		return config.DefaultATmega328Config(), nil
	}
	return config.LoadFile(g.Config)
}

func main() {
	var cli struct {
		Globals `embed:""`

		Threshold thresholdCmd `cmd:"" help:"print the compare threshold for a clock, prescaler and period"`
		Run       runCmd       `cmd:"" default:"1" help:"simulate the blinker and check every edge"`
		Watch     watchCmd     `cmd:"" help:"show the LED in real time; any key quits"`
	}

	ctx := kong.Parse(&cli,
		kong.Name("blinksim"),
		kong.Description("Simulate the ATmega328P Timer1 blinker."),
		kong.UsageOnError(),
	)
	if !cli.Quiet {
		core.SetDebugWriter(func(s string) { fmt.Println(s) })
	}
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

type thresholdCmd struct {
	ClockHz   uint32 `name:"clock" help:"timer input clock in Hz (overrides the configuration)"`
	Prescaler uint16 `name:"prescaler" help:"1, 8, 64, 256 or 1024 (overrides the configuration)"`
	PeriodMs  uint32 `name:"period" help:"milliseconds between toggles (overrides the configuration)"`
}

func (c *thresholdCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if c.ClockHz != 0 {
		cfg.ClockHz = c.ClockHz
	}
	if c.Prescaler != 0 {
		cfg.Prescaler = c.Prescaler
	}
	if c.PeriodMs != 0 {
		cfg.PeriodMs = c.PeriodMs
	}

	p := core.Prescaler(cfg.Prescaler)
	threshold, err := core.ConfigurePeriod(cfg.PeriodMs, cfg.ClockHz, p)
	if err != nil {
		return err
	}
	res := core.Resolution(cfg.ClockHz, p)
	actual := res * (1 + time.Duration(threshold))
	fmt.Printf("threshold=%d ticks=%d tick=%v period=%v (asked %v)\n",
		threshold, uint32(threshold)+1, res, actual, time.Duration(cfg.PeriodMs)*time.Millisecond)
	return nil
}
