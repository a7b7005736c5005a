package main

import (
	"fmt"
	"time"

	"github.com/mattn/go-tty"
)

type watchCmd struct {
	Speed float64       `default:"1" help:"simulated seconds per wall-clock second"`
	Frame time.Duration `default:"20ms" help:"redraw interval"`
}

func (c *watchCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if c.Speed <= 0 {
		return fmt.Errorf("speed must be positive, got %v", c.Speed)
	}

	t, err := tty.Open()
	if err != nil {
		return err
	}
	defer t.Close()

	bd, err := boot(cfg)
	if err != nil {
		return err
	}

	quit := make(chan struct{})
	go func() {
		t.ReadRune()
		close(quit)
	}()

	start := time.Now()
	tick := time.NewTicker(c.Frame)
	defer tick.Stop()
	for {
		select {
		case <-quit:
			fmt.Println()
			return nil
		case now := <-tick.C:
			target := bd.m.Cycles(time.Duration(float64(now.Sub(start)) * c.Speed))
			if target > bd.m.Cycle() {
				if err := bd.m.Run(target - bd.m.Cycle()); err != nil {
					fmt.Println()
					return err
				}
			}
			led := "( )"
			if bd.port.Level(bd.pin) {
				led = "(*)"
			}
			fmt.Printf("\r%s %10.3fs  toggles=%d ", led, bd.m.Time(bd.m.Cycle()).Seconds(), bd.b.Fired())
		}
	}
}
