package main

import (
	"fmt"
	"time"

	"blink328/config"
	"blink328/core"
	"blink328/sim"
)

// board is an armed blinker on a simulated chip.
type board struct {
	m     *sim.Machine
	b     *core.Blinker
	port  *sim.Port
	pin   uint8
	trace core.EdgeTrace
}

// boot does what the firmware's main does, on a fresh machine.
func boot(cfg *config.BoardConfig) (*board, error) {
	regs := cfg.Registers
	m := sim.NewMachine(cfg.ClockHz, regs.Timer1, regs.Port)
	m.Enable()

	core.LogBoot("blinksim")
	b, err := core.New(m.Peripheral(regs), m, cfg.Blinker())
	if err != nil {
		core.LogConfigError(err)
		return nil, err
	}

	bd := &board{m: m, b: b, port: m.Port(regs.Port), pin: cfg.Pin}
	b.SetTrace(&bd.trace)
	m.Attach(sim.VectorTimer1CompA, b.OnCompareMatch)
	b.Arm()
	core.LogArmed(b)
	return bd, nil
}

// checkEdges verifies the output alternates and every interval is one
// period, within one timer tick.
func checkEdges(m *sim.Machine, cfg *config.BoardConfig, edges []sim.Edge) error {
	if len(edges) == 0 || edges[0].High != cfg.InitialHigh {
		return fmt.Errorf("initial level not driven")
	}
	period := m.Cycles(time.Duration(cfg.PeriodMs) * time.Millisecond)
	tick := uint64(cfg.Prescaler)
	for i := 1; i < len(edges); i++ {
		if edges[i].High == edges[i-1].High {
			return fmt.Errorf("edge %d repeats level %v", i, edges[i].High)
		}
		gap := edges[i].Cycle - edges[i-1].Cycle
		if gap+tick < period || gap > period+tick {
			return fmt.Errorf("edge %d after %v, want %v", i, m.Time(gap), m.Time(period))
		}
	}
	return nil
}

type runCmd struct {
	Seconds float64 `short:"s" default:"10.5" help:"simulated time"`
	Edges   bool    `short:"e" help:"print every edge"`
	Trace   bool    `help:"dump the handler's edge trace at the end"`
}

func (c *runCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	bd, err := boot(cfg)
	if err != nil {
		return err
	}

	d := time.Duration(c.Seconds * float64(time.Second))
	if err := bd.m.RunFor(d); err != nil {
		return err
	}

	edges := bd.port.Edges(bd.pin)
	if c.Edges {
		for i, e := range edges {
			line := fmt.Sprintf("%3d %12v %s", i, bd.m.Time(e.Cycle), level(e.High))
			if i > 0 {
				line += fmt.Sprintf("  +%v", bd.m.Time(e.Cycle-edges[i-1].Cycle))
			}
			fmt.Println(line)
		}
	}
	if c.Trace {
		var tr core.EdgeTrace
		core.Critical(bd.m, func() { tr = bd.trace })
		tr.Dump()
	}

	if err := checkEdges(bd.m, cfg, edges); err != nil {
		return err
	}
	fmt.Printf("ok: %d toggles in %v, threshold=%d\n", bd.b.Fired(), d, bd.b.Threshold())
	return nil
}

func level(high bool) string {
	if high {
		return "high"
	}
	return "low"
}
