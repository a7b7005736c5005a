package sim

import "blink328/core"

// Edge is a change of an output pin's level.
type Edge struct {
	Cycle uint64
	Bit   uint8
	High  bool
}

// Port models one GPIO port. A pin drives PORTx when its DDRx bit is set;
// otherwise PINx reads the externally driven level. Writing a one to a PINx
// bit toggles the matching PORTx bit.
type Port struct {
	addrs core.PortMap
	now   func() uint64

	ddr   uint8
	port  uint8
	input uint8 // levels applied from outside

	edges []Edge
}

func newPort(addrs core.PortMap, now func() uint64) *Port {
	return &Port{addrs: addrs, now: now}
}

func (p *Port) mapInto(b *Bus) {
	b.Map(uint16(p.addrs.PIN), p)
	b.Map(uint16(p.addrs.DDR), p)
	b.Map(uint16(p.addrs.PORT), p)
}

func (p *Port) Read(addr uint16) uint8 {
	switch uintptr(addr) {
	case p.addrs.PIN:
		return p.port&p.ddr | p.input&^p.ddr
	case p.addrs.DDR:
		return p.ddr
	case p.addrs.PORT:
		return p.port
	}
	return 0
}

func (p *Port) Write(addr uint16, v uint8) {
	before := p.Output()
	switch uintptr(addr) {
	case p.addrs.PIN:
		p.port ^= v
	case p.addrs.DDR:
		p.ddr = v
	case p.addrs.PORT:
		p.port = v
	}
	p.recordEdges(before)
}

func (p *Port) recordEdges(before uint8) {
	after := p.Output()
	changed := before ^ after
	for bit := uint8(0); bit < 8; bit++ {
		if changed&(1<<bit) != 0 {
			p.edges = append(p.edges, Edge{Cycle: p.now(), Bit: bit, High: after&(1<<bit) != 0})
		}
	}
}

// Output returns the levels driven by output pins; input pins read as 0.
func (p *Port) Output() uint8 {
	return p.port & p.ddr
}

// Level reports whether bit is driven high.
func (p *Port) Level(bit uint8) bool {
	return p.Output()&(1<<bit) != 0
}

// Drive applies an external level to an input pin.
func (p *Port) Drive(bit uint8, high bool) {
	if high {
		p.input |= 1 << bit
	} else {
		p.input &^= 1 << bit
	}
}

// Edges returns the output transitions of bit, oldest first.
func (p *Port) Edges(bit uint8) []Edge {
	var out []Edge
	for _, e := range p.edges {
		if e.Bit == bit {
			out = append(out, e)
		}
	}
	return out
}

// ClearEdges drops the recorded transitions.
func (p *Port) ClearEdges() {
	p.edges = nil
}
