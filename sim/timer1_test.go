package sim

import (
	"testing"

	"github.com/matryer/is"

	"blink328/core"
)

func TestOCR1AByteOrder(t *testing.T) {
	is := is.New(t)
	m := NewATmega328(4_000_000)
	ocr := uint16(core.Timer1ATmega328P.OCR1A)

	// Low byte first: the commit happens before the high byte reaches TEMP.
	m.Bus.Write(ocr, 0x08)
	m.Bus.Write(ocr+1, 0x3D)
	is.Equal(m.Timer1.Compare(), uint16(0x0008))

	// High byte first through the 16-bit view.
	m.Bus.Reg16(core.Timer1ATmega328P.OCR1A).Set(15624)
	is.Equal(m.Timer1.Compare(), uint16(15624))
	is.Equal(m.Bus.Reg16(core.Timer1ATmega328P.OCR1A).Get(), uint16(15624))
}

func TestTCNT1ReadLatchesHighByte(t *testing.T) {
	is := is.New(t)
	m := NewATmega328(1_000_000)
	tcnt := core.Timer1ATmega328P.TCNT1

	m.Bus.Reg16(tcnt).Set(0x12FF)
	lo := m.Bus.Read(uint16(tcnt))
	m.Timer1.tcnt = 0x1300 // counter moves between the two reads
	hi := m.Bus.Read(uint16(tcnt) + 1)

	is.Equal(lo, uint8(0xFF))
	is.Equal(hi, uint8(0x12)) // from TEMP, not the live counter
}

func TestTIFR1WriteOneClears(t *testing.T) {
	is := is.New(t)
	m := NewATmega328(1_000_000)
	m.Timer1.tifr1 = 1<<core.OCF1A | 1<<core.TOV1
	tifr := m.Bus.Reg8(core.Timer1ATmega328P.TIFR1)

	tifr.Set(1 << core.OCF1A)
	is.Equal(tifr.Get(), uint8(1<<core.TOV1))

	tifr.Set(1 << core.OCF1A) // already clear
	is.Equal(tifr.Get(), uint8(1<<core.TOV1))

	tifr.Set(0)
	is.Equal(tifr.Get(), uint8(1<<core.TOV1))
}

func TestCTCPeriod(t *testing.T) {
	is := is.New(t)
	tm := newTimer1(core.Timer1ATmega328P)
	tm.ocr1a = 9
	tm.tccr1b = 1<<core.WGM12 | 1<<core.CS10

	matches := 0
	for i := 0; i < 100; i++ {
		tm.Step(1)
		if tm.tifr1&(1<<core.OCF1A) != 0 {
			matches++
			tm.tifr1 = 0
			is.Equal(tm.Counter(), uint16(0)) // cleared on the matching clock
		}
	}
	is.Equal(matches, 10)
	is.Equal(tm.tifr1&(1<<core.TOV1), uint8(0))
}

func TestPrescalerDivides(t *testing.T) {
	is := is.New(t)
	tm := newTimer1(core.Timer1ATmega328P)
	tm.tccr1b = 1 << core.CS12 // /256

	tm.Step(255)
	is.Equal(tm.Counter(), uint16(0))
	tm.Step(1)
	is.Equal(tm.Counter(), uint16(1))
	tm.Step(256 * 10)
	is.Equal(tm.Counter(), uint16(11))

	tm.tccr1b = 0
	tm.Step(1 << 20)
	is.Equal(tm.Counter(), uint16(11)) // stopped
}

func TestNormalModeOverflow(t *testing.T) {
	is := is.New(t)
	tm := newTimer1(core.Timer1ATmega328P)
	tm.tcnt = 0xFFFE
	tm.ocr1a = 0x1000
	tm.tccr1b = 1 << core.CS10

	tm.Step(1)
	is.Equal(tm.tifr1, uint8(0))
	tm.Step(1)
	is.Equal(tm.Counter(), uint16(0))
	is.Equal(tm.tifr1, uint8(1<<core.TOV1))
}

func TestCounterWriteBlocksNextCompare(t *testing.T) {
	is := is.New(t)
	m := NewATmega328(1_000_000)
	m.Timer1.ocr1a = 0
	m.Timer1.tccr1b = 1<<core.WGM12 | 1<<core.CS10

	m.Bus.Reg16(core.Timer1ATmega328P.TCNT1).Set(0)
	m.Timer1.Step(1)
	is.Equal(m.Timer1.Flags()&(1<<core.OCF1A), uint8(0))
	m.Timer1.Step(1)
	is.Equal(m.Timer1.Flags()&(1<<core.OCF1A), uint8(1<<core.OCF1A))
}
