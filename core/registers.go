// Register access layer for the Timer/Counter1 blinker.
// Registers are reached only through these interfaces so that logic never
// holds a raw address; the target maps them onto runtime/volatile and the
// host simulator maps them onto its data bus.
package core

// Register8 is an 8-bit memory-mapped I/O register.
// Every call must reach the hardware: implementations may not cache a value,
// merge two writes or drop a write whose value looks unchanged.
// *volatile.Register8 from TinyGo satisfies this interface.
type Register8 interface {
	Get() uint8
	Set(value uint8)
	SetBits(mask uint8)
	ClearBits(mask uint8)
	HasBits(mask uint8) bool
}

// Register16 is a 16-bit Timer1 register made of a low and a high byte.
// Set and Get are single logical accesses; the implementation is
// responsible for the byte order the hardware latch expects.
type Register16 interface {
	Get() uint16
	Set(value uint16)
}

// ToggleBits inverts mask in r with exactly one read and one write and
// returns the value written.
func ToggleBits(r Register8, mask uint8) uint8 {
	v := r.Get() ^ mask
	r.Set(v)
	return v
}

// Timer/Counter1 bit positions (ATmega48A/88A/168A/328 family).
const (
	// TCCR1B
	CS10  = 0
	CS11  = 1
	CS12  = 2
	WGM12 = 3

	// TIMSK1
	TOIE1  = 0
	OCIE1A = 1

	// TIFR1
	TOV1  = 0
	OCF1A = 1
)

// The I/O and extended I/O registers occupy data-space addresses
// [IOSpaceStart, IOSpaceEnd); below is the register file, above is SRAM.
const (
	IOSpaceStart = 0x20
	IOSpaceEnd   = 0x100
)

// Timer1Map holds the data-space addresses of the Timer1 registers.
// 16-bit registers are given by their low byte; the high byte follows it.
type Timer1Map struct {
	TCNT1  uintptr `json:"tcnt1"`
	OCR1A  uintptr `json:"ocr1a"`
	TCCR1A uintptr `json:"tccr1a"`
	TCCR1B uintptr `json:"tccr1b"`
	TIMSK1 uintptr `json:"timsk1"`
	TIFR1  uintptr `json:"tifr1"`
}

// PortMap holds the data-space addresses of one GPIO port.
type PortMap struct {
	PIN  uintptr `json:"pin"`
	DDR  uintptr `json:"ddr"`
	PORT uintptr `json:"port"`
}

// RegisterMap is everything the blinker touches.
type RegisterMap struct {
	Timer1 Timer1Map `json:"timer1"`
	Port   PortMap   `json:"port"`
}

// RegisterByte is one byte address a RegisterMap occupies.
type RegisterByte struct {
	Name string
	Addr uintptr
}

// Bytes lists every address m maps, 16-bit registers as both halves.
func (m RegisterMap) Bytes() []RegisterByte {
	t, p := m.Timer1, m.Port
	return []RegisterByte{
		{"TCNT1L", t.TCNT1}, {"TCNT1H", t.TCNT1 + 1},
		{"OCR1AL", t.OCR1A}, {"OCR1AH", t.OCR1A + 1},
		{"TCCR1A", t.TCCR1A},
		{"TCCR1B", t.TCCR1B},
		{"TIMSK1", t.TIMSK1},
		{"TIFR1", t.TIFR1},
		{"PIN", p.PIN},
		{"DDR", p.DDR},
		{"PORT", p.PORT},
	}
}

// ATmega328P register addresses (data space, I/O registers offset by 0x20).
var (
	Timer1ATmega328P = Timer1Map{
		TCNT1:  0x84,
		OCR1A:  0x88,
		TCCR1A: 0x80,
		TCCR1B: 0x81,
		TIMSK1: 0x6F,
		TIFR1:  0x36,
	}

	PortB = PortMap{PIN: 0x23, DDR: 0x24, PORT: 0x25}
	PortC = PortMap{PIN: 0x26, DDR: 0x27, PORT: 0x28}
	PortD = PortMap{PIN: 0x29, DDR: 0x2A, PORT: 0x2B}

	// ATmega328P drives the Arduino Uno LED (D13, PB5) from Timer1.
	ATmega328P = RegisterMap{Timer1: Timer1ATmega328P, Port: PortB}
)

// Peripheral is the bound register set of one blinker.
type Peripheral struct {
	TCNT1  Register16
	OCR1A  Register16
	TCCR1A Register8
	TCCR1B Register8
	TIMSK1 Register8
	TIFR1  Register8
	DDR    Register8
	PORT   Register8
}

// Port is a bound GPIO port.
type Port struct {
	PIN  Register8
	DDR  Register8
	PORT Register8
}
