package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TraceSize is the number of edges an EdgeTrace keeps.
const TraceSize = 16

var (
	// debugPrintln is set by platform code (UART on the board, stdout on the host)
	debugPrintln DebugWriter = func(string) {}
)

// SetDebugWriter sets the platform-specific debug output function.
// A nil writer silences output.
func SetDebugWriter(writer DebugWriter) {
	if writer == nil {
		writer = func(string) {}
	}
	debugPrintln = writer
}

// DebugPrintln writes a debug message using the platform-specific writer.
// Never call it from a handler: the writer may block on the UART.
func DebugPrintln(msg string) {
	debugPrintln(msg)
}

// Edge is one handler invocation as seen by the trace.
type Edge struct {
	Seq  uint32 // handler invocation number, starting at 1
	High bool   // level after the toggle
}

// EdgeTrace keeps the last TraceSize edges for post-mortem.
// Record is safe to call from the handler: fixed storage, no allocation.
type EdgeTrace struct {
	ring [TraceSize]Edge
	head uint8 // next write position
	n    uint8
}

// Record stores one edge, overwriting the oldest when full.
func (t *EdgeTrace) Record(seq uint32, high bool) {
	t.ring[t.head] = Edge{Seq: seq, High: high}
	t.head = (t.head + 1) % TraceSize
	if t.n < TraceSize {
		t.n++
	}
}

// Edges returns the recorded edges, oldest first.
// Call with the handler masked (see Critical) while the timer runs.
func (t *EdgeTrace) Edges() []Edge {
	out := make([]Edge, 0, t.n)
	start := (t.head + TraceSize - t.n) % TraceSize
	for i := uint8(0); i < t.n; i++ {
		out = append(out, t.ring[(start+i)%TraceSize])
	}
	return out
}

// Reset clears the trace.
func (t *EdgeTrace) Reset() {
	*t = EdgeTrace{}
}

// Dump writes the trace through the debug writer.
func (t *EdgeTrace) Dump() {
	debugPrintln("blink: trace edges=" + utoa(uint32(t.n)))
	for _, e := range t.Edges() {
		debugPrintln("blink: edge seq=" + utoa(e.Seq) + " level=" + levelName(e.High))
	}
}

func levelName(high bool) string {
	if high {
		return "high"
	}
	return "low"
}
