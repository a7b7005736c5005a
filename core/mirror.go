package core

// MirrorStep copies one input bit to one output bit. The input register is
// read exactly once; the output is written with a single set or clear.
// It returns the level that was copied.
func MirrorStep(in Register8, inMask uint8, out Register8, outMask uint8) bool {
	high := in.HasBits(inMask)
	if high {
		out.SetBits(outMask)
	} else {
		out.ClearBits(outMask)
	}
	return high
}
