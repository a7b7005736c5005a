package core

import "golang.org/x/exp/constraints"

// roundDiv returns a/b rounded half up. b must be non-zero.
func roundDiv[T constraints.Unsigned](a, b T) T {
	return (a + b/2) / b
}
