package common

import "fmt"

// Assert checks a condition and panics if it is false.
//
// Assertions guard internal invariants of the engine: a processor wired to the
// wrong number of inputs or a value read with the wrong type is a logic error,
// and failing fast with a stack trace is better than producing wrong results.
//
// WHEN NOT TO USE:
// - Validating plans or settings supplied by a caller (return an error instead).
// - Handling I/O failures from a source reader (return an error instead).
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}

// CeilDiv returns ceil(a / b) for non-negative a and positive b.
func CeilDiv(a, b int) int {
	Assert(b > 0, "CeilDiv by non-positive divisor %d", b)
	if a%b != 0 {
		return a/b + 1
	}
	return a / b
}
