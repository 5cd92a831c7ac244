package harness

import (
	"errors"
	"fmt"
	"strings"
)

// AssertionCode categorizes assertion failures.
type AssertionCode string

const (
	// CodeLengthMismatch indicates compared sequences differ in element
	// count.
	CodeLengthMismatch AssertionCode = "LENGTH_MISMATCH"

	// CodeValueMismatch indicates an element-wise comparison failed.
	CodeValueMismatch AssertionCode = "VALUE_MISMATCH"

	// CodeSchemaMismatch indicates derived and expected canonical schema
	// strings differ.
	CodeSchemaMismatch AssertionCode = "SCHEMA_MISMATCH"

	// CodePatternNotFound indicates a pattern matched nowhere in the
	// haystack.
	CodePatternNotFound AssertionCode = "PATTERN_NOT_FOUND"
)

// AssertionError is returned when a data-equivalence assertion fails.
// It always embeds both compared values; Index is set (>= 0) when the
// failure is positional.
type AssertionError struct {
	Code     AssertionCode
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Index    int    // Position of the first violating pair, or -1
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Code)
	if e.Index >= 0 {
		fmt.Fprintf(&buf, "  At index: %d\n", e.Index)
	}
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)

	return buf.String()
}

// CodeOf extracts the assertion code from err, or "" when err is not
// an AssertionError. Uses errors.As to handle wrapped errors.
func CodeOf(err error) AssertionCode {
	var ae *AssertionError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
