package harness

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/slatedata/slatetest/internal/grid"
)

// DefaultEpsilon is the absolute-difference threshold used when a
// tolerance comparison doesn't specify one.
const DefaultEpsilon = 0.01

// coercionSentinel is what a non-numeric element coerces to in a
// tolerance comparison. The fallback is deliberate and visible: a type
// mismatch surfaces as a value mismatch at the comparison step, with
// both values in the message, instead of as a separate error kind.
const coercionSentinel = -math.MaxFloat64

// expectedRowSep separates row renderings in an expected-result
// string.
const expectedRowSep = ";"

// CompareTolerance compares two numeric sequences pairwise with an
// absolute-difference tolerance. Each actual element is coerced to
// float64 first: integer and floating representations widen, anything
// else becomes the documented sentinel. The pairwise difference must
// be strictly less than epsilon.
func CompareTolerance(actual []any, expected []float64, epsilon float64) error {
	if len(actual) != len(expected) {
		return &AssertionError{
			Code:     CodeLengthMismatch,
			Expected: fmt.Sprintf("%d elements", len(expected)),
			Actual:   fmt.Sprintf("%d elements", len(actual)),
			Index:    -1,
		}
	}
	for i, a := range actual {
		got := coerceNumeric(a)
		// NaN satisfies no comparison, so the success condition must be
		// asserted positively: a NaN on either side fails.
		if !(math.Abs(got-expected[i]) < epsilon) {
			return &AssertionError{
				Code:     CodeValueMismatch,
				Expected: fmt.Sprintf("%v (within %v)", expected[i], epsilon),
				Actual:   fmt.Sprintf("%v (coerced to %v)", a, got),
				Index:    i,
			}
		}
	}
	return nil
}

// CompareUnordered compares two sequences as multisets: both are
// sorted ascending and compared element-wise. On failure the first
// mismatching pair is reported by its position in the sorted order,
// not the input order.
func CompareUnordered[T cmp.Ordered](actual, expected []T) error {
	if len(actual) != len(expected) {
		return &AssertionError{
			Code:     CodeLengthMismatch,
			Expected: fmt.Sprintf("%d elements", len(expected)),
			Actual:   fmt.Sprintf("%d elements", len(actual)),
			Index:    -1,
		}
	}

	sortedActual := slices.Clone(actual)
	sortedExpected := slices.Clone(expected)
	slices.Sort(sortedActual)
	slices.Sort(sortedExpected)

	for i := range sortedActual {
		if sortedActual[i] != sortedExpected[i] {
			return &AssertionError{
				Code:     CodeValueMismatch,
				Expected: fmt.Sprintf("%v", sortedExpected[i]),
				Actual:   fmt.Sprintf("%v", sortedActual[i]),
				Index:    i,
			}
		}
	}
	return nil
}

// CompareDatasetRows compares a dataset's rows against a ";"-separated
// expected-result string, order-insensitively: a distributed dataset
// has no guaranteed row order, so shuffling rows never changes the
// verdict. Each expected piece is trimmed before comparison.
func CompareDatasetRows(ctx context.Context, ds *grid.Dataset, expected string) error {
	rendered, err := ds.RenderRows(ctx)
	if err != nil {
		return err
	}
	return CompareUnordered(rendered, splitExpected(expected))
}

// CompareSchema parses an expected schema string, derives the actual
// schema from the live dataset, and compares canonical renderings.
// Unlike row comparison, field order is significant here.
func CompareSchema(ctx context.Context, ds *grid.Dataset, expectedSchema string) error {
	want, err := grid.ParseSchema(expectedSchema)
	if err != nil {
		return fmt.Errorf("compare schema: %w", err)
	}
	got, err := ds.DeriveSchema(ctx)
	if err != nil {
		return err
	}
	if got.String() != want.String() {
		return &AssertionError{
			Code:     CodeSchemaMismatch,
			Expected: want.String(),
			Actual:   got.String(),
			Index:    -1,
		}
	}
	return nil
}

// MatchPattern fails unless pattern matches at least once anywhere in
// haystack.
func MatchPattern(haystack, pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("match pattern: %w", err)
	}
	if !re.MatchString(haystack) {
		return &AssertionError{
			Code:     CodePatternNotFound,
			Expected: fmt.Sprintf("a match for %q", pattern),
			Actual:   haystack,
			Index:    -1,
		}
	}
	return nil
}

// coerceNumeric widens any numeric representation to float64. The
// non-numeric branch is the documented sentinel fallback, not an
// error: the mismatch is reported by the comparison itself.
func coerceNumeric(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	default:
		return coercionSentinel
	}
}

// splitExpected turns a ";"-separated expected-result string into
// trimmed row renderings. A trailing ";" does not produce an empty
// row, matching the dataset literal convention.
func splitExpected(expected string) []string {
	parts := strings.Split(expected, expectedRowSep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
