package harness

import (
	"cmp"
	"testing"

	"github.com/slatedata/slatetest/internal/grid"
)

// Test-facing wrappers over the comparison core. Each fails the test
// immediately with the comparison's message; none retries or swallows
// a failure.

// AssertToleranceEqual fails t unless every actual element is within
// epsilon of its expected counterpart after numeric coercion.
func AssertToleranceEqual(t *testing.T, actual []any, expected []float64, epsilon float64) {
	t.Helper()
	if err := CompareTolerance(actual, expected, epsilon); err != nil {
		t.Fatal(err)
	}
}

// AssertUnorderedEqual fails t unless actual and expected are equal as
// multisets.
func AssertUnorderedEqual[T cmp.Ordered](t *testing.T, actual, expected []T) {
	t.Helper()
	if err := CompareUnordered(actual, expected); err != nil {
		t.Fatal(err)
	}
}

// AssertDatasetEqual fails t unless the dataset's rows, rendered
// canonically, match the ";"-separated expected string as a multiset.
func AssertDatasetEqual(t *testing.T, ds *grid.Dataset, expected string) {
	t.Helper()
	if err := CompareDatasetRows(t.Context(), ds, expected); err != nil {
		t.Fatal(err)
	}
}

// AssertSchemaEqual fails t unless the dataset's derived schema
// renders identically to the expected schema string. Field order
// matters.
func AssertSchemaEqual(t *testing.T, ds *grid.Dataset, expectedSchema string) {
	t.Helper()
	if err := CompareSchema(t.Context(), ds, expectedSchema); err != nil {
		t.Fatal(err)
	}
}

// AssertMatchesPattern fails t unless pattern matches somewhere in
// haystack.
func AssertMatchesPattern(t *testing.T, haystack, pattern string) {
	t.Helper()
	if err := MatchPattern(haystack, pattern); err != nil {
		t.Fatal(err)
	}
}
