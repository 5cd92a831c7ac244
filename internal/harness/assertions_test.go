package harness

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slatedata/slatetest/internal/grid"
)

func newTestContext(t *testing.T) *grid.Context {
	t.Helper()
	c, err := grid.NewContext(t.Name(), grid.Local(2))
	require.NoError(t, err)
	t.Cleanup(func() { c.Stop() })
	return c
}

func TestCompareTolerance_WithinEpsilon(t *testing.T) {
	err := CompareTolerance([]any{1.001, 2.0}, []float64{1.0, 2.0}, 0.01)
	assert.NoError(t, err)
}

func TestCompareTolerance_FailsOnFirstViolatingPair(t *testing.T) {
	err := CompareTolerance([]any{1.02, 2.0}, []float64{1.0, 2.0}, 0.01)
	require.Error(t, err)

	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, CodeValueMismatch, ae.Code)
	assert.Equal(t, 0, ae.Index)
	assert.Contains(t, ae.Expected, "1")
	assert.Contains(t, ae.Actual, "1.02")
}

func TestCompareTolerance_StrictlyLessThanEpsilon(t *testing.T) {
	// A difference of exactly epsilon is a failure.
	err := CompareTolerance([]any{0.01}, []float64{0.0}, 0.01)
	assert.Equal(t, CodeValueMismatch, CodeOf(err))
}

func TestCompareTolerance_NaNNeverWithinTolerance(t *testing.T) {
	// NaN compares false against everything, so a negated check would
	// let it slip through as a pass. It must fail on either side.
	err := CompareTolerance([]any{math.NaN()}, []float64{1.0}, DefaultEpsilon)
	require.Error(t, err)
	assert.Equal(t, CodeValueMismatch, CodeOf(err))

	err = CompareTolerance([]any{1.0}, []float64{math.NaN()}, DefaultEpsilon)
	require.Error(t, err)
	assert.Equal(t, CodeValueMismatch, CodeOf(err))

	err = CompareTolerance([]any{math.NaN()}, []float64{math.NaN()}, DefaultEpsilon)
	require.Error(t, err)
	assert.Equal(t, CodeValueMismatch, CodeOf(err))
}

func TestCompareTolerance_WidensIntegerRepresentations(t *testing.T) {
	actual := []any{int(1), int64(2), float32(3.0), uint8(4)}
	err := CompareTolerance(actual, []float64{1, 2, 3, 4}, DefaultEpsilon)
	assert.NoError(t, err)
}

func TestCompareTolerance_NonNumericSurfacesAsValueMismatch(t *testing.T) {
	// The sentinel coercion means a type mismatch is reported by the
	// comparison step, not as a separate error kind.
	err := CompareTolerance([]any{"oops"}, []float64{1.0}, DefaultEpsilon)
	require.Error(t, err)
	assert.Equal(t, CodeValueMismatch, CodeOf(err))
	assert.Contains(t, err.Error(), "oops")
}

func TestCompareTolerance_LengthMismatch(t *testing.T) {
	err := CompareTolerance([]any{1.0}, []float64{1.0, 2.0}, DefaultEpsilon)
	require.Error(t, err)

	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, CodeLengthMismatch, ae.Code)
	assert.Contains(t, ae.Expected, "2 elements")
	assert.Contains(t, ae.Actual, "1 elements")
}

func TestCompareUnordered_PermutationsAreEqual(t *testing.T) {
	assert.NoError(t, CompareUnordered([]string{"b", "a", "c"}, []string{"c", "b", "a"}))
	assert.NoError(t, CompareUnordered([]int{3, 1, 2, 2}, []int{2, 2, 1, 3}))
}

func TestCompareUnordered_MismatchReportedAtSortedIndex(t *testing.T) {
	err := CompareUnordered([]int{3, 1, 2}, []int{1, 2, 4})
	require.Error(t, err)

	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, CodeValueMismatch, ae.Code)
	assert.Equal(t, 2, ae.Index)
	assert.Equal(t, "4", ae.Expected)
	assert.Equal(t, "3", ae.Actual)
}

func TestCompareUnordered_MultisetSensitive(t *testing.T) {
	// Same element set, different multiplicities.
	err := CompareUnordered([]string{"a", "a", "b"}, []string{"a", "b", "b"})
	assert.Equal(t, CodeValueMismatch, CodeOf(err))
}

func TestCompareUnordered_LengthMismatch(t *testing.T) {
	err := CompareUnordered([]string{"a"}, []string{"a", "b"})
	assert.Equal(t, CodeLengthMismatch, CodeOf(err))
}

func TestCompareDatasetRows_OrderInsensitive(t *testing.T) {
	c := newTestContext(t)

	ds, err := c.CreateDataset(t.Context(), "v:Integer;k:String", "1,a;2,b")
	require.NoError(t, err)

	// Expected string lists the rows in the opposite order.
	assert.NoError(t, CompareDatasetRows(t.Context(), ds, "2,b; 1,a"))
}

func TestCompareDatasetRows_InvariantUnderRowReordering(t *testing.T) {
	c := newTestContext(t)
	const expected = "1,2.0,hello; 2,10.0,hello2; 2,11.0,hello3"

	forward, err := c.CreateDataset(t.Context(), "a:Integer;b:Double;c:String",
		"1,2.0,hello; 2,10.0,hello2; 2,11.0,hello3")
	require.NoError(t, err)
	backward, err := c.CreateDataset(t.Context(), "a:Integer;b:Double;c:String",
		"2,11.0,hello3; 2,10.0,hello2; 1,2.0,hello")
	require.NoError(t, err)

	assert.NoError(t, CompareDatasetRows(t.Context(), forward, expected))
	assert.NoError(t, CompareDatasetRows(t.Context(), backward, expected))
}

func TestCompareDatasetRows_ContentMismatch(t *testing.T) {
	c := newTestContext(t)

	ds, err := c.CreateDataset(t.Context(), "k:String", "a;b")
	require.NoError(t, err)

	err = CompareDatasetRows(t.Context(), ds, "a;c")
	assert.Equal(t, CodeValueMismatch, CodeOf(err))
}

func TestCompareDatasetRows_RowCountMismatch(t *testing.T) {
	c := newTestContext(t)

	ds, err := c.CreateDataset(t.Context(), "k:String", "a;b")
	require.NoError(t, err)

	err = CompareDatasetRows(t.Context(), ds, "a;b;c")
	assert.Equal(t, CodeLengthMismatch, CodeOf(err))
}

func TestCompareSchema_Matches(t *testing.T) {
	c := newTestContext(t)

	ds, err := c.CreateDataset(t.Context(), "a:String;b:Integer", "x,1")
	require.NoError(t, err)

	// Whitespace in the expectation is irrelevant; order is not.
	assert.NoError(t, CompareSchema(t.Context(), ds, "a:String; b:Integer"))
}

func TestCompareSchema_FieldOrderSignificant(t *testing.T) {
	c := newTestContext(t)

	// Same field set as the expectation, opposite order.
	ds, err := c.CreateDataset(t.Context(), "b:Integer;a:String", "1,x")
	require.NoError(t, err)

	err = CompareSchema(t.Context(), ds, "a:String;b:Integer")
	require.Error(t, err)

	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, CodeSchemaMismatch, ae.Code)
	assert.Equal(t, "a:String;b:Integer", ae.Expected)
	assert.Equal(t, "b:Integer;a:String", ae.Actual)
}

func TestMatchPattern(t *testing.T) {
	assert.NoError(t, MatchPattern("session slate-42 started", `slate-\d+`))

	err := MatchPattern("session started", `slate-\d+`)
	require.Error(t, err)
	assert.Equal(t, CodePatternNotFound, CodeOf(err))

	err = MatchPattern("anything", `([`)
	require.Error(t, err)
	assert.Empty(t, CodeOf(err), "a bad pattern is a usage error, not an assertion failure")
}
