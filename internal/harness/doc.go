// Package harness provides the per-test resource lifecycle and the
// data-equivalence assertion library for Slate tests.
//
// LIFECYCLE:
//
// Lifecycle stands up one ephemeral compute context per test case and
// tears it down on every exit path. The scheduling model is
// single-threaded, synchronous test execution: one test case's full
// Start → body → Stop runs to completion before the next begins. The
// harness assumes sole ownership of process log configuration for the
// duration of the run — level mutations are globally visible and not
// isolated per test.
//
// ASSERTIONS:
//
// The comparison core is a stateless library of pure functions. Each
// returns a *AssertionError embedding both compared values; the
// Assert* wrappers in assert.go fail the calling test with that
// message. Three comparison regimes:
//
//   - Tolerance: pairwise numeric with strict < epsilon absolute
//     difference, non-numeric elements coerced to a sentinel minimum.
//   - Unordered: multiset equality via sort-then-compare; mismatch
//     positions refer to sorted order.
//   - Schema: canonical string renders compared exactly — field order
//     is significant, unlike row comparison.
package harness
