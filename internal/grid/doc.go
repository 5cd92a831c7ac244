// Package grid is the local-mode client for the Slate tabular compute
// engine, scoped to what tests need: ephemeral compute sessions,
// dataset construction, and schema introspection.
//
// A Context is one compute session. In local mode it is backed by an
// in-memory SQLite database, so a session and everything materialized
// in it vanishes at Stop. Production sessions run distributed; tests
// run Local(2) — two workers is enough to exercise fan-out while
// keeping test cases isolated.
//
// LIFECYCLE:
//
//	uninitialized → active → stopped (terminal)
//
// NewContext returns an active handle. Stop is terminal: a stopped
// context must never be reused, and every operation against one fails
// with a *LifecycleError rather than attempting recovery. One
// NewContext pairs with exactly one Stop.
//
// DATA MODEL:
//
// Schemas are ordered (name, type) field lists with a stable compact
// string form, "a:Integer;b:Double". Datasets are created either from
// (schema string, data string) literals or from CSV files, and are
// materialized as tables under the session. Dataset row order is not
// guaranteed anywhere in this package; comparisons that care about
// content must be order-insensitive.
package grid
