package harness

import (
	"fmt"
	"os"
	"testing"

	"github.com/slatedata/slatetest/internal/grid"
	"github.com/slatedata/slatetest/internal/logctl"
	"github.com/slatedata/slatetest/internal/scratch"
)

// Lifecycle creates one ephemeral compute context per test case and
// guarantees its release on every exit path.
//
// The state machine is uninitialized → active → stopped, driven by one
// Start/Stop pair per test case. Start applies the log-level policy
// before creating the context; Stop releases the context, clears every
// cached reference derived from it, and re-applies the errors-only
// level if the test had silenced logging.
//
// A Lifecycle owns its context exclusively. Test cases must not run
// two lifecycles concurrently in one process: log levels and the
// session environment marker are process-global.
type Lifecycle struct {
	logs     *logctl.Registry
	space    *scratch.Space
	ctx      *grid.Context
	session  *grid.Session
	ident    string
	silenced bool
}

// New creates a Lifecycle using the given logging registry and scratch
// space. A nil registry gets a fresh one writing to stderr; a nil
// space gets the default scratch root on the real filesystem.
func New(logs *logctl.Registry, space *scratch.Space) *Lifecycle {
	if logs == nil {
		logs = logctl.New(os.Stderr)
	}
	if space == nil {
		space = scratch.New(nil, "")
	}
	return &Lifecycle{logs: logs, space: space}
}

// Start forces the process log level — silent when disableLogging is
// set, errors-only otherwise — then creates a fresh two-worker local
// compute context named after testIdentity.
//
// A Start failure means the test body must not run. Exactly one Stop
// pairs with each successful Start.
func (lc *Lifecycle) Start(testIdentity string, disableLogging bool) error {
	if lc.ctx != nil {
		return &grid.LifecycleError{Code: grid.ErrCodeActive, Op: "start", Context: lc.ident}
	}

	level := logctl.LevelQuiet
	if disableLogging {
		level = logctl.LevelSilent
	}
	lc.logs.SetAllLevels(level)
	lc.silenced = disableLogging

	c, err := grid.NewContext(testIdentity, grid.Local(2))
	if err != nil {
		return fmt.Errorf("lifecycle start %q: %w", testIdentity, err)
	}
	sess, err := c.Session()
	if err != nil {
		c.Stop()
		return fmt.Errorf("lifecycle start %q: %w", testIdentity, err)
	}

	lc.ctx = c
	lc.session = sess
	lc.ident = testIdentity
	return nil
}

// Stop releases the compute context and clears the cached context and
// query-session references. If logging had been silenced, the level is
// restored to errors-only — NOT to whatever level was active before
// Start. The asymmetry is intentional and load-bearing for test-output
// noise; see the package tests.
//
// Stop is safe whenever the context handle is non-nil, including after
// a partially failed Start. A release failure is logged and returned,
// but callers running inside a test teardown should not let it mask
// the body's own failure.
func (lc *Lifecycle) Stop() error {
	if lc.ctx == nil {
		return &grid.LifecycleError{Code: grid.ErrCodeUninitialized, Op: "stop"}
	}

	c := lc.ctx
	lc.ctx = nil
	lc.session = nil

	stopErr := c.Stop()

	if lc.silenced {
		lc.logs.SetAllLevels(logctl.LevelQuiet)
		lc.silenced = false
	}

	if stopErr != nil {
		lc.logs.Root().Error("compute context release failed",
			"context", lc.ident,
			"error", stopErr,
		)
		return stopErr
	}
	return nil
}

// Attach starts the lifecycle for t and registers Stop as a cleanup,
// so teardown runs on every exit path — pass, failure, Fatal, panic.
// The stop verdict is logged, never promoted to a test failure, so it
// cannot mask the body's own failure.
func (lc *Lifecycle) Attach(t *testing.T, disableLogging bool) {
	t.Helper()
	if err := lc.Start(t.Name(), disableLogging); err != nil {
		t.Fatalf("lifecycle start: %v", err)
	}
	t.Cleanup(func() {
		if err := lc.Stop(); err != nil {
			t.Logf("lifecycle stop: %v", err)
		}
	})
}

// Context exposes the live compute context for the duration of the
// test body. It must not be captured or retained beyond Stop.
func (lc *Lifecycle) Context() (*grid.Context, error) {
	if lc.ctx == nil {
		return nil, &grid.LifecycleError{Code: grid.ErrCodeUninitialized, Op: "context"}
	}
	return lc.ctx, nil
}

// Session exposes the query session derived from the live context.
func (lc *Lifecycle) Session() (*grid.Session, error) {
	if lc.session == nil {
		return nil, &grid.LifecycleError{Code: grid.ErrCodeUninitialized, Op: "session"}
	}
	return lc.session, nil
}

// Logs returns the logging registry the lifecycle applies levels to.
func (lc *Lifecycle) Logs() *logctl.Registry {
	return lc.logs
}

// ResetScratch wipes and recreates the scratch directory for the
// current test identity.
func (lc *Lifecycle) ResetScratch() error {
	if lc.ident == "" {
		return &grid.LifecycleError{Code: grid.ErrCodeUninitialized, Op: "reset scratch"}
	}
	return lc.space.Reset(lc.ident)
}

// CreateTempFile writes a fixture file into the current test's scratch
// directory and returns its path. ResetScratch must have run first.
func (lc *Lifecycle) CreateTempFile(baseName, contents string) (string, error) {
	if lc.ident == "" {
		return "", &grid.LifecycleError{Code: grid.ErrCodeUninitialized, Op: "create temp file"}
	}
	return lc.space.CreateFile(lc.ident, baseName, contents)
}
