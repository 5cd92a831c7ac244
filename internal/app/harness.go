package app

import (
	"fmt"
	"testing"

	"github.com/slatedata/slatetest/internal/grid"
	"github.com/slatedata/slatetest/internal/harness"
	"github.com/slatedata/slatetest/internal/logctl"
	"github.com/slatedata/slatetest/internal/scratch"
)

// Harness extends the compute-context lifecycle with an application
// handle initialized once per test case from test-supplied arguments.
//
// Start order: lifecycle first (log levels, fresh context), then the
// application against that context. Stop order is the reverse: the app
// handle is cleared before the context goes away.
type Harness struct {
	*harness.Lifecycle
	args []string
	app  *App
}

// NewHarness creates an application-scoped harness. args is the
// argument vector the application is initialized with on every Start,
// e.g. []string{"-m", "stage.modules", "--data-dir", dir}.
func NewHarness(logs *logctl.Registry, space *scratch.Space, args []string) *Harness {
	return &Harness{
		Lifecycle: harness.New(logs, space),
		args:      args,
	}
}

// Start runs the lifecycle start, then initializes the application
// with the harness's argument vector. If app initialization fails the
// context is released again: a failed Start leaves nothing live.
func (h *Harness) Start(testIdentity string, disableLogging bool) error {
	if err := h.Lifecycle.Start(testIdentity, disableLogging); err != nil {
		return err
	}

	cfg, err := ParseArgs(h.args)
	if err != nil {
		h.Lifecycle.Stop()
		return fmt.Errorf("app harness start: %w", err)
	}
	c, err := h.Lifecycle.Context()
	if err != nil {
		return err
	}
	a, err := New(cfg, c)
	if err != nil {
		h.Lifecycle.Stop()
		return fmt.Errorf("app harness start: %w", err)
	}

	h.app = a
	return nil
}

// Stop clears the application handle, then stops the lifecycle.
func (h *Harness) Stop() error {
	h.app = nil
	return h.Lifecycle.Stop()
}

// Attach starts the harness for t and registers Stop as a cleanup.
func (h *Harness) Attach(t *testing.T, disableLogging bool) {
	t.Helper()
	if err := h.Start(t.Name(), disableLogging); err != nil {
		t.Fatalf("app harness start: %v", err)
	}
	t.Cleanup(func() {
		if err := h.Stop(); err != nil {
			t.Logf("app harness stop: %v", err)
		}
	})
}

// App exposes the initialized application for the duration of the test
// body. It must not be retained beyond Stop.
func (h *Harness) App() (*App, error) {
	if h.app == nil {
		return nil, &grid.LifecycleError{Code: grid.ErrCodeUninitialized, Op: "app"}
	}
	return h.app, nil
}
