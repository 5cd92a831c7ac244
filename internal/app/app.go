// Package app provides the application-scoped test harness: a Slate
// application handle initialized once per test case with test-supplied
// arguments, layered on the per-test compute context lifecycle.
//
// The application object used to be a process singleton. Here it is an
// explicit handle returned from New and threaded through test setup,
// so the harness owns its lifetime exactly as it owns the compute
// context's.
package app

import (
	"context"
	"fmt"

	"github.com/slatedata/slatetest/internal/grid"
)

// App is one initialized Slate application bound to an externally
// supplied compute context. The App never creates or stops the
// context; whoever supplied it owns its lifecycle.
type App struct {
	cfg Config
	ctx *grid.Context
}

// New initializes an application from a parsed config and a live
// compute context.
func New(cfg Config, c *grid.Context) (*App, error) {
	if c == nil {
		return nil, fmt.Errorf("app init: compute context is required")
	}
	if c.State() != grid.StateActive {
		return nil, &grid.LifecycleError{Code: grid.ErrCodeStopped, Op: "app init", Context: c.Name()}
	}
	return &App{cfg: cfg, ctx: c}, nil
}

// CreateDataset constructs a dataset from literal schema and data
// strings in the application's compute context.
func (a *App) CreateDataset(ctx context.Context, schemaStr, dataStr string) (*grid.Dataset, error) {
	return a.ctx.CreateDataset(ctx, schemaStr, dataStr)
}

// LoadDataset loads a CSV file with the given field delimiter. The
// file's header row names the columns; use LoadDatasetWithSchema when
// columns are typed.
func (a *App) LoadDataset(ctx context.Context, path string, delimiter rune) (*grid.Dataset, error) {
	return a.ctx.LoadCSV(ctx, path, grid.CSVOptions{Delimiter: delimiter, Header: true})
}

// LoadDatasetWithSchema loads a headerless CSV file typed by a compact
// schema string.
func (a *App) LoadDatasetWithSchema(ctx context.Context, path string, delimiter rune, schema string) (*grid.Dataset, error) {
	return a.ctx.LoadCSV(ctx, path, grid.CSVOptions{Delimiter: delimiter, Schema: schema})
}

// Modules returns the enabled module selection.
func (a *App) Modules() []string {
	return a.cfg.Modules
}

// DataDir returns the root directory for module data.
func (a *App) DataDir() string {
	return a.cfg.DataDir
}

// Prop looks up a free-form application property.
func (a *App) Prop(key string) (string, bool) {
	v, ok := a.cfg.Props[key]
	return v, ok
}
