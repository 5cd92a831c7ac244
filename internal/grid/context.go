package grid

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// SessionEnvVar is the process environment marker the runtime leaves
// behind while a session is active. The lifecycle clears it on
// teardown so a later test never observes a stale session ID.
const SessionEnvVar = "SLATE_SESSION_ID"

// State is a compute context's lifecycle state.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateActive        State = "active"
	StateStopped       State = "stopped" // terminal
)

// Parallelism specifies a session's execution degree.
type Parallelism struct {
	Workers int
}

// Local returns a local-mode parallelism with n workers. Tests use
// Local(2): enough to exercise fan-out, small enough for isolation.
func Local(n int) Parallelism {
	if n < 1 {
		n = 1
	}
	return Parallelism{Workers: n}
}

// Context is a handle to one Slate compute session.
//
// A Context is exclusively owned by one lifecycle at a time and is
// never shared across concurrent test cases. Once stopped it must
// never be reused; every operation on a stopped handle returns a
// *LifecycleError.
type Context struct {
	name   string
	id     string
	par    Parallelism
	state  State
	db     *sql.DB
	sess   *Session
	tables int
}

// NewContext creates and starts a session backed by an in-memory
// database. The returned context is active and must be paired with
// exactly one Stop call.
func NewContext(name string, par Parallelism) (*Context, error) {
	if par.Workers < 1 {
		par = Local(1)
	}
	db, err := openBacking(":memory:")
	if err != nil {
		return nil, fmt.Errorf("create context %q: %w", name, err)
	}

	c := &Context{
		name:  name,
		id:    uuid.Must(uuid.NewV7()).String(),
		par:   par,
		state: StateActive,
		db:    db,
	}
	os.Setenv(SessionEnvVar, c.id)
	return c, nil
}

// Name returns the session name the context was created with.
func (c *Context) Name() string { return c.name }

// ID returns the unique session ID (time-sortable UUIDv7).
func (c *Context) ID() string { return c.id }

// Parallelism returns the session's execution degree.
func (c *Context) Parallelism() Parallelism { return c.par }

// State returns the current lifecycle state.
func (c *Context) State() State { return c.state }

// Session returns the query session layered on this context, creating
// it on first use. The lifecycle clears its cached reference on Stop.
func (c *Context) Session() (*Session, error) {
	if err := c.ensureActive("session"); err != nil {
		return nil, err
	}
	if c.sess == nil {
		c.sess = &Session{c: c}
	}
	return c.sess, nil
}

// Stop releases the session: closes the backing database, clears the
// derived query session, clears the process environment marker, and
// transitions to the terminal stopped state. Stop pairs with exactly
// one NewContext; stopping twice is lifecycle misuse.
func (c *Context) Stop() error {
	switch c.state {
	case StateStopped:
		return &LifecycleError{Code: ErrCodeStopped, Op: "stop", Context: c.name}
	case StateUninitialized:
		return &LifecycleError{Code: ErrCodeUninitialized, Op: "stop", Context: c.name}
	}

	c.state = StateStopped
	c.sess = nil
	os.Unsetenv(SessionEnvVar)

	if c.db != nil {
		db := c.db
		c.db = nil
		if err := db.Close(); err != nil {
			return fmt.Errorf("stop context %q: %w", c.name, err)
		}
	}
	return nil
}

// ensureActive guards every session operation against lifecycle
// misuse. Fails immediately rather than attempting recovery.
func (c *Context) ensureActive(op string) error {
	switch c.state {
	case StateActive:
		return nil
	case StateStopped:
		return &LifecycleError{Code: ErrCodeStopped, Op: op, Context: c.name}
	default:
		return &LifecycleError{Code: ErrCodeUninitialized, Op: op, Context: c.name}
	}
}

// nextTable returns a fresh table name for a materialized dataset.
func (c *Context) nextTable() string {
	c.tables++
	return fmt.Sprintf("dataset_%d", c.tables)
}

// Session is the query object layered on a compute context. Derived
// state only: it holds no resources of its own and becomes unusable
// when its context stops.
type Session struct {
	c *Context
}

// Query runs a read query against the session's database.
// Callers are responsible for closing the returned rows.
func (s *Session) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if err := s.c.ensureActive("query"); err != nil {
		return nil, err
	}
	return s.c.db.QueryContext(ctx, query, args...)
}

// Exec runs a statement against the session's database.
func (s *Session) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if err := s.c.ensureActive("exec"); err != nil {
		return nil, err
	}
	return s.c.db.ExecContext(ctx, query, args...)
}
