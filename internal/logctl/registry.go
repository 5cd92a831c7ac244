// Package logctl manages process-wide log verbosity for test runs.
//
// Distributed compute runtimes are extremely verbose at informational
// levels. Tests want signal, not noise, so the harness forces every
// registered logger to a quiet level before each test case.
//
// The Registry is an explicit logging-configuration object: instead of
// mutating a free-standing global, the lifecycle component owns a
// Registry and applies level changes through it. The "force all
// loggers" semantic is deliberately NOT a scoped save/restore — a
// caller that wants a different level afterwards must call
// SetAllLevels again with the level it wants.
package logctl

import (
	"io"
	"log/slog"
	"sync"
)

// LevelSilent is above every slog level, so a logger pinned to it
// emits nothing at all.
const LevelSilent = slog.Level(128)

// LevelQuiet is the "errors-only" level the harness restores to after
// a silenced test case.
const LevelQuiet = slog.LevelError

// Registry owns a set of named loggers whose levels can be retargeted
// as a group. The root logger is always registered.
//
// Level mutations are visible immediately to every handle previously
// returned by Logger or Root. They persist until the next SetAllLevels
// call; nothing restores them automatically when a test completes.
type Registry struct {
	mu     sync.Mutex
	out    io.Writer
	root   *slog.Logger
	rootLv *slog.LevelVar
	levels map[string]*slog.LevelVar
	named  map[string]*slog.Logger
}

// New creates a Registry writing to w. The root logger starts at
// slog's default level (Info).
func New(w io.Writer) *Registry {
	lv := new(slog.LevelVar)
	return &Registry{
		out:    w,
		root:   slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lv})),
		rootLv: lv,
		levels: make(map[string]*slog.LevelVar),
		named:  make(map[string]*slog.Logger),
	}
}

// Root returns the distinguished root logger.
func (r *Registry) Root() *slog.Logger {
	return r.root
}

// Logger returns the named logger, creating and registering it on
// first use. Subsequent calls with the same name return the same
// handle, so a level change reaches all holders.
func (r *Registry) Logger(name string) *slog.Logger {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.named[name]; ok {
		return l
	}
	lv := new(slog.LevelVar)
	l := slog.New(slog.NewTextHandler(r.out, &slog.HandlerOptions{Level: lv})).With("logger", name)
	r.levels[name] = lv
	r.named[name] = l
	return l
}

// SetAllLevels forces every currently registered logger, including the
// root logger, to level. It cannot fail: on a nil Registry it is a
// no-op, and a registry with no named loggers still retargets root.
func (r *Registry) SetAllLevels(level slog.Level) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rootLv.Set(level)
	for _, lv := range r.levels {
		lv.Set(level)
	}
}

// Level reports the current level of the named logger, or of root when
// name is empty. Used by tests to observe level mutations.
func (r *Registry) Level(name string) (slog.Level, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		return r.rootLv.Level(), true
	}
	lv, ok := r.levels[name]
	if !ok {
		return 0, false
	}
	return lv.Level(), true
}
