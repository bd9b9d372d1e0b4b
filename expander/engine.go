package expander

import (
	"log/slog"
	"time"
)

// Engine provides the unified unrolling and exception-overlay logic. It is
// a pure computation over already-fetched snapshots: no I/O, no shared
// state, safe for concurrent use. Every call recomputes from scratch.
type Engine struct {
	opts   ExpansionOptions
	logger *slog.Logger
}

// NewEngine creates an engine with DefaultExpansionOptions.
func NewEngine() *Engine {
	return NewEngineWithOptions(DefaultExpansionOptions)
}

// NewEngineWithOptions creates an engine with custom expansion options.
// Zero option fields fall back to the defaults.
func NewEngineWithOptions(opts ExpansionOptions) *Engine {
	return &Engine{opts: opts.withDefaults()}
}

// SetLogger attaches a logger for data-quality and truncation diagnostics.
// The engine never reports those as errors; a nil logger silences them via
// slog.Default.
func (e *Engine) SetLogger(logger *slog.Logger) {
	e.logger = logger
}

func (e *Engine) log() *slog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return slog.Default()
}

// Options returns the effective expansion options.
func (e *Engine) Options() ExpansionOptions {
	return e.opts
}

// Expand turns templates plus exceptions into the full set of concrete
// instances. now anchors the horizon clamp for open-ended series and is an
// explicit parameter so results stay a deterministic function of the
// inputs. Output order follows template input order, occurrences ascending
// within each template; callers apply Filter for display ordering.
func (e *Engine) Expand(templates []Template, exceptions []Exception, now time.Time) []Instance {
	idx := BuildExceptionIndex(exceptions)
	out := make([]Instance, 0, len(templates))
	for _, tpl := range templates {
		out = append(out, e.unrollTemplate(tpl, idx, now)...)
	}
	return out
}

// ExpandTemplate unrolls a single template against a prebuilt index.
func (e *Engine) ExpandTemplate(tpl Template, idx ExceptionIndex, now time.Time) []Instance {
	return e.unrollTemplate(tpl, idx, now)
}
