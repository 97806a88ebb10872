package reconcile

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/dshills/reviser/internal/commit"
	"github.com/dshills/reviser/internal/source"
)

// Source supplies declared and observed commits.
type Source interface {
	Declared(name string) source.Declaration
	Observed(ctx context.Context, name string) commit.ID
}

// Patcher embeds a commit into a component's declaration file.
type Patcher interface {
	Patch(name string, id commit.ID) (bool, error)
}

// Options configures a Reconciler.
type Options struct {
	// Development enables observed-commit probing.
	Development bool
	// Patch enables rewriting the declaration file in development mode.
	Patch  bool
	Logger *log.Logger
}

// Reconciler combines a Source and a Patcher.
type Reconciler struct {
	src     Source
	patcher Patcher
	opts    Options
	logger  *log.Logger
}

// New creates a Reconciler. patcher may be nil, which disables patching.
func New(src Source, patcher Patcher, opts Options) *Reconciler {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Reconciler{src: src, patcher: patcher, opts: opts, logger: logger}
}

// Development reports whether the reconciler probes observed commits.
func (r *Reconciler) Development() bool { return r.opts.Development }

// Current returns the commit to treat as current for name in this run.
func (r *Reconciler) Current(ctx context.Context, name string) commit.ID {
	decl := r.src.Declared(name)
	if !r.opts.Development {
		return decl.ID
	}

	observed := r.src.Observed(ctx, name)
	stale := !decl.Defined || (observed.Known() && observed != decl.ID)
	if stale {
		r.maybePatch(name, observed)
	}

	if observed.Known() && observed != decl.ID {
		r.logger.Debug("observed commit overrides declaration",
			"component", name, "declared", decl.ID.Display(), "observed", observed)
		return observed
	}
	return decl.ID
}

// maybePatch updates the declaration for the next run; it never changes the
// value returned for this one.
func (r *Reconciler) maybePatch(name string, observed commit.ID) {
	if !r.opts.Patch || r.patcher == nil || !observed.Known() {
		return
	}
	if _, err := r.patcher.Patch(name, observed); err != nil {
		r.logger.Warn("patch failed", "component", name, "commit", observed, "err", err)
	}
}
