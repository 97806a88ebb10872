package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/dshills/reviser/internal/component"
	"github.com/dshills/reviser/internal/config"
	"github.com/dshills/reviser/internal/gitctx"
	"github.com/dshills/reviser/internal/notify"
	"github.com/dshills/reviser/internal/patch"
	"github.com/dshills/reviser/internal/reconcile"
	"github.com/dshills/reviser/internal/source"
	"github.com/dshills/reviser/internal/store"
	"github.com/dshills/reviser/internal/tracker"
)

// host holds everything a command needs to resolve and track commits.
type host struct {
	cfg        config.Config
	logger     *log.Logger
	reg        *component.Registry
	git        gitctx.Client
	src        *source.Source
	patcher    *patch.Patcher
	reconciler *reconcile.Reconciler
	store      *store.Store
}

// newHost loads the effective config and the component manifest.
func newHost() (*host, error) {
	cfg, err := config.Load(buildOverrides())
	if err != nil {
		return nil, err
	}
	return newHostFrom(cfg)
}

func newHostFrom(cfg config.Config) (*host, error) {
	logger := newLogger(cfg.LogLevel)

	m, err := component.LoadManifest(cfg.Manifest)
	if err != nil {
		return nil, err
	}
	reg, err := m.Registry()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", component.ErrInvalidManifest, err)
	}
	loadDeclarations(reg, logger)

	st, err := store.New(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("opening state: %w", err)
	}

	git := gitctx.Client{Timeout: cfg.VCSTimeout}
	src := source.New(reg, source.Options{
		Development: cfg.Development,
		CacheFile:   cfg.CacheFile,
		VCS:         git,
		Logger:      logger,
	})
	p := patch.New(reg, logger)

	return &host{
		cfg:     cfg,
		logger:  logger,
		reg:     reg,
		git:     git,
		src:     src,
		patcher: p,
		reconciler: reconcile.New(src, p, reconcile.Options{
			Development: cfg.Development,
			Patch:       cfg.PatchSource,
			Logger:      logger,
		}),
		store: st,
	}, nil
}

// loadDeclarations reads each component's declaration file. A literal found
// in the file replaces the manifest's declared value.
func loadDeclarations(reg *component.Registry, logger *log.Logger) {
	for _, name := range reg.Names() {
		rec, _ := reg.Lookup(name)
		lit, ok, err := patch.ReadDeclaration(rec)
		if err != nil {
			logger.Warn("reading declaration failed", "component", name, "err", err)
			continue
		}
		if !ok {
			continue
		}
		if err := reg.SetDeclared(name, lit); err != nil {
			logger.Warn("recording declaration failed", "component", name, "err", err)
		}
	}
}

// tracker builds a Tracker delivering to sink.
func (h *host) tracker(sink tracker.Sink) *tracker.Tracker {
	return tracker.New(h.reg, h.reconciler, h.store, sink, tracker.Options{Logger: h.logger})
}

// sinks returns the configured notification fan-out.
func (h *host) sinks() tracker.Sink {
	m := notify.Multi{
		notify.SignalSink{},
		notify.LogSink{Logger: h.logger},
	}
	if h.cfg.OnRevised != "" {
		m = append(m, notify.CommandSink{
			Command: h.cfg.OnRevised,
			Timeout: h.cfg.CommandTimeout,
			Logger:  h.logger,
			Stdout:  os.Stderr,
			Stderr:  os.Stderr,
		})
	}
	return m
}

// cacheFiles returns the commit-cache path of every tracked component.
func (h *host) cacheFiles() []string {
	var files []string
	for _, name := range h.reg.Tracked() {
		if path, ok := h.src.RootFile(name, h.src.CacheFile()); ok {
			files = append(files, path)
		}
	}
	return files
}

func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "reviser",
	})
	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

// fail reports err on stderr and sets the exit code by error class.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	switch {
	case errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, component.ErrInvalidManifest),
		errors.Is(err, os.ErrNotExist):
		exitCode = ExitConfigError
	default:
		exitCode = ExitRuntimeError
	}
}
