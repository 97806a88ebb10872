package source

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"

	"github.com/dshills/reviser/internal/commit"
	"github.com/dshills/reviser/internal/component"
	"github.com/dshills/reviser/internal/gitctx"
)

// DefaultCacheFile is the commit-cache file name inside a component root.
const DefaultCacheFile = "LATEST_COMMIT"

// Registry is the subset of the component registry the source needs.
type Registry interface {
	Lookup(name string) (component.Record, bool)
	IsTrackable(name string) bool
	RootFile(name, filename string) (string, bool)
}

// VCS answers the latest-commit query for a directory.
type VCS interface {
	LatestCommit(ctx context.Context, dir string) (string, error)
}

// VCSFunc adapts a function to VCS.
type VCSFunc func(ctx context.Context, dir string) (string, error)

// LatestCommit calls f.
func (f VCSFunc) LatestCommit(ctx context.Context, dir string) (string, error) {
	return f(ctx, dir)
}

// Declaration is a component's declared commit.
type Declaration struct {
	ID commit.ID
	// Defined is false when the component is not trackable or never declared
	// a commit. A defined declaration may still carry commit.Unknown.
	Defined bool
}

// Options configures a Source.
type Options struct {
	// Development enables the live VCS query when the cache file is absent.
	Development bool
	// CacheFile overrides DefaultCacheFile.
	CacheFile string
	// VCS answers live queries. Defaults to gitctx.Client.
	VCS    VCS
	Logger *log.Logger
}

// Source resolves declared and observed commits.
type Source struct {
	reg       Registry
	dev       bool
	cacheFile string
	vcs       VCS
	logger    *log.Logger
}

// New creates a Source over reg.
func New(reg Registry, opts Options) *Source {
	s := &Source{
		reg:       reg,
		dev:       opts.Development,
		cacheFile: opts.CacheFile,
		vcs:       opts.VCS,
		logger:    opts.Logger,
	}
	if s.cacheFile == "" {
		s.cacheFile = DefaultCacheFile
	}
	if s.vcs == nil {
		s.vcs = gitctx.Client{}
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	return s
}

// CacheFile returns the commit-cache file name.
func (s *Source) CacheFile() string { return s.cacheFile }

// Declared returns the declared commit of name.
func (s *Source) Declared(name string) Declaration {
	if !s.reg.IsTrackable(name) {
		return Declaration{}
	}
	rec, ok := s.reg.Lookup(name)
	if !ok || rec.Declared == nil {
		return Declaration{}
	}
	return Declaration{ID: commit.Usable(*rec.Declared), Defined: true}
}

// RootFile returns filename inside the root of name, or false when name is
// not trackable.
func (s *Source) RootFile(name, filename string) (string, bool) {
	return s.reg.RootFile(name, filename)
}

// Observed returns the commit reported by the cache file, falling back to the
// VCS query in development mode. It returns commit.Unknown when neither
// channel yields a usable commit.
func (s *Source) Observed(ctx context.Context, name string) commit.ID {
	path, ok := s.RootFile(name, s.cacheFile)
	if !ok {
		return commit.Unknown
	}
	if id := s.readCacheFile(name, path); id.Known() {
		return id
	}
	if !s.dev {
		return commit.Unknown
	}
	root, _ := s.reg.Lookup(name)
	line, err := s.vcs.LatestCommit(ctx, root.RootDir)
	if err != nil {
		s.logger.Debug("vcs query failed", "component", name, "dir", root.RootDir, "err", err)
		return commit.Unknown
	}
	return commit.Usable(line)
}

func (s *Source) readCacheFile(name, path string) commit.ID {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("cache file unreadable", "component", name, "path", path, "err", err)
		}
		return commit.Unknown
	}
	id := commit.Usable(string(data))
	if !id.Known() {
		s.logger.Debug("cache file has no usable commit", "component", name, "path", path)
	}
	return id
}
