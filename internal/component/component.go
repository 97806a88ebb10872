package component

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
)

var (
	// ErrUnknownComponent is returned when a name is not registered.
	ErrUnknownComponent = errors.New("unknown component")
	// ErrDuplicateApplication is returned when a second application is registered.
	ErrDuplicateApplication = errors.New("application component already registered")
	// ErrDuplicateComponent is returned when a name is registered twice.
	ErrDuplicateComponent = errors.New("component already registered")
)

// Record is the metadata the host provides for one component.
type Record struct {
	Name string `json:"name" yaml:"name" toml:"name" validate:"required"`
	// RootDir is the component's root directory. The commit-cache file and
	// the VCS query are scoped to it.
	RootDir string `json:"rootDir" yaml:"rootDir" toml:"rootDir" validate:"required"`
	// SourceFile is the file carrying the commit declaration, relative to
	// RootDir unless absolute. Empty disables source patching.
	SourceFile string `json:"sourceFile,omitempty" yaml:"sourceFile,omitempty" toml:"sourceFile,omitempty"`
	// Class is the class name anchoring insertions for the class dialect.
	// Defaults to Name.
	Class string `json:"class,omitempty" yaml:"class,omitempty" toml:"class,omitempty"`
	// Dialect selects the declaration syntax: "class" or "go". Empty picks
	// by SourceFile extension.
	Dialect string `json:"dialect,omitempty" yaml:"dialect,omitempty" toml:"dialect,omitempty" validate:"omitempty,oneof=class go"`
	// Application marks the record as deriving from the application base.
	Application bool `json:"application,omitempty" yaml:"application,omitempty" toml:"application,omitempty"`
	// Declared is the compiled-in commit declaration, nil when the component
	// never declared one.
	Declared *string `json:"declared,omitempty" yaml:"declared,omitempty" toml:"declared,omitempty"`
}

// SourcePath returns the absolute-or-root-relative path of the declaration file.
func (r Record) SourcePath() string {
	if r.SourceFile == "" {
		return ""
	}
	if filepath.IsAbs(r.SourceFile) {
		return r.SourceFile
	}
	return filepath.Join(r.RootDir, r.SourceFile)
}

// ClassName returns the anchor class name.
func (r Record) ClassName() string {
	if r.Class != "" {
		return r.Class
	}
	return r.Name
}

// Registry holds component records keyed by name.
type Registry struct {
	base    string
	app     string
	records map[string]Record
}

// NewRegistry creates an empty registry whose base identity is base.
func NewRegistry(base string) *Registry {
	return &Registry{
		base:    base,
		records: make(map[string]Record),
	}
}

// Register adds a record. A second application record is rejected.
func (r *Registry) Register(rec Record) error {
	if rec.Name == "" {
		return fmt.Errorf("registering component: empty name")
	}
	if _, exists := r.records[rec.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateComponent, rec.Name)
	}
	if rec.Application && rec.Name != r.base {
		if r.app != "" {
			return fmt.Errorf("%w: %s (have %s)", ErrDuplicateApplication, rec.Name, r.app)
		}
		r.app = rec.Name
	}
	r.records[rec.Name] = rec
	return nil
}

// SetDeclared replaces the declared commit of a registered component.
func (r *Registry) SetDeclared(name, declared string) error {
	rec, ok := r.records[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownComponent, name)
	}
	rec.Declared = &declared
	r.records[name] = rec
	return nil
}

// Lookup returns the record for name.
func (r *Registry) Lookup(name string) (Record, bool) {
	rec, ok := r.records[name]
	return rec, ok
}

// Base returns the base identity.
func (r *Registry) Base() string { return r.base }

// App returns the application identity, if one is registered.
func (r *Registry) App() (string, bool) { return r.app, r.app != "" }

// IsTrackable reports whether name is the base identity or the registered
// application.
func (r *Registry) IsTrackable(name string) bool {
	if _, ok := r.records[name]; !ok {
		return false
	}
	return name == r.base || (r.app != "" && name == r.app)
}

// Tracked returns the trackable component names, base first.
func (r *Registry) Tracked() []string {
	var names []string
	if _, ok := r.records[r.base]; ok {
		names = append(names, r.base)
	}
	if r.app != "" {
		names = append(names, r.app)
	}
	return names
}

// Names returns every registered name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.records))
	for name := range r.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RootDir returns the root directory of a trackable component.
func (r *Registry) RootDir(name string) (string, bool) {
	if !r.IsTrackable(name) {
		return "", false
	}
	return r.records[name].RootDir, true
}

// RootFile joins filename onto the root directory of a trackable component.
func (r *Registry) RootFile(name, filename string) (string, bool) {
	root, ok := r.RootDir(name)
	if !ok {
		return "", false
	}
	return filepath.Join(root, filename), true
}
