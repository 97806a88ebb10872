package component

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrInvalidManifest is returned when a manifest fails to parse or validate.
var ErrInvalidManifest = errors.New("invalid component manifest")

// Manifest is the on-disk description of the components a host tracks.
type Manifest struct {
	// Base is the identity of the base framework component.
	Base       string   `json:"base" yaml:"base" toml:"base" validate:"required"`
	Components []Record `json:"components" yaml:"components" toml:"components" validate:"required,min=1,dive"`
}

var validate = validator.New()

// LoadManifest reads a manifest file. The format is chosen by extension:
// .yaml/.yml, .toml, or .json. Relative root directories are resolved
// against the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := ParseManifest(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolving manifest directory: %w", err)
	}
	for i := range m.Components {
		if !filepath.IsAbs(m.Components[i].RootDir) {
			m.Components[i].RootDir = filepath.Join(dir, m.Components[i].RootDir)
		}
	}
	return m, nil
}

// ParseManifest decodes and validates manifest data. ext selects the format
// and includes the leading dot.
func ParseManifest(data []byte, ext string) (*Manifest, error) {
	var m Manifest
	var err error
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	case ".toml":
		err = toml.Unmarshal(data, &m)
	case ".json":
		err = json.Unmarshal(data, &m)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidManifest, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if err := validate.Struct(m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	return &m, nil
}

// Registry builds a registry from the manifest.
func (m *Manifest) Registry() (*Registry, error) {
	reg := NewRegistry(m.Base)
	for _, rec := range m.Components {
		if err := reg.Register(rec); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
