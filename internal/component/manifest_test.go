package component

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const yamlManifest = `base: WPLib
components:
  - name: WPLib
    rootDir: wplib
    sourceFile: wplib.php
  - name: MyApp
    rootDir: app
    sourceFile: version.go
    application: true
    declared: abc1234
`

const tomlManifest = `base = "WPLib"

[[components]]
name = "WPLib"
rootDir = "wplib"

[[components]]
name = "MyApp"
rootDir = "app"
application = true
`

const jsonManifest = `{
  "base": "WPLib",
  "components": [
    {"name": "WPLib", "rootDir": "wplib"},
    {"name": "MyApp", "rootDir": "app", "application": true, "dialect": "go"}
  ]
}`

func TestLoadManifest_Formats(t *testing.T) {
	tests := []struct {
		file    string
		content string
	}{
		{"components.yaml", yamlManifest},
		{"components.toml", tomlManifest},
		{"components.json", jsonManifest},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			m, err := LoadManifest(path)
			if err != nil {
				t.Fatalf("LoadManifest error: %v", err)
			}
			if m.Base != "WPLib" {
				t.Errorf("Base = %q, want %q", m.Base, "WPLib")
			}
			if len(m.Components) != 2 {
				t.Fatalf("got %d components, want 2", len(m.Components))
			}
			absDir, _ := filepath.Abs(dir)
			if want := filepath.Join(absDir, "app"); m.Components[1].RootDir != want {
				t.Errorf("RootDir = %q, want %q", m.Components[1].RootDir, want)
			}

			reg, err := m.Registry()
			if err != nil {
				t.Fatalf("Registry error: %v", err)
			}
			if app, ok := reg.App(); !ok || app != "MyApp" {
				t.Errorf("App() = %q, %v, want MyApp, true", app, ok)
			}
		})
	}
}

func TestParseManifest_Declared(t *testing.T) {
	m, err := ParseManifest([]byte(yamlManifest), ".yml")
	if err != nil {
		t.Fatalf("ParseManifest error: %v", err)
	}
	if m.Components[0].Declared != nil {
		t.Errorf("WPLib Declared = %v, want nil", *m.Components[0].Declared)
	}
	if d := m.Components[1].Declared; d == nil || *d != "abc1234" {
		t.Errorf("MyApp Declared = %v, want abc1234", d)
	}
}

func TestParseManifest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		ext  string
	}{
		{"unsupported ext", "base: x", ".ini"},
		{"syntax error", "{not json", ".json"},
		{"missing base", `{"components":[{"name":"a","rootDir":"."}]}`, ".json"},
		{"no components", `{"base":"a","components":[]}`, ".json"},
		{"component without root", `{"base":"a","components":[{"name":"a"}]}`, ".json"},
		{"bad dialect", `{"base":"a","components":[{"name":"a","rootDir":".","dialect":"ruby"}]}`, ".json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.data), tt.ext)
			if !errors.Is(err, ErrInvalidManifest) {
				t.Errorf("ParseManifest error = %v, want ErrInvalidManifest", err)
			}
		})
	}
}

func TestLoadManifest_Missing(t *testing.T) {
	if _, err := LoadManifest(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing manifest")
	}
}

func TestManifest_RegistryDuplicateApp(t *testing.T) {
	m := &Manifest{
		Base: "WPLib",
		Components: []Record{
			{Name: "A", RootDir: "/a", Application: true},
			{Name: "B", RootDir: "/b", Application: true},
		},
	}
	if _, err := m.Registry(); !errors.Is(err, ErrDuplicateApplication) {
		t.Errorf("Registry error = %v, want ErrDuplicateApplication", err)
	}
}
