package component

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry("WPLib")
	for _, rec := range []Record{
		{Name: "WPLib", RootDir: "/srv/wplib"},
		{Name: "MyApp", RootDir: "/srv/app", Application: true},
		{Name: "Helper", RootDir: "/srv/helper"},
	} {
		if err := reg.Register(rec); err != nil {
			t.Fatalf("Register(%s) error: %v", rec.Name, err)
		}
	}
	return reg
}

func TestRegistry_IsTrackable(t *testing.T) {
	reg := newTestRegistry(t)
	tests := []struct {
		name string
		want bool
	}{
		{"WPLib", true},
		{"MyApp", true},
		{"Helper", false},
		{"Nope", false},
	}
	for _, tt := range tests {
		if got := reg.IsTrackable(tt.name); got != tt.want {
			t.Errorf("IsTrackable(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRegistry_Tracked_BaseFirst(t *testing.T) {
	reg := newTestRegistry(t)
	got := reg.Tracked()
	if len(got) != 2 || got[0] != "WPLib" || got[1] != "MyApp" {
		t.Errorf("Tracked() = %v, want [WPLib MyApp]", got)
	}
}

func TestRegistry_Tracked_NoApp(t *testing.T) {
	reg := NewRegistry("WPLib")
	if err := reg.Register(Record{Name: "WPLib", RootDir: "/srv"}); err != nil {
		t.Fatal(err)
	}
	got := reg.Tracked()
	if len(got) != 1 || got[0] != "WPLib" {
		t.Errorf("Tracked() = %v, want [WPLib]", got)
	}
}

func TestRegistry_DuplicateApplication(t *testing.T) {
	reg := newTestRegistry(t)
	err := reg.Register(Record{Name: "OtherApp", RootDir: "/srv/other", Application: true})
	if !errors.Is(err, ErrDuplicateApplication) {
		t.Errorf("Register second app error = %v, want ErrDuplicateApplication", err)
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	reg := newTestRegistry(t)
	err := reg.Register(Record{Name: "Helper", RootDir: "/x"})
	if !errors.Is(err, ErrDuplicateComponent) {
		t.Errorf("Register duplicate error = %v, want ErrDuplicateComponent", err)
	}
}

func TestRegistry_RootFile(t *testing.T) {
	reg := newTestRegistry(t)
	path, ok := reg.RootFile("MyApp", "LATEST_COMMIT")
	if !ok {
		t.Fatal("RootFile(MyApp) not ok")
	}
	if want := filepath.Join("/srv/app", "LATEST_COMMIT"); path != want {
		t.Errorf("RootFile = %q, want %q", path, want)
	}
	if _, ok := reg.RootFile("Helper", "LATEST_COMMIT"); ok {
		t.Error("RootFile for non-trackable component should not be ok")
	}
}

func TestRegistry_SetDeclared(t *testing.T) {
	reg := newTestRegistry(t)
	if err := reg.SetDeclared("MyApp", "abc1234"); err != nil {
		t.Fatalf("SetDeclared error: %v", err)
	}
	rec, _ := reg.Lookup("MyApp")
	if rec.Declared == nil || *rec.Declared != "abc1234" {
		t.Errorf("Declared = %v, want abc1234", rec.Declared)
	}
	if err := reg.SetDeclared("Nope", "abc1234"); !errors.Is(err, ErrUnknownComponent) {
		t.Errorf("SetDeclared unknown error = %v, want ErrUnknownComponent", err)
	}
}

func TestRecord_SourcePathAndClass(t *testing.T) {
	rec := Record{Name: "MyApp", RootDir: "/srv/app", SourceFile: "my-app.php"}
	if got, want := rec.SourcePath(), filepath.Join("/srv/app", "my-app.php"); got != want {
		t.Errorf("SourcePath = %q, want %q", got, want)
	}
	if got := rec.ClassName(); got != "MyApp" {
		t.Errorf("ClassName = %q, want %q", got, "MyApp")
	}
	rec.Class = "My_App"
	if got := rec.ClassName(); got != "My_App" {
		t.Errorf("ClassName = %q, want %q", got, "My_App")
	}
	if got := (Record{RootDir: "/srv"}).SourcePath(); got != "" {
		t.Errorf("SourcePath without file = %q, want empty", got)
	}
}
