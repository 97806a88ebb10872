package patch

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/dshills/reviser/internal/commit"
	"github.com/dshills/reviser/internal/component"
)

// Skip reasons reported by Apply.
const (
	ReasonApplied     = ""
	ReasonNoMatch     = "no declaration or anchor matched"
	ReasonUnchanged   = "declaration already up to date"
	ReasonWouldShrink = "replacement would shrink the source"
)

// Apply embeds id in text. It returns the new text and an empty reason when
// a change was made; otherwise it returns text unchanged with the reason the
// patch was skipped.
func Apply(d Dialect, text, className string, id commit.ID) (string, string) {
	var out string
	if loc := d.declaration.FindStringSubmatchIndex(text); loc != nil {
		// Only the literal (group 2) changes; a trailing comment survives.
		out = text[:loc[4]] + string(id) + text[loc[5]:]
	} else if d.present.MatchString(text) {
		// Declared in a form we cannot rewrite; inserting would redeclare it.
		return text, ReasonNoMatch
	} else {
		anchor := d.anchor(className)
		loc := anchor.FindStringIndex(text)
		if loc == nil {
			return text, ReasonNoMatch
		}
		out = text[:loc[1]] + d.line(id) + text[loc[1]:]
	}

	if out == "" || len(out) < len(text) {
		return text, ReasonWouldShrink
	}
	if out == text {
		return text, ReasonUnchanged
	}
	return out, ReasonApplied
}

// Lookup is the subset of the component registry the patcher needs.
type Lookup interface {
	Lookup(name string) (component.Record, bool)
}

// Patcher applies declarations to component source files.
type Patcher struct {
	reg    Lookup
	logger *log.Logger
}

// New creates a Patcher.
func New(reg Lookup, logger *log.Logger) *Patcher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Patcher{reg: reg, logger: logger}
}

// Patch embeds id in the declaration file of name. It reports whether the
// file was rewritten. Skipped patches are logged and return false with a nil
// error; only I/O failures are returned.
func (p *Patcher) Patch(name string, id commit.ID) (bool, error) {
	rec, ok := p.reg.Lookup(name)
	if !ok {
		return false, fmt.Errorf("%w: %s", component.ErrUnknownComponent, name)
	}
	path := rec.SourcePath()
	if path == "" {
		p.logger.Debug("patch skipped", "component", name, "reason", "no source file")
		return false, nil
	}
	if !id.Known() {
		p.logger.Debug("patch skipped", "component", name, "reason", "unknown commit")
		return false, nil
	}
	d, err := DialectFor(rec.Dialect, path)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("reading source file: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading source file: %w", err)
	}

	out, reason := Apply(d, string(data), rec.ClassName(), id)
	if reason != ReasonApplied {
		if reason == ReasonUnchanged {
			p.logger.Debug("patch skipped", "component", name, "reason", reason)
		} else {
			p.logger.Warn("patch skipped", "component", name, "file", path, "reason", reason)
		}
		return false, nil
	}

	if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("writing source file: %w", err)
	}
	p.logger.Info("source patched", "component", name, "file", path, "commit", id)
	return true, nil
}

// ReadDeclaration loads the declared commit literal from the record's
// source file. It returns false when there is no file or no declaration.
func ReadDeclaration(rec component.Record) (string, bool, error) {
	path := rec.SourcePath()
	if path == "" {
		return "", false, nil
	}
	d, err := DialectFor(rec.Dialect, path)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading source file: %w", err)
	}
	lit, ok := d.Extract(string(data))
	return lit, ok, nil
}
