package patch

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/dshills/reviser/internal/commit"
)

// Dialect describes the declaration syntax of one source language.
type Dialect struct {
	Name string
	// declaration matches an existing declaration; group 1 is everything up
	// to the opening quote, group 2 the literal, group 3 the closing quote.
	declaration *regexp.Regexp
	// present matches any assignment to the constant, in whatever spelling.
	present *regexp.Regexp
	// anchor builds the pattern of the line a new declaration follows.
	anchor func(className string) *regexp.Regexp
	// line renders an inserted declaration, including surrounding newlines.
	line func(id commit.ID) string
}

var (
	// Class is the class-constant layout:
	//
	//	class Name extends Base {
	//		const LATEST_COMMIT = 'abc1234';
	Class = Dialect{
		Name:        "class",
		declaration: regexp.MustCompile(`(const\s+LATEST_COMMIT\s*=\s*')([^'\n]*)(')`),
		present:     regexp.MustCompile(`\bLATEST_COMMIT\b\s*=`),
		anchor: func(className string) *regexp.Regexp {
			return regexp.MustCompile(`class\s+` + regexp.QuoteMeta(className) + `(?:\s+extends\s+\w+)?\s*\{[ \t]*\r?\n`)
		},
		line: func(id commit.ID) string {
			return fmt.Sprintf("\tconst LATEST_COMMIT = '%s';\n\n", id)
		},
	}

	// Go is the generated-file layout, a package-level constant right after
	// the package clause:
	//
	//	package version
	//
	//	const LatestCommit = "abc1234"
	Go = Dialect{
		Name:        "go",
		declaration: regexp.MustCompile(`(const\s+LatestCommit\s*=\s*")([^"\n]*)(")`),
		present:     regexp.MustCompile(`\bLatestCommit\b\s*=`),
		anchor: func(string) *regexp.Regexp {
			return regexp.MustCompile(`(?m)^package\s+\w+[ \t]*(?://[^\n]*)?\r?\n`)
		},
		line: func(id commit.ID) string {
			return fmt.Sprintf("\nconst LatestCommit = %q\n", string(id))
		},
	}
)

// DialectFor resolves a dialect by name, falling back to the file extension
// of sourceFile when name is empty.
func DialectFor(name, sourceFile string) (Dialect, error) {
	switch name {
	case "class":
		return Class, nil
	case "go":
		return Go, nil
	case "":
		if filepath.Ext(sourceFile) == ".go" {
			return Go, nil
		}
		return Class, nil
	default:
		return Dialect{}, fmt.Errorf("unknown dialect %q", name)
	}
}

// Extract returns the literal of the first declaration in text.
func (d Dialect) Extract(text string) (string, bool) {
	m := d.declaration.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[2], true
}
