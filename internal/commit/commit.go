package commit

import "strings"

// Length is the number of characters in a short commit hash.
const Length = 7

// ID is a normalized short commit identifier.
type ID string

const (
	// Unknown means no commit data was available.
	Unknown ID = ""
	// Missing is the explicit sentinel for "no commit recorded".
	Missing ID = "0000000"
)

// Kind classifies an ID.
type Kind int

const (
	// KindUnknown is the Kind of Unknown.
	KindUnknown Kind = iota
	// KindMissing is the Kind of Missing.
	KindMissing
	// KindHash is the Kind of any other ID.
	KindHash
)

// String returns the lowercase name of k.
func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindHash:
		return "hash"
	default:
		return "unknown"
	}
}

// Parse normalizes raw text into an ID. Surrounding whitespace is trimmed,
// only the first line is considered, and the result is truncated to Length
// characters. Shorter input is kept verbatim and reports Valid() == false.
func Parse(raw string) ID {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if len(s) > Length {
		s = s[:Length]
	}
	return ID(s)
}

// Usable parses raw and collapses anything that is not exactly Length
// characters to Unknown.
func Usable(raw string) ID {
	id := Parse(raw)
	if !id.Valid() {
		return Unknown
	}
	return id
}

// Kind reports whether id is unknown, the missing sentinel, or a hash.
func (id ID) Kind() Kind {
	switch id {
	case Unknown:
		return KindUnknown
	case Missing:
		return KindMissing
	default:
		return KindHash
	}
}

// Known reports whether id carries any data, including the sentinel.
func (id ID) Known() bool { return id != Unknown }

// Valid reports whether id has the normalized short form.
func (id ID) Valid() bool { return len(id) == Length }

// String returns id as a plain string.
func (id ID) String() string { return string(id) }

// Display renders id for humans, showing a placeholder for Unknown.
func (id ID) Display() string {
	if id == Unknown {
		return "(unknown)"
	}
	return string(id)
}
