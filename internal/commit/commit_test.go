package commit

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ID
	}{
		{"empty", "", Unknown},
		{"whitespace only", "  \n\t", Unknown},
		{"short hash", "abc1234", "abc1234"},
		{"trailing newline", "xyz9999\n", "xyz9999"},
		{"full sha truncated", "0123456789abcdef0123456789abcdef01234567", "0123456"},
		{"oneline log output", "abc1234 Fix the thing", "abc1234"},
		{"multi-line keeps first", "def5678\nsecond line", "def5678"},
		{"sentinel", "0000000", Missing},
		{"short input kept", "abc", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.raw); got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestUsable_AlwaysLengthOrUnknown(t *testing.T) {
	inputs := []string{"", "a", "abc", "abcdef", "abcdefg", "abcdefgh", "0000000", " x \n", "0123456789abcdef"}
	for _, in := range inputs {
		id := Usable(in)
		if id != Unknown && len(id) != Length {
			t.Errorf("Usable(%q) = %q, want length %d or unknown", in, id, Length)
		}
	}
}

func TestKind(t *testing.T) {
	if Unknown.Kind() != KindUnknown {
		t.Errorf("Unknown.Kind() = %v, want unknown", Unknown.Kind())
	}
	if Missing.Kind() != KindMissing {
		t.Errorf("Missing.Kind() = %v, want missing", Missing.Kind())
	}
	if ID("abc1234").Kind() != KindHash {
		t.Errorf("hash Kind() = %v, want hash", ID("abc1234").Kind())
	}
}

func TestMissingDistinctFromHash(t *testing.T) {
	if Missing == ID("abc1234") {
		t.Error("sentinel must not equal a real hash")
	}
	if !Missing.Known() {
		t.Error("sentinel should be known")
	}
	if Unknown.Known() {
		t.Error("Unknown should not be known")
	}
}

func TestDisplay(t *testing.T) {
	if got := Unknown.Display(); got != "(unknown)" {
		t.Errorf("Unknown.Display() = %q, want %q", got, "(unknown)")
	}
	if got := ID("abc1234").Display(); got != "abc1234" {
		t.Errorf("Display() = %q, want %q", got, "abc1234")
	}
}
