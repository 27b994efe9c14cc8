package etag

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	tag := Generate("order", 7, 3)
	if !strings.HasPrefix(tag, `W/"`) || !strings.HasSuffix(tag, `"`) {
		t.Fatalf("Generate() = %q, want weak quoted tag", tag)
	}

	if again := Generate("order", 7, 3); again != tag {
		t.Errorf("Generate() not deterministic: %q vs %q", tag, again)
	}

	tests := []struct {
		name    string
		kind    string
		id      uint
		version int
	}{
		{"next version", "order", 7, 4},
		{"other id", "order", 8, 3},
		{"other kind", "product", 7, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.kind, tt.id, tt.version); got == tag {
				t.Errorf("Generate(%q, %d, %d) collides with %q", tt.kind, tt.id, tt.version, tag)
			}
		})
	}

	if got := Generate("order", 0, 1); got != "" {
		t.Errorf("Generate() for unsaved entity = %q, want empty", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`W/"abc123"`, "abc123"},
		{`"abc123"`, "abc123"},
		{"abc123", "abc123"},
		{` W/"abc" `, "abc"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Parse(tt.input); got != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestMatch(t *testing.T) {
	current := Generate("order", 1, 2)
	stale := Generate("order", 1, 1)

	tests := []struct {
		name    string
		ifMatch string
		current string
		want    bool
	}{
		{"no precondition", "", current, true},
		{"wildcard on existing", "*", current, true},
		{"wildcard on missing", "*", "", false},
		{"same tag", current, current, true},
		{"strong form of same tag", strings.TrimPrefix(current, "W/"), current, true},
		{"stale tag", stale, current, false},
		{"list containing current", stale + ", " + current, current, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Match(tt.ifMatch, tt.current); got != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.ifMatch, tt.current, got, tt.want)
			}
		})
	}
}

func TestNoneMatch(t *testing.T) {
	current := Generate("order", 1, 2)

	if !NoneMatch("", current) {
		t.Error("empty If-None-Match must not short-circuit")
	}
	if NoneMatch(current, current) {
		t.Error("matching If-None-Match must report not modified")
	}
	if !NoneMatch(Generate("order", 1, 1), current) {
		t.Error("stale If-None-Match must proceed")
	}
	if NoneMatch("*", current) {
		t.Error("wildcard must match an existing entity")
	}
	if !NoneMatch("*", "") {
		t.Error("wildcard must not match a missing entity")
	}
}
