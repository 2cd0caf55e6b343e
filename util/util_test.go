package util

import (
	"errors"
	"strings"
	"testing"
)

func TestContainsAndIndexOf(t *testing.T) {
	xs := []string{"a", "b", "c"}
	if !Contains(xs, "b") {
		t.Error("expected Contains to find 'b'")
	}
	if Contains(xs, "z") {
		t.Error("did not expect Contains to find 'z'")
	}
	if got := IndexOf(xs, "c"); got != 2 {
		t.Errorf("IndexOf('c') = %d, want 2", got)
	}
	if got := IndexOf(xs, "z"); got != -1 {
		t.Errorf("IndexOf('z') = %d, want -1", got)
	}
}

func TestUnique(t *testing.T) {
	got := Unique([]int{1, 2, 1, 3, 2})
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("Unique = %v, want [1 2 3]", got)
	}
}

func TestOrderedKeys(t *testing.T) {
	m := map[string]int{"c": 1, "a": 2, "b": 3}
	got := OrderedKeys(m)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("OrderedKeys = %v, want [a b c]", got)
	}
}

func TestMergeMaps(t *testing.T) {
	got := MergeMaps(map[string]int{"a": 1, "b": 1}, map[string]int{"b": 2})
	if got["a"] != 1 || got["b"] != 2 {
		t.Errorf("MergeMaps = %v, want map[a:1 b:2]", got)
	}
	if MergeMaps[int]() == nil {
		t.Error("MergeMaps with no args should return an empty map, not nil")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 3, "hel"},
		{"hello", 0, ""},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.input, tt.maxLen); got != tt.expected {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.expected)
		}
	}
}

func TestPanicHandler(t *testing.T) {
	if err := PanicHandler("noop", nil); err != nil {
		t.Errorf("nil recover should give nil error, got %v", err)
	}

	err := PanicHandler("ctx", "boom")
	if err == nil || !strings.Contains(err.Error(), "ctx") {
		t.Errorf("expected error naming the context, got %v", err)
	}

	cause := errors.New("root cause")
	err = PanicHandler("ctx", cause)
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped cause, got %v", err)
	}
}
