package util

import (
	"strings"
	"testing"
)

func TestNewIDPrefixAndLength(t *testing.T) {
	id := NewID("scn")
	if !strings.HasPrefix(id, "scn_") {
		t.Fatalf("NewID() = %q, want scn_ prefix", id)
	}
	if got := len(strings.TrimPrefix(id, "scn_")); got != 32 {
		t.Fatalf("token length = %d, want 32", got)
	}
	if bare := NewID(""); strings.Contains(bare, "_") || len(bare) != 32 {
		t.Fatalf("NewID(\"\") = %q", bare)
	}
}

func TestNewIDDoesNotRepeat(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		id := NewID("")
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate id %q after %d calls", id, i)
		}
		seen[id] = struct{}{}
	}
}
