package config

import (
	"strings"
	"testing"
)

// TestParseHashPowerChangesS8 checks scenario S8 of spec §8.
func TestParseHashPowerChangesS8(t *testing.T) {
	_, err := ParseHashPowerChanges("{0:-5.0E10:10000}")
	if err == nil || !strings.Contains(err.Error(), "cannot be negative") {
		t.Fatalf("expected a 'cannot be negative' error, got %v", err)
	}

	specs, err := ParseHashPowerChanges("{}")
	if err != nil {
		t.Fatalf("empty braces should parse cleanly, got %v", err)
	}
	if len(specs) != 0 {
		t.Fatalf("empty braces should yield an empty schedule, got %v", specs)
	}

	specs, err = ParseHashPowerChanges("{ 0 : 5.0E10 : 10000 , 1 : 3.0E10 : 20000 }")
	if err != nil {
		t.Fatalf("well-formed multi-entry string should parse, got %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(specs))
	}
	if specs[0].NodeID != 0 || specs[0].NewPower != 5.0e10 || specs[0].Time != 10000 {
		t.Errorf("entry 0 wrong: %+v", specs[0])
	}
	if specs[1].NodeID != 1 || specs[1].NewPower != 3.0e10 || specs[1].Time != 20000 {
		t.Errorf("entry 1 wrong: %+v", specs[1])
	}
}

func TestParseHashPowerChangesRejectsMalformed(t *testing.T) {
	cases := []string{
		"0:5.0:10",          // missing brackets
		"{0:5.0}",           // wrong arity
		"{a:5.0:10}",        // non-numeric nodeID
		"{0:b:10}",          // non-numeric power
		"{0:5.0:-10}",       // negative time
	}
	for _, c := range cases {
		if _, err := ParseHashPowerChanges(c); err == nil {
			t.Errorf("expected error for input %q", c)
		}
	}
}
