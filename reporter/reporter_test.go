package reporter

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSetAppendRespectsEnabled(t *testing.T) {
	s := NewSet(1, Enabled{Blocks: true}, func() float64 { return 1.5 })
	s.AppendBlock(1, 2, 0, 1, "b", "mined", 10, 5)
	s.AppendStructure(1, 2, 0, 1, "b", "attached")
	s.AppendAttack(1, "reveal", 9, 2, 1, 3, 1, "desc")
	s.AppendEvent("narration")

	if len(s.Blocks) != 1 {
		t.Fatalf("expected 1 block row, got %d", len(s.Blocks))
	}
	if len(s.Structures) != 0 {
		t.Fatalf("structures disabled, expected 0 rows, got %d", len(s.Structures))
	}
	if len(s.Attacks) != 0 {
		t.Fatalf("attacks disabled, expected 0 rows, got %d", len(s.Attacks))
	}
	if len(s.Events) != 0 {
		t.Fatalf("events disabled, expected 0 rows, got %d", len(s.Events))
	}
}

func TestSetAppendErrorAlwaysRecorded(t *testing.T) {
	s := NewSet(1, Enabled{}, nil)
	s.AppendError("StructureError", "duplicate block")
	if len(s.Errors) != 1 {
		t.Fatalf("errors must record regardless of Enabled flags, got %d", len(s.Errors))
	}
}

func TestOpenWritersAndFlush(t *testing.T) {
	dir := t.TempDir()
	w, files, err := OpenWriters(dir)
	if err != nil {
		t.Fatalf("OpenWriters: %v", err)
	}
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()

	s := NewSet(1, DefaultEnabled(), func() float64 { return 2.0 })
	s.AppendBlock(1, 2, 0, 1, "b", "mined", 10, 5)
	s.AppendError("ConfigError", "bad key")

	if err := s.Flush(w); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	blockPath := filepath.Join(dir, "blocks.csv")
	data, err := os.ReadFile(blockPath)
	if err != nil {
		t.Fatalf("read blocks.csv: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("blocks.csv should not be empty")
	}
}
