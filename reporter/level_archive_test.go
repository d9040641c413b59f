package reporter

import (
	"testing"

	"github.com/tolelom/dsimnet/internal/testutil"
)

func TestLevelArchiveRoundTrip(t *testing.T) {
	a := NewLevelArchive(testutil.NewMemDB())

	s := NewSet(7, DefaultEnabled(), func() float64 { return 3.0 })
	s.AppendBlock(1, 2, 0, 1, "b1", "mined", 10, 5)
	s.AppendBlock(1, 3, 2, 2, "b2", "mined", 10, 5)

	if err := a.Archive(s); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if len(s.Blocks) != 0 {
		t.Fatal("Archive should drain the Set's buffered rows")
	}

	rows, err := a.ReadBlocks(7)
	if err != nil {
		t.Fatalf("ReadBlocks: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 archived rows, got %d", len(rows))
	}
	if rows[0].BlockID != 2 || rows[1].BlockID != 3 {
		t.Errorf("rows out of order: %+v", rows)
	}
}

func TestLevelArchiveSeparatesSimID(t *testing.T) {
	a := NewLevelArchive(testutil.NewMemDB())

	s1 := NewSet(1, DefaultEnabled(), nil)
	s1.AppendBlock(1, 10, 0, 1, "b", "mined", 1, 1)
	s2 := NewSet(2, DefaultEnabled(), nil)
	s2.AppendBlock(1, 20, 0, 1, "b", "mined", 1, 1)

	if err := a.Archive(s1); err != nil {
		t.Fatal(err)
	}
	if err := a.Archive(s2); err != nil {
		t.Fatal(err)
	}

	rows1, _ := a.ReadBlocks(1)
	rows2, _ := a.ReadBlocks(2)
	if len(rows1) != 1 || rows1[0].BlockID != 10 {
		t.Errorf("sim 1 rows wrong: %+v", rows1)
	}
	if len(rows2) != 1 || rows2[0].BlockID != 20 {
		t.Errorf("sim 2 rows wrong: %+v", rows2)
	}
}
