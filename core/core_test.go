package core

import "testing"

func TestPoolTopNByFeePerSizeOrdersByDensity(t *testing.T) {
	p := NewPool()
	p.Add(NewTransaction(1, 100, 10)) // density 0.1
	p.Add(NewTransaction(2, 100, 50)) // density 0.5
	p.Add(NewTransaction(3, 100, 30)) // density 0.3

	got := p.TopNByFeePerSize(1000)
	want := []TxID{2, 3, 1}
	if len(got) != len(want) {
		t.Fatalf("got %d txs, want %d", len(got), len(want))
	}
	for i, tx := range got {
		if tx.ID != want[i] {
			t.Errorf("position %d: got tx %d, want %d", i, tx.ID, want[i])
		}
	}
}

func TestPoolTopNByFeePerSizeRespectsByteBudget(t *testing.T) {
	p := NewPool()
	p.Add(NewTransaction(1, 600, 60)) // density 0.1
	p.Add(NewTransaction(2, 600, 60)) // density 0.1

	got := p.TopNByFeePerSize(1000)
	if len(got) != 1 {
		t.Fatalf("got %d txs, want 1 (budget 1000 can only fit one 600-byte tx)", len(got))
	}
}

func TestPoolRemove(t *testing.T) {
	p := NewPool()
	p.Add(NewTransaction(1, 10, 1))
	p.Add(NewTransaction(2, 10, 1))
	p.Remove([]TxID{1})
	if p.Contains(1) {
		t.Error("tx 1 should have been removed")
	}
	if !p.Contains(2) {
		t.Error("tx 2 should still be present")
	}
	if p.Len() != 1 {
		t.Errorf("Len() = %d, want 1", p.Len())
	}
}

func TestBlockchainAddSetsHeightFromParent(t *testing.T) {
	bc := NewBlockchain(nil)
	b1 := NewBlock(1, 0, nil)
	if err := bc.Add(b1); err != nil {
		t.Fatalf("Add(b1): %v", err)
	}
	if b1.Height != 1 {
		t.Errorf("b1.Height = %d, want 1", b1.Height)
	}

	b2 := NewBlock(2, 0, nil)
	b2.Parent = 1
	if err := bc.Add(b2); err != nil {
		t.Fatalf("Add(b2): %v", err)
	}
	if b2.Height != 2 {
		t.Errorf("b2.Height = %d, want 2", b2.Height)
	}
}

func TestBlockchainNoParentExtendsLongestTip(t *testing.T) {
	bc := NewBlockchain(nil)
	b1 := NewBlock(1, 0, nil)
	bc.Add(b1)

	b2 := NewBlock(2, 0, nil) // Parent left as NoParent
	if err := bc.Add(b2); err != nil {
		t.Fatalf("Add(b2): %v", err)
	}
	if b2.Parent != 1 || b2.Height != 2 {
		t.Errorf("b2 = {parent:%d height:%d}, want {parent:1 height:2}", b2.Parent, b2.Height)
	}
}

func TestBlockchainOrphanAdoption(t *testing.T) {
	bc := NewBlockchain(nil)
	b2 := NewBlock(2, 0, nil)
	b2.Parent = 1
	if err := bc.Add(b2); err != nil {
		t.Fatalf("Add(b2): %v", err)
	}
	if bc.Contains(2) {
		t.Error("b2 should be an orphan, not attached")
	}
	if bc.OrphanCount() != 1 {
		t.Errorf("OrphanCount() = %d, want 1", bc.OrphanCount())
	}

	b1 := NewBlock(1, 0, nil)
	if err := bc.Add(b1); err != nil {
		t.Fatalf("Add(b1): %v", err)
	}
	if !bc.Contains(2) {
		t.Error("b2 should have been adopted once b1 arrived")
	}
	if bc.OrphanCount() != 0 {
		t.Errorf("OrphanCount() = %d, want 0 after adoption", bc.OrphanCount())
	}
	got, _ := bc.GetBlock(2)
	if got.Height != 2 {
		t.Errorf("adopted b2.Height = %d, want 2", got.Height)
	}
}

func TestBlockchainLongestTipTieBreakSmallestID(t *testing.T) {
	bc := NewBlockchain(nil)
	b1 := NewBlock(5, 0, nil)
	bc.Add(b1)
	b2a := NewBlock(10, 0, nil)
	b2a.Parent = 5
	bc.Add(b2a)
	b2b := NewBlock(7, 0, nil)
	b2b.Parent = 5
	bc.Add(b2b)

	tip := bc.LongestTip()
	if tip.ID != 7 {
		t.Errorf("LongestTip().ID = %d, want 7 (smallest id at max height)", tip.ID)
	}
}

func TestBlockchainDuplicateAddIsError(t *testing.T) {
	var gotErr error
	bc := NewBlockchain(func(e error) { gotErr = e })
	b1 := NewBlock(1, 0, nil)
	bc.Add(b1)
	if err := bc.Add(NewBlock(1, 0, nil)); err == nil {
		t.Error("expected an error re-adding block id 1")
	}
	if gotErr == nil {
		t.Error("onError callback should have fired")
	}
}

func TestBlockchainContainsTxIncludesOrphans(t *testing.T) {
	bc := NewBlockchain(nil)
	orphan := NewBlock(2, 0, []Transaction{NewTransaction(99, 10, 1)})
	orphan.Parent = 1 // parent unknown -> orphan
	bc.Add(orphan)

	if !bc.ContainsTx(99) {
		t.Error("ContainsTx should see transactions inside orphan blocks")
	}
}

func TestPathContainsTxOnlyFollowsOnePath(t *testing.T) {
	bc := NewBlockchain(nil)
	b1 := NewBlock(1, 0, []Transaction{NewTransaction(10, 1, 1)})
	bc.Add(b1)

	// Two siblings at height 2, only one carries tx 20.
	left := NewBlock(2, 0, []Transaction{NewTransaction(20, 1, 1)})
	left.Parent = 1
	bc.Add(left)
	right := NewBlock(3, 0, nil)
	right.Parent = 1
	bc.Add(right)

	if !bc.PathContainsTx(2, 20) {
		t.Error("path through block 2 should contain tx 20")
	}
	if bc.PathContainsTx(3, 20) {
		t.Error("path through block 3 should not contain tx 20")
	}
}
