package node

import (
	"math/rand"
	"testing"

	"github.com/tolelom/dsimnet/core"
	"github.com/tolelom/dsimnet/reporter"
	"github.com/tolelom/dsimnet/scheduler"
)

type seqIDs struct{ next int64 }

func (s *seqIDs) Next() int64 { s.next++; return s.next }

func newTestNode(t *testing.T, maxBlockSize int64, minValue uint64) *Node {
	t.Helper()
	sched := scheduler.New(1000, 0)
	bc := core.NewBlockchain(nil)
	rep := reporter.NewSet(1, reporter.DefaultEnabled(), sched.Now)
	n := New(1, 100, 10, maxBlockSize, 0, minValue, sched, bc, &seqIDs{}, rand.New(rand.NewSource(1)), rep)
	return n
}

func TestRebuildMiningPoolOrdersByFeePerSize(t *testing.T) {
	n := newTestNode(t, 1000, 0)
	n.Pool.Add(core.NewTransaction(1, 100, 1))
	n.Pool.Add(core.NewTransaction(2, 100, 10))
	n.RebuildMiningPool()
	if len(n.MiningPool) != 2 {
		t.Fatalf("expected both txs to fit, got %d", len(n.MiningPool))
	}
	if n.MiningPool[0].ID != 2 {
		t.Errorf("expected higher fee/size tx first, got %+v", n.MiningPool)
	}
}

func TestConsiderMiningStartsWhenWorthIt(t *testing.T) {
	n := newTestNode(t, 1000, 0)
	n.Pool.Add(core.NewTransaction(1, 100, 5))
	n.RebuildMiningPool()
	n.ConsiderMining(0)
	if !n.Mining.IsMining() {
		t.Fatal("expected controller to start mining once pool is worth it")
	}
}

func TestConsiderMiningIdleWhenPoolEmpty(t *testing.T) {
	n := newTestNode(t, 1000, 0)
	n.RebuildMiningPool()
	n.ConsiderMining(0)
	if n.Mining.IsMining() {
		t.Fatal("empty pool should never be worth mining when minValue is 0 and pool has 0 fee")
	}
}

func TestBuildCandidateBlockStampsMetadata(t *testing.T) {
	n := newTestNode(t, 1000, 0)
	n.Pool.Add(core.NewTransaction(1, 100, 5))
	n.RebuildMiningPool()
	n.ConsiderMining(0)
	n.miningStartTime = 0

	b := n.BuildCandidateBlock(core.NoParent)
	if b.ValidationDiff != n.Difficulty {
		t.Errorf("ValidationDiff = %v, want %v", b.ValidationDiff, n.Difficulty)
	}
	if len(b.Transactions) != 1 {
		t.Errorf("expected candidate block to carry the mining pool snapshot")
	}
}

func TestConflictFreeChecksPoolAndStructure(t *testing.T) {
	n := newTestNode(t, 1000, 0)
	victim := core.NewTransaction(1, 10, 1)
	attacker := core.NewConflictingTransaction(2, 10, 1, victim.ID)

	if !n.ConflictFree(attacker) {
		t.Fatal("should be conflict-free when peer unknown")
	}
	n.Pool.Add(victim)
	if n.ConflictFree(attacker) {
		t.Fatal("should conflict once peer is in the pool")
	}
}
