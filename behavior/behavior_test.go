package behavior

import (
	"math/rand"
	"testing"

	"github.com/tolelom/dsimnet/core"
	"github.com/tolelom/dsimnet/node"
	"github.com/tolelom/dsimnet/reporter"
	"github.com/tolelom/dsimnet/scheduler"
)

type seqIDs struct{ next int64 }

func (s *seqIDs) Next() int64 { s.next++; return s.next }

func newTestNode(id int64, sched *scheduler.Scheduler) *node.Node {
	bc := core.NewBlockchain(nil)
	rep := reporter.NewSet(1, reporter.DefaultEnabled(), sched.Now)
	n := node.New(id, 100, 10, 1_000_000, 0, 0, sched, bc, &seqIDs{int64(id) * 1000}, rand.New(rand.NewSource(1)), rep)
	n.Behavior = Honest{}
	return n
}

func TestHonestReceiveClientTxAddsAndPropagates(t *testing.T) {
	sched := scheduler.New(0, 0)
	n := newTestNode(1, sched)
	n.Peers = []int64{2}

	tx := core.NewTransaction(1, 100, 5)
	n.Behavior.ReceiveClientTx(n, tx)

	if !n.Pool.Contains(tx.ID) {
		t.Fatal("expected tx to be added to pool")
	}
	if !n.Mining.IsMining() {
		t.Fatal("expected ConsiderMining to start mining given nonzero fee and zero min value")
	}
	if sched.QueueLen() == 0 {
		t.Fatal("expected a propagation event scheduled for the peer")
	}
}

func TestHonestDiscardsConflictingTx(t *testing.T) {
	sched := scheduler.New(0, 0)
	n := newTestNode(1, sched)

	victim := core.NewTransaction(1, 10, 1)
	attacker := core.NewConflictingTransaction(2, 10, 1, victim.ID)
	n.Behavior.ReceiveClientTx(n, victim)
	n.Behavior.ReceiveClientTx(n, attacker)

	if n.Pool.Contains(attacker.ID) {
		t.Fatal("conflicting tx should have been discarded")
	}
}

func TestAddToStructureRejectsDuplicate(t *testing.T) {
	sched := scheduler.New(0, 0)
	n := newTestNode(1, sched)

	b := core.NewBlock(1, 9, nil)
	if !AddToStructure(n, b) {
		t.Fatal("first add should succeed")
	}
	dup := core.NewBlock(1, 9, nil)
	if AddToStructure(n, dup) {
		t.Fatal("duplicate block id should be rejected")
	}
}

func TestMaliciousAttacksOnTargetBlockAtZeroConfirmations(t *testing.T) {
	sched := scheduler.New(0, 0)
	n := newTestNode(1, sched)
	Install(n, core.TxID(10), 0, 0, 0)

	target := core.NewTransaction(10, 50, 1)
	b := core.NewBlock(1, 9, []core.Transaction{target})
	n.Behavior.ReceivePropagatedContainer(n, 2, b)

	st := state(n)
	if st.State != stateAttacking {
		t.Fatalf("with requiredConfirmations=0, expected immediate transition to Attacking, got %v", st.State)
	}
}

func TestMaliciousWaitsForConfirmations(t *testing.T) {
	sched := scheduler.New(0, 0)
	n := newTestNode(1, sched)
	Install(n, core.TxID(10), 2, 0, 0)

	target := core.NewTransaction(10, 50, 1)
	b1 := core.NewBlock(1, 9, []core.Transaction{target})
	n.Behavior.ReceivePropagatedContainer(n, 2, b1)
	if state(n).State != stateWatching {
		t.Fatalf("expected Watching immediately after target block, got %v", state(n).State)
	}

	b2 := core.NewBlock(2, 9, nil)
	b2.Parent = 1
	n.Behavior.ReceivePropagatedContainer(n, 2, b2)
	if state(n).State != stateWatching {
		t.Fatalf("1 confirmation should not be enough, got %v", state(n).State)
	}

	b3 := core.NewBlock(3, 9, nil)
	b3.Parent = 2
	n.Behavior.ReceivePropagatedContainer(n, 2, b3)
	if state(n).State != stateAttacking {
		t.Fatalf("2 confirmations should trigger Attacking, got %v", state(n).State)
	}
}
