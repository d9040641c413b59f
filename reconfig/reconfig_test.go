package reconfig

import (
	"math/rand"
	"testing"

	"github.com/tolelom/dsimnet/behavior"
	"github.com/tolelom/dsimnet/core"
	"github.com/tolelom/dsimnet/node"
	"github.com/tolelom/dsimnet/reporter"
	"github.com/tolelom/dsimnet/scheduler"
	"github.com/tolelom/dsimnet/simevent"
)

type seqIDs struct{ next int64 }

func (s *seqIDs) Next() int64 { s.next++; return s.next }

func newTestNode(t *testing.T) *node.Node {
	t.Helper()
	sched := scheduler.New(0, 0)
	bc := core.NewBlockchain(nil)
	rep := reporter.NewSet(1, reporter.DefaultEnabled(), sched.Now)
	n := node.New(3, 2.35597310021e10, 1, 1_000_000, 0, 0, sched, bc, &seqIDs{}, rand.New(rand.NewSource(1)), rep)
	n.Behavior = behavior.Honest{}
	return n
}

// TestApplyHashPowerChangeS7 checks scenario S7 of spec §8.
func TestApplyHashPowerChangeS7(t *testing.T) {
	n := newTestNode(t)
	if err := ApplyHashPowerChange(n, simevent.HashPowerChange{NodeID: 3, NewHashPower: 5.0e10}); err != nil {
		t.Fatalf("ApplyHashPowerChange: %v", err)
	}
	if n.HashPower != 5.0e10 {
		t.Errorf("HashPower = %v, want 5.0e10", n.HashPower)
	}
}

func TestApplyHashPowerChangeRejectsNegative(t *testing.T) {
	n := newTestNode(t)
	if err := ApplyHashPowerChange(n, simevent.HashPowerChange{NodeID: 3, NewHashPower: -1}); err == nil {
		t.Fatal("expected an error for negative hash power")
	}
}

func TestApplyBehaviorChangeInstallsMalicious(t *testing.T) {
	n := newTestNode(t)
	err := ApplyBehaviorChange(n, simevent.BehaviorChange{
		NodeID: 3, NewBehavior: simevent.BehaviorMalicious,
		TargetTxID: 10, RequiredConfirmations: 6,
	})
	if err != nil {
		t.Fatalf("ApplyBehaviorChange: %v", err)
	}
	if _, ok := n.Behavior.(behavior.Malicious); !ok {
		t.Fatalf("expected Malicious behavior installed, got %T", n.Behavior)
	}
}

func TestApplyBehaviorChangeRejectsUnknownKind(t *testing.T) {
	n := newTestNode(t)
	if err := ApplyBehaviorChange(n, simevent.BehaviorChange{NodeID: 3, NewBehavior: "bogus"}); err == nil {
		t.Fatal("expected an error for an unknown behavior kind")
	}
}
