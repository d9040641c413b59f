package simulation

import (
	"testing"

	"github.com/tolelom/dsimnet/config"
)

func baseConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.NumHonestNodes = 3
	cfg.NumMaliciousNodes = 0
	cfg.WorkloadNumTransactions = 20
	cfg.WorkloadLambda = 2
	cfg.TxFeeValueMean = 5
	cfg.MinValueToMine = 0
	cfg.TerminateAtTime = 5000
	cfg.HashPowerMean = 10
	cfg.PowDifficulty = 1
	return cfg
}

func TestBuildCreatesExpectedNodeCount(t *testing.T) {
	sim := Build(baseConfig(), 1, 42)
	if len(sim.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(sim.Nodes))
	}
	for _, n := range sim.Nodes {
		if len(n.Peers) != 2 {
			t.Errorf("node %d should see 2 peers in a fully-connected mesh, got %d", n.ID, len(n.Peers))
		}
	}
}

func TestRunTerminatesAndGrowsLongestTip(t *testing.T) {
	sim := Build(baseConfig(), 1, 42)
	stats := sim.Run()
	if stats.Dispatched == 0 {
		t.Fatal("expected at least one dispatched event")
	}
	for _, n := range sim.Nodes {
		if n.Structure.Height() < 0 {
			t.Errorf("node %d has negative height", n.ID)
		}
	}
}

func TestRunWithMaliciousNodeReachesAttackOrIdle(t *testing.T) {
	cfg := baseConfig()
	cfg.NumHonestNodes = 3
	cfg.NumMaliciousNodes = 1
	cfg.RequiredConfirmations = 0
	cfg.TargetTransaction = 1
	cfg.WorkloadNumTransactions = 50
	cfg.WorkloadLambda = 5

	sim := Build(cfg, 1, 7)
	stats := sim.Run()
	if stats.Dispatched == 0 {
		t.Fatal("expected dispatched events")
	}
	if len(sim.Nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(sim.Nodes))
	}
}

func TestBuildSchedulesConfiguredHashPowerChanges(t *testing.T) {
	cfg := baseConfig()
	cfg.HashPowerChanges = []config.HashPowerChangeSpec{{NodeID: 1, NewPower: 99, Time: 10}}
	sim := Build(cfg, 1, 1)
	if sim.Sched.QueueLen() == 0 {
		t.Fatal("expected at least the hashpower-change event to be queued")
	}
}
