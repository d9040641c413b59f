// Package simulation is the top-level orchestrator: it builds the node
// set from a config.Config, wires the scheduler's event handlers to the
// node/behavior/reconfig packages, and drives one run to completion
// (§2's "SYSTEM OVERVIEW" wiring, §5's concurrency model — exactly one
// scheduler, no shared state across nodes).
package simulation

import (
	"fmt"
	"math/rand"

	"github.com/tolelom/dsimnet/behavior"
	"github.com/tolelom/dsimnet/config"
	"github.com/tolelom/dsimnet/core"
	"github.com/tolelom/dsimnet/idalloc"
	"github.com/tolelom/dsimnet/netlink"
	"github.com/tolelom/dsimnet/node"
	"github.com/tolelom/dsimnet/reconfig"
	"github.com/tolelom/dsimnet/reporter"
	"github.com/tolelom/dsimnet/scheduler"
	"github.com/tolelom/dsimnet/simevent"
	"github.com/tolelom/dsimnet/simrand"
	"github.com/tolelom/dsimnet/workload"
)

// Simulation is one run: a scheduler, a node registry, and the shared
// id allocators and report log that run owns (§9 "Global static
// counters" — replaced here by a per-run IdAllocator rather than
// ambient process state).
type Simulation struct {
	Config *config.Config
	SimID  int

	Sched    *scheduler.Scheduler
	Nodes    map[int64]*node.Node
	NodeIDs  []int64
	Report   *reporter.Set
	BlockIDs *idalloc.Allocator
	TxIDs    *idalloc.Allocator
	Rng      *rand.Rand
}

// Build constructs a Simulation for run simID, deriving its seed from
// baseSeed via simrand.DeriveSeed so independent parallel runs of the
// same config remain individually reproducible (§5 "determinism").
func Build(cfg *config.Config, simID int, baseSeed int64) *Simulation {
	seed := simrand.DeriveSeed(fmt.Sprintf("run-%d", simID), baseSeed)
	rng := simrand.New(seed)

	sched := scheduler.New(cfg.TerminateAtTime, 0)
	report := reporter.NewSet(simID, cfg.Reporter, sched.Now)

	sim := &Simulation{
		Config:   cfg,
		SimID:    simID,
		Sched:    sched,
		Nodes:    make(map[int64]*node.Node),
		Report:   report,
		BlockIDs: idalloc.New(),
		TxIDs:    idalloc.New(),
		Rng:      rng,
	}

	sim.buildNodes()
	sim.registerHandlers()
	sim.scheduleWorkload()
	sim.scheduleConfiguredHashPowerChanges()

	return sim
}

func (sim *Simulation) buildNodes() {
	cfg := sim.Config
	total := cfg.NumHonestNodes + cfg.NumMaliciousNodes

	var ids []int64
	for i := 0; i < total; i++ {
		ids = append(ids, int64(i+1))
	}
	sim.NodeIDs = ids

	for i, id := range ids {
		hashPower := simrand.PositiveNormal(sim.Rng, cfg.HashPowerMean, cfg.HashPowerSD)
		structure := core.NewBlockchain(func(err error) { sim.Report.AppendError("StructureError", err.Error()) })
		link := netlink.New(cfg.PropagationTime, cfg.ThroughputMean, cfg.ThroughputSD, sim.Rng)

		n := node.New(id, hashPower, cfg.PowDifficulty, cfg.MaxBlockSize, cfg.MinSizeToMine, cfg.MinValueToMine,
			sim.Sched, structure, sim.BlockIDs, sim.Rng, sim.Report)
		n.Link = link

		isMalicious := i >= cfg.NumHonestNodes
		if isMalicious {
			behavior.Install(n, core.TxID(cfg.TargetTransaction), cfg.RequiredConfirmations, cfg.MinChainLength, cfg.MaxChainLength)
		} else {
			n.Behavior = behavior.Honest{}
		}

		sim.Nodes[id] = n
	}

	for _, id := range ids {
		var peers []int64
		for _, other := range ids {
			if other != id {
				peers = append(peers, other)
			}
		}
		sim.Nodes[id].Peers = peers
	}
}

func (sim *Simulation) scheduleWorkload() {
	cfg := sim.Config
	workload.Generate(sim.Sched, sim.NodeIDs, sim.TxIDs, sim.Rng, workload.Params{
		Lambda:             cfg.WorkloadLambda,
		NumTransactions:    cfg.WorkloadNumTransactions,
		TxSizeMean:         cfg.TxSizeMean,
		TxSizeSD:           cfg.TxSizeSD,
		TxFeeValueMean:     cfg.TxFeeValueMean,
		TxFeeValueSD:       cfg.TxFeeValueSD,
		HasConflicts:       cfg.HasConflicts,
		ConflictDispersion: cfg.ConflictsDispersion,
		ConflictLikelihood: cfg.ConflictsLikelihood,
	})
}

func (sim *Simulation) scheduleConfiguredHashPowerChanges() {
	for _, c := range sim.Config.HashPowerChanges {
		sim.Sched.Schedule(simevent.KindHashPowerChange, c.Time, simevent.HashPowerChange{
			NodeID: c.NodeID, NewHashPower: c.NewPower,
		})
	}
}

func (sim *Simulation) registerHandlers() {
	sim.Sched.RegisterHandler(simevent.KindTxArrival, sim.handleTxArrival)
	sim.Sched.RegisterHandler(simevent.KindTxPropagation, sim.handleTxPropagation)
	sim.Sched.RegisterHandler(simevent.KindContainerPropagation, sim.handleContainerPropagation)
	sim.Sched.RegisterHandler(simevent.KindValidationComplete, sim.handleValidationComplete)
	sim.Sched.RegisterHandler(simevent.KindHashPowerChange, sim.handleHashPowerChange)
	sim.Sched.RegisterHandler(simevent.KindBehaviorChange, sim.handleBehaviorChange)
}

func (sim *Simulation) lookupNode(kind string, id int64) *node.Node {
	n, ok := sim.Nodes[id]
	if !ok {
		sim.Report.AppendError("EventError", fmt.Sprintf("dispatch to unknown node %d for event %s", id, kind))
		return nil
	}
	return n
}

func (sim *Simulation) handleTxArrival(_ *scheduler.Scheduler, ev *scheduler.Event) {
	p := ev.Payload.(simevent.TxArrival)
	n := sim.lookupNode(ev.Kind, p.NodeID)
	if n == nil {
		return
	}
	n.Behavior.ReceiveClientTx(n, p.Tx)
}

func (sim *Simulation) handleTxPropagation(_ *scheduler.Scheduler, ev *scheduler.Event) {
	p := ev.Payload.(simevent.TxPropagation)
	n := sim.lookupNode(ev.Kind, p.ToNodeID)
	if n == nil {
		return
	}
	n.Behavior.ReceivePropagatedTx(n, p.FromNodeID, p.Tx)
}

func (sim *Simulation) handleContainerPropagation(_ *scheduler.Scheduler, ev *scheduler.Event) {
	p := ev.Payload.(simevent.ContainerPropagation)
	n := sim.lookupNode(ev.Kind, p.ToNodeID)
	if n == nil {
		return
	}
	n.Behavior.ReceivePropagatedContainer(n, p.FromNodeID, p.Block)
}

func (sim *Simulation) handleValidationComplete(_ *scheduler.Scheduler, ev *scheduler.Event) {
	p := ev.Payload.(simevent.ValidationComplete)
	n := sim.lookupNode(ev.Kind, p.NodeID)
	if n == nil {
		return
	}
	n.CompleteMining()
}

func (sim *Simulation) handleHashPowerChange(_ *scheduler.Scheduler, ev *scheduler.Event) {
	p := ev.Payload.(simevent.HashPowerChange)
	n := sim.lookupNode(ev.Kind, p.NodeID)
	if n == nil {
		return
	}
	if err := reconfig.ApplyHashPowerChange(n, p); err != nil {
		sim.Report.AppendError("EventError", err.Error())
	}
}

func (sim *Simulation) handleBehaviorChange(_ *scheduler.Scheduler, ev *scheduler.Event) {
	p := ev.Payload.(simevent.BehaviorChange)
	n := sim.lookupNode(ev.Kind, p.NodeID)
	if n == nil {
		return
	}
	if err := reconfig.ApplyBehaviorChange(n, p); err != nil {
		sim.Report.AppendError("EventError", err.Error())
	}
}

// Run drives the scheduler to completion and returns its termination
// stats (§4.1's three termination conditions).
func (sim *Simulation) Run() scheduler.Stats {
	return sim.Sched.Run()
}
