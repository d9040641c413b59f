// Package node implements the per-node runtime shared by every behavior
// variant (§4.3, §9 "shared mining logic"): the mining controller, the
// transaction pool, the blockchain structure, and the scheduler glue
// that turns those into scheduled events. The Behavior interface lives
// here, not in package behavior, so node never imports its own
// implementations — honest and malicious behaviors import node, not the
// reverse.
package node

import (
	"log"
	"math/rand"

	"github.com/tolelom/dsimnet/core"
	"github.com/tolelom/dsimnet/mining"
	"github.com/tolelom/dsimnet/reporter"
	"github.com/tolelom/dsimnet/scheduler"
	"github.com/tolelom/dsimnet/simerr"
	"github.com/tolelom/dsimnet/simevent"
	"github.com/tolelom/dsimnet/simrand"
)

// Behavior is the four-method tagged-variant interface named in §9:
// Honest and Malicious are its two implementations. Every method
// receives the Node it acts on so a Behavior can stay stateless itself
// (Malicious keeps its watch/attack state on the Node, see package
// behavior).
type Behavior interface {
	ReceiveClientTx(n *Node, tx core.Transaction)
	ReceivePropagatedTx(n *Node, fromNodeID int64, tx core.Transaction)
	ReceivePropagatedContainer(n *Node, fromNodeID int64, b *core.Block)
	CompleteValidation(n *Node)
}

// Link abstracts the per-hop propagation delay a node's gossip traverses
// (§6 net.propagationTime, net.throughputMean/SD). Implemented by
// package netlink; kept as an interface here so node has no import-time
// dependency on the distribution machinery.
type Link interface {
	// Delay returns the simulated-time delay for propagating a payload
	// of size bytes to one peer.
	Delay(size int64) float64
}

// IDSource is the minimal id-allocation contract Node needs; satisfied
// by *idalloc.Allocator. Kept as an interface so tests can supply a
// deterministic stub without constructing a real allocator.
type IDSource interface {
	Next() int64
}

// Node is one simulated participant: its mining state, its view of the
// blockchain, its pending transaction pool, and the peers it gossips
// with. BehaviorState is a free-form slot the active Behavior may use to
// keep per-node state across events (Malicious keeps its Idle/
// Watching/Attacking state machine there).
type Node struct {
	ID         int64
	HashPower  float64
	Difficulty float64

	MaxBlockSize   int64
	MinSizeToMine  int64
	MinValueToMine uint64

	Pool       *core.Pool
	MiningPool []core.Transaction
	Structure  *core.Blockchain

	Mining   *mining.Controller
	Behavior Behavior

	BehaviorState any

	Peers []int64
	Link  Link

	Sched  *scheduler.Scheduler
	Blocks IDSource
	Rng    *rand.Rand
	Report *reporter.Set

	miningStartTime float64
}

// New constructs a Node with an empty pool and Idle mining controller.
// Behavior and Peers are installed after construction, once every node
// in the simulation exists (peers and the target behavior reference
// sibling node ids).
func New(id int64, hashPower, difficulty float64, maxBlockSize, minSizeToMine int64, minValueToMine uint64, sched *scheduler.Scheduler, structure *core.Blockchain, blocks IDSource, rng *rand.Rand, report *reporter.Set) *Node {
	return &Node{
		ID:             id,
		HashPower:      hashPower,
		Difficulty:     difficulty,
		MaxBlockSize:   maxBlockSize,
		MinSizeToMine:  minSizeToMine,
		MinValueToMine: minValueToMine,
		Pool:           core.NewPool(),
		Structure:      structure,
		Mining:         mining.NewController(),
		Sched:          sched,
		Blocks:         blocks,
		Rng:            rng,
		Report:         report,
	}
}

// MiningPoolFeeValue sums the fee value of the current mining pool
// snapshot, the quantity the worth-mining predicate compares against
// MinValueToMine (§4.3).
func (n *Node) MiningPoolFeeValue() uint64 {
	var total uint64
	for _, tx := range n.MiningPool {
		total += tx.Fee
	}
	return total
}

// RebuildMiningPool recomputes the mining-pool snapshot as the top-N
// transactions by fee-per-size under MaxBlockSize (§4.3 "Reconstruction").
// Call after every pool mutation, before ConsiderMining.
func (n *Node) RebuildMiningPool() {
	n.MiningPool = n.Pool.TopNByFeePerSize(n.MaxBlockSize)
}

// ConsiderMining implements the §4.3 transition table. t is the current
// simulated time (always n.Sched.Now() in practice; passed explicitly so
// tests can drive it without a live scheduler).
func (n *Node) ConsiderMining(t float64) {
	worth := mining.WorthMining(n.MiningPoolFeeValue(), n.MinValueToMine)

	switch {
	case !n.Mining.IsMining() && worth:
		duration := simrand.PoWDuration(n.Rng, n.HashPower, n.Difficulty)
		n.miningStartTime = t
		ev := n.Sched.Schedule(simevent.KindValidationComplete, t+duration, simevent.ValidationComplete{NodeID: n.ID})
		n.Mining.Start(ev)
	case n.Mining.IsMining() && !worth:
		n.Mining.Abandon()
	}
}

// CompleteMining is invoked by the simulation's ValidationComplete
// handler. It resets the controller to Idle, hands off to the active
// Behavior to build and place the candidate block, then re-invokes
// ConsiderMining — the "stop and restart" rule of §4.4. Resetting first
// means a mining attempt the Behavior itself starts (Malicious does so
// when it enters Attacking) stays the controller's pending event.
func (n *Node) CompleteMining() {
	if !n.Mining.IsMining() {
		n.onAssertionError("CompleteMining", "ValidationComplete fired while controller was Idle")
		return
	}

	n.Mining.Reset()
	n.Behavior.CompleteValidation(n)
	n.ConsiderMining(n.Sched.Now())
}

// BuildCandidateBlock snapshots the current mining pool into a new,
// not-yet-attached block with validation metadata stamped. Behaviors
// call this from CompleteValidation; the parent and final placement are
// each Behavior's own decision (§4.4 vs §4.5 diverge here).
func (n *Node) BuildCandidateBlock(parent core.BlockID) *core.Block {
	duration := n.Sched.Now() - n.miningStartTime
	b := core.NewBlock(core.BlockID(n.Blocks.Next()), n.ID, n.MiningPool)
	b.Parent = parent
	b.ValidationSimTime = n.Sched.Now()
	b.ValidationDiff = n.Difficulty
	b.ValidationCycles = n.HashPower * duration
	return b
}

// RemoveMinedTxs deletes every transaction in block b from the pool and
// rebuilds the mining-pool snapshot, per the post-mining bookkeeping
// shared by both behaviors (§4.4 "Afterwards").
func (n *Node) RemoveMinedTxs(b *core.Block) {
	n.Pool.Remove(b.TxIDs())
	n.RebuildMiningPool()
}

// PropagateTx schedules a TxPropagation event to every peer except
// excludeFrom (the peer tx was just received from, to avoid immediate
// echo). Delay comes from Link if installed, else fires with no added
// delay beyond the scheduler's own ordering.
func (n *Node) PropagateTx(tx core.Transaction, excludeFrom int64) {
	for _, peer := range n.Peers {
		if peer == excludeFrom {
			continue
		}
		delay := n.linkDelay(int64(tx.Size))
		n.Sched.Schedule(simevent.KindTxPropagation, n.Sched.Now()+delay, simevent.TxPropagation{
			FromNodeID: n.ID, ToNodeID: peer, Tx: tx,
		})
	}
}

// PropagateBlock schedules a ContainerPropagation event carrying a clone
// of b to every peer except excludeFrom.
func (n *Node) PropagateBlock(b *core.Block, excludeFrom int64) {
	for _, peer := range n.Peers {
		if peer == excludeFrom {
			continue
		}
		delay := n.linkDelay(b.Size())
		n.Sched.Schedule(simevent.KindContainerPropagation, n.Sched.Now()+delay, simevent.ContainerPropagation{
			FromNodeID: n.ID, ToNodeID: peer, Block: b.Clone(),
		})
	}
}

func (n *Node) linkDelay(size int64) float64 {
	if n.Link == nil {
		return 0
	}
	return n.Link.Delay(size)
}

func (n *Node) onAssertionError(where, reason string) {
	err := &simerr.AssertionError{Where: where, Reason: reason}
	if n.Report != nil {
		n.Report.AppendError("AssertionError", err.Error())
	}
	log.Fatalf("[node] FATAL: %v", err)
}

// ConflictFree reports whether tx has no conflicting counterpart already
// known to the pool or the structure (§4.4 "conflict-free iff...").
func (n *Node) ConflictFree(tx core.Transaction) bool {
	if !tx.HasConflict() {
		return true
	}
	if n.Pool.Contains(tx.ConflictPeerID) {
		return false
	}
	return !n.Structure.ContainsTx(tx.ConflictPeerID)
}
