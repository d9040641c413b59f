// Package behavior implements the two node.Behavior variants named in
// §4.4/§4.5: Honest and Malicious. Both are plain structs implementing
// node.Behavior's four methods; neither holds per-node state itself —
// Malicious keeps its watch/attack state on node.Node.BehaviorState so a
// single Behavior value can be shared across nodes (§9's composition
// note).
package behavior

import (
	"fmt"

	"github.com/tolelom/dsimnet/core"
	"github.com/tolelom/dsimnet/node"
)

// DependenciesPresent is the dependency-registry hook named as an open
// question in §9: the source hard-codes it to always-true, so this
// package defaults it the same way. Replacing it lets a future caller
// plug in real dependency tracking without touching Honest itself.
var DependenciesPresent = func(tx core.Transaction) bool { return true }

// Honest implements the straightforward relay-and-mine behavior of §4.4.
type Honest struct{}

// ReceiveClientTx implements node.Behavior.
func (Honest) ReceiveClientTx(n *node.Node, tx core.Transaction) {
	if !n.ConflictFree(tx) || !DependenciesPresent(tx) {
		n.Report.AppendEvent(fmt.Sprintf("node %d: discarding client tx %d", n.ID, tx.ID))
		return
	}
	n.Pool.Add(tx)
	n.RebuildMiningPool()
	n.ConsiderMining(n.Sched.Now())
	n.PropagateTx(tx, 0)
}

// ReceivePropagatedTx implements node.Behavior.
func (Honest) ReceivePropagatedTx(n *node.Node, fromNodeID int64, tx core.Transaction) {
	if n.Pool.Contains(tx.ID) || n.Structure.ContainsTx(tx.ID) {
		n.Report.AppendEvent(fmt.Sprintf("node %d: discarding already-known tx %d", n.ID, tx.ID))
		return
	}
	if !n.ConflictFree(tx) || !DependenciesPresent(tx) {
		n.Report.AppendEvent(fmt.Sprintf("node %d: discarding propagated tx %d", n.ID, tx.ID))
		return
	}
	n.Pool.Add(tx)
	n.RebuildMiningPool()
	n.ConsiderMining(n.Sched.Now())
	n.PropagateTx(tx, fromNodeID)
}

// ReceivePropagatedContainer implements node.Behavior.
func (Honest) ReceivePropagatedContainer(n *node.Node, fromNodeID int64, b *core.Block) {
	if AddToStructure(n, b) {
		n.PropagateBlock(b, fromNodeID)
	}
}

// AddToStructure attempts to attach b to n's structure if it does not
// already overlap and does not conflict with any block already attached
// (§4.2/§4.4 "if the block does not overlap the structure and does not
// conflict"). On success it removes the block's transactions from the
// pool, rebuilds the mining-pool snapshot, reconsiders mining, and logs
// both a BlockLog and StructureLog row. Shared by Honest's container
// handler and Malicious's Watching-state block reception (§9 open
// question: both paths may add the same block, guarded by
// Structure.Contains so the add happens at most once).
func AddToStructure(n *node.Node, b *core.Block) bool {
	if n.Structure.Contains(b.ID) {
		n.Report.AppendEvent(fmt.Sprintf("node %d: discarding already-known block %d", n.ID, b.ID))
		return false
	}
	if n.Structure.ConflictsWithAny(b) {
		n.Report.AppendEvent(fmt.Sprintf("node %d: discarding conflicting block %d", n.ID, b.ID))
		return false
	}
	if err := n.Structure.Add(b); err != nil {
		n.Report.AppendError("StructureError", err.Error())
		return false
	}
	n.RemoveMinedTxs(b)
	n.ConsiderMining(n.Sched.Now())
	n.Report.AppendBlock(n.ID, int64(b.ID), int64(b.Parent), b.Height, b.String(), "received", b.ValidationDiff, b.ValidationCycles)
	place := "attached"
	if !n.Structure.Contains(b.ID) {
		place = "orphan"
	}
	n.Report.AppendStructure(n.ID, int64(b.ID), int64(b.Parent), b.Height, b.String(), place)
	return true
}

// CompleteValidation implements node.Behavior: builds the candidate
// block on top of the current longest tip, attempts to attach it, and —
// if it was not a duplicate — propagates a clone to every peer (§4.4
// "Complete validation").
func (Honest) CompleteValidation(n *node.Node) {
	parent := core.NoParent
	if tip := n.Structure.LongestTip(); tip != nil {
		parent = tip.ID
	}
	b := n.BuildCandidateBlock(parent)

	if err := n.Structure.Add(b); err != nil {
		n.Report.AppendError("StructureError", err.Error())
	} else {
		n.Report.AppendBlock(n.ID, int64(b.ID), int64(b.Parent), b.Height, b.String(), "mined", b.ValidationDiff, b.ValidationCycles)
		n.Report.AppendStructure(n.ID, int64(b.ID), int64(b.Parent), b.Height, b.String(), "attached")
		n.PropagateBlock(b, 0)
	}

	n.RemoveMinedTxs(b)
}
