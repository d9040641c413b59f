package behavior

import (
	"github.com/tolelom/dsimnet/core"
	"github.com/tolelom/dsimnet/node"
)

// watchState is the Malicious node's private state machine position
// (§4.5): Idle -> Watching -> Attacking -> (reveal, synchronously) -> Idle.
type watchState int

const (
	stateIdle watchState = iota
	stateWatching
	stateAttacking
)

// DefaultMinChainLength and DefaultMaxChainLength are the reveal-rule
// thresholds named in §4.5.
const (
	DefaultMinChainLength = 2
	DefaultMaxChainLength = 15
)

// maliciousState is the per-node attack state, kept on node.Node.BehaviorState
// so a single stateless Malicious value can be shared across every
// malicious node in the simulation.
type maliciousState struct {
	State watchState

	TargetTxID            core.TxID
	RequiredConfirmations int
	MinChainLength        int
	MaxChainLength         int

	TargetBlockID     core.BlockID
	TargetBlockHeight int64
	TargetBlockParent core.BlockID

	PublicHeightAtAttackStart int64
	ForkBase                  core.BlockID
	HiddenChain               []*core.Block
}

// Malicious implements the double-spend attack behavior of §4.5. It
// gossips transactions exactly like Honest (the "shadow" named in the
// spec) and diverges only in block handling.
type Malicious struct {
	honest Honest
}

// Install attaches Malicious behavior to n with a fresh Idle attack
// state targeting targetTxID, gating the Watching -> Attacking
// transition on requiredConfirmations. minChainLength/maxChainLength of
// 0 fall back to the §4.5 defaults.
func Install(n *node.Node, targetTxID core.TxID, requiredConfirmations, minChainLength, maxChainLength int) {
	if minChainLength <= 0 {
		minChainLength = DefaultMinChainLength
	}
	if maxChainLength <= 0 {
		maxChainLength = DefaultMaxChainLength
	}
	n.Behavior = Malicious{}
	n.BehaviorState = &maliciousState{
		State:                 stateIdle,
		TargetTxID:            targetTxID,
		RequiredConfirmations: requiredConfirmations,
		MinChainLength:        minChainLength,
		MaxChainLength:        maxChainLength,
	}
}

func state(n *node.Node) *maliciousState {
	st, ok := n.BehaviorState.(*maliciousState)
	if !ok {
		st = &maliciousState{MinChainLength: DefaultMinChainLength, MaxChainLength: DefaultMaxChainLength}
		n.BehaviorState = st
	}
	return st
}

// ReceiveClientTx implements node.Behavior: tx handling is identical to
// Honest (§4.5 "runs an honest shadow for transaction propagation").
func (m Malicious) ReceiveClientTx(n *node.Node, tx core.Transaction) {
	m.honest.ReceiveClientTx(n, tx)
}

// ReceivePropagatedTx implements node.Behavior: identical to Honest.
func (m Malicious) ReceivePropagatedTx(n *node.Node, fromNodeID int64, tx core.Transaction) {
	m.honest.ReceivePropagatedTx(n, fromNodeID, tx)
}

// ReceivePropagatedContainer implements node.Behavior: the block is
// added to the public structure exactly as Honest would, then the
// attack state machine reacts to it per §4.5.
func (m Malicious) ReceivePropagatedContainer(n *node.Node, fromNodeID int64, b *core.Block) {
	st := state(n)
	if !AddToStructure(n, b) {
		return
	}
	n.PropagateBlock(b, fromNodeID)
	m.onPublicBlockAdded(n, st, b)
}

// CompleteValidation implements node.Behavior. While Attacking it builds
// a block on the hidden fork and never attaches or propagates it; in
// every other state it behaves like Honest, with the attack state
// machine re-examined against whatever got mined.
func (m Malicious) CompleteValidation(n *node.Node) {
	st := state(n)
	if st.State != stateAttacking {
		m.mineHonestLike(n, st)
		return
	}

	parent := st.ForkBase
	if len(st.HiddenChain) > 0 {
		parent = st.HiddenChain[len(st.HiddenChain)-1].ID
	}
	b := n.BuildCandidateBlock(parent)
	b.Height = m.nextHiddenHeight(n, st, parent)
	st.HiddenChain = append(st.HiddenChain, b)
	n.Report.AppendStructure(n.ID, int64(b.ID), int64(b.Parent), b.Height, b.String(), "hidden")

	m.checkReveal(n, st)
	n.RemoveMinedTxs(b)
}

// mineHonestLike runs the §4.4 CompleteValidation sequence (used while
// Idle or Watching) and then reacts to the mined block the same way an
// externally-received block would.
func (m Malicious) mineHonestLike(n *node.Node, st *maliciousState) {
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
		m.onPublicBlockAdded(n, st, b)
	}

	n.RemoveMinedTxs(b)
}

// onPublicBlockAdded reacts to a block b just attached to the public
// structure (from any source — own mining or propagation), advancing
// the Idle -> Watching -> Attacking machine per §4.5.
func (m Malicious) onPublicBlockAdded(n *node.Node, st *maliciousState, b *core.Block) {
	switch st.State {
	case stateIdle:
		if b.ContainsTx(st.TargetTxID) {
			m.enterWatching(st, b)
			m.checkConfirmations(n, st)
		}
	case stateWatching:
		m.checkConfirmations(n, st)
	case stateAttacking:
		m.checkReveal(n, st)
	}
}

func (m Malicious) enterWatching(st *maliciousState, bTarget *core.Block) {
	st.State = stateWatching
	st.TargetBlockID = bTarget.ID
	st.TargetBlockHeight = bTarget.Height
	st.TargetBlockParent = bTarget.Parent
}

// checkConfirmations implements §4.5's "Confirmation counting": derived
// from the current structure on every call, never from an accumulator.
func (m Malicious) checkConfirmations(n *node.Node, st *maliciousState) {
	tip := n.Structure.LongestTip()
	if tip == nil {
		return
	}
	confirmations := tip.Height - st.TargetBlockHeight
	if confirmations >= int64(st.RequiredConfirmations) {
		m.enterAttacking(n, st, tip)
	}
}

func (m Malicious) enterAttacking(n *node.Node, st *maliciousState, tip *core.Block) {
	if tip.ID == st.TargetBlockID {
		st.PublicHeightAtAttackStart = tip.Height - 1
	} else {
		st.PublicHeightAtAttackStart = tip.Height
	}
	st.ForkBase = st.TargetBlockParent
	st.HiddenChain = nil
	st.State = stateAttacking

	n.Pool.Remove([]core.TxID{st.TargetTxID})
	n.RebuildMiningPool()
	n.ConsiderMining(n.Sched.Now())

	n.Report.AppendAttack(n.ID, "Attack Start", int64(st.TargetTxID), int64(st.TargetBlockID), st.TargetBlockHeight, 0, tip.Height, "attack started")
}

// checkReveal implements §4.5's reveal rule, re-evaluated every time a
// public or hidden block is added while Attacking.
func (m Malicious) checkReveal(n *node.Node, st *maliciousState) {
	tip := n.Structure.LongestTip()
	if tip == nil {
		return
	}
	publicGrowth := tip.Height - st.PublicHeightAtAttackStart
	hiddenLen := int64(len(st.HiddenChain))

	if (hiddenLen > publicGrowth && publicGrowth > int64(st.MinChainLength)) || publicGrowth > int64(st.MaxChainLength) {
		m.reveal(n, st)
	}
}

// reveal implements §4.5's Attacking -> Revealing -> Idle transition:
// the hidden chain is attached to the public structure in mining order
// and propagated, then all attack state resets.
func (m Malicious) reveal(n *node.Node, st *maliciousState) {
	parent := st.ForkBase
	var lastID core.BlockID
	var lastHeight int64
	for _, b := range st.HiddenChain {
		b.Parent = parent
		if err := n.Structure.Add(b); err != nil {
			n.Report.AppendError("StructureError", err.Error())
			continue
		}
		n.Report.AppendBlock(n.ID, int64(b.ID), int64(b.Parent), b.Height, b.String(), "revealed", b.ValidationDiff, b.ValidationCycles)
		n.Report.AppendStructure(n.ID, int64(b.ID), int64(b.Parent), b.Height, b.String(), "attached")
		n.PropagateBlock(b, 0)
		parent = b.ID
		lastID = b.ID
		lastHeight = b.Height
	}

	n.Report.AppendAttack(n.ID, "Reveal", int64(st.TargetTxID), int64(lastID), lastHeight, len(st.HiddenChain), n.Structure.Height(), "attack revealed")

	n.Pool.Remove([]core.TxID{st.TargetTxID})
	n.RebuildMiningPool()

	*st = maliciousState{
		State:                 stateIdle,
		TargetTxID:            st.TargetTxID,
		RequiredConfirmations: st.RequiredConfirmations,
		MinChainLength:        st.MinChainLength,
		MaxChainLength:        st.MaxChainLength,
	}
}

func (m Malicious) nextHiddenHeight(n *node.Node, st *maliciousState, parent core.BlockID) int64 {
	if len(st.HiddenChain) > 0 {
		return st.HiddenChain[len(st.HiddenChain)-1].Height + 1
	}
	if pb, ok := n.Structure.GetBlock(parent); ok {
		return pb.Height + 1
	}
	return 1
}
