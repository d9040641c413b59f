// Package reconfig applies the two scheduled reconfiguration events of
// §4.6: HashPowerChange and BehaviorChange. Both are plain functions over
// a node registry rather than scheduler.Handlers themselves, so the
// simulation package can wrap them with the EventError bookkeeping
// common to every handler (§7 "dispatch to a node id that is not
// present").
package reconfig

import (
	"github.com/tolelom/dsimnet/behavior"
	"github.com/tolelom/dsimnet/core"
	"github.com/tolelom/dsimnet/node"
	"github.com/tolelom/dsimnet/simerr"
	"github.com/tolelom/dsimnet/simevent"
)

// ApplyHashPowerChange implements §4.6's HashPowerChange: the node's
// hash rate changes for future PoW draws. An in-flight validation event
// keeps its already-sampled fire time untouched — re-sampling it would
// require a memorylessness assumption this code does not rely on.
func ApplyHashPowerChange(n *node.Node, ev simevent.HashPowerChange) error {
	if ev.NewHashPower < 0 {
		return &simerr.EventError{EventKind: simevent.KindHashPowerChange, NodeID: n.ID, Reason: "new hash power cannot be negative"}
	}
	n.HashPower = ev.NewHashPower
	return nil
}

// ApplyBehaviorChange implements §4.6's BehaviorChange: replaces the
// node's behavior strategy. The swap always happens immediately; a
// supplied requiredConfirmations only seeds the new Malicious watch
// state and does not gate whether the swap itself happens.
func ApplyBehaviorChange(n *node.Node, ev simevent.BehaviorChange) error {
	switch ev.NewBehavior {
	case simevent.BehaviorHonest:
		n.Behavior = behavior.Honest{}
		n.BehaviorState = nil
	case simevent.BehaviorMalicious:
		behavior.Install(n, ev.TargetTxID, ev.RequiredConfirmations, 0, 0)
	default:
		return &simerr.EventError{EventKind: simevent.KindBehaviorChange, NodeID: n.ID, Reason: "unknown behavior kind: " + string(ev.NewBehavior)}
	}
	return nil
}

// TargetAlreadyBuried reports whether targetTxID is already confirmed by
// at least requiredConfirmations blocks in n's current structure — used
// only for the informational check named in §4.6 ("if ... already
// buried ... swap immediately"); since the swap always happens
// immediately regardless, this is exposed for callers that want to log
// the distinction rather than to gate behavior.
func TargetAlreadyBuried(n *node.Node, targetTxID core.TxID, requiredConfirmations int) bool {
	tip := n.Structure.LongestTip()
	if tip == nil {
		return false
	}
	for cur := tip.ID; cur != core.NoParent; {
		b, ok := n.Structure.GetBlock(cur)
		if !ok {
			return false
		}
		if b.ContainsTx(targetTxID) {
			return tip.Height-b.Height >= int64(requiredConfirmations)
		}
		cur = b.Parent
	}
	return false
}
