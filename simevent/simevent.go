// Package simevent defines the event kinds and payload types that flow
// through the scheduler (§3 "Event"). The scheduler itself (package
// scheduler) is domain-agnostic; this package is the domain vocabulary
// node/behavior/reconfig code shares to read and write scheduler payloads.
package simevent

import "github.com/tolelom/dsimnet/core"

// Kind values for scheduler.Event.Kind.
const (
	KindTxArrival            = "tx_arrival"
	KindTxPropagation        = "tx_propagation"
	KindContainerPropagation = "container_propagation"
	KindValidationComplete   = "validation_complete"
	KindHashPowerChange      = "hashpower_change"
	KindBehaviorChange       = "behavior_change"
)

// TxArrival is the payload for a client submitting tx directly to NodeID.
type TxArrival struct {
	NodeID int64
	Tx     core.Transaction
}

// TxPropagation is the payload for a transaction gossiped from one node to
// another.
type TxPropagation struct {
	FromNodeID int64
	ToNodeID   int64
	Tx         core.Transaction
}

// ContainerPropagation is the payload for a block gossiped to ToNodeID.
type ContainerPropagation struct {
	FromNodeID int64
	ToNodeID   int64
	Block      *core.Block
}

// ValidationComplete is the payload for a node's PoW timer firing.
type ValidationComplete struct {
	NodeID int64
}

// HashPowerChange is the payload for a scheduled hash-power reconfiguration
// (§4.6).
type HashPowerChange struct {
	NodeID      int64
	NewHashPower float64
}

// BehaviorKind names a Behavior implementation for BehaviorChange, so the
// event payload stays a plain value even though the actual
// node.Behavior the simulation wiring installs is an interface.
type BehaviorKind string

const (
	BehaviorHonest    BehaviorKind = "honest"
	BehaviorMalicious BehaviorKind = "malicious"
)

// BehaviorChange is the payload for a scheduled behavior swap (§4.6).
type BehaviorChange struct {
	NodeID                int64
	NewBehavior           BehaviorKind
	TargetTxID            core.TxID
	RequiredConfirmations int
}
