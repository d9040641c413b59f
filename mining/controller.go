// Package mining implements the per-node proof-of-work decision loop
// (§4.3), shared by every Behavior variant. It is a plain struct owned by
// a node, not a base class Honest/Malicious inherit from — composition
// over inheritance, per §9's design note.
package mining

import "github.com/tolelom/dsimnet/scheduler"

// State is the node's mining state machine position.
type State int

const (
	Idle State = iota
	Mining
)

func (s State) String() string {
	if s == Mining {
		return "mining"
	}
	return "idle"
}

// Controller tracks whether a node is currently mining and, if so, a
// handle to the scheduled ValidationComplete event so it can be cancelled
// (via Event.Ignore) when the mining pool stops being worth mining.
type Controller struct {
	state   State
	pending *scheduler.Event
}

// NewController returns a Controller starting Idle.
func NewController() *Controller {
	return &Controller{state: Idle}
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// IsMining reports whether the controller currently has an outstanding
// validation event.
func (c *Controller) IsMining() bool {
	return c.state == Mining
}

// Start transitions Idle -> Mining, recording ev as the pending validation
// event (§4.3 table, "Idle, worth -> Build ... schedule ... move to
// Mining").
func (c *Controller) Start(ev *scheduler.Event) {
	c.state = Mining
	c.pending = ev
}

// Abandon transitions Mining -> Idle, marking the pending validation event
// ignored so the scheduler discards it silently at its fire time (§4.3
// table, "Mining, no worth -> mark ... ignored; return to Idle").
func (c *Controller) Abandon() {
	if c.pending != nil {
		c.pending.Ignore()
	}
	c.pending = nil
	c.state = Idle
}

// Reset returns the controller to Idle without touching the pending event
// — used when the pending event itself just fired (it doesn't need to be
// ignored, it already ran) and the node is about to reconsider mining.
func (c *Controller) Reset() {
	c.pending = nil
	c.state = Idle
}

// WorthMining is the predicate of §4.3: a mining pool is worth committing
// PoW effort to once its total fee value exceeds minValue. The companion
// size threshold (MinSizeToMine) is informational only and is not
// enforced here.
func WorthMining(totalFeeValue, minValue uint64) bool {
	return totalFeeValue > minValue
}
