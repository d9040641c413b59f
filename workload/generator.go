// Package workload is the external Transaction Generator named in §1's
// scope: it is not part of the simulator core, but a reference collaborator
// that schedules TxArrival events the way a real workload driver would,
// using the distributions named in §6 (workload.*).
package workload

import (
	"math/rand"

	"github.com/tolelom/dsimnet/core"
	"github.com/tolelom/dsimnet/scheduler"
	"github.com/tolelom/dsimnet/simevent"
	"github.com/tolelom/dsimnet/simrand"
)

// Params mirrors the workload.* configuration keys of §6.
type Params struct {
	Lambda             float64
	NumTransactions    int
	TxSizeMean         float64
	TxSizeSD           float64
	TxFeeValueMean     float64
	TxFeeValueSD       float64
	HasConflicts       bool
	ConflictDispersion float64 // how many recent txs back a conflict may target
	ConflictLikelihood float64 // per-tx probability of declaring a conflict
}

// IDSource is the minimal id-allocation contract Generate needs;
// satisfied by *idalloc.Allocator.
type IDSource interface {
	Next() int64
}

// Generate schedules p.NumTransactions TxArrival events onto sched,
// arriving via a Poisson process at rate p.Lambda and round-robined
// across nodeIDs. Returns the ids of every generated transaction in
// arrival order.
func Generate(sched *scheduler.Scheduler, nodeIDs []int64, ids IDSource, rng *rand.Rand, p Params) []core.TxID {
	if len(nodeIDs) == 0 || p.NumTransactions <= 0 {
		return nil
	}

	generated := make([]core.Transaction, 0, p.NumTransactions)
	txIDs := make([]core.TxID, 0, p.NumTransactions)
	t := sched.Now()

	for i := 0; i < p.NumTransactions; i++ {
		t += simrand.InterArrival(rng, p.Lambda)

		size := int64(simrand.PositiveNormal(rng, p.TxSizeMean, p.TxSizeSD))
		fee := uint64(simrand.PositiveNormal(rng, p.TxFeeValueMean, p.TxFeeValueSD))
		id := core.TxID(ids.Next())

		var tx core.Transaction
		if p.HasConflicts && len(generated) > 0 && simrand.Bernoulli(rng, p.ConflictLikelihood) {
			peer := pickConflictPeer(rng, generated, p.ConflictDispersion)
			tx = core.NewConflictingTransaction(id, size, fee, peer)
		} else {
			tx = core.NewTransaction(id, size, fee)
		}
		generated = append(generated, tx)
		txIDs = append(txIDs, id)

		node := nodeIDs[i%len(nodeIDs)]
		sched.Schedule(simevent.KindTxArrival, t, simevent.TxArrival{NodeID: node, Tx: tx})
	}

	return txIDs
}

// pickConflictPeer chooses a conflict target among the last `dispersion`
// generated transactions (clamped to what's available), biasing toward
// recent transactions the way a double-spend attempt naturally would.
func pickConflictPeer(rng *rand.Rand, generated []core.Transaction, dispersion float64) core.TxID {
	window := int(dispersion)
	if window <= 0 || window > len(generated) {
		window = len(generated)
	}
	idx := len(generated) - 1 - rng.Intn(window)
	return generated[idx].ID
}
