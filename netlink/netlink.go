// Package netlink is the external network-link model named in §1's
// scope: a reference bandwidth-delay collaborator behind the node.Link
// interface. The simulation core never depends on this package directly;
// it only depends on node.Link, so a different propagation model can be
// substituted without touching node or behavior.
package netlink

import (
	"math/rand"

	"github.com/tolelom/dsimnet/simrand"
)

// Link models one node's outbound gossip link: a fixed per-hop
// propagation delay (net.propagationTime) plus a size-dependent
// transmission delay drawn from a throughput distribution
// (net.throughputMean/SD, §6).
type Link struct {
	PropagationTime float64
	ThroughputMean  float64
	ThroughputSD    float64
	Rng             *rand.Rand
}

// New returns a Link with the given fixed propagation delay and
// throughput distribution parameters (bytes/sec).
func New(propagationTime, throughputMean, throughputSD float64, rng *rand.Rand) *Link {
	return &Link{PropagationTime: propagationTime, ThroughputMean: throughputMean, ThroughputSD: throughputSD, Rng: rng}
}

// Delay implements node.Link: the fixed hop delay plus size/throughput,
// where throughput is drawn per-call from a LogNormal fit to the
// configured mean/SD (modeling contention on a shared link rather than a
// constant pipe).
func (l *Link) Delay(size int64) float64 {
	if l == nil {
		return 0
	}
	throughput := simrand.LogNormalLatency(l.Rng, l.ThroughputMean, l.ThroughputSD)
	if throughput <= 0 {
		return l.PropagationTime
	}
	return l.PropagationTime + float64(size)/throughput
}
