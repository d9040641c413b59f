package scheduler

import "container/heap"

// eventQueue is a container/heap priority queue of *Event ordered by
// (FireTime, Seq), giving strict FIFO among events scheduled for the same
// simulated instant (§4.1 "Ordering rule").
type eventQueue []*Event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].FireTime != q[j].FireTime {
		return q[i].FireTime < q[j].FireTime
	}
	return q[i].Seq < q[j].Seq
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) {
	*q = append(*q, x.(*Event))
}

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

var _ heap.Interface = (*eventQueue)(nil)
