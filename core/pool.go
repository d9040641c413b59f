package core

import "sort"

// Pool is an insertion-ordered collection of transactions, unique by id
// (Add rejects a second transaction with the same id): a node's pending pool, or
// the mining-pool snapshot currently being mined. It supports containment
// by id, top-selection by fee/size descending under a byte budget, and
// bulk removal by group — the three operations §3 requires of a
// Transaction Group.
//
// Pool is not safe for concurrent use: per §5 there is exactly one
// goroutine driving the scheduler, so no locking is needed here.
type Pool struct {
	txs   map[TxID]Transaction
	order []TxID // insertion order, used for deterministic iteration
}

// NewPool returns an empty Pool.
func NewPool() *Pool {
	return &Pool{txs: make(map[TxID]Transaction)}
}

// Add inserts tx. Returns false if a transaction with the same id is
// already present.
func (p *Pool) Add(tx Transaction) bool {
	if _, exists := p.txs[tx.ID]; exists {
		return false
	}
	p.txs[tx.ID] = tx
	p.order = append(p.order, tx.ID)
	return true
}

// Contains reports whether a transaction with this id is present.
func (p *Pool) Contains(id TxID) bool {
	_, ok := p.txs[id]
	return ok
}

// Get returns the transaction with this id, if present.
func (p *Pool) Get(id TxID) (Transaction, bool) {
	tx, ok := p.txs[id]
	return tx, ok
}

// Len returns the number of transactions currently pooled.
func (p *Pool) Len() int {
	return len(p.txs)
}

// TotalFeeValue sums the fee of every pooled transaction. The worth-mining
// predicate (§4.3) does not use it: node.Node.MiningPoolFeeValue sums the
// mining-pool snapshot instead.
func (p *Pool) TotalFeeValue() uint64 {
	var total uint64
	for _, tx := range p.txs {
		total += tx.Fee
	}
	return total
}

// TotalSize sums the byte size of every pooled transaction. Informational
// only per §4.3 ("A size threshold exists but is informational").
func (p *Pool) TotalSize() int64 {
	var total int64
	for _, tx := range p.txs {
		total += tx.Size
	}
	return total
}

// All returns every pooled transaction in insertion order.
func (p *Pool) All() []Transaction {
	out := make([]Transaction, 0, len(p.order))
	for _, id := range p.order {
		if tx, ok := p.txs[id]; ok {
			out = append(out, tx)
		}
	}
	return out
}

// Remove deletes the named transactions from the pool. Called after a
// block mined from the pool's snapshot is committed.
func (p *Pool) Remove(ids []TxID) {
	if len(ids) == 0 {
		return
	}
	removed := make(map[TxID]bool, len(ids))
	for _, id := range ids {
		delete(p.txs, id)
		removed[id] = true
	}
	filtered := p.order[:0]
	for _, id := range p.order {
		if !removed[id] {
			filtered = append(filtered, id)
		}
	}
	p.order = filtered
}

// TopNByFeePerSize returns the highest fee/size transactions, most valuable
// first, such that their cumulative size does not exceed maxBytes. This is
// the selection rule the mining controller uses to rebuild a node's
// mining-pool snapshot (§4.3 "Reconstruction").
func (p *Pool) TopNByFeePerSize(maxBytes int64) []Transaction {
	all := p.All()
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].FeePerSize() != all[j].FeePerSize() {
			return all[i].FeePerSize() > all[j].FeePerSize()
		}
		return all[i].ID < all[j].ID
	})
	var selected []Transaction
	var used int64
	for _, tx := range all {
		if maxBytes > 0 && used+tx.Size > maxBytes {
			continue
		}
		selected = append(selected, tx)
		used += tx.Size
	}
	return selected
}
