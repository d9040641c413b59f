package core

import (
	"fmt"

	"github.com/tolelom/dsimnet/crypto"
)

// BlockID identifies a Block. Zero means "no parent" (genesis-adjacent, or
// unresolved at creation time — see Blockchain.Add's edge case handling).
type BlockID int64

// NoParent is the sentinel BlockID meaning "extend whatever the current
// longest tip is" — the edge case §4.2 describes for blocks the mining
// controller scheduled before it knew about a reorg, and also, naturally,
// the very first block of the chain (there is no real genesis Block; the
// root is implicit).
const NoParent BlockID = 0

// Block is a node's view of a mined or received container of transactions.
// Blocks are mutable only between creation and first insertion into a
// Blockchain (to let the chain structure set Parent/Height); after
// insertion they are logically immutable. Propagation hands recipients a
// copy (Clone) so each can stamp its own view without aliasing.
type Block struct {
	ID                BlockID
	Height            int64
	Parent            BlockID
	Transactions      []Transaction
	ValidatorNodeID   int64
	ValidationSimTime float64
	ValidationDiff    float64
	ValidationCycles  float64
	LastEvent         string
}

// NewBlock creates a candidate block with no parent yet assigned; the
// Blockchain resolves Parent (and Height) when the block is added.
func NewBlock(id BlockID, validatorNodeID int64, txs []Transaction) *Block {
	cp := make([]Transaction, len(txs))
	copy(cp, txs)
	return &Block{
		ID:              id,
		Parent:          NoParent,
		Transactions:    cp,
		ValidatorNodeID: validatorNodeID,
	}
}

// ContainsTx reports whether this single block carries a transaction with
// the given id.
func (b *Block) ContainsTx(id TxID) bool {
	for _, tx := range b.Transactions {
		if tx.ID == id {
			return true
		}
	}
	return false
}

// ConflictsWith reports whether any transaction in b declares a conflict
// with a transaction in other, or vice versa.
func (b *Block) ConflictsWith(other *Block) bool {
	for _, tx := range b.Transactions {
		if tx.HasConflict() && other.ContainsTx(tx.ConflictPeerID) {
			return true
		}
	}
	for _, tx := range other.Transactions {
		if tx.HasConflict() && b.ContainsTx(tx.ConflictPeerID) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of b suitable for handing to a propagation
// recipient, so that the recipient's bookkeeping never aliases the
// sender's copy.
func (b *Block) Clone() *Block {
	cp := *b
	cp.Transactions = make([]Transaction, len(b.Transactions))
	copy(cp.Transactions, b.Transactions)
	return &cp
}

// Size returns the total byte size of b's transactions, the quantity
// propagation delay models scale with.
func (b *Block) Size() int64 {
	var total int64
	for _, tx := range b.Transactions {
		total += tx.Size
	}
	return total
}

// ContentHash returns a short content hash identifying b's id, lineage and
// transaction set. Logs use it instead of a raw struct dump so two blocks
// with the same id but different contents (a hidden-chain block built on a
// different fork, say) are visibly distinguishable in the CSV output.
func (b *Block) ContentHash() string {
	return crypto.Hash([]byte(fmt.Sprintf("%d|%d|%d|%v", b.ID, b.Parent, b.Height, b.TxIDs())))[:12]
}

func (b *Block) String() string {
	return fmt.Sprintf("block#%d(parent=%d,height=%d,txs=%d,hash=%s)", b.ID, b.Parent, b.Height, len(b.Transactions), b.ContentHash())
}

// TxIDs returns the ids of every transaction in the block, in order.
func (b *Block) TxIDs() []TxID {
	ids := make([]TxID, len(b.Transactions))
	for i, tx := range b.Transactions {
		ids[i] = tx.ID
	}
	return ids
}
