package core

import "github.com/tolelom/dsimnet/simerr"

// Blockchain is one node's local view of the block DAG: a tree rooted at
// an implicit genesis, plus an orphan pool for blocks whose parent hasn't
// arrived yet. It is the per-node "Blockchain Structure" of §3/§4.2.
//
// This structure is purely in-memory: a simulation run lives and dies
// within one process, and a node's chain view need not outlive it.
// Durable output lives entirely in the reporter package's logs.
type Blockchain struct {
	blocks  map[BlockID]*Block
	orphans map[BlockID]*Block
	onError func(error)
}

// NewBlockchain returns an empty Blockchain. onError, if non-nil, receives
// every non-fatal StructureError as it occurs (wire it to reporter.ErrorLog).
func NewBlockchain(onError func(error)) *Blockchain {
	if onError == nil {
		onError = func(error) {}
	}
	return &Blockchain{
		blocks:  make(map[BlockID]*Block),
		orphans: make(map[BlockID]*Block),
		onError: onError,
	}
}

// Add attaches block to its declared parent. If block.Parent is NoParent,
// it is treated as extending the current longest tip (§4.2 edge case). If
// the (resolved) parent is unknown, block is classified as an orphan and
// re-examined every time a new block is added. Adding a block that already
// exists (attached or orphaned) is a StructureError with no effect.
func (bc *Blockchain) Add(b *Block) error {
	if _, exists := bc.blocks[b.ID]; exists {
		err := &simerr.StructureError{Op: "add", BlockID: int64(b.ID), Reason: "block already exists"}
		bc.onError(err)
		return err
	}
	if _, exists := bc.orphans[b.ID]; exists {
		err := &simerr.StructureError{Op: "add", BlockID: int64(b.ID), Reason: "block already exists (orphan)"}
		bc.onError(err)
		return err
	}

	parentID := b.Parent
	if parentID == NoParent {
		if tip := bc.LongestTip(); tip != nil {
			parentID = tip.ID
			b.Parent = parentID
		}
	}

	if parentID == NoParent {
		b.Height = 1
		bc.blocks[b.ID] = b
	} else if parent, ok := bc.blocks[parentID]; ok {
		b.Height = parent.Height + 1
		bc.blocks[b.ID] = b
	} else {
		bc.orphans[b.ID] = b
		bc.adoptOrphans()
		return nil
	}

	bc.adoptOrphans()
	return nil
}

// adoptOrphans repeatedly scans the orphan pool for blocks whose parent is
// now known, attaching them (BFS order: a just-adopted block may itself be
// the parent of another orphan).
func (bc *Blockchain) adoptOrphans() {
	for {
		adopted := false
		for id, orphan := range bc.orphans {
			parent, ok := bc.blocks[orphan.Parent]
			if !ok {
				continue
			}
			orphan.Height = parent.Height + 1
			bc.blocks[id] = orphan
			delete(bc.orphans, id)
			adopted = true
		}
		if !adopted {
			return
		}
	}
}

// Contains reports whether a block with this id is attached to the
// structure (orphans do not count — they are not yet "in" the chain).
func (bc *Blockchain) Contains(id BlockID) bool {
	_, ok := bc.blocks[id]
	return ok
}

// GetBlock returns an attached block by id.
func (bc *Blockchain) GetBlock(id BlockID) (*Block, bool) {
	b, ok := bc.blocks[id]
	return b, ok
}

// ContainsTx reports whether any transaction with this id appears in any
// block in the structure, including orphans.
func (bc *Blockchain) ContainsTx(id TxID) bool {
	for _, b := range bc.blocks {
		if b.ContainsTx(id) {
			return true
		}
	}
	for _, b := range bc.orphans {
		if b.ContainsTx(id) {
			return true
		}
	}
	return false
}

// ConflictsWithAny reports whether candidate conflicts with any block
// currently attached to the structure.
func (bc *Blockchain) ConflictsWithAny(candidate *Block) bool {
	for _, b := range bc.blocks {
		if b.ConflictsWith(candidate) {
			return true
		}
	}
	return false
}

// LongestTip returns the attached block of maximum height, ties broken by
// smallest block id. Never returns an orphan. Returns nil for an empty
// structure.
func (bc *Blockchain) LongestTip() *Block {
	var best *Block
	for _, b := range bc.blocks {
		if best == nil || b.Height > best.Height || (b.Height == best.Height && b.ID < best.ID) {
			best = b
		}
	}
	return best
}

// Height returns the height of the longest tip, or 0 for an empty structure.
func (bc *Blockchain) Height() int64 {
	if tip := bc.LongestTip(); tip != nil {
		return tip.Height
	}
	return 0
}

// PathContainsTx walks the chain from the block identified by tipID back
// to genesis and reports whether any block on that single path carries a
// transaction with the given id. This is distinct from ContainsTx, which
// checks every branch: §8 invariant 5 requires checking only the
// post-reveal longest path.
func (bc *Blockchain) PathContainsTx(tipID BlockID, id TxID) bool {
	for cur := tipID; cur != NoParent; {
		b, ok := bc.blocks[cur]
		if !ok {
			return false
		}
		if b.ContainsTx(id) {
			return true
		}
		cur = b.Parent
	}
	return false
}

// OrphanCount returns the number of blocks currently parked as orphans.
func (bc *Blockchain) OrphanCount() int {
	return len(bc.orphans)
}

// BlockCount returns the number of attached blocks.
func (bc *Blockchain) BlockCount() int {
	return len(bc.blocks)
}
