package simrand

import (
	"encoding/binary"
	"math/rand"

	"golang.org/x/crypto/blake2b"
)

// DeriveSeed folds a run label (e.g. "run-7") into baseSeed with BLAKE2b-256
// so that a `sim.numSimulations.From/.To` sweep gets distinct but
// reproducible per-run seeds without any shared, ambient counter.
func DeriveSeed(runLabel string, baseSeed int64) int64 {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(baseSeed))
	h, _ := blake2b.New256(nil)
	h.Write(buf[:])
	h.Write([]byte(runLabel))
	sum := h.Sum(nil)
	return int64(binary.BigEndian.Uint64(sum[:8]) &^ (1 << 63))
}

// New returns a *rand.Rand seeded deterministically from seed.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
