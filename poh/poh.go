// Package poh implements the Proof of History clock: a serial SHA-256 hash
// chain. The chain's length measures elapsed time (each step is one hash of
// the previous state) and its mix-in points commit to outside content in
// order. Producing the chain is inherently sequential; anyone holding the
// claimed output can verify a step independently, which is what makes batch
// verification parallel.
package poh

import "github.com/kairolabs/kairochain/crypto"

// TickMarker is the 32-byte constant mixed into the chain by Tick. It is
// derived from a domain-separation string shorter than any serialized
// transaction batch, so it cannot equal a transaction batch digest's
// preimage domain.
var TickMarker = crypto.Sum([]byte("kairochain/poh/tick/v1"))

// Record is the output of an emission step: the resulting chain state and
// the number of hashes applied since the previous emission.
type Record struct {
	ID        crypto.Hash
	NumHashes uint64
}

// Poh is the hash-chain state: the current hash and the count of hashes
// applied since the last emission. It is a plain value owned by a single
// producer; it is never safe for concurrent mutation.
type Poh struct {
	hash      crypto.Hash
	numHashes uint64
}

// New returns a Poh seeded at seed with numHashes already accumulated.
func New(seed crypto.Hash, numHashes uint64) *Poh {
	return &Poh{hash: seed, numHashes: numHashes}
}

// Hash advances the chain by one empty step.
func (p *Poh) Hash() {
	p.hash = crypto.Sum(p.hash[:])
	p.numHashes++
}

// Tick applies the final mixing step with TickMarker, returns the resulting
// record, and resets the emission counter.
func (p *Poh) Tick() Record {
	return p.mix(TickMarker)
}

// Record applies the final mixing step with an arbitrary 32-byte digest,
// returns the resulting record, and resets the emission counter.
func (p *Poh) Record(mixin crypto.Hash) Record {
	return p.mix(mixin)
}

func (p *Poh) mix(mixin crypto.Hash) Record {
	p.hash = crypto.SumV(p.hash[:], mixin[:])
	p.numHashes++
	out := Record{ID: p.hash, NumHashes: p.numHashes}
	p.numHashes = 0
	return out
}

// State returns the current hash and the hashes accumulated since the last
// emission, for handing off to a packer that emits several records at once.
func (p *Poh) State() (crypto.Hash, uint64) {
	return p.hash, p.numHashes
}

// Reset resynchronises the state after an external emission.
func (p *Poh) Reset(hash crypto.Hash, numHashes uint64) {
	p.hash = hash
	p.numHashes = numHashes
}

// PendingHashes returns the hashes accumulated since the last emission.
func (p *Poh) PendingHashes() uint64 {
	return p.numHashes
}
