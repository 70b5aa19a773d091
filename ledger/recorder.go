package ledger

import (
	"log"

	"github.com/kairolabs/kairochain/core"
	"github.com/kairolabs/kairochain/crypto"
	"github.com/kairolabs/kairochain/poh"
)

// Recorder is the single producer task that owns the PoH state. Between
// transaction batches it advances the clock with empty hashes, emitting a
// tick every hashesPerTick advances; each received batch is drained through
// the packer and mixed into the chain. Emitted entries leave through a
// bounded channel, so a slow consumer back-pressures the clock rather than
// growing an unbounded buffer.
type Recorder struct {
	poh           *poh.Poh
	hashesPerTick uint64
	tickHeight    uint64

	in  <-chan []core.Transaction
	out chan<- []Entry
}

// NewRecorder creates a producer seeded at seed. Batches arrive on in;
// entry batches are published on out in production order.
func NewRecorder(seed crypto.Hash, tickHeight, hashesPerTick uint64, in <-chan []core.Transaction, out chan<- []Entry) *Recorder {
	return &Recorder{
		poh:           poh.New(seed, 0),
		hashesPerTick: hashesPerTick,
		tickHeight:    tickHeight,
		in:            in,
		out:           out,
	}
}

// TickHeight returns the producer's current ledger position.
func (r *Recorder) TickHeight() uint64 {
	return r.tickHeight
}

// Run drives the clock until quit closes or the transaction channel closes.
// There is no partial state to unwind on exit: entries are published
// atomically as whole values.
func (r *Recorder) Run(quit <-chan struct{}) {
	for {
		select {
		case <-quit:
			return
		case transactions, ok := <-r.in:
			if !ok {
				return
			}
			if len(transactions) == 0 {
				continue
			}
			if !r.emit(r.record(transactions), quit) {
				return
			}
		default:
			// The tick's final mix step counts as one hash, so emit once
			// the accumulator is one short of the cadence; the emitted
			// entry then carries exactly hashesPerTick hashes.
			if r.poh.PendingHashes()+1 >= r.hashesPerTick {
				if !r.emit([]Entry{r.tick()}, quit) {
					return
				}
			} else {
				r.poh.Hash()
			}
		}
	}
}

// record turns one transaction batch into entries, advancing the chain.
func (r *Recorder) record(transactions []core.Transaction) []Entry {
	if NumWillFit(transactions) >= len(transactions) {
		// the whole batch fits one entry: mix it straight into the live chain
		rec := r.poh.Record(core.HashTransactions(transactions))
		return []Entry{{
			TickHeight:   r.tickHeight,
			NumHashes:    rec.NumHashes,
			ID:           rec.ID,
			Transactions: transactions,
		}}
	}
	// needs splitting: hand the accumulator to the packer, then resync
	id, pending := r.poh.State()
	entries := NextEntriesMut(&id, &pending, r.tickHeight, transactions)
	r.poh.Reset(id, pending)
	return entries
}

// tick emits the heartbeat entry and advances the ledger position.
func (r *Recorder) tick() Entry {
	rec := r.poh.Tick()
	entry := Entry{TickHeight: r.tickHeight, NumHashes: rec.NumHashes, ID: rec.ID}
	r.tickHeight++
	return entry
}

// emit publishes a batch, honouring quit while blocked on back-pressure.
// Returns false when the producer should shut down.
func (r *Recorder) emit(entries []Entry, quit <-chan struct{}) bool {
	select {
	case r.out <- entries:
		return true
	case <-quit:
		log.Printf("[ledger] recorder stopping with %d entries unsent", len(entries))
		return false
	}
}
