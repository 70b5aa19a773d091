// Package ledger implements the Proof of History entry engine: the Entry
// record, the packer that splits transaction batches into blob-sized
// entries, the parallel slice verifier, and the producer/consumer tasks
// that drive them.
//
// An Entry carries a unique id that is the hash of the entry before it plus
// the digest of the transactions within it. Entries cannot be reordered,
// and the num_hashes field is an approximate measure of the time since the
// previous entry was created.
package ledger

import (
	"fmt"
	"log"

	"github.com/kairolabs/kairochain/core"
	"github.com/kairolabs/kairochain/crypto"
	"github.com/kairolabs/kairochain/packet"
	"github.com/kairolabs/kairochain/poh"
)

// entryHeaderSize is the fixed wire overhead of an entry:
// tickHeight(8) + numHashes(8) + id(32) + transaction count(8).
const entryHeaderSize = 8 + 8 + crypto.HashSize + 8

// Entry is the ledger's atomic record. NumHashes counts the hashes applied
// since the previous entry's ID, including the final mixing step; ID is the
// chain state after those hashes. An entry with no transactions is a tick.
// TickHeight is the producer-assigned ledger position and is not covered by
// the hash chain.
type Entry struct {
	TickHeight   uint64
	NumHashes    uint64
	ID           crypto.Hash
	Transactions []core.Transaction
}

// New creates the next Entry numHashes after prevID.
//
// numHashes == 0 with no transactions yields the degenerate no-op entry
// whose id equals prevID. numHashes == 0 with transactions is promoted to
// 1 so the entry always commits cryptographically to its content. New
// panics when the serialized entry would not fit a blob: the packer is
// responsible for never feeding it such a batch.
func New(prevID crypto.Hash, tickHeight, numHashes uint64, transactions []core.Transaction) Entry {
	if size := SerializedSize(transactions); size > packet.BlobDataSize {
		panic(fmt.Sprintf("serialized entry size too large: %d (%d transactions)", size, len(transactions)))
	}
	if numHashes == 0 && len(transactions) == 0 {
		return Entry{TickHeight: tickHeight, NumHashes: 0, ID: prevID}
	}
	if numHashes == 0 {
		numHashes = 1
	}
	return Entry{
		TickHeight:   tickHeight,
		NumHashes:    numHashes,
		ID:           nextHash(prevID, numHashes, transactions),
		Transactions: transactions,
	}
}

// NewMut creates the next Entry consuming the caller's pending hash
// accumulator: *numHashes becomes the entry's hash count, *startHash
// advances to the emitted id, and the accumulator resets to zero.
func NewMut(startHash *crypto.Hash, numHashes *uint64, tickHeight uint64, transactions []core.Transaction) Entry {
	entry := New(*startHash, tickHeight, *numHashes, transactions)
	*startHash = entry.ID
	*numHashes = 0
	return entry
}

// NewTick builds a tick record directly from its fields, without deriving
// the id. Used for genesis bookkeeping and chain-fault tests.
func NewTick(tickHeight, numHashes uint64, id crypto.Hash) Entry {
	return Entry{TickHeight: tickHeight, NumHashes: numHashes, ID: id}
}

// Verify reports whether ID is the correct continuation of startHash:
// NumHashes hash steps, the last one mixing in the transaction digest (or
// the tick marker for a tick). A mismatch is logged with both ids.
func (e *Entry) Verify(startHash crypto.Hash) bool {
	ref := nextHash(startHash, e.NumHashes, e.Transactions)
	if e.ID != ref {
		log.Printf("[ledger] entry id invalid: expected %s actual %s (%d transactions)",
			ref, e.ID, len(e.Transactions))
		return false
	}
	return true
}

// IsTick reports whether the entry is a heartbeat with no transactions.
func (e *Entry) IsTick() bool {
	return len(e.Transactions) == 0
}

// SerializedSize returns the wire size of an entry holding transactions,
// without constructing it.
func SerializedSize(transactions []core.Transaction) uint64 {
	size := uint64(entryHeaderSize)
	for i := range transactions {
		size += transactions[i].SerializedSize()
	}
	return size
}

// nextHash computes the chain state numHashes steps after startHash:
// numHashes-1 empty advances, then one mixing step committing to the
// transaction batch (or the tick marker when the batch is empty). With
// zero hashes and no transactions, startHash is returned unchanged.
func nextHash(startHash crypto.Hash, numHashes uint64, transactions []core.Transaction) crypto.Hash {
	if numHashes == 0 && len(transactions) == 0 {
		return startHash
	}

	p := poh.New(startHash, 0)
	for i := uint64(1); i < numHashes; i++ {
		p.Hash()
	}

	if len(transactions) == 0 {
		return p.Tick().ID
	}
	return p.Record(core.HashTransactions(transactions)).ID
}
