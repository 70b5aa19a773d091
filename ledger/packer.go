package ledger

import (
	"fmt"

	"github.com/kairolabs/kairochain/core"
	"github.com/kairolabs/kairochain/crypto"
	"github.com/kairolabs/kairochain/packet"
)

// NumWillFit returns how many of the leading transactions fit in a single
// entry's blob budget, found by binary search starting from the optimistic
// assumption that all of them do.
func NumWillFit(transactions []core.Transaction) int {
	if len(transactions) == 0 {
		return 0
	}
	num := len(transactions)
	upper := len(transactions)
	lower := 1 // if one won't fit, the caller has a bigger problem
	next := len(transactions)
	for {
		if SerializedSize(transactions[:num]) <= packet.BlobDataSize {
			next = (upper + num) / 2
			lower = num
		} else {
			next = (lower + num) / 2
			upper = num
		}
		// converged
		if next == num {
			break
		}
		num = next
	}
	return num
}

// NextEntriesMut packs transactions into a minimal sequence of entries,
// each within the blob budget and preserving transaction order. The first
// entry consumes the caller's pending hash accumulator; *startHash tracks
// the id chain across entries and ends at the last emitted id.
//
// An empty batch produces a single entry carrying the accumulator. A batch
// containing a transaction that alone exceeds the budget cannot be packed:
// NextEntriesMut panics on it (for a single-transaction batch the panic
// comes from the entry constructor).
func NextEntriesMut(startHash *crypto.Hash, numHashes *uint64, tickHeight uint64, transactions []core.Transaction) []Entry {
	if len(transactions) <= 1 {
		return []Entry{NewMut(startHash, numHashes, tickHeight, transactions)}
	}

	chunkStart := 0
	var entries []Entry

	for chunkStart < len(transactions) {
		chunkEnd := len(transactions)
		upper := chunkEnd
		lower := chunkStart
		next := chunkEnd // be optimistic that all will fit

		// binary search for how many transactions will fit in an entry
		for {
			if SerializedSize(transactions[chunkStart:chunkEnd]) <= packet.BlobDataSize {
				next = (upper + chunkEnd) / 2
				lower = chunkEnd
			} else {
				next = (lower + chunkEnd) / 2
				upper = chunkEnd
			}
			// same as last time: converged
			if next == chunkEnd {
				break
			}
			chunkEnd = next
		}
		if chunkEnd == chunkStart {
			// not even one transaction fits: fatal input error from the
			// submitting layer
			panic(fmt.Sprintf("transaction %d alone exceeds the blob budget %d", chunkStart, packet.BlobDataSize))
		}
		entries = append(entries, NewMut(startHash, numHashes, tickHeight, transactions[chunkStart:chunkEnd]))
		chunkStart = chunkEnd
	}

	return entries
}

// NextEntries packs transactions starting from a value-copied chain state.
func NextEntries(startHash crypto.Hash, numHashes uint64, transactions []core.Transaction) []Entry {
	id := startHash
	n := numHashes
	return NextEntriesMut(&id, &n, 0, transactions)
}

// CreateTicks builds numTicks chained single-hash tick entries starting
// from hash.
func CreateTicks(numTicks uint64, hash crypto.Hash) []Entry {
	ticks := make([]Entry, 0, numTicks)
	for i := uint64(0); i < numTicks; i++ {
		tick := New(hash, i, 1, nil)
		hash = tick.ID
		ticks = append(ticks, tick)
	}
	return ticks
}
