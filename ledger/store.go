package ledger

import (
	"errors"

	"github.com/kairolabs/kairochain/crypto"
)

// ErrNotFound is returned when a requested entry or ledger marker does not
// exist in storage.
var ErrNotFound = errors.New("not found")

// EntryStore is the persistence interface used by the Syncer.
// Implementations live in the storage package.
type EntryStore interface {
	// AppendEntries atomically writes a verified batch together with the
	// updated tip id and entry/tick counters.
	AppendEntries(entries []Entry) error
	// Entry returns the entry at the given ledger index.
	Entry(index uint64) (Entry, error)
	// EntryCount returns the number of stored entries.
	EntryCount() (uint64, error)
	// TickCount returns the number of stored tick entries.
	TickCount() (uint64, error)
	// Tip returns the id of the last stored entry, or ErrNotFound for a
	// fresh ledger.
	Tip() (crypto.Hash, error)
}
