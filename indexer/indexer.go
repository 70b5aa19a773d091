// Package indexer maintains a secondary index over committed entries so
// collaborators (RPC layers, explorers) can locate the entry that committed
// a given transaction without scanning the ledger.
package indexer

import (
	"encoding/binary"
	"fmt"
	"log"

	"github.com/kairolabs/kairochain/events"
	"github.com/kairolabs/kairochain/storage"
)

const prefixTxEntry = "idx:tx:"

// Indexer subscribes to ledger events and updates lookup tables.
type Indexer struct {
	db      storage.DB
	emitter *events.Emitter
}

// New creates an Indexer backed by db and subscribes to commit events.
func New(db storage.DB, emitter *events.Emitter) *Indexer {
	idx := &Indexer{db: db, emitter: emitter}
	emitter.Subscribe(events.EventEntryCommitted, idx.onEntryCommitted)
	return idx
}

// EntryIndexBySig returns the ledger index of the entry holding the
// transaction with the given hex signature.
func (idx *Indexer) EntryIndexBySig(sigHex string) (uint64, error) {
	data, err := idx.db.Get([]byte(prefixTxEntry + sigHex))
	if err != nil {
		return 0, err
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("corrupt tx index for %s: %d bytes", sigHex, len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

func (idx *Indexer) onEntryCommitted(ev events.Event) {
	sigs, _ := ev.Data["tx_sigs"].([]string)
	if len(sigs) == 0 {
		return
	}
	value := binary.BigEndian.AppendUint64(nil, ev.EntryIndex)
	for _, sig := range sigs {
		if err := idx.db.Set([]byte(prefixTxEntry+sig), value); err != nil {
			log.Printf("[indexer] tx index write failed (sig=%s entry=%d): %v", sig, ev.EntryIndex, err)
		}
	}
}
