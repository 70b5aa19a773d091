package ledger

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log"

	"github.com/kairolabs/kairochain/crypto"
	"github.com/kairolabs/kairochain/events"
)

// ErrChainBroken reports a batch whose hash chain does not continue the
// last verified id. The whole batch is rejected and the cursor does not
// advance; there is no per-entry repair.
var ErrChainBroken = errors.New("entry chain broken")

// Syncer is the consuming side of the entry pipeline: it receives entry
// batches, verifies each batch in parallel against its last-verified-id
// cursor, persists accepted batches, and publishes events for downstream
// subscribers (indexes, stream consumers).
type Syncer struct {
	store   EntryStore
	emitter *events.Emitter

	lastID    crypto.Hash
	nextIndex uint64
}

// NewSyncer creates a consumer resuming from the store's tip, or starting
// at genesis for a fresh ledger.
func NewSyncer(store EntryStore, emitter *events.Emitter, genesis crypto.Hash) (*Syncer, error) {
	s := &Syncer{store: store, emitter: emitter, lastID: genesis}
	tip, err := store.Tip()
	switch {
	case errors.Is(err, ErrNotFound):
		// fresh ledger
	case err != nil:
		return nil, fmt.Errorf("load ledger tip: %w", err)
	default:
		s.lastID = tip
		count, err := store.EntryCount()
		if err != nil {
			return nil, fmt.Errorf("load entry count: %w", err)
		}
		s.nextIndex = count
	}
	return s, nil
}

// LastID returns the cursor: the id of the last verified entry.
func (s *Syncer) LastID() crypto.Hash {
	return s.lastID
}

// ProcessBatch verifies one batch against the cursor, persists it, and
// advances the cursor. On a chain fault the cursor stays put and
// ErrChainBroken is returned.
func (s *Syncer) ProcessBatch(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if !VerifySlice(entries, s.lastID) {
		s.emit(events.Event{
			Type:       events.EventChainBroken,
			EntryIndex: s.nextIndex,
			Data:       map[string]any{"batch_len": len(entries), "last_id": s.lastID.String()},
		})
		return fmt.Errorf("%w: batch of %d entries rejected at index %d", ErrChainBroken, len(entries), s.nextIndex)
	}

	if err := s.store.AppendEntries(entries); err != nil {
		return fmt.Errorf("append entries: %w", err)
	}

	for i := range entries {
		entry := &entries[i]
		index := s.nextIndex + uint64(i)
		if entry.IsTick() {
			s.emit(events.Event{
				Type:       events.EventTick,
				EntryIndex: index,
				TickHeight: entry.TickHeight,
			})
			continue
		}
		sigs := make([]string, len(entry.Transactions))
		for j := range entry.Transactions {
			sigs[j] = hex.EncodeToString(entry.Transactions[j].Signature)
		}
		s.emit(events.Event{
			Type:       events.EventEntryCommitted,
			EntryIndex: index,
			TickHeight: entry.TickHeight,
			Data:       map[string]any{"tx_sigs": sigs},
		})
	}

	s.nextIndex += uint64(len(entries))
	s.lastID = entries[len(entries)-1].ID
	return nil
}

// Run consumes batches until quit closes or the channel closes. A chain
// fault stops consumption: a broken producer cannot be resumed past the
// fault without operator intervention.
func (s *Syncer) Run(in <-chan []Entry, quit <-chan struct{}) {
	for {
		select {
		case <-quit:
			return
		case entries, ok := <-in:
			if !ok {
				return
			}
			if err := s.ProcessBatch(entries); err != nil {
				log.Printf("[ledger] syncer halted: %v", err)
				return
			}
		}
	}
}

func (s *Syncer) emit(ev events.Event) {
	if s.emitter != nil {
		s.emitter.Emit(ev)
	}
}
