package ledger

import (
	"errors"
	"testing"

	"github.com/kairolabs/kairochain/core"
	"github.com/kairolabs/kairochain/crypto"
	"github.com/kairolabs/kairochain/events"
)

// memStore is a minimal in-memory EntryStore for syncer tests.
type memStore struct {
	entries []Entry
	ticks   uint64
}

func (m *memStore) AppendEntries(entries []Entry) error {
	for i := range entries {
		if entries[i].IsTick() {
			m.ticks++
		}
	}
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *memStore) Entry(index uint64) (Entry, error) {
	if index >= uint64(len(m.entries)) {
		return Entry{}, ErrNotFound
	}
	return m.entries[index], nil
}

func (m *memStore) EntryCount() (uint64, error) { return uint64(len(m.entries)), nil }
func (m *memStore) TickCount() (uint64, error)  { return m.ticks, nil }

func (m *memStore) Tip() (crypto.Hash, error) {
	if len(m.entries) == 0 {
		return crypto.Hash{}, ErrNotFound
	}
	return m.entries[len(m.entries)-1].ID, nil
}

func TestSyncerAdvancesCursor(t *testing.T) {
	seed := crypto.Sum([]byte("seed"))
	store := &memStore{}
	s, err := NewSyncer(store, nil, seed)
	if err != nil {
		t.Fatal(err)
	}

	id := seed
	pending := uint64(0)
	batch1 := NextEntriesMut(&id, &pending, 0, []core.Transaction{smallTx(t, 0)})
	batch2 := CreateTicks(4, id)

	if err := s.ProcessBatch(batch1); err != nil {
		t.Fatalf("batch1: %v", err)
	}
	if err := s.ProcessBatch(batch2); err != nil {
		t.Fatalf("batch2: %v", err)
	}

	if s.LastID() != batch2[len(batch2)-1].ID {
		t.Error("cursor must sit at the last verified id")
	}
	if count, _ := store.EntryCount(); count != uint64(len(batch1)+len(batch2)) {
		t.Errorf("stored entries: got %d", count)
	}
	if ticks, _ := store.TickCount(); ticks != 4 {
		t.Errorf("stored ticks: got %d want 4", ticks)
	}
}

func TestSyncerRejectsBrokenChain(t *testing.T) {
	seed := crypto.Sum([]byte("seed"))
	store := &memStore{}
	s, err := NewSyncer(store, nil, seed)
	if err != nil {
		t.Fatal(err)
	}

	bad := CreateTicks(4, seed)
	bad[2].ID = crypto.Sum([]byte("evil"))

	err = s.ProcessBatch(bad)
	if !errors.Is(err, ErrChainBroken) {
		t.Fatalf("got %v want ErrChainBroken", err)
	}
	if s.LastID() != seed {
		t.Error("cursor must not advance past a rejected batch")
	}
	if count, _ := store.EntryCount(); count != 0 {
		t.Error("rejected batch must not be persisted")
	}
}

func TestSyncerResumesFromTip(t *testing.T) {
	seed := crypto.Sum([]byte("seed"))
	store := &memStore{}
	first, err := NewSyncer(store, nil, seed)
	if err != nil {
		t.Fatal(err)
	}
	ticks := CreateTicks(3, seed)
	if err := first.ProcessBatch(ticks); err != nil {
		t.Fatal(err)
	}

	resumed, err := NewSyncer(store, nil, seed)
	if err != nil {
		t.Fatal(err)
	}
	if resumed.LastID() != ticks[len(ticks)-1].ID {
		t.Error("a fresh syncer must resume from the stored tip")
	}
	// continuation from the resumed cursor must verify
	if err := resumed.ProcessBatch(CreateTicks(2, resumed.LastID())); err != nil {
		t.Errorf("continuation after resume: %v", err)
	}
}

func TestSyncerEmitsEvents(t *testing.T) {
	seed := crypto.Sum([]byte("seed"))
	store := &memStore{}
	emitter := events.NewEmitter()

	var committed, ticks int
	emitter.Subscribe(events.EventEntryCommitted, func(events.Event) { committed++ })
	emitter.Subscribe(events.EventTick, func(events.Event) { ticks++ })

	s, err := NewSyncer(store, emitter, seed)
	if err != nil {
		t.Fatal(err)
	}

	id := seed
	pending := uint64(0)
	batch := NextEntriesMut(&id, &pending, 0, []core.Transaction{smallTx(t, 0)})
	batch = append(batch, CreateTicks(2, id)...)

	if err := s.ProcessBatch(batch); err != nil {
		t.Fatal(err)
	}
	if committed != 1 {
		t.Errorf("entry_committed events: got %d want 1", committed)
	}
	if ticks != 2 {
		t.Errorf("tick events: got %d want 2", ticks)
	}
}
