package storage

import (
	"encoding/binary"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kairolabs/kairochain/crypto"
	"github.com/kairolabs/kairochain/ledger"
)

const (
	prefixEntry = "entry:"
	keyTip      = "ledger:tip"
	keyCount    = "ledger:count"
	keyTicks    = "ledger:ticks"

	// entryCacheSize bounds the decoded-entry read cache. Consumers that
	// re-read the recent tail (indexers, stream catch-up) hit the cache
	// instead of decoding from disk.
	entryCacheSize = 4096
)

// LevelEntryStore implements ledger.EntryStore on top of a DB: an
// append-only entry log keyed by index, with the tip id and entry/tick
// counters committed atomically alongside each batch.
type LevelEntryStore struct {
	db    DB
	cache *lru.Cache[uint64, ledger.Entry]
}

// NewLevelEntryStore wraps db as an EntryStore.
func NewLevelEntryStore(db DB) (*LevelEntryStore, error) {
	cache, err := lru.New[uint64, ledger.Entry](entryCacheSize)
	if err != nil {
		return nil, err
	}
	return &LevelEntryStore{db: db, cache: cache}, nil
}

func entryKey(index uint64) []byte {
	key := make([]byte, len(prefixEntry)+8)
	copy(key, prefixEntry)
	binary.BigEndian.PutUint64(key[len(prefixEntry):], index)
	return key
}

// AppendEntries writes a verified batch. Entries, the tip id, and both
// counters go through a single write batch so a crash cannot leave the
// counters disagreeing with the log.
func (s *LevelEntryStore) AppendEntries(entries []ledger.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	count, err := s.counter(keyCount)
	if err != nil {
		return fmt.Errorf("read entry count: %w", err)
	}
	ticks, err := s.counter(keyTicks)
	if err != nil {
		return fmt.Errorf("read tick count: %w", err)
	}

	batch := s.db.NewBatch()
	for i := range entries {
		entry := &entries[i]
		data, err := entry.MarshalBinary()
		if err != nil {
			return fmt.Errorf("serialize entry %d: %w", count+uint64(i), err)
		}
		batch.Set(entryKey(count+uint64(i)), data)
		if entry.IsTick() {
			ticks++
		}
	}
	tip := entries[len(entries)-1].ID
	batch.Set([]byte(keyTip), tip.Bytes())
	batch.Set([]byte(keyCount), binary.BigEndian.AppendUint64(nil, count+uint64(len(entries))))
	batch.Set([]byte(keyTicks), binary.BigEndian.AppendUint64(nil, ticks))
	if err := batch.Write(); err != nil {
		return fmt.Errorf("write entry batch: %w", err)
	}

	for i := range entries {
		s.cache.Add(count+uint64(i), entries[i])
	}
	return nil
}

// Entry returns the entry at index, from cache when possible.
func (s *LevelEntryStore) Entry(index uint64) (ledger.Entry, error) {
	if entry, ok := s.cache.Get(index); ok {
		return entry, nil
	}
	data, err := s.db.Get(entryKey(index))
	if err != nil {
		return ledger.Entry{}, err
	}
	var entry ledger.Entry
	if err := entry.UnmarshalBinary(data); err != nil {
		return ledger.Entry{}, fmt.Errorf("decode entry %d: %w", index, err)
	}
	s.cache.Add(index, entry)
	return entry, nil
}

// EntryCount returns the number of stored entries.
func (s *LevelEntryStore) EntryCount() (uint64, error) {
	return s.counter(keyCount)
}

// TickCount returns the number of stored tick entries.
func (s *LevelEntryStore) TickCount() (uint64, error) {
	return s.counter(keyTicks)
}

// Tip returns the id of the last stored entry, or ledger.ErrNotFound for a
// fresh ledger.
func (s *LevelEntryStore) Tip() (crypto.Hash, error) {
	data, err := s.db.Get([]byte(keyTip))
	if err != nil {
		return crypto.Hash{}, err
	}
	if len(data) != crypto.HashSize {
		return crypto.Hash{}, fmt.Errorf("corrupt tip record: %d bytes", len(data))
	}
	var tip crypto.Hash
	copy(tip[:], data)
	return tip, nil
}

func (s *LevelEntryStore) counter(key string) (uint64, error) {
	data, err := s.db.Get([]byte(key))
	if errors.Is(err, ledger.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("corrupt counter %q: %d bytes", key, len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}
