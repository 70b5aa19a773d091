package ledger

import (
	"testing"

	"github.com/kairolabs/kairochain/core"
	"github.com/kairolabs/kairochain/crypto"
)

// verifySerial is the obviously correct reference implementation: the
// parallel verifier must agree with it on every input.
func verifySerial(entries []Entry, startHash crypto.Hash) bool {
	prev := startHash
	for i := range entries {
		if nextHash(prev, entries[i].NumHashes, entries[i].Transactions) != entries[i].ID {
			return false
		}
		prev = entries[i].ID
	}
	return true
}

func TestVerifySlice(t *testing.T) {
	zero := crypto.Hash{}
	one := crypto.Sum(zero[:])

	if !VerifySlice(nil, zero) {
		t.Error("empty slice verifies trivially")
	}
	if !VerifySlice([]Entry{NewTick(0, 0, zero)}, zero) {
		t.Error("singleton no-op must verify against its seed")
	}
	if VerifySlice([]Entry{NewTick(0, 0, zero)}, one) {
		t.Error("singleton no-op must fail against a different seed")
	}

	ticks := CreateTicks(8, zero)
	if !VerifySlice(ticks, zero) {
		t.Error("tick chain must verify")
	}

	bad := CreateTicks(8, zero)
	bad[5].ID = one
	if VerifySlice(bad, zero) {
		t.Error("tampered id mid-chain must fail")
	}
}

func TestVerifySliceMatchesSerial(t *testing.T) {
	seed := crypto.Sum([]byte("seed"))

	id := seed
	pending := uint64(0)
	var entries []Entry
	for i := uint64(0); i < 32; i++ {
		pending = i % 4
		entries = append(entries, NextEntriesMut(&id, &pending, i, []core.Transaction{smallTx(t, i)})...)
	}
	entries = append(entries, CreateTicks(16, id)...)

	cases := []struct {
		name    string
		mutate  func([]Entry)
		against crypto.Hash
	}{
		{"intact", func([]Entry) {}, seed},
		{"wrong seed", func([]Entry) {}, crypto.Hash{}},
		{"tampered id", func(e []Entry) { e[10].ID = crypto.Sum([]byte("evil")) }, seed},
		{"tampered count", func(e []Entry) { e[3].NumHashes++ }, seed},
		{"dropped entry", func(e []Entry) { copy(e[7:], e[8:]) }, seed},
	}
	for _, tc := range cases {
		batch := make([]Entry, len(entries))
		copy(batch, entries)
		tc.mutate(batch)

		serial := verifySerial(batch, tc.against)
		parallel := VerifySlice(batch, tc.against)
		if serial != parallel {
			t.Errorf("%s: parallel %v disagrees with serial %v", tc.name, parallel, serial)
		}
	}
}
