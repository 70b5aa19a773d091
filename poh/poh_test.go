package poh

import (
	"testing"

	"github.com/kairolabs/kairochain/crypto"
)

func TestHashAdvancesChain(t *testing.T) {
	seed := crypto.Sum([]byte("seed"))
	p := New(seed, 0)
	p.Hash()
	hash, n := p.State()
	if hash != crypto.Sum(seed[:]) {
		t.Error("Hash must apply SHA-256 to the current state")
	}
	if n != 1 {
		t.Errorf("pending hashes: got %d want 1", n)
	}
}

func TestTickMixesMarkerAndResets(t *testing.T) {
	seed := crypto.Sum([]byte("seed"))
	p := New(seed, 0)
	p.Hash()
	p.Hash()
	rec := p.Tick()
	if rec.NumHashes != 3 {
		t.Errorf("tick num hashes: got %d want 3 (two advances plus the mix)", rec.NumHashes)
	}
	want := crypto.SumV(crypto.Sum(crypto.Sum(seed[:]).Bytes()).Bytes(), TickMarker[:])
	if rec.ID != want {
		t.Errorf("tick id: got %s want %s", rec.ID, want)
	}
	if p.PendingHashes() != 0 {
		t.Error("emission must reset the pending counter")
	}
}

func TestRecordDiffersFromTick(t *testing.T) {
	seed := crypto.Sum([]byte("seed"))
	mixin := crypto.Sum([]byte("mixin"))

	a := New(seed, 0)
	b := New(seed, 0)
	if a.Tick().ID == b.Record(mixin).ID {
		t.Error("tick and record from the same state must diverge")
	}
}

func TestRecordDeterministic(t *testing.T) {
	seed := crypto.Sum([]byte("seed"))
	mixin := crypto.Sum([]byte("mixin"))

	run := func() Record {
		p := New(seed, 0)
		for i := 0; i < 5; i++ {
			p.Hash()
		}
		return p.Record(mixin)
	}
	first, second := run(), run()
	if first != second {
		t.Errorf("identical runs diverged: %v vs %v", first, second)
	}
}

func TestStateHandoff(t *testing.T) {
	seed := crypto.Sum([]byte("seed"))
	p := New(seed, 0)
	p.Hash()

	hash, n := p.State()
	p.Reset(crypto.Sum([]byte("elsewhere")), 0)
	p.Reset(hash, n)
	if got, gotN := p.State(); got != hash || gotN != n {
		t.Error("Reset must restore the handed-off state exactly")
	}
}

func TestTickMarkerIsStable(t *testing.T) {
	if TickMarker != crypto.Sum([]byte("kairochain/poh/tick/v1")) {
		t.Error("tick marker changed; every replica must agree on it")
	}
}
