package ledger

import (
	"errors"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/kairolabs/kairochain/crypto"
)

// errChainMismatch is the internal error a verify worker returns on the
// first bad pair; VerifySlice folds it into its boolean answer.
var errChainMismatch = errors.New("entry id mismatch")

// VerifySlice checks that every entry of a contiguous run is the correct
// continuation of its predecessor, with startHash standing in for the
// predecessor of the first entry.
//
// Producing the chain is serial, but each entry carries its claimed id, so
// the predecessor column can be materialized up front and every pair
// checked independently. The pairs are chunked across one worker per CPU;
// a single mismatch stops the remaining workers early.
func VerifySlice(entries []Entry, startHash crypto.Hash) bool {
	if len(entries) == 0 {
		return true
	}

	prevIDs := make([]crypto.Hash, len(entries))
	prevIDs[0] = startHash
	for i := 1; i < len(entries); i++ {
		prevIDs[i] = entries[i-1].ID
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(entries) {
		workers = len(entries)
	}
	chunk := (len(entries) + workers - 1) / workers

	var failed atomic.Bool
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > len(entries) {
			end = len(entries)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if failed.Load() {
					return nil
				}
				if !entries[i].Verify(prevIDs[i]) {
					failed.Store(true)
					return errChainMismatch
				}
			}
			return nil
		})
	}
	return g.Wait() == nil
}
