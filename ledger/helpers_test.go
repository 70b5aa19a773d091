package ledger

import (
	"testing"
	"time"

	"github.com/kairolabs/kairochain/core"
	"github.com/kairolabs/kairochain/crypto"
)

func makeTx(t *testing.T, typ core.TxType, nonce uint64, payload []byte) core.Transaction {
	t.Helper()
	priv, pub, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	tx, err := core.NewTransaction(typ, pub, nonce, crypto.Sum([]byte("recent")), payload)
	if err != nil {
		t.Fatalf("NewTransaction: %v", err)
	}
	tx.Sign(priv)
	return *tx
}

// smallTx is an 8-byte-payload vote transaction.
func smallTx(t *testing.T, nonce uint64) core.Transaction {
	return makeTx(t, core.TxVote, nonce, core.VotePayload(nonce))
}

// largeTx carries the maximum payload.
func largeTx(t *testing.T, nonce uint64) core.Transaction {
	return makeTx(t, core.TxTransfer, nonce, make([]byte, core.MaxPayloadSize))
}

// timestampTx is a witness transaction whose payload content (not just the
// signature) must participate in the batch digest.
func timestampTx(t *testing.T, nonce uint64) core.Transaction {
	return makeTx(t, core.TxTimestamp, nonce, core.TimestampPayload(time.Unix(1_700_000_000, 0)))
}

func witnessSigTx(t *testing.T, nonce uint64) core.Transaction {
	return makeTx(t, core.TxWitnessSig, nonce, core.WitnessSigPayload(make([]byte, 64)))
}

// nextEntry builds the next tick-or-transaction entry numHashes after
// prevID, without the blob-budget bookkeeping of New.
func nextEntry(t *testing.T, prevID crypto.Hash, numHashes uint64, transactions []core.Transaction) Entry {
	t.Helper()
	if numHashes == 0 && len(transactions) != 0 {
		t.Fatal("nextEntry: zero hashes with transactions is a construction-layer case, use New")
	}
	return Entry{
		TickHeight:   0,
		NumHashes:    numHashes,
		ID:           nextHash(prevID, numHashes, transactions),
		Transactions: transactions,
	}
}

// repeatTx returns n copies of tx.
func repeatTx(tx core.Transaction, n int) []core.Transaction {
	txs := make([]core.Transaction, n)
	for i := range txs {
		txs[i] = tx
	}
	return txs
}
