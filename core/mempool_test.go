package core

import "testing"

func TestMempoolAddAndDrainOrder(t *testing.T) {
	m := NewMempool()
	var want []uint64
	for i := uint64(0); i < 5; i++ {
		tx := signedTx(t, TxTransfer, i, TransferPayload([20]byte{byte(i)}, i))
		if err := m.Add(&tx); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
		want = append(want, i)
	}
	if m.Size() != 5 {
		t.Fatalf("size: got %d want 5", m.Size())
	}

	got := m.Drain(3)
	if len(got) != 3 {
		t.Fatalf("drain: got %d want 3", len(got))
	}
	for i, tx := range got {
		if tx.Nonce != want[i] {
			t.Errorf("drain order broken at %d: got nonce %d want %d", i, tx.Nonce, want[i])
		}
	}
	if m.Size() != 2 {
		t.Errorf("size after drain: got %d want 2", m.Size())
	}
	rest := m.Drain(10)
	if len(rest) != 2 {
		t.Errorf("final drain: got %d want 2", len(rest))
	}
}

func TestMempoolRejectsDuplicates(t *testing.T) {
	m := NewMempool()
	tx := signedTx(t, TxTransfer, 0, TransferPayload([20]byte{1}, 1))
	if err := m.Add(&tx); err != nil {
		t.Fatal(err)
	}
	if err := m.Add(&tx); err == nil {
		t.Error("duplicate transaction should be rejected")
	}
}

func TestMempoolRejectsBadSignature(t *testing.T) {
	m := NewMempool()
	tx := signedTx(t, TxTransfer, 0, TransferPayload([20]byte{1}, 1))
	tx.Nonce++ // invalidates the signature
	if err := m.Add(&tx); err == nil {
		t.Error("transaction with invalid signature should be rejected")
	}
	if _, ok := m.Get(tx.Signature); ok {
		t.Error("rejected transaction must not be stored")
	}
}
