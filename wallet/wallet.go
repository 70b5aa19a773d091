// Package wallet provides key management and transaction signing helpers.
package wallet

import (
	"time"

	"github.com/kairolabs/kairochain/core"
	"github.com/kairolabs/kairochain/crypto"
)

// Wallet holds a key pair and provides transaction-building helpers.
type Wallet struct {
	priv crypto.PrivateKey
	pub  crypto.PublicKey
}

// New creates a Wallet from an existing private key.
func New(priv crypto.PrivateKey) *Wallet {
	return &Wallet{priv: priv, pub: priv.Public()}
}

// Generate creates a Wallet with a freshly generated key pair.
func Generate() (*Wallet, error) {
	priv, _, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	return New(priv), nil
}

// PrivKey returns the raw private key (handle with care).
func (w *Wallet) PrivKey() crypto.PrivateKey {
	return w.priv
}

// PubKey returns the ed25519 public key.
func (w *Wallet) PubKey() crypto.PublicKey {
	return w.pub
}

// Address returns the short human-readable address (first 20 bytes of SHA-256(pubkey)).
func (w *Wallet) Address() string {
	return w.pub.Address()
}

// NewTx creates a signed transaction. recentID is recorded in the signed
// body as the recently observed entry id; its age is not checked.
func (w *Wallet) NewTx(typ core.TxType, nonce uint64, recentID crypto.Hash, payload []byte) (*core.Transaction, error) {
	tx, err := core.NewTransaction(typ, w.pub, nonce, recentID, payload)
	if err != nil {
		return nil, err
	}
	tx.Sign(w.priv)
	return tx, nil
}

// Transfer creates a signed transfer transaction.
func (w *Wallet) Transfer(to [20]byte, amount, nonce uint64, recentID crypto.Hash) (*core.Transaction, error) {
	return w.NewTx(core.TxTransfer, nonce, recentID, core.TransferPayload(to, amount))
}

// Vote creates a signed vote transaction for the given tick height.
func (w *Wallet) Vote(tickHeight, nonce uint64, recentID crypto.Hash) (*core.Transaction, error) {
	return w.NewTx(core.TxVote, nonce, recentID, core.VotePayload(tickHeight))
}

// Timestamp creates a signed witness transaction recording an observed
// wall-clock reading.
func (w *Wallet) Timestamp(at time.Time, nonce uint64, recentID crypto.Hash) (*core.Transaction, error) {
	return w.NewTx(core.TxTimestamp, nonce, recentID, core.TimestampPayload(at))
}

// WitnessSig creates a signed witness transaction carrying an observed
// third-party signature.
func (w *Wallet) WitnessSig(sig []byte, nonce uint64, recentID crypto.Hash) (*core.Transaction, error) {
	return w.NewTx(core.TxWitnessSig, nonce, recentID, core.WitnessSigPayload(sig))
}
