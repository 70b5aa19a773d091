// Package core holds the transaction layer: the signed, byte-serializable
// unit of work that entries commit to, and the pending pool that feeds the
// entry producer.
package core

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kairolabs/kairochain/crypto"
)

// TxType identifies the kind of operation a transaction performs.
type TxType uint8

const (
	TxTransfer TxType = iota + 1
	TxVote
	// TxTimestamp and TxWitnessSig are witness transactions: their payload
	// carries observed evidence (a wall-clock reading, a third-party
	// signature) rather than a state change. The payload bytes participate
	// in the batch digest, so reordering witnesses invalidates the entry
	// that committed to them.
	TxTimestamp
	TxWitnessSig
)

// MaxPayloadSize bounds the variable part of a transaction. Anything larger
// is rejected at decode time before any allocation is sized from the wire.
const MaxPayloadSize = 1024

// txHeaderSize is the fixed wire overhead of a transaction:
// signature + from + type + nonce + recent id + payload length prefix.
const txHeaderSize = crypto.SignatureSize + crypto.PublicKeySize + 1 + 8 + crypto.HashSize + 4

// Transaction is the atomic unit of work committed to by an entry.
// Signature covers every field after itself. RecentID carries a recently
// observed entry id and is covered by the signature; nothing in this module
// checks its age or rejects stale submissions.
type Transaction struct {
	Signature []byte           // 64-byte ed25519 signature over the body
	From      crypto.PublicKey // 32-byte ed25519 public key
	Type      TxType
	Nonce     uint64
	RecentID  crypto.Hash
	Payload   []byte
}

// NewTransaction creates an unsigned transaction. Returns an error when the
// payload exceeds MaxPayloadSize.
func NewTransaction(typ TxType, from crypto.PublicKey, nonce uint64, recentID crypto.Hash, payload []byte) (*Transaction, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("payload %d bytes exceeds limit %d", len(payload), MaxPayloadSize)
	}
	return &Transaction{
		From:     from,
		Type:     typ,
		Nonce:    nonce,
		RecentID: recentID,
		Payload:  payload,
	}, nil
}

// body returns the signed portion of the wire form (everything after the
// signature).
func (tx *Transaction) body() []byte {
	buf := make([]byte, 0, txHeaderSize-crypto.SignatureSize+len(tx.Payload))
	buf = append(buf, tx.From...)
	buf = append(buf, byte(tx.Type))
	buf = binary.LittleEndian.AppendUint64(buf, tx.Nonce)
	buf = append(buf, tx.RecentID[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(tx.Payload)))
	buf = append(buf, tx.Payload...)
	return buf
}

// Sign computes the signature over the transaction body.
func (tx *Transaction) Sign(priv crypto.PrivateKey) {
	tx.Signature = crypto.Sign(priv, tx.body())
}

// Verify checks the signature against the From key.
func (tx *Transaction) Verify() error {
	if len(tx.From) != crypto.PublicKeySize {
		return errors.New("missing or malformed from key")
	}
	if len(tx.Signature) != crypto.SignatureSize {
		return errors.New("missing or malformed signature")
	}
	return crypto.Verify(tx.From, tx.body(), tx.Signature)
}

// SerializedSize returns the exact wire size of the transaction.
func (tx *Transaction) SerializedSize() uint64 {
	return uint64(txHeaderSize + len(tx.Payload))
}

// MarshalBinary encodes the transaction in its wire form:
// signature | from | type | nonce LE | recent id | payload-len LE | payload.
// The length prefix makes each transaction self-describing, so consecutive
// transactions can be concatenated and split again without outer framing.
func (tx *Transaction) MarshalBinary() ([]byte, error) {
	if len(tx.Signature) != crypto.SignatureSize {
		return nil, fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureSize, len(tx.Signature))
	}
	if len(tx.From) != crypto.PublicKeySize {
		return nil, fmt.Errorf("from key must be %d bytes, got %d", crypto.PublicKeySize, len(tx.From))
	}
	if len(tx.Payload) > MaxPayloadSize {
		return nil, fmt.Errorf("payload %d bytes exceeds limit %d", len(tx.Payload), MaxPayloadSize)
	}
	buf := make([]byte, 0, tx.SerializedSize())
	buf = append(buf, tx.Signature...)
	buf = append(buf, tx.body()...)
	return buf, nil
}

// ReadTransaction decodes one transaction from r, consuming exactly its wire
// bytes and leaving r positioned at the next transaction.
func ReadTransaction(r *bytes.Reader) (Transaction, error) {
	var tx Transaction
	fixed := make([]byte, txHeaderSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return tx, fmt.Errorf("transaction header: %w", err)
	}
	off := 0
	tx.Signature = append([]byte(nil), fixed[off:off+crypto.SignatureSize]...)
	off += crypto.SignatureSize
	tx.From = append(crypto.PublicKey(nil), fixed[off:off+crypto.PublicKeySize]...)
	off += crypto.PublicKeySize
	tx.Type = TxType(fixed[off])
	off++
	tx.Nonce = binary.LittleEndian.Uint64(fixed[off:])
	off += 8
	copy(tx.RecentID[:], fixed[off:])
	off += crypto.HashSize
	payloadLen := binary.LittleEndian.Uint32(fixed[off:])
	if payloadLen > MaxPayloadSize {
		return tx, fmt.Errorf("payload length %d exceeds limit %d", payloadLen, MaxPayloadSize)
	}
	if payloadLen > 0 {
		tx.Payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r, tx.Payload); err != nil {
			return tx, fmt.Errorf("transaction payload: %w", err)
		}
	}
	return tx, nil
}

// HashTransactions returns the order-sensitive digest of a transaction
// batch: SHA-256 over the concatenated wire forms. Swapping any two
// transactions, or altering any byte of one (signature or payload content),
// changes the digest.
func HashTransactions(txs []Transaction) crypto.Hash {
	var buf bytes.Buffer
	for i := range txs {
		data, err := txs[i].MarshalBinary()
		if err != nil {
			// A transaction that cannot be serialized can never have been
			// sized by the packer; this is a malformed input from the
			// submitting layer.
			panic(fmt.Sprintf("hash of unserializable transaction %d: %v", i, err))
		}
		buf.Write(data)
	}
	return crypto.Sum(buf.Bytes())
}

// ---- payload builders ----

// TransferPayload encodes a balance move: 20-byte destination address and a
// little-endian amount.
func TransferPayload(to [20]byte, amount uint64) []byte {
	buf := make([]byte, 0, 28)
	buf = append(buf, to[:]...)
	return binary.LittleEndian.AppendUint64(buf, amount)
}

// VotePayload encodes the tick height the validator vouches for.
func VotePayload(tickHeight uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, tickHeight)
}

// TimestampPayload encodes an observed wall-clock reading as nanoseconds.
func TimestampPayload(at time.Time) []byte {
	return binary.LittleEndian.AppendUint64(nil, uint64(at.UnixNano()))
}

// WitnessSigPayload carries a third-party signature observed on chain.
func WitnessSigPayload(sig []byte) []byte {
	return append([]byte(nil), sig...)
}
