package ledger

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/kairolabs/kairochain/core"
	"github.com/kairolabs/kairochain/crypto"
	"github.com/kairolabs/kairochain/packet"
)

// ErrFraming marks faults in the byte layout of an entry or its blob:
// truncated payloads, bad length prefixes, trailing garbage. Framing faults
// are recoverable (drop the blob); they are distinct from chain faults,
// which Verify reports on well-formed entries with wrong ids.
var ErrFraming = errors.New("malformed entry framing")

// MarshalBinary encodes the entry in its wire form:
// tickHeight LE | numHashes LE | id | txCount LE | transactions.
func (e *Entry) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, SerializedSize(e.Transactions))
	buf = binary.LittleEndian.AppendUint64(buf, e.TickHeight)
	buf = binary.LittleEndian.AppendUint64(buf, e.NumHashes)
	buf = append(buf, e.ID[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(e.Transactions)))
	for i := range e.Transactions {
		data, err := e.Transactions[i].MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		buf = append(buf, data...)
	}
	return buf, nil
}

// UnmarshalBinary decodes one entry from data, which must contain exactly
// one entry. Any structural fault is reported as ErrFraming.
func (e *Entry) UnmarshalBinary(data []byte) error {
	if len(data) < entryHeaderSize {
		return fmt.Errorf("%w: %d bytes is shorter than the %d-byte header", ErrFraming, len(data), entryHeaderSize)
	}
	e.TickHeight = binary.LittleEndian.Uint64(data[0:])
	e.NumHashes = binary.LittleEndian.Uint64(data[8:])
	copy(e.ID[:], data[16:16+crypto.HashSize])
	txCount := binary.LittleEndian.Uint64(data[16+crypto.HashSize:])

	rest := data[entryHeaderSize:]
	// Every transaction occupies at least its fixed header, so an honest
	// count can never exceed the remaining bytes. Checking first keeps a
	// hostile count from sizing an allocation.
	if txCount > uint64(len(rest)) {
		return fmt.Errorf("%w: transaction count %d exceeds %d remaining bytes", ErrFraming, txCount, len(rest))
	}
	e.Transactions = nil
	if txCount > 0 {
		r := bytes.NewReader(rest)
		e.Transactions = make([]core.Transaction, 0, txCount)
		for i := uint64(0); i < txCount; i++ {
			tx, err := core.ReadTransaction(r)
			if err != nil {
				return fmt.Errorf("%w: transaction %d: %v", ErrFraming, i, err)
			}
			e.Transactions = append(e.Transactions, tx)
		}
		rest = rest[len(rest)-r.Len():]
	}
	if len(rest) != 0 {
		return fmt.Errorf("%w: %d trailing bytes after %d transactions", ErrFraming, len(rest), txCount)
	}
	return nil
}

// ToBlob frames the entry into a fresh blob, recording the payload length
// in the blob's size field and flagging ticks for downstream bookkeeping.
func (e *Entry) ToBlob() (*packet.Blob, error) {
	data, err := e.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("serialize entry: %w", err)
	}
	var blob packet.Blob
	if err := blob.SetData(data); err != nil {
		return nil, err
	}
	if e.IsTick() {
		blob.Flags |= packet.FlagTick
	}
	return &blob, nil
}

// ToBlobs frames each entry of the slice into its own blob.
func ToBlobs(entries []Entry) ([]*packet.Blob, error) {
	blobs := make([]*packet.Blob, 0, len(entries))
	for i := range entries {
		blob, err := entries[i].ToBlob()
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		blobs = append(blobs, blob)
	}
	return blobs, nil
}

// ReconstructEntriesFromBlobs deserializes one entry per blob and counts
// the ticks among them. A blob whose size field is corrupt or whose payload
// does not decode as exactly one entry fails the whole call with a framing
// fault; cryptographic checking is the verifier's job, not done here.
func ReconstructEntriesFromBlobs(blobs []*packet.Blob) ([]Entry, uint64, error) {
	entries := make([]Entry, 0, len(blobs))
	var numTicks uint64

	for i, blob := range blobs {
		size, err := blob.Size()
		if err != nil {
			return nil, 0, fmt.Errorf("blob %d: %w", i, err)
		}
		var entry Entry
		if err := entry.UnmarshalBinary(blob.Data()[:size]); err != nil {
			return nil, 0, fmt.Errorf("blob %d: %w", i, err)
		}
		if entry.IsTick() {
			numTicks++
		}
		entries = append(entries, entry)
	}
	return entries, numTicks, nil
}
