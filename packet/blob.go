// Package packet provides the fixed-capacity framing record ("blob") used to
// move one ledger entry over the network or onto disk. A blob carries a
// small header (index, producer id, flags, payload size) followed by a
// fixed-size data region; the size field records how much of the region is
// actually occupied.
package packet

import (
	"encoding/binary"
	"fmt"
)

const (
	// BlobSize is the total on-wire size of a blob.
	BlobSize = 64 * 1024

	// BlobHeaderSize is index(8) + id(32) + flags(8) + size(8).
	BlobHeaderSize = 8 + 32 + 8 + 8

	// BlobDataSize is the payload budget available to a single entry.
	BlobDataSize = BlobSize - BlobHeaderSize
)

// FlagTick marks a blob that carries a tick entry.
const FlagTick uint64 = 1 << 0

// ErrBadBlobSize reports a size field that does not fit the data region.
// It is a framing fault: the blob is dropped and the caller decides whether
// to request retransmission.
type ErrBadBlobSize struct {
	Size uint64
}

func (e *ErrBadBlobSize) Error() string {
	return fmt.Sprintf("blob size %d exceeds capacity %d", e.Size, BlobDataSize)
}

// Blob is one framing record. The zero value is an empty blob.
type Blob struct {
	Index uint64   // ledger position assigned by the producer
	ID    [32]byte // producer identity (ed25519 public key bytes)
	Flags uint64

	size uint64
	data [BlobDataSize]byte
}

// SetData copies payload into the data region and records its length.
func (b *Blob) SetData(payload []byte) error {
	if uint64(len(payload)) > BlobDataSize {
		return &ErrBadBlobSize{Size: uint64(len(payload))}
	}
	copy(b.data[:], payload)
	b.size = uint64(len(payload))
	return nil
}

// SetSize records the occupied payload length without touching the data.
func (b *Blob) SetSize(n uint64) error {
	if n > BlobDataSize {
		return &ErrBadBlobSize{Size: n}
	}
	b.size = n
	return nil
}

// Size returns the occupied payload length. It fails with ErrBadBlobSize
// when the field is corrupt, which callers must treat as a framing fault.
func (b *Blob) Size() (uint64, error) {
	if b.size > BlobDataSize {
		return 0, &ErrBadBlobSize{Size: b.size}
	}
	return b.size, nil
}

// Data exposes the full data region. Use Size to find the occupied prefix.
func (b *Blob) Data() []byte {
	return b.data[:]
}

// MarshalBinary encodes the blob into its fixed BlobSize wire form.
func (b *Blob) MarshalBinary() ([]byte, error) {
	if _, err := b.Size(); err != nil {
		return nil, err
	}
	out := make([]byte, BlobSize)
	binary.LittleEndian.PutUint64(out[0:], b.Index)
	copy(out[8:], b.ID[:])
	binary.LittleEndian.PutUint64(out[40:], b.Flags)
	binary.LittleEndian.PutUint64(out[48:], b.size)
	copy(out[BlobHeaderSize:], b.data[:])
	return out, nil
}

// UnmarshalBinary decodes a fixed BlobSize wire form. A short buffer or an
// oversized size field is a framing fault.
func (b *Blob) UnmarshalBinary(data []byte) error {
	if len(data) != BlobSize {
		return fmt.Errorf("blob must be %d bytes, got %d", BlobSize, len(data))
	}
	b.Index = binary.LittleEndian.Uint64(data[0:])
	copy(b.ID[:], data[8:])
	b.Flags = binary.LittleEndian.Uint64(data[40:])
	b.size = binary.LittleEndian.Uint64(data[48:])
	if b.size > BlobDataSize {
		return &ErrBadBlobSize{Size: b.size}
	}
	copy(b.data[:], data[BlobHeaderSize:])
	return nil
}
