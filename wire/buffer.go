// Package wire implements the byte-level pack/unpack primitives shared by
// the mDNS query encoder and the Cast message framer: big-endian fixed-width
// integers, length-prefixed byte runs, and protobuf-style varint fields.
package wire

import (
	"encoding/binary"
	"errors"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrShortBuffer is returned by a Get* method when fewer bytes remain at the
// read cursor than the requested field requires. The cursor is left
// unchanged so callers may retry once more data has arrived.
var ErrShortBuffer = errors.New("wire: short buffer")

// ErrMalformedVarint is returned when a varint field cannot be decoded.
var ErrMalformedVarint = errors.New("wire: malformed varint")

// Buffer is a growable byte buffer with an independent read cursor. Pack
// methods append to the end; Get methods read from the cursor and advance
// it. The cursor never advances past the write length.
type Buffer struct {
	data []byte
	off  int
}

// NewBuffer returns an empty, growable Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// NewBufferFrom wraps existing bytes for reading; the write length is the
// full slice and the cursor starts at zero.
func NewBufferFrom(b []byte) *Buffer {
	return &Buffer{data: b}
}

// Bytes returns the full packed contents.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Offset returns the current read cursor.
func (b *Buffer) Offset() int {
	return b.off
}

// Remaining returns the number of unread bytes.
func (b *Buffer) Remaining() int {
	return len(b.data) - b.off
}

// Reset clears the buffer for writing and resets the read cursor.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
	b.off = 0
}

// Advance skips n bytes in the read cursor without returning them. It fails
// (without advancing) if fewer than n bytes remain.
func (b *Buffer) Advance(n int) error {
	if b.Remaining() < n {
		return ErrShortBuffer
	}
	b.off += n
	return nil
}

// --- pack ---

// PutUint16 appends a big-endian uint16.
func (b *Buffer) PutUint16(v uint16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	b.data = append(b.data, tmp[:]...)
}

// PutUint32 appends a big-endian uint32.
func (b *Buffer) PutUint32(v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	b.data = append(b.data, tmp[:]...)
}

// PutBytes appends raw bytes with no length prefix.
func (b *Buffer) PutBytes(p []byte) {
	b.data = append(b.data, p...)
}

// PutLengthPrefixed appends a protobuf-style length-delimited field: a
// varint byte count followed by the raw bytes.
func (b *Buffer) PutLengthPrefixed(p []byte) {
	b.data = protowire.AppendBytes(b.data, p)
}

// PutVarint appends a bare protobuf varint (no tag).
func (b *Buffer) PutVarint(v uint64) {
	b.data = protowire.AppendVarint(b.data, v)
}

// PutTag appends a protobuf field tag: (fieldNumber<<3)|wireType.
func (b *Buffer) PutTag(fieldNumber int32, wireType protowire.Type) {
	b.data = protowire.AppendTag(b.data, protowire.Number(fieldNumber), wireType)
}

// PutVarintField appends a tagged varint field in one call.
func (b *Buffer) PutVarintField(fieldNumber int32, v uint64) {
	b.PutTag(fieldNumber, protowire.VarintType)
	b.PutVarint(v)
}

// PutBytesField appends a tagged length-delimited field in one call.
func (b *Buffer) PutBytesField(fieldNumber int32, p []byte) {
	b.PutTag(fieldNumber, protowire.BytesType)
	b.PutLengthPrefixed(p)
}

// --- unpack ---

// GetUint16 reads a big-endian uint16 from the cursor, advancing it.
func (b *Buffer) GetUint16() (uint16, error) {
	if b.Remaining() < 2 {
		return 0, ErrShortBuffer
	}
	v := binary.BigEndian.Uint16(b.data[b.off:])
	b.off += 2
	return v, nil
}

// GetUint32 reads a big-endian uint32 from the cursor, advancing it.
func (b *Buffer) GetUint32() (uint32, error) {
	if b.Remaining() < 4 {
		return 0, ErrShortBuffer
	}
	v := binary.BigEndian.Uint32(b.data[b.off:])
	b.off += 4
	return v, nil
}

// GetBytes reads n raw bytes from the cursor, advancing it. The returned
// slice aliases the buffer's backing array.
func (b *Buffer) GetBytes(n int) ([]byte, error) {
	if n < 0 || b.Remaining() < n {
		return nil, ErrShortBuffer
	}
	v := b.data[b.off : b.off+n]
	b.off += n
	return v, nil
}

// GetLengthPrefixed reads a varint length followed by that many bytes.
func (b *Buffer) GetLengthPrefixed() ([]byte, error) {
	v, n := protowire.ConsumeBytes(b.data[b.off:])
	if n < 0 {
		return nil, ErrShortBuffer
	}
	b.off += n
	return v, nil
}

// GetVarint reads a bare varint from the cursor, advancing it.
func (b *Buffer) GetVarint() (uint64, error) {
	v, n := protowire.ConsumeVarint(b.data[b.off:])
	if n < 0 {
		return 0, ErrMalformedVarint
	}
	b.off += n
	return v, nil
}

// FieldHeader is one decoded protobuf tag.
type FieldHeader struct {
	Number   int32
	WireType protowire.Type
}

// GetTag reads a field tag (number, wire type) from the cursor.
func (b *Buffer) GetTag() (FieldHeader, error) {
	num, wtype, n := protowire.ConsumeTag(b.data[b.off:])
	if n < 0 {
		return FieldHeader{}, ErrShortBuffer
	}
	b.off += n
	return FieldHeader{Number: int32(num), WireType: wtype}, nil
}
