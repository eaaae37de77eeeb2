package wire

import (
	"bytes"
	"testing"
)

func TestPutGetUint16(t *testing.T) {
	b := NewBuffer()
	b.PutUint16(0xFEED)
	got, err := b.GetUint16()
	if err != nil {
		t.Fatalf("GetUint16: %v", err)
	}
	if got != 0xFEED {
		t.Fatalf("got %#x, want %#x", got, 0xFEED)
	}
}

func TestPutGetUint32(t *testing.T) {
	b := NewBuffer()
	b.PutUint32(0x00001194)
	got, err := b.GetUint32()
	if err != nil {
		t.Fatalf("GetUint32: %v", err)
	}
	if got != 0x00001194 {
		t.Fatalf("got %#x, want %#x", got, 0x00001194)
	}
}

func TestGetUint16ShortBuffer(t *testing.T) {
	b := NewBufferFrom([]byte{0x01})
	if _, err := b.GetUint16(); err != ErrShortBuffer {
		t.Fatalf("got %v, want ErrShortBuffer", err)
	}
	if b.Offset() != 0 {
		t.Fatalf("cursor advanced past a failed read: %d", b.Offset())
	}
}

func TestLengthPrefixedRoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte(""),
		[]byte("sender-0"),
		bytes.Repeat([]byte{0xAB}, 300),
	}
	for _, c := range cases {
		b := NewBuffer()
		b.PutLengthPrefixed(c)
		got, err := b.GetLengthPrefixed()
		if err != nil {
			t.Fatalf("GetLengthPrefixed(%q): %v", c, err)
		}
		if !bytes.Equal(got, c) && !(len(got) == 0 && len(c) == 0) {
			t.Fatalf("got %q, want %q", got, c)
		}
	}
}

func TestVarintFieldRoundTrip(t *testing.T) {
	b := NewBuffer()
	b.PutVarintField(5, 1)
	hdr, err := b.GetTag()
	if err != nil {
		t.Fatalf("GetTag: %v", err)
	}
	if hdr.Number != 5 {
		t.Fatalf("field number got %d, want 5", hdr.Number)
	}
	v, err := b.GetVarint()
	if err != nil {
		t.Fatalf("GetVarint: %v", err)
	}
	if v != 1 {
		t.Fatalf("varint got %d, want 1", v)
	}
}

func TestBytesFieldRoundTrip(t *testing.T) {
	b := NewBuffer()
	b.PutBytesField(4, []byte("urn:x-cast:com.google.cast.tp.heartbeat"))
	hdr, err := b.GetTag()
	if err != nil {
		t.Fatalf("GetTag: %v", err)
	}
	if hdr.Number != 4 {
		t.Fatalf("field number got %d, want 4", hdr.Number)
	}
	got, err := b.GetLengthPrefixed()
	if err != nil {
		t.Fatalf("GetLengthPrefixed: %v", err)
	}
	if string(got) != "urn:x-cast:com.google.cast.tp.heartbeat" {
		t.Fatalf("got %q", got)
	}
}
