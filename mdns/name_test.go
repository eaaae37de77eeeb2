package mdns

import "testing"

func TestDecodeNameSimple(t *testing.T) {
	msg := []byte{0x03, 'f', 'o', 'o', 0x03, 'b', 'a', 'r', 0x00, 0xAA}
	labels, next, err := decodeName(msg, 0)
	if err != nil {
		t.Fatalf("decodeName: %v", err)
	}
	if len(labels) != 2 || labels[0] != "foo" || labels[1] != "bar" {
		t.Fatalf("got labels %v", labels)
	}
	if next != 9 {
		t.Fatalf("next = %d, want 9", next)
	}
}

func TestDecodeNamePointer(t *testing.T) {
	// "base" at offset 0, then a name at offset 6 that points back to it.
	msg := []byte{
		0x04, 'b', 'a', 's', 'e', 0x00, // offset 0..5
		0xC0, 0x00, // offset 6: pointer to offset 0
	}
	labels, next, err := decodeName(msg, 6)
	if err != nil {
		t.Fatalf("decodeName: %v", err)
	}
	if len(labels) != 1 || labels[0] != "base" {
		t.Fatalf("got labels %v", labels)
	}
	if next != 8 {
		t.Fatalf("next = %d, want 8 (right after the 2-byte pointer)", next)
	}
}

func TestDecodeNamePointerLoop(t *testing.T) {
	// Pointer at offset 0 points to itself.
	msg := []byte{0xC0, 0x00}
	if _, _, err := decodeName(msg, 0); err != errPointerLoop {
		t.Fatalf("got %v, want errPointerLoop", err)
	}
}

func TestDecodeNameTruncated(t *testing.T) {
	msg := []byte{0x05, 'a', 'b'}
	if _, _, err := decodeName(msg, 0); err != errTruncatedName {
		t.Fatalf("got %v, want errTruncatedName", err)
	}
}

func TestSkipName(t *testing.T) {
	msg := []byte{0x03, 'f', 'o', 'o', 0x00, 0xAA, 0xBB}
	next, err := skipName(msg, 0)
	if err != nil {
		t.Fatalf("skipName: %v", err)
	}
	if next != 5 {
		t.Fatalf("next = %d, want 5", next)
	}
}
