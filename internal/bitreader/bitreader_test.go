package bitreader

import (
	"bytes"
	"testing"
)

func newTestReader(b []byte) *Reader {
	return New(bytes.NewReader(b), int64(len(b)))
}

func TestReadU32BE(t *testing.T) {
	r := newTestReader([]byte{0x00, 0x00, 0x01, 0x00, 0xFF, 0xFF, 0xFF, 0xFF})
	v, err := r.ReadU32BE()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 256 {
		t.Fatalf("got %d, want 256", v)
	}
	v2, err := r.ReadU32BE()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v2 != 0xFFFFFFFF {
		t.Fatalf("got %#x, want 0xFFFFFFFF", v2)
	}
}

func TestReadLatin1(t *testing.T) {
	r := newTestReader([]byte("ftypM4A "))
	s, err := r.ReadLatin1(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != "ftyp" {
		t.Fatalf("got %q, want ftyp", s)
	}
}

func TestSeekBeyondEndFails(t *testing.T) {
	r := newTestReader([]byte{1, 2, 3, 4})
	if err := r.Seek(100); err == nil {
		t.Fatal("expected error seeking past end of file")
	}
}

func TestReadBitsRestoresPosition(t *testing.T) {
	// 0xFF 0xF1 -> syncword 0xFFF at bit 0, high nibble of second byte 0xF.
	r := newTestReader([]byte{0xFF, 0xF1, 0x00, 0x00, 0x00, 0x00})
	if err := r.Seek(3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, err := r.ReadBits(0, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0xFFF {
		t.Fatalf("got %#x, want 0xFFF", v)
	}

	pos, err := r.Tell()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos != 3 {
		t.Fatalf("ReadBits did not restore position: got %d, want 3", pos)
	}
}

func TestReadBitsMidByteOffset(t *testing.T) {
	// bits: 0000 1111 1111 0000 -> reading 8 bits starting at bit offset 4
	// should yield 0b11111111 = 0xFF.
	r := newTestReader([]byte{0x0F, 0xF0})
	v, err := r.ReadBits(4, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0xFF {
		t.Fatalf("got %#x, want 0xFF", v)
	}
}

func TestReadBitsPanicsOnWideRequest(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for count > 25")
		}
	}()
	r := newTestReader(make([]byte, 8))
	_, _ = r.ReadBits(0, 26)
}
