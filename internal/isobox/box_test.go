package isobox

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/ankit-chaubey/aac-mp4-surgery/internal/bitreader"
)

func box(typ string, payload []byte) []byte {
	buf := make([]byte, 8+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], uint32(8+len(payload)))
	copy(buf[4:8], typ)
	copy(buf[8:], payload)
	return buf
}

func TestLookForFindsSibling(t *testing.T) {
	data := append(box("free", []byte{1, 2, 3, 4}), box("moov", []byte{9, 9})...)
	r := bitreader.New(bytes.NewReader(data), int64(len(data)))

	size, err := LookFor(r, TypeMoov)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size != 10 {
		t.Fatalf("size = %d, want 10", size)
	}
	pos, err := r.Tell()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pos != int64(len(data))-2 {
		t.Fatalf("reader left at %d, want payload start %d", pos, len(data)-2)
	}
}

func TestLookForNotFound(t *testing.T) {
	data := box("free", []byte{1, 2, 3, 4})
	r := bitreader.New(bytes.NewReader(data), int64(len(data)))

	_, err := LookFor(r, TypeMoov)
	if err == nil {
		t.Fatal("expected ErrBoxNotFound")
	}
	if _, ok := err.(*ErrBoxNotFound); !ok {
		t.Fatalf("got %T, want *ErrBoxNotFound", err)
	}
}

func TestLookForExtendedSizeRejected(t *testing.T) {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint32(buf[0:4], 1) // largesize marker
	copy(buf[4:8], "moov")

	r := bitreader.New(bytes.NewReader(buf), int64(len(buf)))
	_, err := LookFor(r, TypeMoov)
	if _, ok := err.(*ErrExtendedSizeBox); !ok {
		t.Fatalf("got %T (%v), want *ErrExtendedSizeBox", err, err)
	}
}

func TestLookForGivesUpAfterMaxScan(t *testing.T) {
	var data []byte
	for i := 0; i < maxSiblingScan+1; i++ {
		data = append(data, box("skip", nil)...)
	}
	r := bitreader.New(bytes.NewReader(data), int64(len(data)))

	_, err := LookFor(r, TypeMoov)
	if _, ok := err.(*ErrBoxNotFound); !ok {
		t.Fatalf("got %T, want *ErrBoxNotFound after exhausting scan budget", err)
	}
}
