package streamscan

import (
	"bytes"
	"testing"

	"github.com/ankit-chaubey/aac-mp4-surgery/internal/bitreader"
)

func TestRecognize(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want HeaderKind
	}{
		{"adif", []byte("ADIF" + "\x00\x00\x00\x00"), HeaderADIF},
		{"adts", []byte{0xFF, 0xF1, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, HeaderADTS},
		{"mp4", []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p'}, HeaderMP4},
		{"unknown", []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}, HeaderUnknown},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := bitreader.New(bytes.NewReader(c.data), int64(len(c.data)))
			got, err := Recognize(r, 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != c.want {
				t.Fatalf("got %s, want %s", got, c.want)
			}
		})
	}
}

func TestRecognizeHonorsID3v2Size(t *testing.T) {
	data := append([]byte("ID3prefix"), []byte("ADIF\x00\x00\x00\x00")...)
	r := bitreader.New(bytes.NewReader(data), int64(len(data)))
	got, err := Recognize(r, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != HeaderADIF {
		t.Fatalf("got %s, want ADIF", got)
	}
}
