// Package bitreader provides a seekable, big-endian byte and bit reader over
// an audio file. Every package that reads the file goes through here for
// its big-endian decoding; the ilst write path in mp4tag encodes its
// big-endian sizes itself.
package bitreader

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sunfish-shogi/bufseekio"
)

// Reader is a random-access view over a file, buffered for repeated small
// reads and seeks.
type Reader struct {
	rs   *bufseekio.ReadSeeker
	size int64
}

// New wraps src for buffered, seekable reads. size is the total byte length
// of src, used to bound Seek and ReadBits.
func New(src io.ReadSeeker, size int64) *Reader {
	return &Reader{rs: bufseekio.NewReadSeeker(src, 4096, 4), size: size}
}

// Size returns the total byte length passed to New.
func (r *Reader) Size() int64 { return r.size }

// Tell returns the current absolute byte offset.
func (r *Reader) Tell() (int64, error) {
	return r.rs.Seek(0, io.SeekCurrent)
}

// Seek positions the stream at an absolute byte offset. It fails if pos lies
// beyond the end of the file.
func (r *Reader) Seek(pos int64) error {
	if pos < 0 || pos > r.size {
		return fmt.Errorf("bitreader: seek to %d beyond file size %d", pos, r.size)
	}
	_, err := r.rs.Seek(pos, io.SeekStart)
	return err
}

// SeekRelative advances the stream by delta bytes from its current position.
func (r *Reader) SeekRelative(delta int64) error {
	cur, err := r.Tell()
	if err != nil {
		return err
	}
	return r.Seek(cur + delta)
}

func (r *Reader) readN(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.rs, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadU16BE reads a big-endian uint16.
func (r *Reader) ReadU16BE() (uint16, error) {
	b, err := r.readN(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// ReadU32BE reads a big-endian uint32.
func (r *Reader) ReadU32BE() (uint32, error) {
	b, err := r.readN(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadU64BE reads a big-endian uint64.
func (r *Reader) ReadU64BE() (uint64, error) {
	b, err := r.readN(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// ReadI32BE reads a big-endian int32.
func (r *Reader) ReadI32BE() (int32, error) {
	v, err := r.ReadU32BE()
	return int32(v), err
}

// ReadI64BE reads a big-endian int64.
func (r *Reader) ReadI64BE() (int64, error) {
	v, err := r.ReadU64BE()
	return int64(v), err
}

// ReadByte reads a single byte, satisfying io.ByteReader.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.readN(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBytes reads n raw bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	return r.readN(n)
}

// ReadLatin1 reads n bytes and decodes them as ISO-8859-1, where each byte
// maps directly to the Unicode code point of the same value.
func (r *Reader) ReadLatin1(n int) (string, error) {
	b, err := r.readN(n)
	if err != nil {
		return "", err
	}
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes), nil
}

// ReadBits reads up to 25 bits starting at an absolute bit offset and
// restores the stream's prior byte position afterward. count must not
// exceed 25 — the 4-byte accumulator window cannot safely serve wider
// requests, per the format's own bit-reader contract. When fewer than 4
// bytes remain in the file, the missing bytes of the window read as zero;
// only a request reaching past the last byte fails.
func (r *Reader) ReadBits(bitPosition int64, count uint) (uint32, error) {
	if count > 25 {
		panic(fmt.Sprintf("bitreader: ReadBits count %d exceeds the 25-bit safe window", count))
	}
	saved, err := r.Tell()
	if err != nil {
		return 0, err
	}
	bytePos := bitPosition / 8
	shift := uint(bitPosition % 8)
	if err := r.Seek(bytePos); err != nil {
		return 0, err
	}
	n := r.size - bytePos
	if n > 4 {
		n = 4
	}
	if int64(shift)+int64(count) > n*8 {
		return 0, io.ErrUnexpectedEOF
	}
	var window [4]byte
	if _, err := io.ReadFull(r.rs, window[:n]); err != nil {
		return 0, err
	}
	acc := binary.BigEndian.Uint32(window[:])
	acc <<= shift
	acc >>= 32 - count
	if err := r.Seek(saved); err != nil {
		return 0, err
	}
	return acc, nil
}
