// Package isobox implements the sibling-box lookup at the heart of an
// ISO-BMFF walk: given a reader positioned at the start of a container's
// children, find the next box of a given type and leave the reader on its
// payload. It deliberately does not build an owned tree — callers walk
// untrusted input with a linear reader plus remembered absolute offsets,
// and that is what LookFor gives every caller.
package isobox

import "github.com/ankit-chaubey/aac-mp4-surgery/internal/bitreader"

// maxSiblingScan guards against malformed input that never yields the
// requested box by giving up after 100 iterations.
const maxSiblingScan = 100

// Box type tags used throughout the MP4 tag engine, named the way
// tetsuo-mp4's BoxType constants are (other_examples), but expressed as
// plain strings since every call site here works through ReadLatin1.
const (
	TypeFtyp = "ftyp"
	TypeMoov = "moov"
	TypeMvhd = "mvhd"
	TypeTrak = "trak"
	TypeMdia = "mdia"
	TypeMinf = "minf"
	TypeStbl = "stbl"
	TypeStsd = "stsd"
	TypeStsz = "stsz"
	TypeUdta = "udta"
	TypeMeta = "meta"
	TypeHdlr = "hdlr"
	TypeIlst = "ilst"
	TypeData = "data"
	TypeMdat = "mdat"
)

// LookFor advances through sibling boxes at the reader's current level,
// skipping each non-matching box's payload, until it finds one whose type
// equals key. It returns the matched box's total size (header included)
// and leaves the reader positioned on the first payload byte.
func LookFor(r *bitreader.Reader, key string) (int64, error) {
	for i := 0; i < maxSiblingScan; i++ {
		pos, err := r.Tell()
		if err != nil {
			return 0, err
		}
		if pos+8 > r.Size() {
			return 0, &ErrBoxNotFound{Key: key}
		}

		size, err := r.ReadU32BE()
		if err != nil {
			return 0, err
		}
		typ, err := r.ReadLatin1(4)
		if err != nil {
			return 0, err
		}

		if size == 0 || size == 1 {
			return 0, &ErrExtendedSizeBox{Key: typ}
		}
		if size < 8 {
			return 0, &ErrMalformedContainer{Detail: "box size " + typ + " smaller than its own header"}
		}

		if typ == key {
			return int64(size), nil
		}

		if err := r.SeekRelative(int64(size) - 8); err != nil {
			return 0, err
		}
	}
	return 0, &ErrBoxNotFound{Key: key}
}
