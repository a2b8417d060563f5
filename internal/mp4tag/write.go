package mp4tag

import (
	"encoding/binary"
	"io"
	"strconv"
)

// Write produces just the ilst box (with its own outer size header) for
// tag and pictures. The caller splices this into the original file at the
// remembered ilst position and then calls RewriteFileSizeInHeader to
// cascade the size delta upward.
func Write(tag *TagRecord, pictures []Picture, w io.WriteSeeker) error {
	tagSizePos, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if err := writeU32Placeholder(w); err != nil {
		return err
	}
	if _, err := w.Write([]byte("ilst")); err != nil {
		return err
	}
	dataStart, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}

	for _, field := range orderedFields {
		code, ok := fieldToNativeCode[field]
		if !ok {
			continue
		}
		value, ok := tag.Get(field)
		if !ok || value == "" {
			continue
		}
		if err := encodeTextFrame(w, code, value); err != nil {
			return err
		}
	}

	for _, af := range tag.AdditionalFields {
		if err := encodeTextFrame(w, af.NativeCode, af.Value); err != nil {
			return err
		}
	}

	if err := WritePictures(w, pictures); err != nil {
		return err
	}

	finalPos, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err := w.Seek(tagSizePos, io.SeekStart); err != nil {
		return err
	}
	if err := writeU32(w, uint32(finalPos-dataStart+8)); err != nil {
		return err
	}
	_, err = w.Seek(finalPos, io.SeekStart)
	return err
}

// WritePictures appends one complete "covr" outer frame per picture, each
// with its own size header and inner "data" atom, so the ilst iterator on
// the read side sees each as a distinct entry.
func WritePictures(w io.WriteSeeker, pictures []Picture) error {
	for _, pic := range pictures {
		class := byte(13)
		if pic.Format == PictureFormatPNG {
			class = 14
		}
		if err := encodeOuterFrame(w, "covr", class, pic.Data); err != nil {
			return err
		}
	}
	return nil
}

// encodeTextFrame writes one complete ilst entry for a semantic/native
// field, dispatching on the field's declared data_class.
func encodeTextFrame(w io.WriteSeeker, nativeCode, value string) error {
	class := dataClassFor(nativeCode)

	switch class {
	case 0:
		return encodeNumberFrame(w, nativeCode, value)
	case 21:
		n, err := strconv.Atoi(value)
		if err != nil {
			n = 0
		}
		return encodeOuterFrame(w, nativeCode, class, []byte{byte(n)})
	default:
		return encodeOuterFrame(w, nativeCode, class, []byte(value))
	}
}

// encodeNumberFrame encodes the class-0 trkn/disk/gnre atoms, including a
// deliberately reproduced "gnre" bug: the parsed genre index is computed
// but never written to the payload. See DESIGN.md "Open Question
// decisions".
func encodeNumberFrame(w io.WriteSeeker, nativeCode, value string) error {
	n, _ := strconv.Atoi(value)
	switch nativeCode {
	case "trkn":
		payload := make([]byte, 8)
		binary.BigEndian.PutUint16(payload[2:4], uint16(n))
		return encodeOuterFrame(w, nativeCode, 0, payload)
	case "disk":
		payload := make([]byte, 6)
		binary.BigEndian.PutUint16(payload[2:4], uint16(n))
		return encodeOuterFrame(w, nativeCode, 0, payload)
	case "gnre":
		// n parsed above is deliberately not written; the frame carries
		// an empty payload after its data header.
		return encodeOuterFrame(w, nativeCode, 0, []byte{})
	default:
		return encodeOuterFrame(w, nativeCode, 0, []byte{})
	}
}

// encodeOuterFrame writes a full ilst entry: outer size, 4-char frame
// code, then its inner "data" atom.
func encodeOuterFrame(w io.WriteSeeker, frameCode string, class byte, payload []byte) error {
	outerStart, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if err := writeU32Placeholder(w); err != nil {
		return err
	}
	if _, err := w.Write([]byte(frameCode)); err != nil {
		return err
	}
	if err := encodeDataAtom(w, class, payload); err != nil {
		return err
	}
	outerEnd, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err := w.Seek(outerStart, io.SeekStart); err != nil {
		return err
	}
	if err := writeU32(w, uint32(outerEnd-outerStart)); err != nil {
		return err
	}
	_, err = w.Seek(outerEnd, io.SeekStart)
	return err
}

// encodeDataAtom writes one "data" box: inner size, "data", class, zero
// flags, then payload.
func encodeDataAtom(w io.WriteSeeker, class byte, payload []byte) error {
	innerStart, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if err := writeU32Placeholder(w); err != nil {
		return err
	}
	if _, err := w.Write([]byte("data")); err != nil {
		return err
	}
	if err := writeU32(w, uint32(class)); err != nil {
		return err
	}
	if _, err := w.Write([]byte{0, 0, 0, 0}); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	innerEnd, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err := w.Seek(innerStart, io.SeekStart); err != nil {
		return err
	}
	if err := writeU32(w, uint32(innerEnd-innerStart)); err != nil {
		return err
	}
	_, err = w.Seek(innerEnd, io.SeekStart)
	return err
}

func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func writeU32Placeholder(w io.Writer) error {
	return writeU32(w, 0)
}

// RewriteFileSizeInHeader cascades a write's size delta through every
// enclosing atom recorded in table. w must already be positioned at the
// original file's start offset convention used when table was recorded.
func RewriteFileSizeInHeader(w io.WriteSeeker, table *UpperAtomTable, delta int64) error {
	for _, entry := range table.Entries {
		if _, err := w.Seek(entry.SizeFieldOffset, io.SeekStart); err != nil {
			return err
		}
		if err := writeU32(w, uint32(entry.Size+delta)); err != nil {
			return err
		}
	}
	return nil
}
