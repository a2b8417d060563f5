package mp4tag

import "encoding/binary"

// The helpers in this file assemble synthetic ISO-BMFF trees shaped
// exactly the way Read walks them, so the decode tests in this package
// never need a real encoder's output.

func box(typ string, payload []byte) []byte {
	buf := make([]byte, 8+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], uint32(8+len(payload)))
	copy(buf[4:8], typ)
	copy(buf[8:], payload)
	return buf
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func be32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func be16(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}

// buildMvhd builds a version-0 mvhd payload carrying just the fields Read
// consumes, padded out to a realistic size.
func buildMvhd(timeScale, durationUnits uint32) []byte {
	payload := make([]byte, 0, 100)
	payload = append(payload, 0, 0, 0, 0) // version + 3 reserved bytes
	payload = append(payload, make([]byte, 8)...) // creation/modification time
	payload = append(payload, be32(timeScale)...)
	payload = append(payload, be32(durationUnits)...)
	payload = append(payload, make([]byte, 80)...) // rate/volume/matrix/etc, unread
	return box("mvhd", payload)
}

// buildStsd builds an stsd box with a single mp4a-coded sample entry.
func buildStsd(channels uint16, sampleRate uint32) []byte {
	entry := concat(
		[]byte("mp4a"),
		make([]byte, 4+10), // reserved + pre-defined/reserved
		be16(channels),
		make([]byte, 2+4), // sample size + pre-defined/reserved
		be32(sampleRate),
	)
	descLen := uint32(len(entry)) // includes the 4-byte code, per read.go's "remaining -= 4" convention
	payload := concat(
		make([]byte, 4), // version + flags
		be32(1),         // n_descriptions
		be32(descLen),
		entry,
	)
	return box("stsd", payload)
}

func buildStszCBR(commonSampleSize uint32) []byte {
	payload := concat(make([]byte, 4), be32(commonSampleSize), be32(0))
	return box("stsz", payload)
}

func buildStszVBR(sizes []uint32) []byte {
	payload := concat(make([]byte, 4), be32(0), be32(uint32(len(sizes))))
	for _, s := range sizes {
		payload = append(payload, be32(s)...)
	}
	return box("stsz", payload)
}

func buildStbl(stsd, stsz []byte) []byte {
	return box("stbl", concat(stsd, stsz))
}

func buildTrak(stbl []byte) []byte {
	minf := box("minf", stbl)
	mdia := box("mdia", minf)
	return box("trak", mdia)
}

func buildHdlr(handlerType string) []byte {
	payload := concat(
		make([]byte, 4), // version + flags
		make([]byte, 4), // quicktime type
		[]byte(handlerType),
		make([]byte, 12), // reserved + component name, unread
	)
	return box("hdlr", payload)
}

func dataAtom(class byte, payload []byte) []byte {
	inner := make([]byte, 8+8+len(payload))
	binary.BigEndian.PutUint32(inner[0:4], uint32(len(inner)))
	copy(inner[4:8], "data")
	inner[11] = class
	copy(inner[16:], payload)
	return inner
}

func ilstEntry(tag string, class byte, payload []byte) []byte {
	d := dataAtom(class, payload)
	return box(tag, d)
}

func buildIlst(entries ...[]byte) []byte {
	return box("ilst", concat(entries...))
}

func buildMeta(hdlr, ilst []byte) []byte {
	payload := concat(make([]byte, 4), hdlr, ilst)
	return box("meta", payload)
}

func buildUdta(meta []byte) []byte {
	return box("udta", meta)
}

// buildMP4 assembles a full top-level file: ftyp, moov{mvhd,trak,udta},
// mdat. When udta is nil, udta/meta/ilst are omitted entirely
// (no-tag file).
func buildMP4(mvhd, trak, udta []byte, mdatPayload []byte) []byte {
	ftyp := box("ftyp", []byte("M4A \x00\x00\x00\x00isomM4A "))
	var moovPayload []byte
	if udta != nil {
		moovPayload = concat(mvhd, trak, udta)
	} else {
		moovPayload = concat(mvhd, trak)
	}
	moov := box("moov", moovPayload)
	mdat := box("mdat", mdatPayload)
	return concat(ftyp, moov, mdat)
}
