package mp4tag

import (
	"math"
	"strconv"

	"github.com/ankit-chaubey/aac-mp4-surgery/internal/bitreader"
	"github.com/ankit-chaubey/aac-mp4-surgery/internal/isobox"
	"github.com/ankit-chaubey/aac-mp4-surgery/internal/streamscan"
)

var stsdAudioCodes = map[string]bool{
	"mp4a": true, "enca": true, "samr": true, "sawb": true,
}

// Read drives the box walker through a full physical-descriptor and
// metadata pass over an MP4/ISO-BMFF file. Read seeks to id3v2Size itself
// and expects the first top-level box there (normally the "ftyp" box the
// caller confirmed via streamscan.Recognize).
func Read(r *bitreader.Reader, id3v2Size, fileSize int64, params ReadParams) (*streamscan.Descriptor, *TagRecord, *UpperAtomTable, *ReadDiagnostics, error) {
	desc := &streamscan.Descriptor{HeaderKind: streamscan.HeaderMP4}
	tag := NewTagRecord()
	table := &UpperAtomTable{}
	diag := &ReadDiagnostics{}

	// 1. ftyp skip.
	if err := r.Seek(id3v2Size); err != nil {
		return nil, nil, nil, nil, err
	}
	ftypSize, err := r.ReadU32BE()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if err := r.Seek(id3v2Size + int64(ftypSize)); err != nil {
		return nil, nil, nil, nil, err
	}

	// 2. moov entry.
	moovSize, err := isobox.LookFor(r, isobox.TypeMoov)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	moovPayloadStart, err := r.Tell()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	moovHeaderOffset := moovPayloadStart - 8
	moovEnd := moovHeaderOffset + moovSize

	// 3. mvhd.
	mvhdSize, err := isobox.LookFor(r, isobox.TypeMvhd)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	mvhdPayloadStart, err := r.Tell()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	mvhdHeaderOffset := mvhdPayloadStart - 8
	version, err := r.ReadByte()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if err := r.SeekRelative(3); err != nil {
		return nil, nil, nil, nil, err
	}
	if version == 1 {
		if err := r.SeekRelative(16); err != nil {
			return nil, nil, nil, nil, err
		}
	} else {
		if err := r.SeekRelative(8); err != nil {
			return nil, nil, nil, nil, err
		}
	}
	timeScale, err := r.ReadI32BE()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	var durationUnits int64
	if version == 1 {
		durationUnits, err = r.ReadI64BE()
	} else {
		var u32 uint32
		u32, err = r.ReadU32BE()
		durationUnits = int64(u32)
	}
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if timeScale != 0 {
		desc.DurationSec = float64(durationUnits) / float64(timeScale)
	}
	if err := r.Seek(mvhdHeaderOffset + mvhdSize); err != nil {
		return nil, nil, nil, nil, err
	}

	// 4. trak -> mdia -> minf -> stbl.
	trakSize, err := isobox.LookFor(r, isobox.TypeTrak)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	trakPayloadStart, err := r.Tell()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	trakHeaderOffset := trakPayloadStart - 8
	if _, err := isobox.LookFor(r, isobox.TypeMdia); err != nil {
		return nil, nil, nil, nil, err
	}
	if _, err := isobox.LookFor(r, isobox.TypeMinf); err != nil {
		return nil, nil, nil, nil, err
	}
	if _, err := isobox.LookFor(r, isobox.TypeStbl); err != nil {
		return nil, nil, nil, nil, err
	}
	stblPayloadStart, err := r.Tell()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	// 5. stsd.
	if _, err := isobox.LookFor(r, isobox.TypeStsd); err != nil {
		return nil, nil, nil, nil, err
	}
	if err := r.SeekRelative(4); err != nil {
		return nil, nil, nil, nil, err
	}
	nDescriptions, err := r.ReadU32BE()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	for i := uint32(0); i < nDescriptions; i++ {
		descLen, err := r.ReadU32BE()
		if err != nil {
			return nil, nil, nil, nil, err
		}
		code, err := r.ReadLatin1(4)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		remaining := int64(descLen) - 4
		if stsdAudioCodes[code] {
			if err := r.SeekRelative(14); err != nil {
				return nil, nil, nil, nil, err
			}
			channels, err := r.ReadU16BE()
			if err != nil {
				return nil, nil, nil, nil, err
			}
			if err := r.SeekRelative(6); err != nil {
				return nil, nil, nil, nil, err
			}
			sampleRate, err := r.ReadI32BE()
			if err != nil {
				return nil, nil, nil, nil, err
			}
			desc.Channels = uint8(channels)
			desc.SampleRateHz = int(sampleRate)
			remaining -= 26
		}
		if remaining > 0 {
			if err := r.SeekRelative(remaining); err != nil {
				return nil, nil, nil, nil, err
			}
		}
	}

	// 6. stsz (VBR detection) -- return to stbl.
	if err := r.Seek(stblPayloadStart); err != nil {
		return nil, nil, nil, nil, err
	}
	if _, err := isobox.LookFor(r, isobox.TypeStsz); err != nil {
		return nil, nil, nil, nil, err
	}
	if err := r.SeekRelative(4); err != nil {
		return nil, nil, nil, nil, err
	}
	commonSampleSize, err := r.ReadI32BE()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if commonSampleSize != 0 {
		desc.BitRateKind = streamscan.BitRateCBR
	} else {
		nSizes, err := r.ReadU32BE()
		if err != nil {
			return nil, nil, nil, nil, err
		}
		var min, max uint32
		for i := uint32(0); i < nSizes; i++ {
			sz, err := r.ReadU32BE()
			if err != nil {
				return nil, nil, nil, nil, err
			}
			if i == 0 || sz < min {
				min = sz
			}
			if sz > max {
				max = sz
			}
		}
		if float64(min)*1.01 < float64(max) {
			desc.BitRateKind = streamscan.BitRateVBR
		} else {
			desc.BitRateKind = streamscan.BitRateCBR
		}
	}

	if err := r.Seek(trakHeaderOffset + trakSize); err != nil {
		return nil, nil, nil, nil, err
	}
	diag.MultipleTraksSkipped = countAdditionalBoxes(r, moovEnd, isobox.TypeTrak)

	if !params.ReadTag {
		if err := applyMdat(r, desc); err != nil {
			return nil, nil, nil, nil, err
		}
		return desc, tag, table, diag, nil
	}

	// 7. udta -> meta.
	if err := r.Seek(moovHeaderOffset + 8); err != nil {
		return nil, nil, nil, nil, err
	}
	udtaSize, err := isobox.LookFor(r, isobox.TypeUdta)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	udtaPayloadStart, err := r.Tell()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	udtaHeaderOffset := udtaPayloadStart - 8
	metaSize, err := isobox.LookFor(r, isobox.TypeMeta)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	metaPayloadStart, err := r.Tell()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	metaHeaderOffset := metaPayloadStart - 8
	if params.PrepareForWriting {
		table.record(moovHeaderOffset, moovSize)
		table.record(udtaHeaderOffset, udtaSize)
		table.record(metaHeaderOffset, metaSize)
	}
	if err := r.SeekRelative(4); err != nil {
		return nil, nil, nil, nil, err
	}

	// 8. hdlr validation.
	hdlrSize, err := isobox.LookFor(r, isobox.TypeHdlr)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	hdlrPayloadStart, err := r.Tell()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	hdlrHeaderOffset := hdlrPayloadStart - 8
	if err := r.SeekRelative(8); err != nil {
		return nil, nil, nil, nil, err
	}
	handlerType, err := r.ReadLatin1(4)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	switch handlerType {
	case "mdir":
	case "mp7t":
		return nil, nil, nil, nil, &ErrUnsupportedMetadata{Reason: "MPEG-7 XML metadata"}
	case "mp7b":
		return nil, nil, nil, nil, &ErrUnsupportedMetadata{Reason: "MPEG-7 binary XML metadata"}
	default:
		return nil, nil, nil, nil, &ErrUnsupportedMetadata{Reason: "Unrecognized metadata format"}
	}
	if err := r.Seek(hdlrHeaderOffset + hdlrSize); err != nil {
		return nil, nil, nil, nil, err
	}

	// 9. ilst.
	ilstSize, err := isobox.LookFor(r, isobox.TypeIlst)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	ilstPayloadStart, err := r.Tell()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	ilstHeaderOffset := ilstPayloadStart - 8
	ilstPayloadEnd := ilstHeaderOffset + ilstSize
	tag.TagExists = (ilstSize - 8) > 0
	table.IlstOffset = ilstHeaderOffset
	table.IlstSize = ilstSize

	// 10. tag iteration.
	if tag.TagExists {
		pos := ilstPayloadStart
		for pos < ilstPayloadEnd {
			if err := r.Seek(pos); err != nil {
				return nil, nil, nil, nil, err
			}
			entrySize, err := r.ReadU32BE()
			if err != nil {
				return nil, nil, nil, nil, err
			}
			// The entry code is kept as its raw 4 bytes (e.g. 0xA9 "nam"),
			// the same form nativeCodeToField keys on and Write emits.
			entryTagBytes, err := r.ReadBytes(4)
			if err != nil {
				return nil, nil, nil, nil, err
			}
			entryTag := string(entryTagBytes)
			if entrySize < 8 {
				break
			}

			dataSize, derr := isobox.LookFor(r, isobox.TypeData)
			if derr == nil {
				afterHeader, terr := r.Tell()
				if terr != nil {
					return nil, nil, nil, nil, terr
				}
				dataBoxStart := afterHeader - 8

				if err := r.SeekRelative(3); err != nil {
					return nil, nil, nil, nil, err
				}
				dataClass, err := r.ReadByte()
				if err != nil {
					return nil, nil, nil, nil, err
				}
				if err := r.SeekRelative(4); err != nil {
					return nil, nil, nil, nil, err
				}

				value, handled, derr2 := decodeTagPayload(r, tag, entryTag, dataClass, dataSize, params.PictureSink, params.ReadTag, &tag.PictureCount)
				if derr2 != nil {
					return nil, nil, nil, nil, derr2
				}
				if handled {
					assignField(tag, entryTag, value, params.ReadAllMetaFrames)
				}

				if err := r.Seek(dataBoxStart + dataSize); err != nil {
					return nil, nil, nil, nil, err
				}
			}

			pos += int64(entrySize)
		}
	}

	if err := applyMdat(r, desc); err != nil {
		return nil, nil, nil, nil, err
	}

	return desc, tag, table, diag, nil
}

// applyMdat implements step 11: bit_rate = round(mdat_size * 8 / duration_sec).
func applyMdat(r *bitreader.Reader, desc *streamscan.Descriptor) error {
	if err := r.Seek(0); err != nil {
		return err
	}
	mdatSize, err := isobox.LookFor(r, isobox.TypeMdat)
	if err != nil {
		return err
	}
	if desc.DurationSec > 0 {
		desc.BitRateBps = math.Round(float64(mdatSize) * 8 / desc.DurationSec)
	}
	return nil
}

// countAdditionalBoxes scans sibling boxes from the reader's current
// position up to end, counting occurrences of typ, and swallows any error
// since this is a best-effort diagnostic rather than the primary read path
// (see DESIGN.md on multiple-trak support).
func countAdditionalBoxes(r *bitreader.Reader, end int64, typ string) int {
	count := 0
	for {
		pos, err := r.Tell()
		if err != nil || pos+8 > end {
			return count
		}
		size, err := r.ReadU32BE()
		if err != nil {
			return count
		}
		boxType, err := r.ReadLatin1(4)
		if err != nil {
			return count
		}
		if size < 8 {
			return count
		}
		if boxType == typ {
			count++
		}
		if err := r.SeekRelative(int64(size) - 8); err != nil {
			return count
		}
	}
}

// decodeTagPayload interprets one ilst "data" atom's payload according to
// its data_class byte, and side-effects the supplemented fields (MediaKind,
// ItunesAdvisory, ItunesGenreIndex) onto tag when the entry names them.
func decodeTagPayload(r *bitreader.Reader, tag *TagRecord, entryTag string, dataClass byte, dataSize int64, sink PictureSink, readTag bool, pictureIndex *int) (string, bool, error) {
	payloadLen := dataSize - 16
	if payloadLen < 0 {
		payloadLen = 0
	}

	switch {
	case dataClass == 1:
		b, err := r.ReadBytes(int(payloadLen))
		if err != nil {
			return "", false, err
		}
		return string(b), true, nil

	case dataClass == 21 && entryTag == "stik":
		b, err := r.ReadByte()
		if err != nil {
			return "", false, err
		}
		tag.MediaKind = b
		return strconv.Itoa(int(b)), true, nil

	case dataClass == 21 && entryTag == "rtng":
		b, err := r.ReadByte()
		if err != nil {
			return "", false, err
		}
		tag.ItunesAdvisory = b
		return strconv.Itoa(int(b)), true, nil

	case dataClass == 21:
		b, err := r.ReadByte()
		if err != nil {
			return "", false, err
		}
		return strconv.Itoa(int(b)), true, nil

	case dataClass == 13 || dataClass == 14:
		b, err := r.ReadBytes(int(payloadLen))
		if err != nil {
			return "", false, err
		}
		format := PictureFormatPNG
		if len(b) >= 3 && b[0] == 0xFF && b[1] == 0xD8 && b[2] == 0xFF {
			format = PictureFormatJPEG
		}
		if sink != nil {
			sink(b, PictureTypeFront, format, KindMP4Native, dataClass, *pictureIndex)
		}
		*pictureIndex++
		return "", false, nil

	case dataClass == 0 && (entryTag == "trkn" || entryTag == "disk"):
		if err := r.SeekRelative(2); err != nil {
			return "", false, err
		}
		num, err := r.ReadU16BE()
		if err != nil {
			return "", false, err
		}
		if err := r.SeekRelative(2); err != nil {
			return "", false, err
		}
		return strconv.Itoa(int(num)), true, nil

	case dataClass == 0 && entryTag == "gnre":
		idx, err := r.ReadU16BE()
		if err != nil {
			return "", false, err
		}
		tag.ItunesGenreIndex = int(idx)
		name, ok := ResolveGenre(int(idx))
		if !ok {
			return "", true, nil
		}
		return name, true, nil

	default:
		return "", false, nil
	}
}

func assignField(tag *TagRecord, nativeCode, value string, readAllMetaFrames bool) {
	if field, ok := nativeCodeToField[nativeCode]; ok {
		tag.Set(field, value)
		return
	}
	if readAllMetaFrames {
		tag.AdditionalFields = append(tag.AdditionalFields, AdditionalField{NativeCode: nativeCode, Value: value})
	}
}

