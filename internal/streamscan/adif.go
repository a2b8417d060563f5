package streamscan

import "github.com/ankit-chaubey/aac-mp4-surgery/internal/bitreader"

// DecodeADIF decodes a single ADIF header. The channel count is the sum of
// four 4-bit fields plus a trailing 2-bit field; this accumulation must be
// reproduced exactly for compatibility with files already carrying it.
func DecodeADIF(r *bitreader.Reader, id3v2Size int64, fileSize int64) (*Descriptor, error) {
	d := &Descriptor{HeaderKind: HeaderADIF, MPEGVersion: VersionMPEG4}

	pos := id3v2Size*8 + 32

	copyrightPresent, err := r.ReadBits(pos, 1)
	if err != nil {
		return nil, err
	}
	if copyrightPresent == 0 {
		pos += 3
	} else {
		pos += 75
	}

	bitstreamType, err := r.ReadBits(pos, 1)
	if err != nil {
		return nil, err
	}
	pos++
	if bitstreamType == 0 {
		d.BitRateKind = BitRateCBR
	} else {
		d.BitRateKind = BitRateVBR
	}

	bitRateRaw, err := r.ReadBits(pos, 23)
	if err != nil {
		return nil, err
	}
	pos += 23
	d.BitRateBps = float64(bitRateRaw)

	if bitstreamType == 0 {
		pos += 51
	} else {
		pos += 31
	}

	profCode, err := r.ReadBits(pos, 2)
	if err != nil {
		return nil, err
	}
	pos += 2
	d.ObjectTypeRaw = uint8(profCode)
	d.Profile = Profile(profCode + 1)

	srIdx, err := r.ReadBits(pos, 4)
	if err != nil {
		return nil, err
	}
	pos += 4
	if int(srIdx) < len(sampleRateTable) {
		d.SampleRateHz = sampleRateTable[srIdx]
	}

	var channels uint32
	for i := 0; i < 4; i++ {
		c, err := r.ReadBits(pos, 4)
		if err != nil {
			return nil, err
		}
		pos += 4
		channels += c
	}
	final2, err := r.ReadBits(pos, 2)
	if err != nil {
		return nil, err
	}
	channels += final2
	d.Channels = uint8(channels)

	if d.BitRateBps > 0 {
		d.DurationSec = 8 * float64(fileSize-id3v2Size) / d.BitRateBps
	}

	return d, nil
}
