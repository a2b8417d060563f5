package streamscan

import (
	"math"

	"github.com/ankit-chaubey/aac-mp4-surgery/internal/bitreader"
)

// DecodeADTS scans consecutive ADTS frames from id3v2Size until either the
// syncword breaks, EOF is reached, or a frame's buffer-fullness field marks
// it CBR, at which point scanning stops. Bit rate and duration are derived
// from the accumulated frame sizes.
func DecodeADTS(r *bitreader.Reader, id3v2Size int64, fileSize int64) (*Descriptor, error) {
	d := &Descriptor{HeaderKind: HeaderADTS}

	var totalSize int64
	var frames uint32
	var sampleRateHz int
	var lastVersion MPEGVersion
	var lastProfile Profile
	var lastObjectTypeRaw uint8
	var lastChannels uint8

	for {
		framePos := (id3v2Size + totalSize) * 8
		if id3v2Size+totalSize >= fileSize {
			break
		}

		pos := framePos
		sync, err := r.ReadBits(pos, 12)
		if err != nil || sync != 0xFFF {
			break
		}
		pos += 12

		pos += 4
		verBit, err := r.ReadBits(pos, 1)
		if err != nil {
			break
		}
		pos++
		version := VersionMPEG4
		if verBit == 1 {
			version = VersionMPEG2
		}

		pos += 4
		profCode, err := r.ReadBits(pos, 2)
		if err != nil {
			break
		}
		pos += 2
		profile := Profile(profCode + 1)

		srIdx, err := r.ReadBits(pos, 4)
		if err != nil {
			break
		}
		pos += 4
		pos += 5

		chBits, err := r.ReadBits(pos, 3)
		if err != nil {
			break
		}
		pos += 3

		if version == VersionMPEG4 {
			pos += 9
		} else {
			pos += 7
		}

		frameLen, err := r.ReadBits(pos, 13)
		if err != nil {
			break
		}
		pos += 13
		if frameLen == 0 {
			break
		}

		bufFullness, err := r.ReadBits(pos, 11)
		if err != nil {
			break
		}

		totalSize += int64(frameLen)
		frames++
		lastVersion, lastProfile, lastChannels = version, profile, uint8(chBits)
		lastObjectTypeRaw = uint8(profCode)
		if sampleRateHz == 0 && int(srIdx) < len(sampleRateTable) {
			sampleRateHz = sampleRateTable[srIdx]
		}

		if bufFullness == 0x7FF {
			d.BitRateKind = BitRateVBR
		} else {
			d.BitRateKind = BitRateCBR
			break
		}
	}

	if frames == 0 {
		return d, nil
	}

	d.MPEGVersion = lastVersion
	d.Profile = lastProfile
	d.ObjectTypeRaw = lastObjectTypeRaw
	d.Channels = lastChannels
	d.SampleRateHz = sampleRateHz
	d.TotalFrames = frames

	if sampleRateHz > 0 {
		d.BitRateBps = math.Round(8 * float64(totalSize) / 1024 / float64(frames) * float64(sampleRateHz))
	}
	if d.BitRateBps > 0 {
		d.DurationSec = 8 * float64(fileSize-id3v2Size) / d.BitRateBps
	}

	return d, nil
}
