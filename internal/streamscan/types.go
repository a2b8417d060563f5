// Package streamscan recognizes and decodes raw AAC bitstream headers
// (ADIF, ADTS) and recognizes an MP4-wrapped stream by its ftyp box without
// touching the box tree itself; the MP4 descriptor is filled by mp4tag.
package streamscan

import "fmt"

// HeaderKind identifies which framing, if any, a stream carries.
type HeaderKind int

const (
	HeaderUnknown HeaderKind = iota
	HeaderADIF
	HeaderADTS
	HeaderMP4
)

func (k HeaderKind) String() string {
	switch k {
	case HeaderADIF:
		return "ADIF"
	case HeaderADTS:
		return "ADTS"
	case HeaderMP4:
		return "MP4"
	default:
		return "Unknown"
	}
}

// MPEGVersion distinguishes the MPEG-2 and MPEG-4 AAC profiles.
type MPEGVersion int

const (
	VersionUnknown MPEGVersion = iota
	VersionMPEG2
	VersionMPEG4
)

func (v MPEGVersion) String() string {
	switch v {
	case VersionMPEG2:
		return "MPEG-2"
	case VersionMPEG4:
		return "MPEG-4"
	default:
		return "Unknown"
	}
}

// Profile is the AAC object type, a 1-based mapping of the raw 2-bit
// profile code.
type Profile int

const (
	ProfileUnknown Profile = iota
	ProfileMain
	ProfileLC
	ProfileSSR
	ProfileLTP
)

func (p Profile) String() string {
	switch p {
	case ProfileMain:
		return "Main"
	case ProfileLC:
		return "LC"
	case ProfileSSR:
		return "SSR"
	case ProfileLTP:
		return "LTP"
	default:
		return "Unknown"
	}
}

// BitRateKind classifies whether a stream is constant or variable bit rate.
type BitRateKind int

const (
	BitRateUnknown BitRateKind = iota
	BitRateCBR
	BitRateVBR
)

func (k BitRateKind) String() string {
	switch k {
	case BitRateCBR:
		return "CBR"
	case BitRateVBR:
		return "VBR"
	default:
		return "Unknown"
	}
}

// sampleRateTable is the fixed 16-entry AAC sample-rate table, indexed by a
// 4-bit code. Entries 12-15 are reserved.
var sampleRateTable = [16]int{
	96000, 88200, 64000, 48000, 44100, 32000, 24000, 22050,
	16000, 12000, 11025, 8000, 0, 0, 0, 0,
}

// Descriptor is the technical descriptor produced by a successful read.
// SBRPresent and ObjectTypeRaw carry a bit more than the minimum field set;
// this core never sets SBRPresent true, but the field exists so HE-AAC
// support has somewhere to attach later.
type Descriptor struct {
	HeaderKind   HeaderKind
	MPEGVersion  MPEGVersion
	Profile      Profile
	ObjectTypeRaw uint8
	Channels     uint8
	SampleRateHz int
	BitRateKind  BitRateKind
	BitRateBps   float64
	DurationSec  float64
	TotalFrames  uint32
	SBRPresent   bool
}

// Valid reports whether a descriptor is trustworthy: every one of these
// fields must carry a sane value.
func (d *Descriptor) Valid() bool {
	return d.HeaderKind != HeaderUnknown &&
		d.Channels > 0 &&
		d.SampleRateHz > 0 &&
		d.BitRateBps > 0
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s %s %s ch=%d sr=%dHz %s %.0fbps %.2fs",
		d.HeaderKind, d.MPEGVersion, d.Profile, d.Channels, d.SampleRateHz,
		d.BitRateKind, d.BitRateBps, d.DurationSec)
}
