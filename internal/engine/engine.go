// Package engine is the single entry point: given a seekable stream and
// its size summary, it recognizes the header kind and dispatches to the
// raw AAC stream analyzer or the MP4 tag engine, then exposes the same
// Write/RewriteFileSizeInHeader contract regardless of which path
// produced the TagRecord.
package engine

import (
	"io"

	"github.com/ankit-chaubey/aac-mp4-surgery/internal/bitreader"
	"github.com/ankit-chaubey/aac-mp4-surgery/internal/mp4tag"
	"github.com/ankit-chaubey/aac-mp4-surgery/internal/streamscan"
)

// SizeInfo is the caller-supplied size summary the engine requires: it
// never parses ID3v2 itself.
type SizeInfo struct {
	FileSize  int64
	ID3v2Size int64
}

// Result bundles everything a single Read call can produce.
type Result struct {
	HeaderKind  streamscan.HeaderKind
	Descriptor  *streamscan.Descriptor
	Tag         *mp4tag.TagRecord
	UpperAtoms  *mp4tag.UpperAtomTable
	Diagnostics *mp4tag.ReadDiagnostics
}

// Read recognizes the stream's header kind and decodes it into a
// technical descriptor and, for MP4-family files, a tag record.
func Read(src io.ReadSeeker, sizes SizeInfo, params mp4tag.ReadParams) (*Result, error) {
	r := bitreader.New(src, sizes.FileSize)

	kind, err := streamscan.Recognize(r, sizes.ID3v2Size)
	if err != nil {
		return nil, err
	}

	res := &Result{HeaderKind: kind}

	switch kind {
	case streamscan.HeaderADIF:
		d, err := streamscan.DecodeADIF(r, sizes.ID3v2Size, sizes.FileSize)
		if err != nil {
			return nil, err
		}
		res.Descriptor = d
		res.Tag = mp4tag.NewTagRecord()
		return res, nil

	case streamscan.HeaderADTS:
		d, err := streamscan.DecodeADTS(r, sizes.ID3v2Size, sizes.FileSize)
		if err != nil {
			return nil, err
		}
		res.Descriptor = d
		res.Tag = mp4tag.NewTagRecord()
		return res, nil

	case streamscan.HeaderMP4:
		desc, tag, table, diag, err := mp4tag.Read(r, sizes.ID3v2Size, sizes.FileSize, params)
		if err != nil {
			return nil, err
		}
		res.Descriptor = desc
		res.Tag = tag
		res.UpperAtoms = table
		res.Diagnostics = diag
		return res, nil

	default:
		res.Descriptor = &streamscan.Descriptor{HeaderKind: streamscan.HeaderUnknown}
		res.Tag = mp4tag.NewTagRecord()
		return res, nil
	}
}

// Write produces the ilst payload for tag and pictures, and delegates to
// mp4tag's write path.
func Write(tag *mp4tag.TagRecord, pictures []mp4tag.Picture, w io.WriteSeeker) error {
	return mp4tag.Write(tag, pictures, w)
}

// RewriteFileSizeInHeader cascades a write's size delta through every
// enclosing atom recorded during a prepare-for-writing read.
func RewriteFileSizeInHeader(w io.WriteSeeker, table *mp4tag.UpperAtomTable, delta int64) error {
	return mp4tag.RewriteFileSizeInHeader(w, table, delta)
}

// IsMetaSupported reports whether kind is a tag standard this family of
// engines recognizes.
func IsMetaSupported(kind mp4tag.TagKind) bool {
	return mp4tag.IsMetaSupported(kind)
}

// HasNativeMeta reports that the MP4 family carries its own native
// metadata convention.
func HasNativeMeta() bool {
	return mp4tag.HasNativeMeta()
}
