// Package aacfile adapts the AAC/MP4 engine to the shared core.Handler
// interface, wrapping the codec family behind View/Edit/Strip/Info the way
// a per-format handler package does.
package aacfile

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"github.com/ankit-chaubey/aac-mp4-surgery/core"
	"github.com/ankit-chaubey/aac-mp4-surgery/internal/artwork"
	"github.com/ankit-chaubey/aac-mp4-surgery/internal/engine"
	"github.com/ankit-chaubey/aac-mp4-surgery/internal/mp4tag"
	"github.com/ankit-chaubey/aac-mp4-surgery/internal/streamscan"
	"github.com/aler9/writerseeker"
)

// Handler implements core.Handler for .aac/.mp4/.m4a files.
type Handler struct{}

// New returns a ready-to-use Handler.
func New() *Handler { return &Handler{} }

func fieldKey(f mp4tag.FieldID) string { return f.String() }

// View reads the technical descriptor and, for MP4-family files, the tag
// record, and renders both into the shared Metadata shape.
func (h *Handler) View(path string) (*core.Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	id3v2Size := mp4tag.SniffID3v2Size(data)

	var pictureCount int
	var artworkFields []core.MetaField
	params := mp4tag.ReadParams{
		ReadTag:           true,
		ReadAllMetaFrames: true,
		PictureSink: func(pic []byte, semanticType mp4tag.PictureType, format mp4tag.PictureFormat, kind mp4tag.TagKind, dataClass byte, index int) {
			pictureCount++
			if format != mp4tag.PictureFormatJPEG {
				return
			}
			exifFields, err := artwork.Describe(pic)
			if err != nil {
				return
			}
			for _, ef := range exifFields {
				artworkFields = append(artworkFields, core.MetaField{
					Key:      fmt.Sprintf("Picture[%d].%s", index, ef.Name),
					Value:    ef.Value,
					Category: "Artwork EXIF",
				})
			}
		},
	}

	res, err := engine.Read(bytes.NewReader(data), engine.SizeInfo{FileSize: int64(len(data)), ID3v2Size: id3v2Size}, params)
	if err != nil {
		return nil, err
	}

	m := &core.Metadata{FilePath: path, Format: res.HeaderKind.String()}

	if res.Descriptor != nil {
		d := res.Descriptor
		m.Fields = append(m.Fields,
			core.MetaField{Key: "HeaderKind", Value: d.HeaderKind.String(), Category: "Technical"},
			core.MetaField{Key: "MPEGVersion", Value: d.MPEGVersion.String(), Category: "Technical"},
			core.MetaField{Key: "Profile", Value: d.Profile.String(), Category: "Technical"},
			core.MetaField{Key: "Channels", Value: strconv.Itoa(int(d.Channels)), Category: "Technical"},
			core.MetaField{Key: "SampleRateHz", Value: strconv.Itoa(d.SampleRateHz), Category: "Technical"},
			core.MetaField{Key: "BitRateKind", Value: d.BitRateKind.String(), Category: "Technical"},
			core.MetaField{Key: "BitRateBps", Value: fmt.Sprintf("%.0f", d.BitRateBps), Category: "Technical"},
			core.MetaField{Key: "DurationSec", Value: fmt.Sprintf("%.2f", d.DurationSec), Category: "Technical"},
		)
	}

	if res.Tag != nil {
		for id := mp4tag.Title; id <= mp4tag.AlbumArtist; id++ {
			if v, ok := res.Tag.Get(id); ok {
				m.Fields = append(m.Fields, core.MetaField{
					Key: fieldKey(id), Value: v, Category: "Tag", Editable: true,
				})
			}
		}
		for _, af := range res.Tag.AdditionalFields {
			m.Fields = append(m.Fields, core.MetaField{
				Key: af.NativeCode, Value: af.Value, Category: "Tag (native)",
			})
		}
		if pictureCount > 0 {
			m.Fields = append(m.Fields, core.MetaField{
				Key: "Pictures", Value: strconv.Itoa(pictureCount), Category: "Tag",
			})
		}
	}
	m.Fields = append(m.Fields, artworkFields...)

	return m, nil
}

// Edit applies Set/Delete field changes to the ilst atom and splices the
// rewritten payload back into outPath (or path, in-place, if outPath is
// empty), cascading the box-size delta through every enclosing atom.
func (h *Handler) Edit(path string, outPath string, opts core.EditOptions) error {
	original, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	id3v2Size := mp4tag.SniffID3v2Size(original)

	var pictures []mp4tag.Picture
	res, err := engine.Read(bytes.NewReader(original), engine.SizeInfo{FileSize: int64(len(original)), ID3v2Size: id3v2Size}, mp4tag.ReadParams{
		ReadTag:           true,
		ReadAllMetaFrames: true,
		PrepareForWriting: true,
		PictureSink: func(data []byte, semanticType mp4tag.PictureType, format mp4tag.PictureFormat, kind mp4tag.TagKind, dataClass byte, index int) {
			pictures = append(pictures, mp4tag.Picture{Data: data, Format: format, SemanticType: semanticType})
		},
	})
	if err != nil {
		return err
	}
	if res.HeaderKind != streamscan.HeaderMP4 || res.Tag == nil {
		return fmt.Errorf("aacfile: no MP4 tag atom to edit")
	}

	for key, value := range opts.Set {
		if id, ok := fieldIDByName(key); ok {
			res.Tag.Set(id, value)
		}
	}
	for _, key := range opts.Delete {
		if id, ok := fieldIDByName(key); ok {
			delete(res.Tag.Fields, id)
		}
	}

	if opts.DryRun {
		return nil
	}

	var staged writerseeker.WriterSeeker
	if err := engine.Write(res.Tag, pictures, &staged); err != nil {
		return err
	}

	newIlst, err := readAll(&staged)
	if err != nil {
		return err
	}

	dest := core.ResolveOutPath(path, outPath)
	return spliceIlst(original, newIlst, res.UpperAtoms, dest)
}

// Strip removes every semantic tag field except those named in
// opts.KeepFields (all of them, if StripAll is set), by writing back a
// TagRecord holding only the kept fields through the same splice path as
// Edit. Additional native fields are always dropped; pictures are kept only
// when "Pictures" is named in KeepFields and StripAll is not set.
func (h *Handler) Strip(path string, outPath string, opts core.StripOptions) error {
	original, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	id3v2Size := mp4tag.SniffID3v2Size(original)

	var pictures []mp4tag.Picture
	res, err := engine.Read(bytes.NewReader(original), engine.SizeInfo{FileSize: int64(len(original)), ID3v2Size: id3v2Size}, mp4tag.ReadParams{
		ReadTag:           true,
		ReadAllMetaFrames: true,
		PrepareForWriting: true,
		PictureSink: func(data []byte, semanticType mp4tag.PictureType, format mp4tag.PictureFormat, kind mp4tag.TagKind, dataClass byte, index int) {
			pictures = append(pictures, mp4tag.Picture{Data: data, Format: format, SemanticType: semanticType})
		},
	})
	if err != nil {
		return err
	}

	kept := mp4tag.NewTagRecord()
	keepPictures := false
	if !opts.StripAll {
		keep := make(map[string]bool, len(opts.KeepFields))
		for _, k := range opts.KeepFields {
			keep[k] = true
		}
		for id, v := range res.Tag.Fields {
			if keep[fieldKey(id)] {
				kept.Set(id, v)
			}
		}
		keepPictures = keep["Pictures"]
	}
	if !keepPictures {
		pictures = nil
	}

	var staged writerseeker.WriterSeeker
	if err := engine.Write(kept, pictures, &staged); err != nil {
		return err
	}

	newIlst, err := readAll(&staged)
	if err != nil {
		return err
	}

	dest := core.ResolveOutPath(path, outPath)
	return spliceIlst(original, newIlst, res.UpperAtoms, dest)
}

// Info describes this handler's capabilities.
func (h *Handler) Info() core.FormatInfo {
	return core.FormatInfo{
		Name:       "AAC/MP4",
		Extensions: []string{".aac", ".mp4", ".m4a"},
		MediaType:  "audio",
		MIMETypes:  []string{"audio/aac", "audio/mp4", "audio/x-m4a"},
		CanView:    true,
		CanEdit:    true,
		CanStrip:   true,
		EditableFields: []string{
			"Title", "Album", "Artist", "Comment", "RecordingYear", "Genre",
			"TrackNumber", "DiscNumber", "Rating", "Composer",
			"GeneralDescription", "Copyright", "AlbumArtist",
		},
		Notes: "Raw ADIF/ADTS streams carry no editable tag; only MP4-wrapped files support Edit/Strip.",
	}
}

func fieldIDByName(name string) (mp4tag.FieldID, bool) {
	for id := mp4tag.Title; id <= mp4tag.AlbumArtist; id++ {
		if id.String() == name {
			return id, true
		}
	}
	return 0, false
}

func readAll(ws *writerseeker.WriterSeeker) ([]byte, error) {
	rd := ws.Reader()
	buf := make([]byte, 0, 4096)
	tmp := make([]byte, 4096)
	for {
		n, err := rd.Read(tmp)
		buf = append(buf, tmp[:n]...)
		if err != nil {
			break
		}
	}
	return buf, nil
}

// spliceIlst replaces the ilst region of original with newIlst, cascades
// the size delta through table's recorded enclosing atoms, and writes the
// result to dest.
func spliceIlst(original, newIlst []byte, table *mp4tag.UpperAtomTable, dest string) error {
	if table == nil || table.IlstSize == 0 {
		return fmt.Errorf("aacfile: no ilst atom recorded; read with PrepareForWriting first")
	}

	delta := int64(len(newIlst)) - table.IlstSize

	out := make([]byte, 0, len(original)+len(newIlst))
	out = append(out, original[:table.IlstOffset]...)
	out = append(out, newIlst...)
	out = append(out, original[table.IlstOffset+table.IlstSize:]...)

	var ws writerseeker.WriterSeeker
	if _, err := ws.Write(out); err != nil {
		return err
	}
	if err := engine.RewriteFileSizeInHeader(&ws, table, delta); err != nil {
		return err
	}
	final, err := readAll(&ws)
	if err != nil {
		return err
	}

	return os.WriteFile(dest, final, 0o644)
}
