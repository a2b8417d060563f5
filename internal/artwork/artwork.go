// Package artwork inspects embedded pictures delivered through a
// mp4tag.PictureSink for EXIF metadata, supplementing bare format
// sniffing with a deeper look at JPEG artwork. Only JPEG carries EXIF;
// PNG pictures are reported with no fields.
package artwork

import (
	"bytes"
	"fmt"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// Field is one decoded EXIF tag, keyed and rendered the way an EXIF
// dumper walker prints them.
type Field struct {
	Name  string
	Value string
}

// Describe decodes the EXIF directory of a JPEG picture's bytes, if any.
// It returns an empty, non-error slice when the picture carries no EXIF
// segment — that is the common case for artwork re-encoded by a tagging
// tool, not a failure.
func Describe(jpegBytes []byte) ([]Field, error) {
	x, err := exif.Decode(bytes.NewReader(jpegBytes))
	if err != nil {
		return nil, nil
	}

	var fields []Field
	if err := x.Walk(&collector{fields: &fields}); err != nil {
		return nil, fmt.Errorf("artwork: walking EXIF directory: %w", err)
	}
	return fields, nil
}

type collector struct {
	fields *[]Field
}

func (c *collector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	*c.fields = append(*c.fields, Field{Name: string(name), Value: tag.String()})
	return nil
}
