package mp4tag

import (
	"bytes"

	id3v2 "github.com/bogem/id3v2/v2"
)

// SniffID3v2Size reports the length of a leading ID3v2 tag at the start of
// data, or 0 if none is present. This engine never decodes ID3v2 tag
// frames itself — that is a sibling engine's job — it only needs the
// region's byte length so Read can be told where the first MP4 box
// actually starts.
func SniffID3v2Size(data []byte) int64 {
	tag, err := id3v2.ParseReader(bytes.NewReader(data), id3v2.Options{Parse: false})
	if err != nil || tag == nil {
		return 0
	}
	defer tag.Close()
	return int64(tag.Size())
}
