package streamscan

import "github.com/ankit-chaubey/aac-mp4-surgery/internal/bitreader"

// Recognize identifies the header kind at the given ID3v2-adjusted offset:
// ADIF and raw ADTS sync words are checked first, then an MP4 ftyp box,
// falling back to Unknown.
func Recognize(r *bitreader.Reader, id3v2Size int64) (HeaderKind, error) {
	if err := r.Seek(id3v2Size); err != nil {
		return HeaderUnknown, err
	}
	h0, err := r.ReadBytes(4)
	if err != nil {
		return HeaderUnknown, err
	}
	if string(h0) == "ADIF" {
		return HeaderADIF, nil
	}
	if h0[0] == 0xFF && h0[1]&0xF0 == 0xF0 {
		return HeaderADTS, nil
	}
	h1, err := r.ReadBytes(4)
	if err != nil {
		return HeaderUnknown, nil
	}
	if string(h1) == "ftyp" {
		return HeaderMP4, nil
	}
	return HeaderUnknown, nil
}
