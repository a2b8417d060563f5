package mp4tag

// nativeCodeToField maps an ilst entry's 4-byte native atom code to the
// semantic FieldID it fills, grounded on the "moov.udta.meta.ilst.XXX"
// comments in tebruno99-go-mp4tag/objects.go's MP4Tags struct.
var nativeCodeToField = map[string]FieldID{
	"\xa9nam": Title,
	"titl":    Title,
	"\xa9alb": Album,
	"\xa9art": Artist,
	"\xa9cmt": Comment,
	"\xa9day": RecordingYear,
	"\xa9gen": Genre,
	"gnre":    Genre,
	"trkn":    TrackNumber,
	"disk":    DiscNumber,
	"rtng":    Rating,
	"\xa9wrt": Composer,
	"desc":    GeneralDescription,
	"cprt":    Copyright,
	"aart":    AlbumArtist,
	"aART":    AlbumArtist,
}

// orderedFields fixes the write order of semantic fields so that two
// writes of an equal TagRecord produce byte-identical output (Go map
// iteration order is randomized and would otherwise break round-tripping).
var orderedFields = []FieldID{
	Title, Album, Artist, AlbumArtist, Composer, Genre, RecordingYear,
	TrackNumber, DiscNumber, Rating, Comment, GeneralDescription, Copyright,
}

// fieldToNativeCode is the write-path inverse of nativeCodeToField.
var fieldToNativeCode = map[FieldID]string{
	Title:              "\xa9nam",
	Album:              "\xa9alb",
	Artist:             "\xa9art",
	Comment:            "\xa9cmt",
	RecordingYear:      "\xa9day",
	Genre:              "\xa9gen",
	TrackNumber:        "trkn",
	DiscNumber:         "disk",
	Rating:             "rtng",
	Composer:           "\xa9wrt",
	GeneralDescription: "desc",
	Copyright:          "cprt",
	AlbumArtist:        "aART",
}

// dataClassFor reports the ilst "data" atom type-indicator byte a given
// native atom code must be written with: numeric fields
// (gnre/trkn/disk/purl/egid) use class 0, single-byte enumerations
// (rtng/tmpo/cpil/stik/pcst/tvsn/tves/pgap) use class 21, and everything
// else defaults to UTF-8 text (class 1).
func dataClassFor(nativeCode string) byte {
	switch nativeCode {
	case "gnre", "trkn", "disk", "purl", "egid":
		return 0
	case "rtng", "tmpo", "cpil", "stik", "pcst", "tvsn", "tves", "pgap":
		return 21
	default:
		return 1
	}
}

// isContainerAtom reports whether a 4-byte type found while descending
// moov is itself a container to recurse into, as opposed to a leaf with a
// payload to interpret directly.
func isContainerAtom(typ string) bool {
	switch typ {
	case "moov", "trak", "mdia", "minf", "stbl", "udta", "meta", "ilst":
		return true
	default:
		return false
	}
}
