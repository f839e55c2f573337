package scanner

import "strings"

// mediaKind is the coarse classification a file falls into before it is
// assigned an item role, per spec.md §4.3's classification table.
type mediaKind int

const (
	kindUnknown mediaKind = iota
	kindVideo
	kindImage
	kindText
)

type classification struct {
	kind mediaKind
	mime string
}

// extensionTable maps a lowercased extension (including the leading dot) to
// its classification. Structured as an open table, in the extensible style
// of the original scanner's `get_upnp_class`, so a future media kind is a
// table entry rather than a rewrite; only the video/image/text entries
// spec.md §4.3 names are populated.
var extensionTable = map[string]classification{
	".mkv": {kindVideo, "video/x-matroska"},
	".mp4": {kindVideo, "video/mp4"},
	".avi": {kindVideo, "video/x-msvideo"},
	".mpg": {kindVideo, "video/mpeg"},
	".jpg": {kindImage, "image/jpeg"},
	".srt": {kindText, "text/srt"},
}

// classify returns the classification for a file name, or ok=false for an
// extension the table doesn't recognize.
func classify(name string) (classification, bool) {
	ext := strings.ToLower(extOf(name))
	c, ok := extensionTable[ext]
	return c, ok
}

func extOf(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i:]
		}
		if name[i] == '/' {
			break
		}
	}
	return ""
}
