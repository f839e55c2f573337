package scanner

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/eemsproject/eems/internal/objectcodec"
)

// dirContents partitions one directory's regular files by classification,
// per spec.md §4.3 step 1.
type dirContents struct {
	videos  []string
	images  []string
	texts   []string
	subdirs []string
}

func readDirContents(path string) (dirContents, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return dirContents{}, err
	}

	var c dirContents
	for _, e := range entries {
		if e.IsDir() {
			c.subdirs = append(c.subdirs, e.Name())
			continue
		}
		cls, ok := classify(e.Name())
		if !ok {
			continue
		}
		switch cls.kind {
		case kindVideo:
			c.videos = append(c.videos, e.Name())
		case kindImage:
			c.images = append(c.images, e.Name())
		case kindText:
			c.texts = append(c.texts, e.Name())
		}
	}
	sort.Strings(c.videos)
	sort.Strings(c.images)
	sort.Strings(c.texts)
	sort.Strings(c.subdirs)
	return c, nil
}

// folderArtwork resolves the directory-level artwork candidate in priority
// order, per spec.md §4.3 step 3: poster.jpg wins over folder.jpg.
func folderArtwork(images []string) (name string, kind objectcodec.ArtworkType, ok bool) {
	for _, img := range images {
		if strings.EqualFold(img, "poster.jpg") {
			return img, objectcodec.ArtworkPoster, true
		}
	}
	for _, img := range images {
		if strings.EqualFold(img, "folder.jpg") {
			return img, objectcodec.ArtworkThumbnail, true
		}
	}
	return "", 0, false
}

// prefixMatches returns every entry of a sorted slice whose name starts with
// stem, found via a lower_bound binary search followed by a forward scan
// that stops at the first non-matching entry — the original scanner's
// `findExternalSubtitles`-style prefix grouping, adapted to Go's sort
// package instead of a substring loop.
func prefixMatches(sorted []string, stem string) []string {
	start := sort.SearchStrings(sorted, stem)
	var matches []string
	for i := start; i < len(sorted); i++ {
		if !strings.HasPrefix(sorted[i], stem) {
			break
		}
		matches = append(matches, sorted[i])
	}
	return matches
}

// itemArtwork finds images whose name starts with the video's stem and
// suffix-classifies them, per spec.md §4.3 step 4.
func itemArtwork(stem string, images []string) (name string, kind objectcodec.ArtworkType, ok bool) {
	for _, img := range prefixMatches(images, stem) {
		base := strings.TrimSuffix(img, filepath.Ext(img))
		lower := strings.ToLower(base)
		switch {
		case strings.HasSuffix(lower, "poster"):
			return img, objectcodec.ArtworkPoster, true
		case strings.HasSuffix(lower, "thumb"):
			return img, objectcodec.ArtworkThumbnail, true
		}
	}
	return "", 0, false
}

// itemSubtitles finds text files whose name starts with the video's stem.
func itemSubtitles(stem string, texts []string) []string {
	return prefixMatches(texts, stem)
}

var yearPattern = regexp.MustCompile(`\(?([12]\d{3})\)?`)

// normalizeTitle derives a display title and optional release date from a
// raw name (a filename stem or a folder name), per spec.md §4.3 step 4's
// title normalization rule, traced through the teacher's
// `parseFilename`-style full separator replace rather than spec.md's
// literal per-match regex description — the only reading that reproduces
// spec.md's own worked example (see DESIGN.md).
func normalizeTitle(raw string) (string, *int64) {
	name := raw

	var dcDate *int64
	if loc := yearPattern.FindStringSubmatchIndex(name); loc != nil {
		year, err := strconv.Atoi(name[loc[2]:loc[3]])
		if err == nil {
			days := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).Unix() / 86400
			dcDate = &days
		}
		name = name[:loc[0]] + " " + name[loc[1]:]
	}

	name = strings.NewReplacer(".", " ", "_", " ").Replace(name)
	name = strings.Join(strings.Fields(name), " ")
	return strings.TrimSpace(name), dcDate
}

func stemOf(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
