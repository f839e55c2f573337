// Package scanner walks configured filesystem roots and materializes a tree
// of containers and items in the content store, per spec.md §4.3.
package scanner

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/eemsproject/eems/internal/config"
	"github.com/eemsproject/eems/internal/objectcodec"
	"github.com/eemsproject/eems/internal/storekey"
)

// contentStore is the subset of *store.Store the scanner depends on.
type contentStore interface {
	NextID(tag storekey.Tag) (int64, error)
	PutBatch(parentID int64, items []objectcodec.MediaObject, resources map[int64]objectcodec.Resource) error
	ListChildren(containerID int64) ([]objectcodec.MediaObject, error)
}

// Scanner hands out locally-incrementing ids primed once from the store, per
// spec.md §4.3's id allocation rule.
type Scanner struct {
	store   contentStore
	log     zerolog.Logger
	nextObj int64
	nextRes int64
}

// New builds a Scanner over an already-open store.
func New(s contentStore, log zerolog.Logger) (*Scanner, error) {
	nextObj, err := s.NextID(storekey.TagObject)
	if err != nil {
		return nil, fmt.Errorf("scanner: prime next object id: %w", err)
	}
	nextRes, err := s.NextID(storekey.TagResource)
	if err != nil {
		return nil, fmt.Errorf("scanner: prime next resource id: %w", err)
	}
	return &Scanner{store: s, log: log, nextObj: nextObj, nextRes: nextRes}, nil
}

func (sc *Scanner) allocObjectID() int64 {
	id := sc.nextObj
	sc.nextObj++
	return id
}

func (sc *Scanner) allocResourceID() int64 {
	id := sc.nextRes
	sc.nextRes++
	return id
}

// ScanAll scans every configured content root under a shared "Movies"
// top-level container, per spec.md §4.3's final rule.
func (sc *Scanner) ScanAll(roots []config.ContentRoot) error {
	moviesID, err := sc.ensureMoviesContainer()
	if err != nil {
		return fmt.Errorf("scanner: ensure movies container: %w", err)
	}

	for _, root := range roots {
		sc.log.Info().Str("path", root.Path).Msg("scanning content root")
		if err := sc.scanDirectory(moviesID, root.Path, root, false); err != nil {
			return fmt.Errorf("scanner: scan %s: %w", root.Path, err)
		}
	}
	return nil
}

func (sc *Scanner) ensureMoviesContainer() (int64, error) {
	children, err := sc.store.ListChildren(0)
	if err != nil {
		return 0, err
	}
	for _, c := range children {
		if c.DCTitle == "Movies" && c.Variant == objectcodec.VariantContainer {
			return c.ID, nil
		}
	}

	id := sc.allocObjectID()
	movies := objectcodec.MediaObject{
		ID:        id,
		ParentID:  0,
		DCTitle:   "Movies",
		UPnPClass: "object.container.storageFolder",
		Variant:   objectcodec.VariantContainer,
	}
	if err := sc.store.PutBatch(0, []objectcodec.MediaObject{movies}, nil); err != nil {
		return 0, err
	}
	return id, nil
}

// scanDirectory applies the per-directory procedure of spec.md §4.3 step by
// step. collectionsEnabled is false only for a content root's own top-level
// invocation; every recursive call re-enables it according to root's
// use_collections option.
func (sc *Scanner) scanDirectory(parentID int64, path string, root config.ContentRoot, collectionsEnabled bool) error {
	contents, err := readDirContents(path)
	if err != nil {
		return fmt.Errorf("scanner: read %s: %w", path, err)
	}

	folderArt, folderArtKind, hasFolderArt := folderArtwork(contents.images)
	subdirsNonempty := len(contents.subdirs) > 0

	targetParent := parentID
	if collectionsEnabled && shouldCreateCollection(len(contents.videos), hasFolderArt, subdirsNonempty) {
		title, _ := normalizeTitle(filepath.Base(path))
		containerID := sc.allocObjectID()
		container := objectcodec.MediaObject{
			ID:        containerID,
			ParentID:  parentID,
			DCTitle:   title,
			UPnPClass: "object.container.storageFolder",
			Variant:   objectcodec.VariantContainer,
		}
		if err := sc.store.PutBatch(parentID, []objectcodec.MediaObject{container}, nil); err != nil {
			return fmt.Errorf("scanner: create collection container for %s: %w", path, err)
		}
		targetParent = containerID
	}

	items, resources, err := sc.buildItems(path, targetParent, root.UseFolderNames, contents, folderArt, folderArtKind, hasFolderArt)
	if err != nil {
		return err
	}
	if len(items) > 0 {
		if err := sc.store.PutBatch(targetParent, items, resources); err != nil {
			return fmt.Errorf("scanner: commit items for %s: %w", path, err)
		}
	}

	for _, sub := range contents.subdirs {
		if err := sc.scanDirectory(targetParent, filepath.Join(path, sub), root, root.UseCollections); err != nil {
			return err
		}
	}
	return nil
}

// shouldCreateCollection implements spec.md §4.3 step 2's three-way
// disjunction.
func shouldCreateCollection(videoCount int, hasFolderArt, subdirsNonempty bool) bool {
	switch {
	case videoCount > 1:
		return true
	case videoCount == 1 && hasFolderArt && subdirsNonempty:
		return true
	case videoCount == 0 && hasFolderArt && subdirsNonempty:
		return true
	default:
		return false
	}
}

// buildItems constructs one Item per video file along with its resources
// (main video, per-item artwork, subtitles), per spec.md §4.3 step 4.
func (sc *Scanner) buildItems(
	dir string, parentID int64, useFolderNames bool, contents dirContents,
	folderArt string, folderArtKind objectcodec.ArtworkType, hasFolderArt bool,
) ([]objectcodec.MediaObject, map[int64]objectcodec.Resource, error) {
	items := make([]objectcodec.MediaObject, 0, len(contents.videos))
	resources := make(map[int64]objectcodec.Resource)

	var folderArtResID int64
	var folderArtAllocated bool

	for _, video := range contents.videos {
		cls, ok := classify(video)
		if !ok {
			continue
		}

		videoResID := sc.allocResourceID()
		resources[videoResID] = objectcodec.Resource{
			Location: filepath.Join(dir, video),
			MimeType: cls.mime,
		}

		stem := stemOf(video)
		itemTitle := stem
		if useFolderNames && len(contents.videos) == 1 {
			itemTitle = filepath.Base(dir)
		}
		title, dcDate := normalizeTitle(itemTitle)

		var artwork []objectcodec.Artwork
		if artImg, artKind, ok := itemArtwork(stem, contents.images); ok {
			artResID := sc.allocResourceID()
			resources[artResID] = objectcodec.Resource{Location: filepath.Join(dir, artImg), MimeType: "image/jpeg"}
			artwork = append(artwork, objectcodec.Artwork{
				Ref:  storekey.LibraryKey{Tag: storekey.TagResource, ID: artResID},
				Type: artKind,
			})
		} else if hasFolderArt {
			if !folderArtAllocated {
				folderArtResID = sc.allocResourceID()
				resources[folderArtResID] = objectcodec.Resource{Location: filepath.Join(dir, folderArt), MimeType: "image/jpeg"}
				folderArtAllocated = true
			}
			artwork = append(artwork, objectcodec.Artwork{
				Ref:  storekey.LibraryKey{Tag: storekey.TagResource, ID: folderArtResID},
				Type: folderArtKind,
			})
		}

		resRefs := []objectcodec.ResourceRef{{
			Ref:          storekey.LibraryKey{Tag: storekey.TagResource, ID: videoResID},
			ProtocolInfo: fmt.Sprintf("http-get:*:%s:*", cls.mime),
		}}
		for _, sub := range itemSubtitles(stem, contents.texts) {
			subCls, ok := classify(sub)
			if !ok {
				continue
			}
			subResID := sc.allocResourceID()
			resources[subResID] = objectcodec.Resource{Location: filepath.Join(dir, sub), MimeType: subCls.mime}
			resRefs = append(resRefs, objectcodec.ResourceRef{
				Ref:          storekey.LibraryKey{Tag: storekey.TagResource, ID: subResID},
				ProtocolInfo: fmt.Sprintf("http-get:*:%s:*", subCls.mime),
			})
		}

		items = append(items, objectcodec.MediaObject{
			ID:        sc.allocObjectID(),
			ParentID:  parentID,
			DCTitle:   title,
			UPnPClass: "object.item.videoItem.movie",
			DCDate:    dcDate,
			Artwork:   artwork,
			Variant:   objectcodec.VariantItem,
			Resources: resRefs,
		})
	}

	return items, resources, nil
}
