package scanner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eemsproject/eems/internal/config"
	"github.com/eemsproject/eems/internal/objectcodec"
	"github.com/eemsproject/eems/internal/storekey"
)

// fakeStore is a minimal in-memory stand-in for *store.Store satisfying
// contentStore, so the scanner can be tested without a Badger database.
type fakeStore struct {
	objects   map[int64]objectcodec.MediaObject
	resources map[int64]objectcodec.Resource
	nextObj   int64
	nextRes   int64
}

func newFakeStore() *fakeStore {
	root := objectcodec.NewRootContainer()
	return &fakeStore{
		objects:   map[int64]objectcodec.MediaObject{0: root},
		resources: map[int64]objectcodec.Resource{},
		nextObj:   1,
	}
}

func (f *fakeStore) NextID(tag storekey.Tag) (int64, error) {
	if tag == storekey.TagObject {
		return f.nextObj, nil
	}
	return f.nextRes, nil
}

func (f *fakeStore) PutBatch(parentID int64, items []objectcodec.MediaObject, resources map[int64]objectcodec.Resource) error {
	parent, ok := f.objects[parentID]
	if !ok {
		return assertNotFound(parentID)
	}
	for id, res := range resources {
		f.resources[id] = res
		if id >= f.nextRes {
			f.nextRes = id + 1
		}
	}
	for _, item := range items {
		parent.Children = append(parent.Children, storekey.LibraryKey{Tag: storekey.TagObject, ID: item.ID})
	}
	f.objects[parentID] = parent
	for _, item := range items {
		f.objects[item.ID] = item
		if item.ID >= f.nextObj {
			f.nextObj = item.ID + 1
		}
	}
	return nil
}

func (f *fakeStore) ListChildren(containerID int64) ([]objectcodec.MediaObject, error) {
	parent, ok := f.objects[containerID]
	if !ok {
		return nil, assertNotFound(containerID)
	}
	out := make([]objectcodec.MediaObject, 0, len(parent.Children))
	for _, key := range parent.Children {
		out = append(out, f.objects[key.ID])
	}
	return out, nil
}

func assertNotFound(id int64) error {
	return &notFoundErr{id}
}

type notFoundErr struct{ id int64 }

func (e *notFoundErr) Error() string { return "not found" }

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestScanAllCreatesMoviesContainerAndItem(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "My.Movie.(2001).mkv"))

	fs := newFakeStore()
	sc, err := New(fs, zerolog.Nop())
	require.NoError(t, err)

	cfg := []config.ContentRoot{{Path: root, UseFolderNames: false, UseCollections: true}}
	require.NoError(t, sc.ScanAll(cfg))

	rootChildren, err := fs.ListChildren(0)
	require.NoError(t, err)
	require.Len(t, rootChildren, 1)
	assert.Equal(t, "Movies", rootChildren[0].DCTitle)

	movieChildren, err := fs.ListChildren(rootChildren[0].ID)
	require.NoError(t, err)
	require.Len(t, movieChildren, 1)
	item := movieChildren[0]
	assert.Equal(t, "My Movie", item.DCTitle)
	require.NotNil(t, item.DCDate)
	wantDays := time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC).Unix() / 86400
	assert.Equal(t, wantDays, *item.DCDate)
	assert.Equal(t, "object.item.videoItem.movie", item.UPnPClass)
	require.Len(t, item.Resources, 1)

	res, ok := fs.resources[item.Resources[0].Ref.ID]
	require.True(t, ok)
	assert.Equal(t, "video/x-matroska", res.MimeType)
}

func TestScanAllCreatesCollectionForMultipleVideos(t *testing.T) {
	// Collections are never created for the content root itself, so the
	// videos live one level down.
	root := t.TempDir()
	saga := filepath.Join(root, "saga")
	require.NoError(t, os.Mkdir(saga, 0o755))
	writeFile(t, filepath.Join(saga, "a.mkv"))
	writeFile(t, filepath.Join(saga, "b.mkv"))

	fs := newFakeStore()
	sc, err := New(fs, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, sc.ScanAll([]config.ContentRoot{{Path: root, UseFolderNames: true, UseCollections: true}}))

	moviesChildren, err := fs.ListChildren(1) // Movies container is id 1 (root is 0)
	require.NoError(t, err)
	require.Len(t, moviesChildren, 1)
	collection := moviesChildren[0]
	assert.Equal(t, objectcodec.VariantContainer, collection.Variant)

	items, err := fs.ListChildren(collection.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestScanAllAttachesSubtitleAsExtraResource(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "movie.mkv"))
	writeFile(t, filepath.Join(root, "movie.srt"))

	fs := newFakeStore()
	sc, err := New(fs, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, sc.ScanAll([]config.ContentRoot{{Path: root, UseFolderNames: false, UseCollections: true}}))

	moviesChildren, _ := fs.ListChildren(1)
	require.Len(t, moviesChildren, 1)
	item := moviesChildren[0]
	require.Len(t, item.Resources, 2)
	assert.Equal(t, "text/srt", fs.resources[item.Resources[1].Ref.ID].MimeType)
}

func TestNormalizeTitleMatchesWorkedExample(t *testing.T) {
	title, date := normalizeTitle("My.Movie.(2001)")
	assert.Equal(t, "My Movie", title)
	require.NotNil(t, date)
	want := time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC).Unix() / 86400
	assert.Equal(t, want, *date)
}

func TestNormalizeTitleWithoutYear(t *testing.T) {
	title, date := normalizeTitle("Some_Movie_Title")
	assert.Equal(t, "Some Movie Title", title)
	assert.Nil(t, date)
}

func TestShouldCreateCollection(t *testing.T) {
	assert.True(t, shouldCreateCollection(2, false, false))
	assert.True(t, shouldCreateCollection(1, true, true))
	assert.True(t, shouldCreateCollection(0, true, true))
	assert.False(t, shouldCreateCollection(1, true, false))
	assert.False(t, shouldCreateCollection(0, false, true))
	assert.False(t, shouldCreateCollection(1, false, false))
}

func TestFolderArtworkPrefersPosterOverFolder(t *testing.T) {
	name, kind, ok := folderArtwork([]string{"folder.jpg", "poster.jpg"})
	require.True(t, ok)
	assert.Equal(t, "poster.jpg", name)
	assert.Equal(t, objectcodec.ArtworkPoster, kind)
}
