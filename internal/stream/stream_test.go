package stream

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eemsproject/eems/internal/objectcodec"
)

type fakeResourceStore struct {
	resources map[int64]objectcodec.Resource
}

func (f fakeResourceStore) GetResource(id int64) (objectcodec.Resource, error) {
	res, ok := f.resources[id]
	if !ok {
		return objectcodec.Resource{}, os.ErrNotExist
	}
	return res, nil
}

func writeContentFile(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "content.bin")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestServeHTTPFullBody(t *testing.T) {
	path := writeContentFile(t, []byte("0123456789"))
	store := fakeResourceStore{resources: map[int64]objectcodec.Resource{0: {Location: path, MimeType: "video/mp4"}}}
	h := New(store, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/content/0", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "10", rec.Header().Get("Content-Length"))
	assert.Equal(t, "0123456789", rec.Body.String())
}

func TestServeHTTPHeadReturnsNoBody(t *testing.T) {
	path := writeContentFile(t, []byte("0123456789"))
	store := fakeResourceStore{resources: map[int64]objectcodec.Resource{0: {Location: path, MimeType: "video/mp4"}}}
	h := New(store, zerolog.Nop())

	req := httptest.NewRequest(http.MethodHead, "/content/0", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
	assert.Empty(t, rec.Body.String())
}

func TestServeHTTPPartialRange(t *testing.T) {
	content := make([]byte, 1000)
	for i := range content {
		content[i] = byte(i % 256)
	}
	path := writeContentFile(t, content)
	store := fakeResourceStore{resources: map[int64]objectcodec.Resource{0: {Location: path, MimeType: "video/mp4"}}}
	h := New(store, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/content/0", nil)
	req.Header.Set("Range", "bytes=100-199")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bytes 100-199/1000", rec.Header().Get("Content-Range"))
	assert.Equal(t, "100", rec.Header().Get("Content-Length"))
	assert.Equal(t, content[100:200], rec.Body.Bytes())
}

func TestServeHTTPUnsatisfiableRange(t *testing.T) {
	path := writeContentFile(t, []byte("hello"))
	store := fakeResourceStore{resources: map[int64]objectcodec.Resource{0: {Location: path, MimeType: "text/plain"}}}
	h := New(store, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/content/0", nil)
	req.Header.Set("Range", "bytes=5-3")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, rec.Code)
}

func TestServeHTTPUnknownIDReturns404(t *testing.T) {
	store := fakeResourceStore{resources: map[int64]objectcodec.Resource{}}
	h := New(store, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/content/999", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeHTTPNonNumericIDReturns404(t *testing.T) {
	store := fakeResourceStore{resources: map[int64]objectcodec.Resource{}}
	h := New(store, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/content/not-a-number", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestParseRangeBoundaryBehaviors(t *testing.T) {
	_, _, err := parseRange("bytes=-0", 0)
	assert.Error(t, err)

	rng, partial, err := parseRange("bytes=0-", 1)
	require.NoError(t, err)
	assert.True(t, partial)
	assert.Equal(t, int64(0), rng.first)
	assert.Equal(t, int64(0), rng.last)

	_, _, err = parseRange("bytes=5-3", 1000)
	assert.Error(t, err)
}

func TestParseRangeNoHeaderReturnsFullRange(t *testing.T) {
	rng, partial, err := parseRange("", 500)
	require.NoError(t, err)
	assert.False(t, partial)
	assert.Equal(t, int64(0), rng.first)
	assert.Equal(t, int64(499), rng.last)
}
