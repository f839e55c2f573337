// Package stream implements the ranged content delivery endpoint,
// GET/HEAD /content/<id>, per spec.md §4.6.
package stream

import (
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/eemsproject/eems/internal/objectcodec"
)

const chunkSize = 4096

// resourceStore is the subset of *store.Store the streamer depends on.
type resourceStore interface {
	GetResource(id int64) (objectcodec.Resource, error)
}

// Handler serves /content/<id> requests.
type Handler struct {
	store resourceStore
	log   zerolog.Logger
}

// New builds a Handler over an already-populated store.
func New(s resourceStore, log zerolog.Logger) *Handler {
	return &Handler{store: s, log: log}
}

// ServeHTTP implements spec.md §4.6's contract end to end. It returns no
// boolean to the caller: built on net/http's connection-per-goroutine model,
// the keep-alive decision the spec's event-loop design expresses explicitly
// is instead made implicitly by net/http, which closes the connection on any
// write error or on this handler setting Connection: close.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/content/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	res, err := h.store.GetResource(id)
	if err != nil || res.Location == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	f, err := os.Open(res.Location)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			w.WriteHeader(http.StatusNotFound)
		} else {
			h.log.Error().Err(err).Str("path", res.Location).Msg("stream: open failed")
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.log.Error().Err(err).Msg("stream: stat failed")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	size := info.Size()

	rangeHeader := r.Header.Get("Range")
	rng, isPartial, err := parseRange(rangeHeader, size)
	if err != nil {
		w.Header().Set("Content-Range", "bytes */"+strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
		return
	}

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", res.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(rng.length(), 10))

	if isPartial {
		w.Header().Set("Content-Range", "bytes "+strconv.FormatInt(rng.first, 10)+"-"+
			strconv.FormatInt(rng.last, 10)+"/"+strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusPartialContent)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if r.Method == http.MethodHead {
		return
	}

	if _, err := f.Seek(rng.first, io.SeekStart); err != nil {
		h.log.Error().Err(err).Msg("stream: seek failed")
		return
	}

	if err := copyChunked(w, f, rng.length()); err != nil {
		h.log.Warn().Err(err).Str("path", res.Location).Msg("stream: aborted")
	}
}

// copyChunked streams exactly n bytes from r to w in chunks of at most
// chunkSize, matching the bounded-chunk transfer loop spec.md §4.6 step 8
// requires.
func copyChunked(w io.Writer, r io.Reader, n int64) error {
	buf := make([]byte, chunkSize)
	remaining := n
	for remaining > 0 {
		want := int64(chunkSize)
		if remaining < want {
			want = remaining
		}
		read, err := r.Read(buf[:want])
		if read > 0 {
			if _, werr := w.Write(buf[:read]); werr != nil {
				return werr
			}
			remaining -= int64(read)
		}
		if err != nil {
			if err == io.EOF && remaining == 0 {
				return nil
			}
			return err
		}
	}
	return nil
}
