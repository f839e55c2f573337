package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type fakeUPnP struct{ calls []string }

func (f *fakeUPnP) ServeDevice(w http.ResponseWriter, r *http.Request) {
	f.calls = append(f.calls, "device")
	w.WriteHeader(http.StatusOK)
}
func (f *fakeUPnP) ServeContentDirectorySCPD(w http.ResponseWriter, r *http.Request) {
	f.calls = append(f.calls, "cds.xml")
	w.WriteHeader(http.StatusOK)
}
func (f *fakeUPnP) ServeConnectionManagerSCPD(w http.ResponseWriter, r *http.Request) {
	f.calls = append(f.calls, "cm.xml")
	w.WriteHeader(http.StatusOK)
}
func (f *fakeUPnP) ServeContentDirectoryControl(w http.ResponseWriter, r *http.Request) {
	f.calls = append(f.calls, "cds")
	w.WriteHeader(http.StatusOK)
}
func (f *fakeUPnP) ServeConnectionManagerControl(w http.ResponseWriter, r *http.Request) {
	f.calls = append(f.calls, "cm")
	w.WriteHeader(http.StatusOK)
}

type fakeStream struct{ called bool }

func (f *fakeStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.called = true
	w.WriteHeader(http.StatusOK)
}

func TestRouterDispatchesEachPath(t *testing.T) {
	upnp := &fakeUPnP{}
	stream := &fakeStream{}
	mux := New(upnp, stream, zerolog.Nop())

	paths := []string{"/upnp/device", "/upnp/cds.xml", "/upnp/cm.xml", "/upnp/cds", "/upnp/cm"}
	for _, p := range paths {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
		assert.Equal(t, http.StatusOK, rec.Code, p)
	}
	assert.ElementsMatch(t, []string{"device", "cds.xml", "cm.xml", "cds", "cm"}, upnp.calls)
}

func TestRouterDispatchesContentPrefix(t *testing.T) {
	stream := &fakeStream{}
	mux := New(&fakeUPnP{}, stream, zerolog.Nop())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/content/42", nil))

	assert.True(t, stream.called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterReturns404ForUnknownPath(t *testing.T) {
	mux := New(&fakeUPnP{}, &fakeStream{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nonexistent", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewServerConfiguresIdleTimeout(t *testing.T) {
	srv := NewServer(":8200", http.NewServeMux())
	assert.Equal(t, idleTimeout, srv.IdleTimeout)
	assert.Equal(t, ":8200", srv.Addr)
}

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "http://host:8200", BaseURL("host", 8200))
}
