// Package httpserver wires the UPnP control surface and the content
// streamer behind a single net/http server, per spec.md §4.4/§4.8.
package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const idleTimeout = 30 * time.Second

// upnpHandler is the subset of *upnp.Handler the router dispatches to.
type upnpHandler interface {
	ServeDevice(w http.ResponseWriter, r *http.Request)
	ServeContentDirectorySCPD(w http.ResponseWriter, r *http.Request)
	ServeConnectionManagerSCPD(w http.ResponseWriter, r *http.Request)
	ServeContentDirectoryControl(w http.ResponseWriter, r *http.Request)
	ServeConnectionManagerControl(w http.ResponseWriter, r *http.Request)
}

// streamHandler is the subset of *stream.Handler the router dispatches to.
type streamHandler interface {
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}

// New builds the HTTP router spec.md §4.4 describes: static device/service
// descriptions, SOAP control endpoints, and the ranged content endpoint,
// matching the teacher's single-mux routing style in cmd/server/main.go.
func New(upnp upnpHandler, stream streamHandler, log zerolog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/upnp/device", upnp.ServeDevice)
	mux.HandleFunc("/upnp/cds.xml", upnp.ServeContentDirectorySCPD)
	mux.HandleFunc("/upnp/cm.xml", upnp.ServeConnectionManagerSCPD)
	mux.HandleFunc("/upnp/cds", upnp.ServeContentDirectoryControl)
	mux.HandleFunc("/upnp/cm", upnp.ServeConnectionManagerControl)

	mux.HandleFunc("/content/", func(w http.ResponseWriter, r *http.Request) {
		stream.ServeHTTP(w, r)
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	return mux
}

// NewServer wraps mux in an *http.Server configured with the 30-second
// per-connection idle timeout spec.md §4.8 requires, and no write timeout so
// long-running content streams are never cut off mid-transfer.
func NewServer(addr string, mux http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       idleTimeout,
	}
}

// Shutdown gracefully stops srv, letting in-flight requests complete, per
// spec.md §5's cancellation rules: no forced abort of a response already in
// progress.
func Shutdown(ctx context.Context, srv *http.Server) error {
	return srv.Shutdown(ctx)
}

// BaseURL builds the address every handler advertises back to control
// points (device description location, DIDL-Lite res/artwork URIs),
// stripping any trailing slash a configured hostname might carry.
func BaseURL(hostname string, port uint16) string {
	return fmt.Sprintf("http://%s:%d", strings.TrimSuffix(hostname, "/"), port)
}
