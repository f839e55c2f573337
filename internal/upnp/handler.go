package upnp

import (
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/eemsproject/eems/internal/eemserr"
)

// Handler serves the UPnP device/service descriptions and dispatches
// Content Directory / Connection Manager SOAP actions, per spec.md §4.4/§4.5.
type Handler struct {
	store        contentStore
	uuid         string
	friendlyName string
	baseURL      string
	log          zerolog.Logger
}

// New builds a Handler advertising baseURL as the location of every
// resource it serves.
func New(store contentStore, uuid, friendlyName, baseURL string, log zerolog.Logger) *Handler {
	return &Handler{store: store, uuid: uuid, friendlyName: friendlyName, baseURL: baseURL, log: log}
}

// ServeDevice serves GET /upnp/device.
func (h *Handler) ServeDevice(w http.ResponseWriter, r *http.Request) {
	writeXML(w, http.StatusOK, deviceDescription(h.uuid, h.friendlyName, h.baseURL))
}

// ServeContentDirectorySCPD serves GET /upnp/cds.xml.
func (h *Handler) ServeContentDirectorySCPD(w http.ResponseWriter, r *http.Request) {
	writeXML(w, http.StatusOK, contentDirectorySCPD)
}

// ServeConnectionManagerSCPD serves GET /upnp/cm.xml.
func (h *Handler) ServeConnectionManagerSCPD(w http.ResponseWriter, r *http.Request) {
	writeXML(w, http.StatusOK, connectionManagerSCPD)
}

// ServeContentDirectoryControl dispatches POST /upnp/cds SOAP actions.
// Currently only Browse is implemented, per spec.md §4.5.
func (h *Handler) ServeContentDirectoryControl(w http.ResponseWriter, r *http.Request) {
	body, action, ok := h.acceptSOAP(w, r)
	if !ok {
		return
	}

	if action.action != "Browse" {
		h.writeFault(w, errInvalidAction, "invalid action")
		return
	}

	var req browseRequestXML
	if err := decodeAction(body, "Browse", &req); err != nil {
		h.log.Warn().Err(err).Msg("upnp: malformed Browse request")
		h.writeFault(w, errInvalidArgs, "invalid arguments")
		return
	}

	result, err := runBrowse(h.store, req, h.baseURL)
	if err != nil {
		h.respondBrowseError(w, err)
		return
	}

	writeXML(w, http.StatusOK, wrapBrowseResponse(result))
}

// ServeConnectionManagerControl implements spec.md §4.4's minimum surface
// for /upnp/cm: reject every action with a structurally valid SOAP fault.
// The teacher's Connection Manager answers a couple of read-only actions;
// this repo narrows that deliberately (see DESIGN.md).
func (h *Handler) ServeConnectionManagerControl(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := h.acceptSOAP(w, r); !ok {
		return
	}
	h.writeFault(w, errInvalidAction, "no actions supported")
}

// acceptSOAP validates transport-level preconditions shared by both control
// endpoints (method, content type, SOAPACTION header) and returns the raw
// body and parsed action on success.
func (h *Handler) acceptSOAP(w http.ResponseWriter, r *http.Request) ([]byte, soapAction, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusBadRequest)
		return nil, soapAction{}, false
	}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "text/xml") {
		http.Error(w, "unsupported media type", http.StatusUnsupportedMediaType)
		return nil, soapAction{}, false
	}

	action, err := parseSOAPAction(r.Header.Get("SOAPACTION"))
	if err != nil {
		http.Error(w, "bad SOAPACTION header", http.StatusBadRequest)
		return nil, soapAction{}, false
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return nil, soapAction{}, false
	}

	return body, action, true
}

// respondBrowseError maps an eemserr Kind to the HTTP status and UPnP error
// code spec.md §8 scenario 6 pins down: a SOAP fault rides on HTTP 500.
func (h *Handler) respondBrowseError(w http.ResponseWriter, err error) {
	switch eemserr.KindOf(err) {
	case eemserr.KindNotFound:
		h.writeFault(w, errNoSuchObject, "no such object")
	case eemserr.KindBadArgument:
		h.writeFault(w, errArgumentValue, "argument value invalid")
	case eemserr.KindMalformed:
		h.writeFault(w, errArgumentOutOfRange, "argument value out of range")
	default:
		h.log.Error().Err(err).Msg("upnp: browse failed")
		h.writeFault(w, errArgumentValue, "internal error")
	}
}

func (h *Handler) writeFault(w http.ResponseWriter, code int, description string) {
	writeXML(w, http.StatusInternalServerError, soapFault(code, description))
}

func wrapBrowseResponse(res browseResult) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">
<s:Body>
<u:BrowseResponse xmlns:u="urn:schemas-upnp-org:service:ContentDirectory:1">
<Result>%s</Result>
<NumberReturned>%d</NumberReturned>
<TotalMatches>%d</TotalMatches>
<UpdateID>0</UpdateID>
</u:BrowseResponse>
</s:Body>
</s:Envelope>`, escapeDIDL(res.didl), res.numberReturned, res.totalMatches)
}

func escapeDIDL(didl string) string {
	return html.EscapeString(didl)
}

func writeXML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, body)
}
