// Package ssdp implements the M-SEARCH half of UPnP discovery: a UDP
// multicast listener that answers unicast replies to control points probing
// for root devices or media servers, per spec.md §4.7. Alive/byebye
// announcements and renderer-side discovery are out of scope.
package ssdp

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/net/ipv4"
)

const (
	multicastAddr = "239.255.255.250:1900"
	maxAgeSeconds = 1800
	hopLimit      = 4
	readBufSize   = 1500
)

// Server answers M-SEARCH requests on the SSDP multicast group.
type Server struct {
	uuid    string
	baseURL string
	log     zerolog.Logger
}

// New builds a Server that advertises baseURL as its device description
// location and uuid as its server identity.
func New(uuid, baseURL string, log zerolog.Logger) *Server {
	return &Server{uuid: uuid, baseURL: baseURL, log: log}
}

// Run binds the multicast group and serves until ctx is canceled, per
// spec.md §4.7's bind/loop/filter/reply sequence.
func (s *Server) Run(ctx context.Context) error {
	groupAddr, err := net.ResolveUDPAddr("udp4", multicastAddr)
	if err != nil {
		return fmt.Errorf("ssdp: resolve multicast address: %w", err)
	}

	conn, err := net.ListenMulticastUDP("udp4", nil, groupAddr)
	if err != nil {
		return fmt.Errorf("ssdp: listen multicast: %w", err)
	}
	defer conn.Close()

	pc := ipv4.NewPacketConn(conn)
	if err := pc.SetMulticastTTL(hopLimit); err != nil {
		return fmt.Errorf("ssdp: set multicast hop limit: %w", err)
	}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	buf := make([]byte, readBufSize)
	for {
		n, remote, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.Warn().Err(err).Msg("ssdp: read error")
			continue
		}

		req, ok := parseMSearch(buf[:n])
		if !ok {
			continue
		}
		if !shouldRespond(req) {
			continue
		}

		reply := s.buildReply(req.st)
		if _, err := conn.WriteToUDP([]byte(reply), remote); err != nil {
			s.log.Warn().Err(err).Str("remote", remote.String()).Msg("ssdp: reply send failed")
		}
	}
}

type msearchRequest struct {
	method string
	target string
	man    string
	st     string
}

// parseMSearch splits a datagram into a request line and headers. It is not
// a general HTTP parser: SSDP datagrams have an empty body and a request
// line that may use the non-standard "M-SEARCH" method net/http rejects.
func parseMSearch(data []byte) (msearchRequest, bool) {
	lines := strings.Split(string(data), "\r\n")
	if len(lines) == 0 {
		return msearchRequest{}, false
	}

	requestLine := strings.Fields(lines[0])
	if len(requestLine) < 2 {
		return msearchRequest{}, false
	}

	req := msearchRequest{method: requestLine[0], target: requestLine[1]}
	for _, line := range lines[1:] {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		switch strings.ToUpper(strings.TrimSpace(name)) {
		case "MAN":
			req.man = strings.TrimSpace(value)
		case "ST":
			req.st = strings.TrimSpace(value)
		}
	}
	return req, true
}

// shouldRespond implements spec.md §4.7's filter exactly.
func shouldRespond(req msearchRequest) bool {
	if req.method != "M-SEARCH" || req.target != "*" {
		return false
	}
	if req.man != `"ssdp:discover"` {
		return false
	}
	return req.st == "upnp:rootdevice" || req.st == "urn:schemas-upnp-org:device:MediaServer:1"
}

func (s *Server) buildReply(st string) string {
	return fmt.Sprintf(
		"HTTP/1.1 200 OK\r\n"+
			"Cache-Control: max-age=%d\r\n"+
			"Location: %s/upnp/device\r\n"+
			"ST: %s\r\n"+
			"USN: uuid:%s::%s\r\n"+
			"EXT:\r\n"+
			"\r\n",
		maxAgeSeconds, s.baseURL, st, s.uuid, st,
	)
}
