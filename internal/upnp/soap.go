// Package upnp implements SOAP action dispatch for the Content Directory and
// Connection Manager services, DIDL-Lite response generation, and the
// static device/service description documents, per spec.md §4.5.
package upnp

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// soapAction is the parsed "<service>#<action>" SOAPACTION header.
type soapAction struct {
	service string
	action  string
}

// parseSOAPAction parses the SOAPACTION header grammar, per spec.md §4.5
// step 3. The header is conventionally quoted; quotes are stripped if
// present.
func parseSOAPAction(header string) (soapAction, error) {
	header = strings.Trim(header, `"`)
	service, action, ok := strings.Cut(header, "#")
	if !ok || service == "" || action == "" {
		return soapAction{}, fmt.Errorf("upnp: malformed SOAPACTION %q", header)
	}
	return soapAction{service: service, action: action}, nil
}

// decodeAction walks an incoming SOAP envelope to the first (and only)
// child of the Body element — the action node — verifies its local name
// matches expectedAction, and unmarshals its children into dst.
//
// Real XML parsing is used rather than string search so the strict
// action/header validation spec.md §4.5 step 4 requires (action element
// local name MUST equal the action name from the header) can actually be
// enforced.
func decodeAction(body []byte, expectedAction string, dst any) error {
	dec := xml.NewDecoder(strings.NewReader(string(body)))

	if err := skipTo(dec, "Envelope"); err != nil {
		return fmt.Errorf("upnp: %w", err)
	}
	if err := skipTo(dec, "Body"); err != nil {
		return fmt.Errorf("upnp: %w", err)
	}

	tok, err := nextStartElement(dec)
	if err != nil {
		return fmt.Errorf("upnp: no action element in Body: %w", err)
	}
	if tok.Name.Local != expectedAction {
		return fmt.Errorf("upnp: action element %q does not match SOAPACTION %q", tok.Name.Local, expectedAction)
	}

	if err := dec.DecodeElement(dst, &tok); err != nil {
		return fmt.Errorf("upnp: decode action body: %w", err)
	}
	return nil
}

func skipTo(dec *xml.Decoder, localName string) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("looking for %s: %w", localName, err)
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == localName {
			return nil
		}
	}
}

func nextStartElement(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}
