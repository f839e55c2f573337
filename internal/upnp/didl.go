package upnp

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/eemsproject/eems/internal/objectcodec"
)

// buildDIDL renders objects as a DIDL-Lite document, per spec.md §4.5's
// DIDL-Lite content rules: one <container> or <item> per object, resources
// rendered as <res> children, artwork as <upnp:albumArtURI>/<xbmc:artwork>.
func buildDIDL(objects []objectcodec.MediaObject, baseURL string) string {
	var b strings.Builder
	b.WriteString(`<DIDL-Lite xmlns="urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/" ` +
		`xmlns:upnp="urn:schemas-upnp-org:metadata-1-0/upnp/" ` +
		`xmlns:dc="http://purl.org/dc/elements/1.1/" ` +
		`xmlns:xbmc="urn:schemas-xbmc-org:metadata-1-0/">`)

	for _, obj := range objects {
		writeObject(&b, obj, baseURL)
	}

	b.WriteString(`</DIDL-Lite>`)
	return b.String()
}

func writeObject(b *strings.Builder, obj objectcodec.MediaObject, baseURL string) {
	tag := "item"
	if obj.Variant == objectcodec.VariantContainer {
		tag = "container"
	}

	fmt.Fprintf(b, `<%s id="%d" parentID="%d" restricted="1">`, tag, obj.ID, obj.ParentID)
	fmt.Fprintf(b, `<dc:title>%s</dc:title>`, html.EscapeString(obj.DCTitle))
	fmt.Fprintf(b, `<upnp:class>%s</upnp:class>`, html.EscapeString(obj.UPnPClass))

	if obj.DCDate != nil {
		date := time.Unix(*obj.DCDate*86400, 0).UTC().Format("2006-01-02")
		fmt.Fprintf(b, `<dc:date>%s</dc:date>`, date)
	}

	for _, art := range obj.Artwork {
		uri := html.EscapeString(baseURL + "/content/" + strconv.FormatInt(art.Ref.ID, 10))
		fmt.Fprintf(b, `<upnp:albumArtURI>%s</upnp:albumArtURI>`, uri)
		fmt.Fprintf(b, `<xbmc:artwork type="%s">%s</xbmc:artwork>`, artworkTypeName(art.Type), uri)
	}

	if obj.Variant == objectcodec.VariantItem {
		for _, ref := range obj.Resources {
			uri := html.EscapeString(baseURL + "/content/" + strconv.FormatInt(ref.Ref.ID, 10))
			fmt.Fprintf(b, `<res protocolInfo="%s">%s</res>`, html.EscapeString(ref.ProtocolInfo), uri)
		}
	}

	fmt.Fprintf(b, `</%s>`, tag)
}

func artworkTypeName(t objectcodec.ArtworkType) string {
	if t == objectcodec.ArtworkPoster {
		return "poster"
	}
	return "thumb"
}
