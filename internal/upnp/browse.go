package upnp

import (
	"fmt"
	"strconv"

	"github.com/eemsproject/eems/internal/eemserr"
	"github.com/eemsproject/eems/internal/objectcodec"
)

// contentStore is the subset of *store.Store the Browse action depends on.
type contentStore interface {
	Get(id int64) (objectcodec.MediaObject, error)
	ListChildren(containerID int64) ([]objectcodec.MediaObject, error)
}

type browseRequestXML struct {
	ObjectID       string `xml:"ObjectID"`
	BrowseFlag     string `xml:"BrowseFlag"`
	Filter         string `xml:"Filter"`
	StartingIndex  int    `xml:"StartingIndex"`
	RequestedCount int    `xml:"RequestedCount"`
	SortCriteria   string `xml:"SortCriteria"`
}

// browseResult holds everything the SOAP response template needs.
type browseResult struct {
	didl           string
	numberReturned int
	totalMatches   int
}

// runBrowse implements spec.md §4.5's Browse action contract.
func runBrowse(store contentStore, req browseRequestXML, baseURL string) (browseResult, error) {
	objectID, err := strconv.ParseInt(req.ObjectID, 10, 64)
	if err != nil {
		return browseResult{}, eemserr.New(eemserr.KindMalformed, "upnp: browse", fmt.Errorf("invalid ObjectID %q", req.ObjectID))
	}

	switch req.BrowseFlag {
	case "BrowseMetadata":
		obj, err := store.Get(objectID)
		if err != nil {
			if eemserr.Is(err, eemserr.KindNotFound) {
				return browseResult{}, eemserr.New(eemserr.KindNotFound, "upnp: browse metadata", err)
			}
			return browseResult{}, err
		}
		didl := buildDIDL([]objectcodec.MediaObject{obj}, baseURL)
		return browseResult{didl: didl, numberReturned: 1, totalMatches: 1}, nil

	case "BrowseDirectChildren":
		children, err := store.ListChildren(objectID)
		if err != nil {
			if eemserr.Is(err, eemserr.KindNotFound) {
				return browseResult{}, eemserr.New(eemserr.KindNotFound, "upnp: browse children", err)
			}
			return browseResult{}, err
		}

		total := len(children)
		start := req.StartingIndex
		if start > total {
			start = total
		}
		end := total
		if req.RequestedCount > 0 {
			end = start + req.RequestedCount
			if end > total {
				end = total
			}
		}

		page := children[start:end]
		didl := buildDIDL(page, baseURL)
		return browseResult{didl: didl, numberReturned: len(page), totalMatches: total}, nil

	default:
		return browseResult{}, eemserr.New(eemserr.KindBadArgument, "upnp: browse",
			fmt.Errorf("unknown BrowseFlag %q", req.BrowseFlag))
	}
}
