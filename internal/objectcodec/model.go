// Package objectcodec defines the MediaObject/Resource entities held by the
// content store and their tagged binary encoding.
package objectcodec

import "github.com/eemsproject/eems/internal/storekey"

// ArtworkType distinguishes the two kinds of artwork a MediaObject may carry.
type ArtworkType byte

const (
	ArtworkPoster ArtworkType = iota
	ArtworkThumbnail
)

// Artwork is an image reference embedded in a container or item.
type Artwork struct {
	Ref  storekey.LibraryKey
	Type ArtworkType
}

// ResourceRef is a playable resource attached to an item.
type ResourceRef struct {
	Ref          storekey.LibraryKey
	ProtocolInfo string
}

// Variant discriminates the two MediaObject shapes.
type Variant byte

const (
	VariantContainer Variant = iota
	VariantItem
)

// MediaObject is either a Container or an Item; Variant says which fields
// apply. Children are not resolved to live pointers here — Browse and the
// scanner resolve ids against the Store on demand, per spec.md §9.
type MediaObject struct {
	ID        int64
	ParentID  int64 // -1 only for the root container
	DCTitle   string
	UPnPClass string
	Artwork   []Artwork
	DCDate    *int64 // epoch-days; nil if unset

	Variant Variant

	// Container-only.
	Children []storekey.LibraryKey

	// Item-only.
	Resources []ResourceRef
}

// Resource is a top-level record describing a playable/downloadable file.
type Resource struct {
	Location string
	MimeType string
}

// NewRootContainer builds the well-known root container record (id 0,
// parent -1), created exactly once at database initialization per spec.md §3.
func NewRootContainer() MediaObject {
	return MediaObject{
		ID:        0,
		ParentID:  -1,
		DCTitle:   "Root",
		UPnPClass: "object.container",
		Variant:   VariantContainer,
		Children:  nil,
	}
}
