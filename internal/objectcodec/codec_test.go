package objectcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eemsproject/eems/internal/storekey"
)

func TestEncodeDecodeContainerRoundTrip(t *testing.T) {
	date := int64(12345)
	obj := MediaObject{
		ID:        7,
		ParentID:  3,
		DCTitle:   "Collection Title",
		UPnPClass: "object.container.storageFolder",
		DCDate:    &date,
		Artwork: []Artwork{
			{Ref: storekey.LibraryKey{Tag: storekey.TagResource, ID: 1}, Type: ArtworkPoster},
		},
		Variant: VariantContainer,
		Children: []storekey.LibraryKey{
			{Tag: storekey.TagObject, ID: 8},
			{Tag: storekey.TagObject, ID: 9},
		},
	}

	decoded, err := DecodeObject(EncodeObject(obj))
	require.NoError(t, err)
	assert.Equal(t, obj, decoded)
}

func TestEncodeDecodeItemRoundTrip(t *testing.T) {
	obj := MediaObject{
		ID:        42,
		ParentID:  7,
		DCTitle:   "My Movie",
		UPnPClass: "object.item.videoItem.movie",
		Variant:   VariantItem,
		Resources: []ResourceRef{
			{Ref: storekey.LibraryKey{Tag: storekey.TagResource, ID: 100}, ProtocolInfo: "http-get:*:video/mp4:*"},
		},
	}

	decoded, err := DecodeObject(EncodeObject(obj))
	require.NoError(t, err)
	assert.Equal(t, obj, decoded)
}

func TestEncodeDecodeHandlesNilOptionalFields(t *testing.T) {
	obj := MediaObject{
		ID:        1,
		ParentID:  0,
		DCTitle:   "Empty",
		UPnPClass: "object.container",
		Variant:   VariantContainer,
	}

	decoded, err := DecodeObject(EncodeObject(obj))
	require.NoError(t, err)
	assert.Nil(t, decoded.DCDate)
	assert.Empty(t, decoded.Children)
}

func TestEncodeDecodeResourceRoundTrip(t *testing.T) {
	res := Resource{Location: "/movies/my-movie.mkv", MimeType: "video/x-matroska"}
	decoded, err := DecodeResource(EncodeResource(res))
	require.NoError(t, err)
	assert.Equal(t, res, decoded)
}

func TestDecodeObjectRejectsTruncatedInput(t *testing.T) {
	_, err := DecodeObject([]byte{1})
	assert.Error(t, err)
}

func TestDecodeObjectRejectsUnknownVariant(t *testing.T) {
	full := EncodeObject(MediaObject{ID: 1, UPnPClass: "object.container", Variant: VariantContainer})
	full[1] = 0xFF
	_, err := DecodeObject(full)
	assert.Error(t, err)
}

func TestNewRootContainer(t *testing.T) {
	root := NewRootContainer()
	assert.Equal(t, int64(0), root.ID)
	assert.Equal(t, int64(-1), root.ParentID)
	assert.Equal(t, VariantContainer, root.Variant)
}
