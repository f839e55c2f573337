package objectcodec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/eemsproject/eems/internal/storekey"
)

// schemaVersion is bumped only if a field's on-wire meaning changes; new
// optional fields do not require a bump, per spec.md §4.2's tolerance rule.
const schemaVersion = 1

// EncodeObject serializes a MediaObject as a tagged binary record.
func EncodeObject(obj MediaObject) []byte {
	var buf bytes.Buffer
	buf.WriteByte(schemaVersion)
	buf.WriteByte(byte(obj.Variant))

	writeUvarint(&buf, uint64(obj.ID))
	writeZigzag(&buf, obj.ParentID)
	writeString(&buf, obj.DCTitle)
	writeString(&buf, obj.UPnPClass)

	if obj.DCDate != nil {
		buf.WriteByte(1)
		writeZigzag(&buf, *obj.DCDate)
	} else {
		buf.WriteByte(0)
	}

	writeUvarint(&buf, uint64(len(obj.Artwork)))
	for _, a := range obj.Artwork {
		writeKey(&buf, a.Ref)
		buf.WriteByte(byte(a.Type))
	}

	switch obj.Variant {
	case VariantContainer:
		writeUvarint(&buf, uint64(len(obj.Children)))
		for _, c := range obj.Children {
			writeKey(&buf, c)
		}
	case VariantItem:
		writeUvarint(&buf, uint64(len(obj.Resources)))
		for _, r := range obj.Resources {
			writeKey(&buf, r.Ref)
			writeString(&buf, r.ProtocolInfo)
		}
	}

	return buf.Bytes()
}

// DecodeObject parses a tagged binary MediaObject record.
func DecodeObject(data []byte) (MediaObject, error) {
	r := bytes.NewReader(data)

	if _, err := r.ReadByte(); err != nil { // schema version, tolerated
		return MediaObject{}, fmt.Errorf("objectcodec: read version: %w", err)
	}
	variantByte, err := r.ReadByte()
	if err != nil {
		return MediaObject{}, fmt.Errorf("objectcodec: read variant: %w", err)
	}
	obj := MediaObject{Variant: Variant(variantByte)}

	id, err := readUvarint(r)
	if err != nil {
		return MediaObject{}, fmt.Errorf("objectcodec: read id: %w", err)
	}
	obj.ID = int64(id)

	parentID, err := readZigzag(r)
	if err != nil {
		return MediaObject{}, fmt.Errorf("objectcodec: read parent_id: %w", err)
	}
	obj.ParentID = parentID

	if obj.DCTitle, err = readString(r); err != nil {
		return MediaObject{}, fmt.Errorf("objectcodec: read dc_title: %w", err)
	}
	if obj.UPnPClass, err = readString(r); err != nil {
		return MediaObject{}, fmt.Errorf("objectcodec: read upnp_class: %w", err)
	}

	hasDate, err := r.ReadByte()
	if err != nil {
		return MediaObject{}, fmt.Errorf("objectcodec: read has_date: %w", err)
	}
	if hasDate != 0 {
		date, err := readZigzag(r)
		if err != nil {
			return MediaObject{}, fmt.Errorf("objectcodec: read dc_date: %w", err)
		}
		obj.DCDate = &date
	}

	artworkCount, err := readUvarint(r)
	if err != nil {
		return MediaObject{}, fmt.Errorf("objectcodec: read artwork count: %w", err)
	}
	if artworkCount > 0 {
		obj.Artwork = make([]Artwork, 0, artworkCount)
	}
	for i := uint64(0); i < artworkCount; i++ {
		key, err := readKey(r)
		if err != nil {
			return MediaObject{}, fmt.Errorf("objectcodec: read artwork ref: %w", err)
		}
		typeByte, err := r.ReadByte()
		if err != nil {
			return MediaObject{}, fmt.Errorf("objectcodec: read artwork type: %w", err)
		}
		obj.Artwork = append(obj.Artwork, Artwork{Ref: key, Type: ArtworkType(typeByte)})
	}

	switch obj.Variant {
	case VariantContainer:
		childCount, err := readUvarint(r)
		if err != nil {
			return MediaObject{}, fmt.Errorf("objectcodec: read child count: %w", err)
		}
		if childCount > 0 {
			obj.Children = make([]storekey.LibraryKey, 0, childCount)
		}
		for i := uint64(0); i < childCount; i++ {
			key, err := readKey(r)
			if err != nil {
				return MediaObject{}, fmt.Errorf("objectcodec: read child: %w", err)
			}
			obj.Children = append(obj.Children, key)
		}
	case VariantItem:
		resCount, err := readUvarint(r)
		if err != nil {
			return MediaObject{}, fmt.Errorf("objectcodec: read resource count: %w", err)
		}
		if resCount > 0 {
			obj.Resources = make([]ResourceRef, 0, resCount)
		}
		for i := uint64(0); i < resCount; i++ {
			key, err := readKey(r)
			if err != nil {
				return MediaObject{}, fmt.Errorf("objectcodec: read resource ref: %w", err)
			}
			pi, err := readString(r)
			if err != nil {
				return MediaObject{}, fmt.Errorf("objectcodec: read protocol_info: %w", err)
			}
			obj.Resources = append(obj.Resources, ResourceRef{Ref: key, ProtocolInfo: pi})
		}
	default:
		return MediaObject{}, fmt.Errorf("objectcodec: unknown variant %d", obj.Variant)
	}

	return obj, nil
}

// EncodeResource serializes a Resource record.
func EncodeResource(res Resource) []byte {
	var buf bytes.Buffer
	buf.WriteByte(schemaVersion)
	writeString(&buf, res.Location)
	writeString(&buf, res.MimeType)
	return buf.Bytes()
}

// DecodeResource parses a Resource record.
func DecodeResource(data []byte) (Resource, error) {
	r := bytes.NewReader(data)
	if _, err := r.ReadByte(); err != nil {
		return Resource{}, fmt.Errorf("objectcodec: read version: %w", err)
	}
	var res Resource
	var err error
	if res.Location, err = readString(r); err != nil {
		return Resource{}, fmt.Errorf("objectcodec: read location: %w", err)
	}
	if res.MimeType, err = readString(r); err != nil {
		return Resource{}, fmt.Errorf("objectcodec: read mime_type: %w", err)
	}
	return res, nil
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func writeZigzag(buf *bytes.Buffer, v int64) {
	writeUvarint(buf, encodeZigzag(v))
}

func writeString(buf *bytes.Buffer, s string) {
	writeUvarint(buf, uint64(len(s)))
	buf.WriteString(s)
}

func writeKey(buf *bytes.Buffer, k storekey.LibraryKey) {
	var raw [storekey.Key]byte
	storekey.EncodeInto(raw[:], k)
	buf.Write(raw[:])
}

func readUvarint(r *bytes.Reader) (uint64, error) {
	return binary.ReadUvarint(r)
}

func readZigzag(r *bytes.Reader) (int64, error) {
	v, err := binary.ReadUvarint(r)
	if err != nil {
		return 0, err
	}
	return decodeZigzag(v), nil
}

func readString(r *bytes.Reader) (string, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func readKey(r *bytes.Reader) (storekey.LibraryKey, error) {
	var raw [storekey.Key]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return storekey.LibraryKey{}, err
	}
	return storekey.Decode(raw[:])
}

func encodeZigzag(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func decodeZigzag(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}
