// Package store implements the ordered, typed key-value engine backing the
// content library, per spec.md §4.1. It wraps github.com/dgraph-io/badger/v4
// — Badger's native lexicographic key ordering already realizes the
// tag-then-id total order the spec requires once keys are serialized the
// way internal/storekey does, so no registered comparator callback is
// needed.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/eemsproject/eems/internal/eemserr"
	"github.com/eemsproject/eems/internal/objectcodec"
	"github.com/eemsproject/eems/internal/storekey"
)

// Store is the persistent, ordered key-value engine described in spec.md §4.1.
type Store struct {
	db  *badger.DB
	log zerolog.Logger
}

// OpenOrCreate opens the database at path, creating it if absent. wasFresh
// is true iff the database did not previously exist; on a fresh create, the
// root container record is written synchronously before returning, per
// spec.md §3 invariant 5.
func OpenOrCreate(path string, log zerolog.Logger) (*Store, bool, error) {
	wasFresh := !manifestExists(path)

	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, false, eemserr.New(eemserr.KindFatal, "store: create db dir", err)
	}

	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, false, eemserr.New(eemserr.KindFatal, "store: open", err)
	}

	s := &Store{db: db, log: log}

	if wasFresh {
		root := objectcodec.NewRootContainer()
		if err := s.db.Update(func(txn *badger.Txn) error {
			return txn.Set(storekey.Encode(storekey.LibraryKey{Tag: storekey.TagObject, ID: root.ID}),
				objectcodec.EncodeObject(root))
		}); err != nil {
			db.Close()
			return nil, false, eemserr.New(eemserr.KindFatal, "store: write root container", err)
		}
		log.Info().Str("path", path).Msg("created fresh content store with root container")
	}

	return s, wasFresh, nil
}

func manifestExists(path string) bool {
	_, err := os.Stat(filepath.Join(path, "MANIFEST"))
	return err == nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// NextID returns one past the largest existing id for tag, or 0 if none, by
// seeking a reverse iterator to the tag's maximum possible key and stepping
// onto the first key at or below it, per spec.md §4.1.
func (s *Store) NextID(tag storekey.Tag) (int64, error) {
	var next int64
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Reverse: true, PrefetchValues: false})
		defer it.Close()

		it.Seek(storekey.MaxKey(tag))
		if !it.Valid() {
			next = 0
			return nil
		}
		key, err := storekey.Decode(it.Item().KeyCopy(nil))
		if err != nil {
			return eemserr.New(eemserr.KindCorrupt, "store: decode key while computing next id", err)
		}
		if key.Tag != tag {
			next = 0
			return nil
		}
		next = key.ID + 1
		return nil
	})
	return next, err
}

// PutBatch atomically writes every resource, rewrites the parent container
// with its children list extended by each item's key (in order), and writes
// every item, per spec.md §4.1. It fails if parent does not exist, is not a
// container, or any item's ParentID does not match parentID.
func (s *Store) PutBatch(parentID int64, items []objectcodec.MediaObject, resources map[int64]objectcodec.Resource) error {
	for _, item := range items {
		if item.ParentID != parentID {
			return eemserr.New(eemserr.KindMalformed, "store: put_batch",
				fmt.Errorf("item %d has parent_id %d, want %d", item.ID, item.ParentID, parentID))
		}
	}

	return s.db.Update(func(txn *badger.Txn) error {
		parentRaw, err := txn.Get(storekey.Encode(storekey.LibraryKey{Tag: storekey.TagObject, ID: parentID}))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return eemserr.New(eemserr.KindNotFound, "store: put_batch: parent not found", err)
			}
			return eemserr.New(eemserr.KindIOError, "store: put_batch: read parent", err)
		}
		parentBytes, err := parentRaw.ValueCopy(nil)
		if err != nil {
			return eemserr.New(eemserr.KindIOError, "store: put_batch: read parent value", err)
		}
		parent, err := objectcodec.DecodeObject(parentBytes)
		if err != nil {
			return eemserr.New(eemserr.KindCorrupt, "store: put_batch: decode parent", err)
		}
		if parent.Variant != objectcodec.VariantContainer {
			return eemserr.New(eemserr.KindMalformed, "store: put_batch",
				fmt.Errorf("parent %d is not a container", parentID))
		}

		for id, res := range resources {
			key := storekey.Encode(storekey.LibraryKey{Tag: storekey.TagResource, ID: id})
			if err := txn.Set(key, objectcodec.EncodeResource(res)); err != nil {
				return eemserr.New(eemserr.KindIOError, "store: put_batch: write resource", err)
			}
		}

		for _, item := range items {
			parent.Children = append(parent.Children, storekey.LibraryKey{Tag: storekey.TagObject, ID: item.ID})
		}
		if err := txn.Set(storekey.Encode(storekey.LibraryKey{Tag: storekey.TagObject, ID: parentID}),
			objectcodec.EncodeObject(parent)); err != nil {
			return eemserr.New(eemserr.KindIOError, "store: put_batch: write parent", err)
		}

		for _, item := range items {
			key := storekey.Encode(storekey.LibraryKey{Tag: storekey.TagObject, ID: item.ID})
			if err := txn.Set(key, objectcodec.EncodeObject(item)); err != nil {
				return eemserr.New(eemserr.KindIOError, "store: put_batch: write item", err)
			}
		}

		return nil
	})
}

// Get returns the MediaObject with the given id.
func (s *Store) Get(id int64) (objectcodec.MediaObject, error) {
	var obj objectcodec.MediaObject
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(storekey.Encode(storekey.LibraryKey{Tag: storekey.TagObject, ID: id}))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return eemserr.New(eemserr.KindNotFound, "store: get", err)
			}
			return eemserr.New(eemserr.KindIOError, "store: get", err)
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return eemserr.New(eemserr.KindIOError, "store: get: read value", err)
		}
		obj, err = objectcodec.DecodeObject(raw)
		if err != nil {
			return eemserr.New(eemserr.KindCorrupt, "store: get: decode", err)
		}
		return nil
	})
	return obj, err
}

// ListChildren reads the container then resolves each of its children in
// order, per spec.md §4.1.
func (s *Store) ListChildren(containerID int64) ([]objectcodec.MediaObject, error) {
	container, err := s.Get(containerID)
	if err != nil {
		return nil, err
	}
	if container.Variant != objectcodec.VariantContainer {
		return nil, eemserr.New(eemserr.KindMalformed, "store: list_children",
			fmt.Errorf("object %d is not a container", containerID))
	}

	children := make([]objectcodec.MediaObject, 0, len(container.Children))
	err = s.db.View(func(txn *badger.Txn) error {
		for _, key := range container.Children {
			item, err := txn.Get(storekey.Encode(key))
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return eemserr.New(eemserr.KindCorrupt, "store: list_children",
						fmt.Errorf("child %d of container %d does not resolve", key.ID, containerID))
				}
				return eemserr.New(eemserr.KindIOError, "store: list_children", err)
			}
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return eemserr.New(eemserr.KindIOError, "store: list_children: read value", err)
			}
			obj, err := objectcodec.DecodeObject(raw)
			if err != nil {
				return eemserr.New(eemserr.KindCorrupt, "store: list_children: decode", err)
			}
			children = append(children, obj)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return children, nil
}

// GetResource returns the Resource with the given id.
func (s *Store) GetResource(id int64) (objectcodec.Resource, error) {
	var res objectcodec.Resource
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(storekey.Encode(storekey.LibraryKey{Tag: storekey.TagResource, ID: id}))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return eemserr.New(eemserr.KindNotFound, "store: get_resource", err)
			}
			return eemserr.New(eemserr.KindIOError, "store: get_resource", err)
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return eemserr.New(eemserr.KindIOError, "store: get_resource: read value", err)
		}
		res, err = objectcodec.DecodeResource(raw)
		if err != nil {
			return eemserr.New(eemserr.KindCorrupt, "store: get_resource: decode", err)
		}
		return nil
	})
	return res, err
}
