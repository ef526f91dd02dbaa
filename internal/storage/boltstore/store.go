// Package boltstore persists imported area documents in a single bbolt file.
package boltstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/cory-johannsen/rotimport/internal/importer"
)

var _ importer.Sink = (*Store)(nil)

// ErrNotFound is returned when a key has no stored document.
var ErrNotFound = errors.New("boltstore: not found")

var (
	bucketAreas   = []byte("areas")
	bucketMobiles = []byte("mobiles")
)

// Store is an importer.Sink backed by bbolt. Areas are keyed by vnum string,
// mobiles by 8-byte big-endian vnum so cursor order is numeric.
type Store struct {
	bolt *bbolt.DB
}

// Open opens or creates the bbolt file at path and ensures all buckets exist.
// A zero timeout waits indefinitely for the file lock.
//
// Postcondition: returns an open Store or a non-nil error.
func Open(path string, timeout time.Duration) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("boltstore: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketAreas, bucketMobiles} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("boltstore: create buckets: %w", err)
	}
	return &Store{bolt: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	if s.bolt != nil {
		return s.bolt.Close()
	}
	return nil
}

// Path returns the filesystem path of the underlying bbolt database.
func (s *Store) Path() string {
	if s.bolt != nil {
		return s.bolt.Path()
	}
	return ""
}

// WriteArea stores the area document under its vnum, replacing any earlier one.
func (s *Store) WriteArea(_ context.Context, area *importer.Area) error {
	data, err := json.Marshal(area)
	if err != nil {
		return fmt.Errorf("boltstore: encode area %q: %w", area.Vnum, err)
	}
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketAreas).Put([]byte(area.Vnum), data)
	})
}

// WriteMobile stores the mobile document under its vnum, replacing any earlier one.
func (s *Store) WriteMobile(_ context.Context, mobile *importer.Mobile) error {
	data, err := json.Marshal(mobile)
	if err != nil {
		return fmt.Errorf("boltstore: encode mobile %d: %w", mobile.Vnum, err)
	}
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMobiles).Put(vnumToKey(mobile.Vnum), data)
	})
}

// GetArea loads and validates the area stored under vnum.
func (s *Store) GetArea(vnum string) (*importer.Area, error) {
	var data []byte
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketAreas).Get([]byte(vnum))
		if v == nil {
			return ErrNotFound
		}
		// v is only valid inside the transaction.
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return importer.DecodeArea(data)
}

// GetMobile loads the mobile stored under vnum.
func (s *Store) GetMobile(vnum int) (*importer.Mobile, error) {
	var m importer.Mobile
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketMobiles).Get(vnumToKey(vnum))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &m)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// AreaVnums lists stored area vnums in key order.
func (s *Store) AreaVnums() ([]string, error) {
	var vnums []string
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketAreas).ForEach(func(k, _ []byte) error {
			vnums = append(vnums, string(k))
			return nil
		})
	})
	return vnums, err
}

// MobileVnums lists stored mobile vnums in ascending numeric order.
func (s *Store) MobileVnums() ([]int, error) {
	var vnums []int
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMobiles).ForEach(func(k, _ []byte) error {
			vnums = append(vnums, keyToVnum(k))
			return nil
		})
	})
	return vnums, err
}

// vnumToKey offsets by 1<<32 so keys sort in vnum order across the int32 range.
func vnumToKey(vnum int) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(int64(vnum)+1<<32))
	return buf
}

func keyToVnum(key []byte) int {
	return int(int64(binary.BigEndian.Uint64(key)) - 1<<32)
}
