// Package boltdb provides a pdk.Store implementation using boltdb. The whole
// cache lives in a single file, which is convenient to copy around.
package boltdb

import (
	"time"

	"github.com/boltdb/bolt"
	"github.com/goccy/go-json"
	"github.com/patentdata/pdk"
	"github.com/pkg/errors"
)

var cacheBucket = []byte("cache")

// Store is a pdk.Store which keeps JSON encoded values in a bolt bucket.
type Store struct {
	Db *bolt.DB
}

// NewStore opens (creating if necessary) the bolt database at filename.
func NewStore(filename string) (*Store, error) {
	db, err := bolt.Open(filename, 0600, &bolt.Options{Timeout: 1 * time.Second, NoGrowSync: true})
	if err != nil {
		return nil, errors.Wrapf(err, "opening db file '%v'", filename)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cacheBucket)
		return errors.Wrap(err, "creating cache bucket")
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ensuring bucket existence")
	}
	return &Store{Db: db}, nil
}

// Has implements pdk.Store.
func (s *Store) Has(key string) (has bool, err error) {
	err = s.Db.View(func(tx *bolt.Tx) error {
		has = tx.Bucket(cacheBucket).Get([]byte(key)) != nil
		return nil
	})
	return has, err
}

// Get implements pdk.Store.
func (s *Store) Get(key string, v interface{}) error {
	return s.Db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket(cacheBucket).Get([]byte(key))
		if val == nil {
			return errors.Wrap(pdk.ErrNotFound, key)
		}
		// val is only valid during the transaction; Unmarshal copies.
		return errors.Wrapf(json.Unmarshal(val, v), "decoding %s", key)
	})
}

// Put implements pdk.Store.
func (s *Store) Put(key string, v interface{}) error {
	val, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", key)
	}
	return s.Db.Update(func(tx *bolt.Tx) error {
		return errors.Wrapf(tx.Bucket(cacheBucket).Put([]byte(key), val), "putting %s", key)
	})
}

// Keys lists every key in the store in byte order.
func (s *Store) Keys() (keys []string, err error) {
	err = s.Db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(cacheBucket).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}

// Close syncs and closes the underlying boltdb.
func (s *Store) Close() error {
	err := s.Db.Sync()
	if err != nil {
		return errors.Wrap(err, "syncing db")
	}
	return s.Db.Close()
}
