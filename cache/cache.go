// Package cache opens the pdk.Store selected on the command line.
package cache

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/patentdata/pdk"
	"github.com/patentdata/pdk/aws/s3"
	"github.com/patentdata/pdk/boltdb"
	"github.com/patentdata/pdk/file"
	"github.com/patentdata/pdk/leveldb"
	"github.com/pkg/errors"
)

// Store kinds.
const (
	KindFile    = "file"
	KindBolt    = "bolt"
	KindLevelDB = "leveldb"
	KindS3      = "s3"
)

// Config says where cached query results live.
type Config struct {
	Kind string
	// Dir is the data directory for the local kinds. Bolt keeps a single
	// cache.db file in it and leveldb a leveldb subdirectory.
	Dir string

	S3Region string
	S3Bucket string
	S3Prefix string
}

// Open opens the store described by c.
func Open(c Config) (pdk.Store, error) {
	var (
		store pdk.Store
		err   error
	)
	switch c.Kind {
	case KindFile, "":
		store, err = openFile(c)
	case KindBolt:
		store, err = openBolt(c)
	case KindLevelDB:
		store, err = openLevelDB(c)
	case KindS3:
		store, err = openS3(c)
	default:
		return nil, errors.Errorf("unknown store kind '%s'", c.Kind)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s store", c.Kind)
	}
	return store, nil
}

func openFile(c Config) (pdk.Store, error) {
	s, err := file.NewStore(c.Dir)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openBolt(c Config) (pdk.Store, error) {
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return nil, errors.Wrap(err, "creating data dir")
	}
	s, err := boltdb.NewStore(filepath.Join(c.Dir, "cache.db"))
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openLevelDB(c Config) (pdk.Store, error) {
	s, err := leveldb.NewStore(filepath.Join(c.Dir, "leveldb"))
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openS3(c Config) (pdk.Store, error) {
	if c.S3Bucket == "" {
		return nil, errors.New("no bucket given")
	}
	s, err := s3.NewStore(c.S3Region, c.S3Bucket, c.S3Prefix)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Source replays the given keys of store page by page. Stores which are not
// backed by files are read key by key into memory.
func Source(store pdk.Store, keys ...string) (pdk.Source, error) {
	switch st := store.(type) {
	case *file.Store:
		src, err := file.NewSource(file.OptSrcKeys(st, keys...))
		if err != nil {
			return nil, errors.Wrap(err, "getting file source")
		}
		return src, nil
	case *s3.Store:
		src, err := s3.NewSource(st, keys...)
		if err != nil {
			return nil, errors.Wrap(err, "getting s3 source")
		}
		return src, nil
	}
	pages := make([]*pdk.Page, 0)
	for _, k := range keys {
		raw := json.RawMessage{}
		if err := store.Get(k, &raw); err != nil {
			return nil, errors.Wrapf(err, "getting %s", k)
		}
		ps, err := pdk.DecodePages(bytes.NewReader(raw))
		if err != nil {
			return nil, errors.Wrapf(err, "decoding %s", k)
		}
		pages = append(pages, ps...)
	}
	return pdk.NewSliceSource(pages), nil
}
