package file

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/patentdata/pdk"
	"github.com/pkg/errors"
)

// Ext is the extension of every cache file.
const Ext = ".json"

// Store is a pdk.Store which keeps each value in its own JSON file,
// <dir>/<key>.json.
type Store struct {
	dir string
}

// NewStore gets a Store rooted at dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "creating data dir")
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file name for key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+Ext)
}

// Has implements pdk.Store.
func (s *Store) Has(key string) (bool, error) {
	_, err := os.Stat(s.Path(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, "statting %s", key)
}

// Get implements pdk.Store.
func (s *Store) Get(key string, v interface{}) error {
	f, err := os.Open(s.Path(key))
	if os.IsNotExist(err) {
		return errors.Wrap(pdk.ErrNotFound, key)
	} else if err != nil {
		return errors.Wrapf(err, "opening %s", key)
	}
	defer f.Close()
	return errors.Wrapf(json.NewDecoder(f).Decode(v), "decoding %s", key)
}

// Put implements pdk.Store. The value is written to a temporary file which is
// then renamed into place, so readers never see a partial value.
func (s *Store) Put(key string, v interface{}) error {
	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "creating temp file for %s", key)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename
	if err := json.NewEncoder(tmp).Encode(v); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "encoding %s", key)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", key)
	}
	return errors.Wrapf(os.Rename(tmp.Name(), s.Path(key)), "renaming %s", key)
}

// Keys lists the keys in the store in lexical order.
func (s *Store) Keys() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*"+Ext))
	if err != nil {
		return nil, errors.Wrap(err, "listing data dir")
	}
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		keys = append(keys, strings.TrimSuffix(filepath.Base(m), Ext))
	}
	sort.Strings(keys)
	return keys, nil
}

// Close implements pdk.Store.
func (s *Store) Close() error { return nil }
