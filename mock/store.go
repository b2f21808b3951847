package mock

import (
	"sync"

	"github.com/goccy/go-json"
	"github.com/patentdata/pdk"
	"github.com/pkg/errors"
)

// Store is an in-memory pdk.Store. Values are JSON encoded on Put so that
// Get behaves like the real stores.
type Store struct {
	mu   sync.Mutex
	Data map[string][]byte
	Puts int
}

// NewStore gets an empty Store.
func NewStore() *Store {
	return &Store{Data: make(map[string][]byte)}
}

// Has implements pdk.Store.
func (s *Store) Has(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Data[key]
	return ok, nil
}

// Get implements pdk.Store.
func (s *Store) Get(key string, v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.Data[key]
	if !ok {
		return errors.Wrap(pdk.ErrNotFound, key)
	}
	return json.Unmarshal(data, v)
}

// Put implements pdk.Store.
func (s *Store) Put(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Data[key] = data
	s.Puts++
	return nil
}

// Close implements pdk.Store.
func (s *Store) Close() error { return nil }
