package pdk

import (
	"github.com/pkg/errors"
)

// ErrNotFound is returned by Store.Get when nothing is stored under a key.
var ErrNotFound = errors.New("key not found")

// Store is the interface for the keyed cache of fetched data. Values are
// encoded as JSON so that a value written by one Store can be read back by
// another. Implementations should be thread safe.
type Store interface {
	Has(key string) (bool, error)
	// Get decodes the value stored under key into v. It returns an error
	// satisfying IsNotFound if the key is absent.
	Get(key string, v interface{}) error
	Put(key string, v interface{}) error
	Close() error
}

// IsNotFound reports whether err (or its cause) is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Cause(err) == ErrNotFound
}

// Sink is the interface for anything which accepts flattened tables.
// Implementations should be thread safe.
type Sink interface {
	Write(t *Tables) error
	Close() error
}

// MultiSink fans tables out to several sinks.
type MultiSink []Sink

// Write writes t to each sink in turn, stopping at the first error.
func (m MultiSink) Write(t *Tables) error {
	for i, s := range m {
		if err := s.Write(t); err != nil {
			return errors.Wrapf(err, "writing to sink %d", i)
		}
	}
	return nil
}

// Close closes every sink and returns the first error encountered.
func (m MultiSink) Close() error {
	var first error
	for i, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = errors.Wrapf(err, "closing sink %d", i)
		}
	}
	return first
}
