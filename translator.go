package pdk

import (
	"sync"

	"github.com/pkg/errors"
)

// Translator assigns dense integer ids to string keys, separately for each
// named table, and maps ids back to keys. Ids are handed out in the order keys
// are first seen, starting at 0, so they can index a slice built alongside.
// Implementations should be threadsafe.
type Translator interface {
	Get(table string, id uint64) (string, error)
	GetID(table string, key string) (uint64, error)
}

// TableTranslator is the single table version of Translator. Typically a
// Translator includes a TableTranslator for each table.
type TableTranslator interface {
	Get(id uint64) (string, error)
	GetID(key string) (uint64, error)
	Lookup(key string) (uint64, bool)
	Len() int
}

// MapTranslator is an in memory Translator.
type MapTranslator struct {
	lock   sync.RWMutex
	tables map[string]*MapTableTranslator
}

// NewMapTranslator returns an empty MapTranslator.
func NewMapTranslator() *MapTranslator {
	return &MapTranslator{
		tables: make(map[string]*MapTableTranslator),
	}
}

// Table returns the translator for a single table, creating it if needed.
func (m *MapTranslator) Table(table string) *MapTableTranslator {
	m.lock.RLock()
	if mt, ok := m.tables[table]; ok {
		m.lock.RUnlock()
		return mt
	}
	m.lock.RUnlock()
	m.lock.Lock()
	defer m.lock.Unlock()
	if mt, ok := m.tables[table]; ok {
		return mt
	}
	m.tables[table] = NewMapTableTranslator()
	return m.tables[table]
}

// Get returns the key previously mapped to id in table.
func (m *MapTranslator) Get(table string, id uint64) (string, error) {
	key, err := m.Table(table).Get(id)
	if err != nil {
		return "", errors.Wrapf(err, "table '%v', id %v", table, id)
	}
	return key, nil
}

// GetID returns the id for key in table, allocating a new one if the key has
// not been seen.
func (m *MapTranslator) GetID(table string, key string) (id uint64, err error) {
	return m.Table(table).GetID(key)
}

// MapTableTranslator is an in memory TableTranslator backed by a sync.Map and
// a slice.
type MapTableTranslator struct {
	m sync.Map

	n *Nexter

	l sync.RWMutex
	s []string
}

// NewMapTableTranslator returns an empty MapTableTranslator.
func NewMapTableTranslator() *MapTableTranslator {
	return &MapTableTranslator{
		n: NewNexter(),
		s: make([]string, 0),
	}
}

// Get returns the key mapped to id.
func (m *MapTableTranslator) Get(id uint64) (string, error) {
	m.l.RLock()
	defer m.l.RUnlock()
	if id >= uint64(len(m.s)) {
		return "", errors.Errorf("unknown id %d", id)
	}
	return m.s[id], nil
}

// Lookup returns the id for key without allocating one.
func (m *MapTableTranslator) Lookup(key string) (uint64, bool) {
	idv, ok := m.m.Load(key)
	if !ok {
		return 0, false
	}
	return idv.(uint64), true
}

// GetID returns the id for key, allocating the next id if the key is new.
func (m *MapTableTranslator) GetID(key string) (id uint64, err error) {
	if id, ok := m.Lookup(key); ok {
		return id, nil
	}
	m.l.Lock()
	defer m.l.Unlock()
	if id, ok := m.Lookup(key); ok {
		return id, nil
	}
	nextid := m.n.Next()
	m.s = append(m.s, key)
	if uint64(len(m.s)) != nextid+1 {
		return 0, errors.Errorf("unexpected length of key slice, nextid: %d, len: %d", nextid, len(m.s))
	}
	m.m.Store(key, nextid)
	return nextid, nil
}

// Len returns the number of keys mapped so far.
func (m *MapTableTranslator) Len() int {
	m.l.RLock()
	defer m.l.RUnlock()
	return len(m.s)
}

// Keys returns all keys in id order.
func (m *MapTableTranslator) Keys() []string {
	m.l.RLock()
	defer m.l.RUnlock()
	keys := make([]string, len(m.s))
	copy(keys, m.s)
	return keys
}
