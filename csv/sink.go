// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

// Package csv exports flattened tables as CSV files and reads them back.
package csv

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"

	"github.com/patentdata/pdk"
	"github.com/pkg/errors"
)

// Ext is the extension of every table file.
const Ext = ".csv"

// Sink is a pdk.Sink which appends each table to <dir>/<table>.csv. Every
// file starts with a header row. Sink is safe for concurrent use.
type Sink struct {
	mu      sync.Mutex
	dir     string
	files   map[string]*os.File
	writers map[string]*csv.Writer
}

// NewSink creates the table files in dir, truncating any previous export,
// and writes their headers.
func NewSink(dir string) (*Sink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "creating export dir")
	}
	s := &Sink{
		dir:     dir,
		files:   make(map[string]*os.File),
		writers: make(map[string]*csv.Writer),
	}
	for _, name := range pdk.TableNames {
		f, err := os.Create(Path(dir, name))
		if err != nil {
			s.Close()
			return nil, errors.Wrapf(err, "creating %s table", name)
		}
		s.files[name] = f
		s.writers[name] = csv.NewWriter(f)
		if err := s.writers[name].Write(pdk.Columns[name]); err != nil {
			s.Close()
			return nil, errors.Wrapf(err, "writing %s header", name)
		}
	}
	return s, nil
}

// Path returns the file name of table in dir.
func Path(dir, table string) string {
	return filepath.Join(dir, table+Ext)
}

// Write implements pdk.Sink.
func (s *Sink) Write(t *pdk.Tables) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range pdk.TableNames {
		w, ok := s.writers[name]
		if !ok {
			return errors.Errorf("%s table is closed", name)
		}
		for _, rec := range t.Records(name) {
			if err := w.Write(rec); err != nil {
				return errors.Wrapf(err, "writing %s", name)
			}
		}
	}
	return nil
}

// Close flushes and closes every table file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var first error
	for name, f := range s.files {
		if w, ok := s.writers[name]; ok {
			w.Flush()
			if err := w.Error(); err != nil && first == nil {
				first = errors.Wrapf(err, "flushing %s", name)
			}
		}
		if err := f.Close(); err != nil && first == nil {
			first = errors.Wrapf(err, "closing %s", name)
		}
	}
	s.files = map[string]*os.File{}
	s.writers = map[string]*csv.Writer{}
	return first
}
