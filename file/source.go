package file

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/patentdata/pdk"
	"github.com/pkg/errors"
)

// Source is a pdk.Source which replays cached datasets from files on disk.
// Files are read in name order and the pages of each file in page order.
type Source struct {
	rawSource *RawSource
	records   chan record
}

// SrcOption is a functional option for the file Source.
type SrcOption func(s *Source) error

// OptSrcPath sets the path name for the file or directory to use for source
// data. Only .json files in a directory are read.
func OptSrcPath(pathname string) SrcOption {
	return func(s *Source) (err error) {
		s.rawSource, err = NewRawSource(pathname)
		if err != nil {
			return errors.Wrap(err, "getting raw source")
		}
		return nil
	}
}

// OptSrcKeys reads the given keys of a Store.
func OptSrcKeys(store *Store, keys ...string) SrcOption {
	return func(s *Source) error {
		files := make([]string, 0, len(keys))
		for _, k := range keys {
			files = append(files, store.Path(k))
		}
		s.rawSource = newRawSourceFiles(files)
		return nil
	}
}

func (s *Source) run() {
	reader, err := s.rawSource.NextReader()
	for ; err == nil; reader, err = s.rawSource.NextReader() {
		pages, derr := pdk.DecodePages(reader)
		reader.Close()
		if derr != nil {
			s.records <- record{err: errors.Wrapf(derr, "reading %s", reader.Name())}
			close(s.records)
			return
		}
		for _, p := range pages {
			s.records <- record{page: p}
		}
	}
	if err != io.EOF {
		s.records <- record{err: errors.Wrap(err, "getting next reader")}
	}
	close(s.records)
}

// NewSource gets a new file source which will replay cached data from a file
// or all cache files in a directory.
func NewSource(opts ...SrcOption) (*Source, error) {
	s := &Source{
		records: make(chan record, 100),
	}
	for _, opt := range opts {
		err := opt(s)
		if err != nil {
			return nil, err
		}
	}
	if s.rawSource == nil {
		return nil, errors.New("no path or keys given")
	}
	go s.run()
	return s, nil
}

// Record implements pdk.Source.
func (s *Source) Record() (*pdk.Page, error) {
	rec, ok := <-s.records
	if !ok {
		return nil, io.EOF
	}
	return rec.page, rec.err
}

type record struct {
	page *pdk.Page
	err  error
}

// RawSource hands out readers for a fixed list of files.
type RawSource struct {
	files   []string
	fileIdx *uint64
}

// NewRawSource gets a RawSource for a single file or every .json file in a
// directory.
func NewRawSource(pathname string) (*RawSource, error) {
	info, err := os.Stat(pathname)
	if err != nil {
		return nil, errors.Wrap(err, "statting path")
	}
	if !info.IsDir() {
		return newRawSourceFiles([]string{pathname}), nil
	}
	entries, err := os.ReadDir(pathname)
	if err != nil {
		return nil, errors.Wrap(err, "reading directory")
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Ext) {
			continue
		}
		files = append(files, filepath.Join(pathname, e.Name()))
	}
	sort.Strings(files)
	return newRawSourceFiles(files), nil
}

func newRawSourceFiles(files []string) *RawSource {
	fileIdx := uint64(0)
	return &RawSource{
		files:   files,
		fileIdx: &fileIdx,
	}
}

type namedFile struct {
	*os.File
}

func (m *namedFile) Name() string {
	return filepath.Base(m.File.Name())
}

// NextReader returns a reader for the next file, or io.EOF when there are no
// more.
func (s *RawSource) NextReader() (pdk.NamedReadCloser, error) {
	idx := atomic.AddUint64(s.fileIdx, 1) - 1
	if int(idx) >= len(s.files) {
		return nil, io.EOF
	}

	file, err := os.Open(s.files[idx])
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", s.files[idx])
	}

	return &namedFile{file}, nil
}
