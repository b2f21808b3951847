package pdk

import (
	"io"
	"sort"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Dataset holds every page fetched for a single query, keyed by page number
// starting at 1. It serializes to a JSON object with string keys, which is
// the on-disk format of a cached query.
type Dataset map[int]*Page

// PageNumbers returns the page numbers of the dataset in ascending order.
func (d Dataset) PageNumbers() []int {
	nums := make([]int, 0, len(d))
	for n := range d {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// Pages returns the pages of the dataset in page order.
func (d Dataset) Pages() []*Page {
	pages := make([]*Page, 0, len(d))
	for _, n := range d.PageNumbers() {
		pages = append(pages, d[n])
	}
	return pages
}

// NumPatents returns the number of patent records across all pages.
func (d Dataset) NumPatents() int {
	n := 0
	for _, p := range d {
		if p != nil {
			n += len(p.Patents)
		}
	}
	return n
}

// Folds holds several datasets which were fetched as separate queries but
// belong together, e.g. the chunked patent number queries making up one
// citation layer. Folds are keyed by chunk index starting at 0.
type Folds map[int]Dataset

// Indexes returns the fold indexes in ascending order.
func (f Folds) Indexes() []int {
	idxs := make([]int, 0, len(f))
	for i := range f {
		idxs = append(idxs, i)
	}
	sort.Ints(idxs)
	return idxs
}

// Pages returns all pages of all folds, fold by fold, each in page order.
func (f Folds) Pages() []*Page {
	pages := make([]*Page, 0)
	for _, i := range f.Indexes() {
		pages = append(pages, f[i].Pages()...)
	}
	return pages
}

// DecodePages reads a cached Dataset or Folds value from r and returns its
// pages in order. The two are told apart by looking at the first level
// values: a Dataset holds pages, a Folds holds datasets.
func DecodePages(r io.Reader) ([]*Page, error) {
	raw := map[int]json.RawMessage{}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decoding cached value")
	}
	idxs := make([]int, 0, len(raw))
	for i := range raw {
		idxs = append(idxs, i)
	}
	sort.Ints(idxs)

	pages := make([]*Page, 0, len(raw))
	for _, i := range idxs {
		probe := map[string]json.RawMessage{}
		if err := json.Unmarshal(raw[i], &probe); err != nil {
			return nil, errors.Wrapf(err, "decoding entry %d", i)
		}
		if isPage(probe) {
			p := &Page{}
			if err := json.Unmarshal(raw[i], p); err != nil {
				return nil, errors.Wrapf(err, "decoding page %d", i)
			}
			pages = append(pages, p)
			continue
		}
		ds := Dataset{}
		if err := json.Unmarshal(raw[i], &ds); err != nil {
			return nil, errors.Wrapf(err, "decoding fold %d", i)
		}
		pages = append(pages, ds.Pages()...)
	}
	return pages, nil
}

func isPage(m map[string]json.RawMessage) bool {
	for _, k := range []string{"patents", "count", "total_patent_count"} {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}
