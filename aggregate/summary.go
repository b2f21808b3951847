// Package aggregate folds result pages into the statistics the reports are
// drawn from: patent type counts, inventor locations, citation counts and a
// per-assignee breakdown.
package aggregate

import (
	"io"
	"sort"

	"github.com/patentdata/pdk"
	"github.com/patentdata/pdk/geohash"
	"github.com/pkg/errors"
)

// Assignee accumulates everything known about one assignee over the pages
// seen so far.
type Assignee struct {
	KeyID             string  `json:"assignee_key_id"`
	Organization      string  `json:"assignee_organization"`
	Type              string  `json:"assignee_type"`
	Patents           int     `json:"patents"`
	Citations         int     `json:"citations"`
	InventorLocations Counter `json:"inventor_locations"`
}

// Discarded counts records which could not be used.
type Discarded struct {
	Data      int `json:"data"`
	Citations int `json:"citations"`
}

// Summary is the statistic for a set of pages, usually one year.
type Summary struct {
	PatentTypes  map[string]int `json:"patent_types"`
	Locations    Counter        `json:"locations"`
	NumPatents   int            `json:"num_patents"`
	NumCitations int            `json:"num_citations"`
	NumInventors int            `json:"num_inventors"`
	// Assignees is sorted by Patents, descending. Assignees with equal counts
	// stay in the order they were first seen.
	Assignees []*Assignee `json:"assignees"`
	Discarded Discarded   `json:"discarded"`
}

// TypeShare returns the proportion of patents of type t, or 0 if there are
// no patents.
func (s *Summary) TypeShare(t string) float64 {
	if s.NumPatents == 0 {
		return 0
	}
	return float64(s.PatentTypes[t]) / float64(s.NumPatents)
}

// Aggregator builds a Summary one page at a time. It is not safe for
// concurrent use.
type Aggregator struct {
	Log   pdk.Logger
	Stats pdk.Statter

	binner *geohash.Binner

	types     map[string]int
	locations Counter
	inventors map[string]struct{}
	cited     map[string]struct{}
	keys      *pdk.MapTableTranslator
	assignees []*Assignee
	discarded Discarded
}

// Option configures an Aggregator.
type Option func(a *Aggregator) error

// OptGeohashPrecision snaps inventor locations to the center of their geohash
// cell before counting. 0 keeps exact locations.
func OptGeohashPrecision(p int) Option {
	return func(a *Aggregator) (err error) {
		a.binner, err = geohash.NewBinner(p)
		return errors.Wrap(err, "getting binner")
	}
}

// OptLogger sets the logger.
func OptLogger(l pdk.Logger) Option {
	return func(a *Aggregator) error {
		a.Log = l
		return nil
	}
}

// OptStats sets the statter.
func OptStats(s pdk.Statter) Option {
	return func(a *Aggregator) error {
		a.Stats = s
		return nil
	}
}

// NewAggregator gets an empty Aggregator.
func NewAggregator(opts ...Option) (*Aggregator, error) {
	a := &Aggregator{
		Log:       pdk.NopLogger{},
		Stats:     pdk.NopStatter{},
		types:     make(map[string]int),
		locations: make(Counter),
		inventors: make(map[string]struct{}),
		cited:     make(map[string]struct{}),
		keys:      pdk.NewMapTableTranslator(),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Add folds a page into the aggregate.
func (a *Aggregator) Add(page *pdk.Page) error {
	if page.Empty() {
		a.Log.Printf("empty page")
		a.Stats.Count("aggregate.empty_pages", 1, 1)
		return nil
	}
	for i := range page.Patents {
		if err := a.addPatent(&page.Patents[i]); err != nil {
			return errors.Wrapf(err, "adding patent %s", pdk.Str(page.Patents[i].Number))
		}
	}
	a.Stats.Count("aggregate.patents", int64(len(page.Patents)), 1)
	return nil
}

func (a *Aggregator) addPatent(p *pdk.Patent) error {
	if !p.Countable() {
		a.discarded.Data++
		return nil
	}
	a.types[p.TypeName()]++

	attached := make([]*Assignee, 0, len(p.Assignees))
	for _, as := range p.Assignees {
		key, typ := pdk.Str(as.KeyID), pdk.Str(as.Type)
		if key == "" || typ == "" {
			a.discarded.Data++
			continue
		}
		id, err := a.keys.GetID(key)
		if err != nil {
			return errors.Wrap(err, "getting assignee id")
		}
		if int(id) == len(a.assignees) {
			a.assignees = append(a.assignees, &Assignee{
				KeyID:             key,
				Organization:      pdk.Str(as.Organization),
				Type:              typ,
				InventorLocations: make(Counter),
			})
		}
		asg := a.assignees[id]
		asg.Patents++
		attached = append(attached, asg)
	}

	locs := make(Counter)
	for _, inv := range p.Inventors {
		loc, ok := inv.Location()
		key := pdk.Str(inv.KeyID)
		if !ok || key == "" {
			if len(attached) > 0 {
				a.discarded.Data++
			}
			continue
		}
		loc = a.binner.Bin(loc)
		a.locations[loc]++
		a.inventors[key] = struct{}{}
		locs[loc]++
	}
	for _, asg := range attached {
		asg.InventorLocations.Add(locs)
	}

	cites := 0
	for _, c := range p.CitedPatents {
		n := pdk.Str(c.Number)
		if n == "" {
			a.discarded.Citations++
			continue
		}
		a.cited[n] = struct{}{}
		cites++
	}
	for _, asg := range attached {
		asg.Citations += cites
	}
	return nil
}

// Summary returns the statistic for everything added so far. The returned
// Summary shares assignee records with the Aggregator, so adding more pages
// afterwards changes them.
func (a *Aggregator) Summary() *Summary {
	s := &Summary{
		PatentTypes:  make(map[string]int, len(a.types)),
		Locations:    make(Counter, len(a.locations)),
		NumCitations: len(a.cited),
		NumInventors: len(a.inventors),
		Assignees:    make([]*Assignee, len(a.assignees)),
		Discarded:    a.discarded,
	}
	for t, n := range a.types {
		s.PatentTypes[t] = n
		s.NumPatents += n
	}
	s.Locations.Add(a.locations)
	copy(s.Assignees, a.assignees)
	sort.SliceStable(s.Assignees, func(i, j int) bool {
		return s.Assignees[i].Patents > s.Assignees[j].Patents
	})
	return s
}

// Summarize drains src into a Summary.
func Summarize(src pdk.Source, opts ...Option) (*Summary, error) {
	a, err := NewAggregator(opts...)
	if err != nil {
		return nil, err
	}
	for {
		page, err := src.Record()
		if err == io.EOF {
			return a.Summary(), nil
		} else if err != nil {
			return nil, errors.Wrap(err, "getting page")
		}
		if err := a.Add(page); err != nil {
			return nil, err
		}
	}
}
