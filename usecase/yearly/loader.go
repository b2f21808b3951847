// Package yearly fetches and summarizes patent applications one year at a
// time, and renders the yearly maps and the time series across years.
package yearly

import (
	"context"
	"sync"

	"github.com/patentdata/pdk"
	"github.com/patentdata/pdk/aggregate"
	"github.com/patentdata/pdk/cache"
	"github.com/patentdata/pdk/patentsview"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Loader makes sure the quarters of a year are cached and summarizes them.
type Loader struct {
	Fetcher *patentsview.Fetcher
	Store   pdk.Store
	Log     pdk.Logger

	// Concurrency is the number of years summarized at once.
	Concurrency int
	AggOpts     []aggregate.Option
}

// NewLoader gets a Loader which caches in the fetcher's store.
func NewLoader(f *patentsview.Fetcher) *Loader {
	return &Loader{
		Fetcher:     f,
		Store:       f.Store,
		Log:         f.Client.Log,
		Concurrency: 4,
	}
}

// FullYear fetches the quarters of year which are not cached yet. It returns
// the keys of all four quarters in order.
func (l *Loader) FullYear(ctx context.Context, year int) ([]string, error) {
	keys := make([]string, 0, 4)
	for _, q := range Quarters(year) {
		query, err := patentsview.DateRangeQuery(q.From, q.To)
		if err != nil {
			return nil, errors.Wrapf(err, "building query for %s", q.Key)
		}
		if _, err := l.Fetcher.Get(ctx, q.Key, query, patentsview.DateRangeFields); err != nil {
			return nil, errors.Wrapf(err, "getting %s", q.Key)
		}
		keys = append(keys, q.Key)
	}
	return keys, nil
}

// Summarize builds the summary of one year from the store. Every quarter
// must already be cached.
func (l *Loader) Summarize(year int) (*aggregate.Summary, error) {
	keys := make([]string, 0, 4)
	for _, q := range Quarters(year) {
		keys = append(keys, q.Key)
	}
	src, err := cache.Source(l.Store, keys...)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %d", year)
	}
	s, err := aggregate.Summarize(src, l.AggOpts...)
	return s, errors.Wrapf(err, "summarizing %d", year)
}

// Load fetches every year in turn, since the API is rate limited, then
// summarizes the years concurrently.
func (l *Loader) Load(ctx context.Context, years []int) (map[int]*aggregate.Summary, error) {
	for _, y := range years {
		if _, err := l.FullYear(ctx, y); err != nil {
			return nil, errors.Wrapf(err, "fetching %d", y)
		}
	}

	l.Log.Printf("loading data from store")
	var (
		mu        sync.Mutex
		summaries = make(map[int]*aggregate.Summary, len(years))
	)
	eg, ctx := errgroup.WithContext(ctx)
	if l.Concurrency > 0 {
		eg.SetLimit(l.Concurrency)
	}
	for _, y := range years {
		y := y
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := l.Summarize(y)
			if err != nil {
				return err
			}
			mu.Lock()
			summaries[y] = s
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}
