package patentsview

import (
	"context"
	"io"

	"github.com/patentdata/pdk"
	"github.com/pkg/errors"
)

// Fetch drains a Source for q into a Dataset keyed by page number. The
// dataset is only returned if every page was fetched successfully.
func Fetch(ctx context.Context, client *Client, q Query, fields []string, maxPages int) (pdk.Dataset, error) {
	src := NewSource(ctx, client, q, fields)
	src.MaxPages = maxPages
	ds := pdk.Dataset{}
	for n := 1; ; n++ {
		page, err := src.Record()
		if err == io.EOF {
			return ds, nil
		} else if err != nil {
			return nil, err
		}
		ds[n] = page
	}
}

// Fetcher fetches query results into a Store, skipping keys which are
// already there.
type Fetcher struct {
	Client *Client
	Store  pdk.Store

	// MaxPages limits each query. Zero means no limit.
	MaxPages int
}

// NewFetcher gets a Fetcher.
func NewFetcher(client *Client, store pdk.Store) *Fetcher {
	return &Fetcher{
		Client: client,
		Store:  store,
	}
}

// Get makes sure the results of q are stored under key, fetching them if
// necessary. It reports whether a fetch took place.
func (f *Fetcher) Get(ctx context.Context, key string, q Query, fields []string) (fetched bool, err error) {
	has, err := f.Store.Has(key)
	if err != nil {
		return false, errors.Wrapf(err, "checking store for %s", key)
	}
	if has {
		f.Client.Log.Printf("%s already on file", key)
		f.Client.Stats.Count("fetch.cached", 1, 1)
		return false, nil
	}
	ds, err := Fetch(ctx, f.Client, q, fields, f.MaxPages)
	if err != nil {
		return false, errors.Wrapf(err, "fetching %s", key)
	}
	f.Client.Log.Printf("saving %s (%d pages, %d patents)", key, len(ds), ds.NumPatents())
	if err := f.Store.Put(key, ds); err != nil {
		return false, errors.Wrapf(err, "saving %s", key)
	}
	f.Client.Stats.Count("fetch.fetched", 1, 1)
	return true, nil
}

// Dataset returns the dataset stored under key, fetching it first if
// necessary.
func (f *Fetcher) Dataset(ctx context.Context, key string, q Query, fields []string) (pdk.Dataset, error) {
	if _, err := f.Get(ctx, key, q, fields); err != nil {
		return nil, err
	}
	ds := pdk.Dataset{}
	if err := f.Store.Get(key, &ds); err != nil {
		return nil, errors.Wrapf(err, "loading %s", key)
	}
	return ds, nil
}
