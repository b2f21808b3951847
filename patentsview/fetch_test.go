package patentsview_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/patentdata/pdk"
	"github.com/patentdata/pdk/mock"
	"github.com/patentdata/pdk/patentsview"
	"github.com/patentdata/pdk/test"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	var hits int32
	srv := pagingServer(t, &hits, fullPage("a"), test.Page(test.Patent("b1", "utility")))
	defer srv.Close()

	c := newTestClient(srv.URL, patentsview.OptClientPerPage(2))
	ds, err := patentsview.Fetch(context.Background(), c, patentsview.PatentNumberQuery("x"), nil, 0)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2}, ds.PageNumbers())
	require.Equal(t, 3, ds.NumPatents())
}

func TestFetcherCachesDatasets(t *testing.T) {
	var hits int32
	srv := pagingServer(t, &hits, test.Page(test.Patent("a1", "utility", test.WithCitations("77"))))
	defer srv.Close()

	log := &mock.Logger{}
	store := mock.NewStore()
	f := patentsview.NewFetcher(newTestClient(srv.URL, patentsview.OptClientLogger(log)), store)
	ctx := context.Background()

	fetched, err := f.Get(ctx, "2015q1", patentsview.PatentNumberQuery("x"), nil)
	require.NoError(t, err)
	require.True(t, fetched)

	ds, err := f.Dataset(ctx, "2015q1", patentsview.PatentNumberQuery("x"), nil)
	require.NoError(t, err)
	require.Equal(t, "77", pdk.Str(ds[1].Patents[0].CitedPatents[0].Number))

	require.Equal(t, int32(1), atomic.LoadInt32(&hits))
	require.Equal(t, 1, store.Puts)
	require.True(t, log.Contains("2015q1 already on file"))
}

func TestFetcherDoesNotCachePartialResults(t *testing.T) {
	var hits int32
	srv := pagingServer(t, &hits, fullPage("a"))
	defer srv.Close()

	store := mock.NewStore()
	f := patentsview.NewFetcher(newTestClient(srv.URL, patentsview.OptClientPerPage(2)), store)
	_, err := f.Get(context.Background(), "2015q2", patentsview.PatentNumberQuery("x"), nil)
	require.Error(t, err)
	has, err := store.Has("2015q2")
	require.NoError(t, err)
	require.False(t, has)
}
