package patentsview_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/patentdata/pdk"
	"github.com/patentdata/pdk/cache"
	"github.com/patentdata/pdk/mock"
	"github.com/patentdata/pdk/patentsview"
	"github.com/patentdata/pdk/test"
	"github.com/stretchr/testify/require"
)

func TestMainRun(t *testing.T) {
	var hits int32
	srv := pagingServer(t, &hits, test.Page(test.Patent("9000001", "utility")))
	defer srv.Close()

	log := &mock.Logger{}
	m := patentsview.NewMain()
	m.Key = "2015q1"
	m.From, m.To = "2015-01-01", "2015-03-31"
	m.Store = cache.KindBolt
	m.DataDir = t.TempDir()
	m.URL = srv.URL
	m.PageInterval = 0
	m.RetryDelay = time.Millisecond
	m.Log = log
	require.NoError(t, m.Run())
	require.NoError(t, m.Run())
	require.EqualValues(t, 1, atomic.LoadInt32(&hits))
	require.True(t, log.Contains("saved 2015q1"))
	require.True(t, log.Contains("2015q1 already on file"))

	store, err := cache.Open(cache.Config{Kind: cache.KindBolt, Dir: m.DataDir})
	require.NoError(t, err)
	defer store.Close()
	ds := pdk.Dataset{}
	require.NoError(t, store.Get("2015q1", &ds))
	require.Equal(t, 1, ds.NumPatents())
}

func TestMainRunErrors(t *testing.T) {
	m := patentsview.NewMain()
	m.DataDir = t.TempDir()
	require.Error(t, m.Run(), "no key")

	m.Key = "k"
	require.Error(t, m.Run(), "no query")
}
