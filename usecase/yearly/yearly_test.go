package yearly_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/patentdata/pdk"
	"github.com/patentdata/pdk/aggregate"
	"github.com/patentdata/pdk/csv"
	"github.com/patentdata/pdk/file"
	"github.com/patentdata/pdk/patentsview"
	"github.com/patentdata/pdk/test"
	"github.com/patentdata/pdk/usecase/yearly"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quarterServer answers every date range query with a single short page
// holding one patent, numbered after the first day of the range.
func quarterServer(t *testing.T, hits *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		q := struct {
			And []map[string]map[string]string `json:"_and"`
		}{}
		if !assert.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("q")), &q)) || !assert.Len(t, q.And, 2) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		from := q.And[0]["_gte"]["app_date"]
		page := test.Page(test.Patent(from, "utility",
			test.WithInventor("inv"+from, "40.5", "-75.5"),
			test.WithAssignee("a1", "Acme", "2"),
			test.WithAssignee("a2", "Nippon", "3"),
			test.WithCitations("c"+from),
		))
		assert.NoError(t, json.NewEncoder(w).Encode(page))
	}))
}

func TestQuarters(t *testing.T) {
	qs := yearly.Quarters(2015)
	test.MustBe(t, qs, []yearly.Quarter{
		{Key: "2015q1", From: "2015-01-01", To: "2015-03-31"},
		{Key: "2015q2", From: "2015-04-01", To: "2015-06-30"},
		{Key: "2015q3", From: "2015-07-01", To: "2015-09-30"},
		{Key: "2015q4", From: "2015-10-01", To: "2015-12-31"},
	})
	test.MustBe(t, yearly.Years(2014, 2016), []int{2014, 2015, 2016})
	test.MustBe(t, len(yearly.Years(2016, 2014)), 0)
}

func newLoader(t *testing.T, url string) (*yearly.Loader, *file.Store) {
	store, err := file.NewStore(t.TempDir())
	require.NoError(t, err)
	client := patentsview.NewClient(
		patentsview.OptClientURL(url),
		patentsview.OptClientPageInterval(0),
		patentsview.OptClientRetry(1, time.Millisecond),
	)
	return yearly.NewLoader(patentsview.NewFetcher(client, store)), store
}

func TestFullYearFetchesMissingQuarters(t *testing.T) {
	var hits int32
	srv := quarterServer(t, &hits)
	defer srv.Close()
	loader, store := newLoader(t, srv.URL)

	require.NoError(t, store.Put("2015q2", pdk.Dataset{1: test.Page(test.Patent("cached", "design"))}))

	keys, err := loader.FullYear(context.Background(), 2015)
	require.NoError(t, err)
	require.Equal(t, []string{"2015q1", "2015q2", "2015q3", "2015q4"}, keys)
	require.EqualValues(t, 3, atomic.LoadInt32(&hits))

	ds := pdk.Dataset{}
	require.NoError(t, store.Get("2015q2", &ds))
	require.Equal(t, "cached", pdk.Str(ds[1].Patents[0].Number))
}

func TestLoad(t *testing.T) {
	var hits int32
	srv := quarterServer(t, &hits)
	defer srv.Close()
	loader, _ := newLoader(t, srv.URL)

	summaries, err := loader.Load(context.Background(), []int{2014, 2015})
	require.NoError(t, err)
	require.EqualValues(t, 8, atomic.LoadInt32(&hits))
	require.Len(t, summaries, 2)

	s := summaries[2015]
	require.Equal(t, 4, s.NumPatents)
	require.Equal(t, 4, s.NumInventors)
	require.Equal(t, 4, s.NumCitations)
	require.Len(t, s.Assignees, 2)
	require.Equal(t, "Acme", s.Assignees[0].Organization)
	require.Equal(t, 4, s.Assignees[0].Patents)
	require.Equal(t, aggregate.Counter{{Lat: 40.5, Lon: -75.5}: 4}, s.Locations)

	_, err = loader.Load(context.Background(), []int{2015})
	require.NoError(t, err)
	require.EqualValues(t, 8, atomic.LoadInt32(&hits), "second load is served from the cache")
}

func TestLoadFailsOnAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()
	loader, store := newLoader(t, srv.URL)

	_, err := loader.Load(context.Background(), []int{2015})
	require.Error(t, err)
	keys, err := store.Keys()
	require.NoError(t, err)
	require.Empty(t, keys, "nothing cached")
}

func TestMainRun(t *testing.T) {
	var hits int32
	srv := quarterServer(t, &hits)
	defer srv.Close()

	dir := t.TempDir()
	out := &bytes.Buffer{}
	m := yearly.NewMain()
	m.From, m.To = 2015, 2016
	m.DataDir = filepath.Join(dir, "data")
	m.OutDir = filepath.Join(dir, "out")
	m.ExportDir = filepath.Join(dir, "export")
	m.URL = srv.URL
	m.PageInterval = 0
	m.RetryDelay = time.Millisecond
	m.TopK = 1
	m.Stdout = out
	require.NoError(t, m.Run())

	for _, name := range []string{
		"All_2015.html",
		"US Assignees_2015.html",
		"US Assignees_2015.csv",
		"Non-US Assignees_2016.html",
		"Non-US Assignees_2016.csv",
		"tsplot.html",
		yearly.TimeSeriesJSON,
	} {
		_, err := os.Stat(filepath.Join(m.OutDir, name))
		require.NoError(t, err, name)
	}

	s := &aggregate.Summary{}
	data, err := os.ReadFile(yearly.SummaryPath(m.OutDir, 2016))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, s))
	require.Equal(t, 4, s.NumPatents)

	ts := &aggregate.Series{}
	data, err = os.ReadFile(filepath.Join(m.OutDir, yearly.TimeSeriesJSON))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, ts))
	require.Equal(t, []int{2015, 2016}, ts.Years)
	require.Equal(t, []float64{0.004, 0.004}, ts.Utility)

	require.Contains(t, out.String(), "patents")

	rows, err := csv.ReadTable(csv.Path(m.ExportDir, pdk.TableAssignees))
	require.NoError(t, err)
	require.Len(t, rows, 16)
}

func TestMainRunBadYears(t *testing.T) {
	m := yearly.NewMain()
	m.From, m.To = 2016, 2015
	require.Error(t, m.Run())
}
