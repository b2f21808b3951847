package yearly

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/patentdata/pdk"
	"github.com/patentdata/pdk/aggregate"
	"github.com/patentdata/pdk/cache"
	"github.com/patentdata/pdk/csv"
	"github.com/patentdata/pdk/patentsview"
	"github.com/patentdata/pdk/usecase/export"
	"github.com/patentdata/pdk/viz"
	"github.com/pkg/errors"
)

// ChartTopK is the number of largest assignees whose inventors are charted
// per class in the time series.
const ChartTopK = 10

// Output files besides the maps.
const (
	SummaryDir     = "summaries"
	TimeSeriesJSON = "timeseries.json"
)

// SummaryPath returns where the summary of year is written under dir.
func SummaryPath(dir string, year int) string {
	return filepath.Join(dir, SummaryDir, fmt.Sprintf("%d.json", year))
}

// Main fetches, summarizes and renders a range of years.
type Main struct {
	From int `help:"First year to load."`
	To   int `help:"Last year to load, inclusive."`

	Store    string `help:"Cache backend: file, bolt, leveldb or s3."`
	DataDir  string `help:"Directory for the file, bolt and leveldb caches."`
	S3Region string `help:"AWS region of the s3 cache."`
	S3Bucket string `help:"Bucket of the s3 cache."`
	S3Prefix string `help:"Key prefix of the s3 cache."`

	URL           string        `help:"PatentsView patents query endpoint."`
	PageInterval  time.Duration `help:"Minimum time between two API requests."`
	RetryAttempts uint          `help:"Attempts per page before giving up."`
	RetryDelay    time.Duration `help:"Initial backoff after a failed request."`
	MaxPages      int           `help:"Maximum pages per quarter. 0 means no limit."`

	OutDir           string `help:"Directory to write maps, charts and summaries to."`
	TopK             int    `help:"Number of largest assignees drawn on the assignee maps. 0 skips them."`
	Zoom             string `help:"Center maps on lat,lon,zoom instead of the world view."`
	GeohashPrecision int    `help:"Snap inventor locations to geohash cells of this precision. 0 keeps exact locations."`
	Concurrency      int    `help:"Number of years summarized at once."`
	ExportDir        string `help:"Also export the flattened tables as CSV into this directory."`
	Sparklines       bool   `help:"Print sparklines of the time series."`

	Log    pdk.Logger  `flag:"-"`
	Stats  pdk.Statter `flag:"-"`
	Stdout io.Writer   `flag:"-"`
}

// NewMain gets a Main with default values.
func NewMain() *Main {
	return &Main{
		From:          2010,
		To:            2019,
		Store:         cache.KindFile,
		DataDir:       "data",
		URL:           patentsview.DefaultURL,
		PageInterval:  patentsview.DefaultPageInterval,
		RetryAttempts: patentsview.DefaultRetryAttempts,
		RetryDelay:    patentsview.DefaultRetryDelay,
		OutDir:        "output",
		TopK:          10,
		Concurrency:   4,
		Sparklines:    true,

		Log:    pdk.NopLogger{},
		Stats:  pdk.NopStatter{},
		Stdout: os.Stdout,
	}
}

// Run runs Main.
func (m *Main) Run() error {
	return m.RunContext(context.Background())
}

// RunContext runs Main until ctx is done.
func (m *Main) RunContext(ctx context.Context) error {
	if m.From > m.To {
		return errors.Errorf("from year %d is after to year %d", m.From, m.To)
	}
	zoom, err := viz.ParseZoom(m.Zoom)
	if err != nil {
		return errors.Wrap(err, "parsing zoom")
	}
	store, err := cache.Open(cache.Config{
		Kind:     m.Store,
		Dir:      m.DataDir,
		S3Region: m.S3Region,
		S3Bucket: m.S3Bucket,
		S3Prefix: m.S3Prefix,
	})
	if err != nil {
		return errors.Wrap(err, "opening cache")
	}
	defer store.Close()

	client := patentsview.NewClient(
		patentsview.OptClientURL(m.URL),
		patentsview.OptClientPageInterval(m.PageInterval),
		patentsview.OptClientRetry(m.RetryAttempts, m.RetryDelay),
		patentsview.OptClientLogger(m.Log),
		patentsview.OptClientStats(m.Stats),
	)
	fetcher := patentsview.NewFetcher(client, store)
	fetcher.MaxPages = m.MaxPages

	loader := NewLoader(fetcher)
	loader.Concurrency = m.Concurrency
	loader.AggOpts = []aggregate.Option{
		aggregate.OptGeohashPrecision(m.GeohashPrecision),
		aggregate.OptLogger(m.Log),
		aggregate.OptStats(m.Stats),
	}

	years := Years(m.From, m.To)
	summaries, err := loader.Load(ctx, years)
	if err != nil {
		return errors.Wrap(err, "loading years")
	}

	usTop := make([]int, 0, len(years))
	nonUSTop := make([]int, 0, len(years))
	for _, y := range years {
		s := summaries[y]
		if err := writeJSON(SummaryPath(m.OutDir, y), s); err != nil {
			return errors.Wrapf(err, "writing summary of %d", y)
		}
		for _, view := range viz.Views {
			k := m.TopK
			if view == viz.ViewAll {
				k = 0
			}
			if _, err := viz.RenderYear(m.OutDir, s, view, y, k, zoom); err != nil {
				return errors.Wrapf(err, "rendering %s %d", view, y)
			}
		}
		usTop = append(usTop, aggregate.TopInventors(s, aggregate.ClassUS, ChartTopK))
		nonUSTop = append(nonUSTop, aggregate.TopInventors(s, aggregate.ClassNonUS, ChartTopK))
		m.Log.Printf("%d: %d patents, %d inventors, %d citations, %d assignees", y, s.NumPatents, s.NumInventors, s.NumCitations, len(s.Assignees))
	}

	ts, err := aggregate.TimeSeries(years, summaries)
	if err != nil {
		return errors.Wrap(err, "building time series")
	}
	if err := writeJSON(filepath.Join(m.OutDir, TimeSeriesJSON), ts); err != nil {
		return errors.Wrap(err, "writing time series")
	}
	path, err := viz.TimeSeriesChart(m.OutDir, ts, usTop, nonUSTop)
	if err != nil {
		return errors.Wrap(err, "writing time series chart")
	}
	m.Log.Printf("wrote %s", path)
	if m.Sparklines {
		fmt.Fprint(m.Stdout, viz.Sparklines(ts))
	}

	if m.ExportDir != "" {
		if err := m.exportTables(store, years); err != nil {
			return errors.Wrap(err, "exporting tables")
		}
	}
	return nil
}

func (m *Main) exportTables(store pdk.Store, years []int) error {
	keys := make([]string, 0, len(years)*4)
	for _, y := range years {
		for _, q := range Quarters(y) {
			keys = append(keys, q.Key)
		}
	}
	sink, err := csv.NewSink(m.ExportDir)
	if err != nil {
		return errors.Wrap(err, "getting csv sink")
	}
	return export.Tables(store, keys, sink, m.Concurrency, m.Log, m.Stats)
}

func writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating dir")
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "writing %s", path)
}
