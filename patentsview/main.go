package patentsview

import (
	"context"
	"time"

	"github.com/patentdata/pdk"
	"github.com/patentdata/pdk/cache"
	"github.com/pkg/errors"
)

// Main fetches the results of one query into the cache.
type Main struct {
	Key     string   `help:"Cache key to store the results under."`
	From    string   `help:"Start of the application date range, YYYY-MM-DD."`
	To      string   `help:"End of the application date range, YYYY-MM-DD."`
	Patents []string `help:"Patent numbers to query. Dates are ignored when given."`

	Store    string `help:"Cache backend: file, bolt, leveldb or s3."`
	DataDir  string `help:"Directory for the file, bolt and leveldb caches."`
	S3Region string `help:"AWS region of the s3 cache."`
	S3Bucket string `help:"Bucket of the s3 cache."`
	S3Prefix string `help:"Key prefix of the s3 cache."`

	URL           string        `help:"PatentsView patents query endpoint."`
	PageInterval  time.Duration `help:"Minimum time between two API requests."`
	RetryAttempts uint          `help:"Attempts per page before giving up."`
	RetryDelay    time.Duration `help:"Initial backoff after a failed request."`
	MaxPages      int           `help:"Maximum pages to fetch. 0 means no limit."`

	Log   pdk.Logger  `flag:"-"`
	Stats pdk.Statter `flag:"-"`
}

// NewMain gets a Main with default values.
func NewMain() *Main {
	return &Main{
		Store:         cache.KindFile,
		DataDir:       "data",
		URL:           DefaultURL,
		PageInterval:  DefaultPageInterval,
		RetryAttempts: DefaultRetryAttempts,
		RetryDelay:    DefaultRetryDelay,

		Log:   pdk.NopLogger{},
		Stats: pdk.NopStatter{},
	}
}

// Run runs Main.
func (m *Main) Run() error {
	return m.RunContext(context.Background())
}

// RunContext runs Main until ctx is done.
func (m *Main) RunContext(ctx context.Context) error {
	if m.Key == "" {
		return errors.New("a key is required")
	}
	q, fields, err := BuildQuery(m.From, m.To, m.Patents, m.Log)
	if err != nil {
		return errors.Wrap(err, "building query")
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

	client := NewClient(
		OptClientURL(m.URL),
		OptClientPageInterval(m.PageInterval),
		OptClientRetry(m.RetryAttempts, m.RetryDelay),
		OptClientLogger(m.Log),
		OptClientStats(m.Stats),
	)
	f := NewFetcher(client, store)
	f.MaxPages = m.MaxPages
	fetched, err := f.Get(ctx, m.Key, q, fields)
	if err != nil {
		return err
	}
	if fetched {
		m.Log.Printf("saved %s", m.Key)
	}
	return nil
}
