package citations

import (
	"context"
	"time"

	"github.com/patentdata/pdk"
	"github.com/patentdata/pdk/cache"
	"github.com/patentdata/pdk/patentsview"
	"github.com/patentdata/pdk/viz"
	"github.com/pkg/errors"
)

// Main walks the citations of a set of patents and maps the inventors of
// each layer.
type Main struct {
	Name    string   `help:"Name of the walk. Layers are cached as <name>_layer<i>."`
	Patents []string `help:"Patent numbers to start from. Without any, a saved walk is rendered."`
	Layers  int      `help:"Number of citation layers to follow."`
	Layered bool     `help:"Draw all layers on one map with a layer switcher instead of one map per layer."`
	Zoom    string   `help:"Center maps on lat,lon,zoom instead of the world view."`
	OutDir  string   `help:"Directory to write maps to."`

	Store    string `help:"Cache backend: file, bolt, leveldb or s3."`
	DataDir  string `help:"Directory for the file, bolt and leveldb caches."`
	S3Region string `help:"AWS region of the s3 cache."`
	S3Bucket string `help:"Bucket of the s3 cache."`
	S3Prefix string `help:"Key prefix of the s3 cache."`

	URL           string        `help:"PatentsView patents query endpoint."`
	PageInterval  time.Duration `help:"Minimum time between two API requests."`
	RetryAttempts uint          `help:"Attempts per page before giving up."`
	RetryDelay    time.Duration `help:"Initial backoff after a failed request."`
	MaxPages      int           `help:"Maximum pages per query. 0 means no limit."`
	ChunkSize     int           `help:"Patent numbers per query."`

	Log   pdk.Logger  `flag:"-"`
	Stats pdk.Statter `flag:"-"`
}

// NewMain gets a Main with default values.
func NewMain() *Main {
	return &Main{
		Name:          "citations",
		Layers:        3,
		Layered:       true,
		OutDir:        "output",
		Store:         cache.KindFile,
		DataDir:       "data",
		URL:           patentsview.DefaultURL,
		PageInterval:  patentsview.DefaultPageInterval,
		RetryAttempts: patentsview.DefaultRetryAttempts,
		RetryDelay:    patentsview.DefaultRetryDelay,
		ChunkSize:     ChunkSize,

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
	if m.Name == "" {
		return errors.New("a name is required")
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

	var res Result
	if len(m.Patents) == 0 {
		res, err = Load(store, m.Name)
		if err != nil {
			return errors.Wrap(err, "no patents given, loading saved walk")
		}
	} else {
		client := patentsview.NewClient(
			patentsview.OptClientURL(m.URL),
			patentsview.OptClientPageInterval(m.PageInterval),
			patentsview.OptClientRetry(m.RetryAttempts, m.RetryDelay),
			patentsview.OptClientLogger(m.Log),
			patentsview.OptClientStats(m.Stats),
		)
		fetcher := patentsview.NewFetcher(client, store)
		fetcher.MaxPages = m.MaxPages
		w := NewWalker(fetcher)
		w.ChunkSize = m.ChunkSize
		res, err = w.Layers(ctx, m.Name, m.Patents, m.Layers)
		if err != nil {
			return errors.Wrap(err, "walking citations")
		}
	}

	paths, err := viz.RenderLayers(m.OutDir, m.Name, res.HeatLayers(), zoom, m.Layered)
	if err != nil {
		return errors.Wrap(err, "rendering layers")
	}
	for _, p := range paths {
		m.Log.Printf("wrote %s", p)
	}
	return nil
}
