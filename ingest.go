package pdk

import (
	"io"
	"sync"

	"github.com/pkg/errors"
)

// Ingester reads pages from a Source, flattens them and writes the resulting
// tables to a Sink.
type Ingester struct {
	Concurrency int
	Stats       Statter
	Log         Logger

	src  Source
	sink Sink
}

// NewIngester gets a new Ingester which flattens with a single goroutine.
func NewIngester(source Source, sink Sink) *Ingester {
	return &Ingester{
		Concurrency: 1,
		Stats:       NopStatter{},
		Log:         NopLogger{},
		src:         source,
		sink:        sink,
	}
}

// Run drains the Source and closes the Sink. The first error from the Source
// or the Sink stops every routine and is returned.
func (n *Ingester) Run() error {
	if n.Concurrency < 1 {
		n.Concurrency = 1
	}
	var (
		errOnce  sync.Once
		firstErr error
		stop     = make(chan struct{})
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			close(stop)
		})
	}

	wg := sync.WaitGroup{}
	for i := 0; i < n.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				page, err := n.src.Record()
				if err == io.EOF {
					return
				} else if err != nil {
					fail(errors.Wrap(err, "getting page"))
					return
				}
				n.Stats.Count("ingest.pages", 1, 1)
				if page.Empty() {
					n.Log.Printf("skipping empty page")
					continue
				}
				tables := Flatten(page)
				if err := n.sink.Write(tables); err != nil {
					fail(errors.Wrap(err, "writing tables"))
					return
				}
				n.Stats.Count("ingest.patents", int64(len(tables.Patents)), 1)
				n.Stats.Count("ingest.rows", int64(tables.Len()), 1)
			}
		}()
	}
	wg.Wait()
	if err := n.sink.Close(); err != nil && firstErr == nil {
		firstErr = errors.Wrap(err, "closing sink")
	}
	return firstErr
}
