// Package export replays cached datasets through the flattener into one or
// more sinks.
package export

import (
	"github.com/patentdata/pdk"
	"github.com/patentdata/pdk/cache"
	"github.com/patentdata/pdk/csv"
	"github.com/patentdata/pdk/kafka"
	"github.com/patentdata/pdk/sqlite"
	"github.com/pkg/errors"
)

// Tables flattens the datasets stored under keys into sink, and closes the
// sink when done.
func Tables(store pdk.Store, keys []string, sink pdk.Sink, concurrency int, log pdk.Logger, stats pdk.Statter) error {
	src, err := cache.Source(store, keys...)
	if err != nil {
		sink.Close()
		return errors.Wrap(err, "getting source")
	}
	ingester := pdk.NewIngester(src, sink)
	if concurrency > 0 {
		ingester.Concurrency = concurrency
	}
	ingester.Log = log
	ingester.Stats = stats
	return errors.Wrap(ingester.Run(), "running ingester")
}

// Main exports cached datasets as tables.
type Main struct {
	Keys []string `help:"Cache keys to export, e.g. 2015q1,2015q2 or cites_layer0."`

	Store    string `help:"Cache backend: file, bolt, leveldb or s3."`
	DataDir  string `help:"Directory for the file, bolt and leveldb caches."`
	S3Region string `help:"AWS region of the s3 cache."`
	S3Bucket string `help:"Bucket of the s3 cache."`
	S3Prefix string `help:"Key prefix of the s3 cache."`

	CSVDir      string   `help:"Write CSV tables into this directory."`
	SQLitePath  string   `help:"Write tables into this SQLite database."`
	KafkaHosts  []string `help:"Comma separated list of Kafka hosts and ports to publish rows to."`
	TopicPrefix string   `help:"Rows of table t are published to the topic <prefix>.<t>."`
	Concurrency int      `help:"Number of pages flattened at once."`

	Log   pdk.Logger  `flag:"-"`
	Stats pdk.Statter `flag:"-"`
	// Sinks are written to besides the configured ones.
	Sinks []pdk.Sink `flag:"-"`
}

// NewMain gets a Main with default values.
func NewMain() *Main {
	return &Main{
		Store:       cache.KindFile,
		DataDir:     "data",
		TopicPrefix: kafka.DefaultTopicPrefix,
		Concurrency: 1,

		Log:   pdk.NopLogger{},
		Stats: pdk.NopStatter{},
	}
}

// Run runs Main.
func (m *Main) Run() error {
	if len(m.Keys) == 0 {
		return errors.New("no keys to export")
	}
	sinks, err := m.sinks()
	if err != nil {
		return err
	}
	if len(sinks) == 0 {
		return errors.New("no sink configured: need a csv dir, sqlite path or kafka hosts")
	}
	store, err := cache.Open(cache.Config{
		Kind:     m.Store,
		Dir:      m.DataDir,
		S3Region: m.S3Region,
		S3Bucket: m.S3Bucket,
		S3Prefix: m.S3Prefix,
	})
	if err != nil {
		sinks.Close()
		return errors.Wrap(err, "opening cache")
	}
	defer store.Close()
	m.Log.Printf("exporting %d keys to %d sinks", len(m.Keys), len(sinks))
	return Tables(store, m.Keys, sinks, m.Concurrency, m.Log, m.Stats)
}

func (m *Main) sinks() (pdk.MultiSink, error) {
	sinks := pdk.MultiSink{}
	fail := func(err error) (pdk.MultiSink, error) {
		sinks.Close()
		return nil, err
	}
	if m.CSVDir != "" {
		s, err := csv.NewSink(m.CSVDir)
		if err != nil {
			return fail(errors.Wrap(err, "getting csv sink"))
		}
		sinks = append(sinks, s)
	}
	if m.SQLitePath != "" {
		s, err := sqlite.NewSink(m.SQLitePath)
		if err != nil {
			return fail(errors.Wrap(err, "getting sqlite sink"))
		}
		sinks = append(sinks, s)
	}
	if len(m.KafkaHosts) > 0 {
		s, err := kafka.NewSink(m.KafkaHosts, m.TopicPrefix)
		if err != nil {
			return fail(errors.Wrap(err, "getting kafka sink"))
		}
		sinks = append(sinks, s)
	}
	return append(sinks, m.Sinks...), nil
}
