package export_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/patentdata/pdk"
	"github.com/patentdata/pdk/cache"
	"github.com/patentdata/pdk/csv"
	"github.com/patentdata/pdk/mock"
	"github.com/patentdata/pdk/test"
	"github.com/patentdata/pdk/usecase/export"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func seed(t *testing.T, kind, dir string) {
	t.Helper()
	store, err := cache.Open(cache.Config{Kind: kind, Dir: dir})
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Put("2015q1", pdk.Dataset{
		1: test.Page(test.Patent("1", "utility", test.WithAssignee("a", "Acme", "2"))),
		2: test.Page(test.Patent("2", "design"), test.Patent("3", "reissue")),
	}))
	require.NoError(t, store.Put("cites_layer0", pdk.Folds{
		0: pdk.Dataset{1: test.Page(test.Patent("4", "utility", test.WithCitations("1", "2")))},
		1: pdk.Dataset{1: test.EmptyPage()},
	}))
}

func TestMainRun(t *testing.T) {
	dir := t.TempDir()
	seed(t, cache.KindLevelDB, filepath.Join(dir, "data"))

	rec := &mock.RecordingSink{}
	stats := &mock.RecordingStatter{}
	m := export.NewMain()
	m.Keys = []string{"2015q1", "cites_layer0"}
	m.Store = cache.KindLevelDB
	m.DataDir = filepath.Join(dir, "data")
	m.CSVDir = filepath.Join(dir, "csv")
	m.SQLitePath = filepath.Join(dir, "patents.db")
	m.Concurrency = 2
	m.Stats = stats
	m.Sinks = []pdk.Sink{rec}
	require.NoError(t, m.Run())

	require.True(t, rec.Closed)
	require.Len(t, rec.Tables.Patents, 4)
	require.Len(t, rec.Tables.Citations, 2)
	require.EqualValues(t, 4, stats.Get("ingest.pages"))

	pats, err := csv.ReadTable(csv.Path(m.CSVDir, pdk.TablePatents))
	require.NoError(t, err)
	require.Len(t, pats, 4)

	db, err := sql.Open("sqlite", m.SQLitePath)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM assignees").Scan(&n))
	require.Equal(t, 1, n)
}

func TestMainRunErrors(t *testing.T) {
	dir := t.TempDir()
	seed(t, cache.KindFile, dir)

	m := export.NewMain()
	m.DataDir = dir
	m.CSVDir = filepath.Join(dir, "csv")
	require.Error(t, m.Run(), "no keys")

	m.Keys = []string{"2015q1"}
	m.CSVDir = ""
	require.Error(t, m.Run(), "no sinks")

	rec := &mock.RecordingSink{}
	m.Sinks = []pdk.Sink{rec}
	m.Keys = []string{"2016q1"}
	require.Error(t, m.Run(), "missing key")
	require.True(t, rec.Closed)
}
