package sqlite_test

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/patentdata/pdk"
	"github.com/patentdata/pdk/sqlite"
	"github.com/patentdata/pdk/test"
	"github.com/stretchr/testify/require"
)

func page() *pdk.Page {
	return test.Page(
		test.Patent("9000001", "utility",
			test.WithInventor("inv1", "40.5", "-75.25"),
			test.WithInventor("inv2", "0.1", test.Null),
			test.WithAssignee("asg1", "Acme, Inc.", "2"),
			test.WithCitations("123", "456"),
		),
		test.Patent("D800001", "design"),
	)
}

func count(t *testing.T, s *sqlite.Sink, table string) int {
	t.Helper()
	var n int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export", "patents.db")
	s, err := sqlite.NewSink(path)
	require.NoError(t, err)
	require.Equal(t, path, s.Path())

	wg := sync.WaitGroup{}
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Write(pdk.Flatten(page())); err != nil {
				t.Errorf("writing: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 6, count(t, s, pdk.TablePatents))
	require.Equal(t, 6, count(t, s, pdk.TableInventors))
	require.Equal(t, 3, count(t, s, pdk.TableAssignees))
	require.Equal(t, 6, count(t, s, pdk.TableCitations))

	var (
		lat, lon float64
		valid    bool
	)
	row := s.DB().QueryRow("SELECT latitude, longitude, valid FROM inventors WHERE inventor_key_id = ? LIMIT 1", "inv1")
	require.NoError(t, row.Scan(&lat, &lon, &valid))
	require.Equal(t, 40.5, lat)
	require.Equal(t, -75.25, lon)
	require.True(t, valid)

	row = s.DB().QueryRow("SELECT valid FROM inventors WHERE inventor_key_id = ? LIMIT 1", "inv2")
	require.NoError(t, row.Scan(&valid))
	require.False(t, valid)

	var org string
	require.NoError(t, s.DB().QueryRow("SELECT organization FROM assignees LIMIT 1").Scan(&org))
	require.Equal(t, "Acme, Inc.", org)
	require.NoError(t, s.Close())
}

func TestSinkReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patents.db")
	s, err := sqlite.NewSink(path)
	require.NoError(t, err)
	require.NoError(t, s.Write(pdk.Flatten(page())))
	require.NoError(t, s.Write(pdk.Flatten(test.EmptyPage())))
	require.NoError(t, s.Close())

	s, err = sqlite.NewSink(path)
	require.NoError(t, err)
	defer s.Close()
	require.Equal(t, 2, count(t, s, pdk.TablePatents), "rows survive reopening")
}

func TestSinkClosed(t *testing.T) {
	s, err := sqlite.NewSink(filepath.Join(t.TempDir(), "patents.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.Error(t, s.Write(pdk.Flatten(page())))
}
