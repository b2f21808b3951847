package patentsview_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
	"github.com/patentdata/pdk"
	"github.com/patentdata/pdk/mock"
	"github.com/patentdata/pdk/patentsview"
	"github.com/patentdata/pdk/test"
	"github.com/stretchr/testify/require"
)

// pagingServer serves pages[n-1] for page n and counts requests.
func pagingServer(t *testing.T, hits *int32, pages ...*pdk.Page) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		var o patentsview.Options
		if err := json.Unmarshal([]byte(r.URL.Query().Get("o")), &o); err != nil {
			t.Errorf("decoding options: %v", err)
		}
		if o.Page < 1 || o.Page > len(pages) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writePage(t, w, pages[o.Page-1])
	}))
}

func fullPage(prefix string) *pdk.Page {
	return test.Page(
		test.Patent(prefix+"1", "utility"),
		test.Patent(prefix+"2", "design"),
	)
}

func drain(t *testing.T, src pdk.Source) []*pdk.Page {
	t.Helper()
	var pages []*pdk.Page
	for {
		p, err := src.Record()
		if err == io.EOF {
			return pages
		}
		require.NoError(t, err)
		pages = append(pages, p)
	}
}

func TestSourcePagesUntilShortPage(t *testing.T) {
	var hits int32
	srv := pagingServer(t, &hits, fullPage("a"), fullPage("b"), test.Page(test.Patent("c1", "utility")))
	defer srv.Close()

	c := newTestClient(srv.URL, patentsview.OptClientPerPage(2))
	pages := drain(t, patentsview.NewSource(context.Background(), c, patentsview.PatentNumberQuery("x"), nil))
	require.Len(t, pages, 3)
	require.Equal(t, "c1", pdk.Str(pages[2].Patents[0].Number))
	require.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestSourceStopsOnEmptyPage(t *testing.T) {
	var hits int32
	srv := pagingServer(t, &hits, fullPage("a"), test.EmptyPage(), fullPage("c"))
	defer srv.Close()

	log := &mock.Logger{}
	c := newTestClient(srv.URL, patentsview.OptClientPerPage(2), patentsview.OptClientLogger(log))
	pages := drain(t, patentsview.NewSource(context.Background(), c, patentsview.PatentNumberQuery("x"), nil))
	require.Len(t, pages, 2)
	require.True(t, pages[1].Empty())
	require.True(t, log.Contains("fetching first page"))
	require.True(t, log.Contains("query limit reached"))
}

func TestSourceWarnsAtPageLimit(t *testing.T) {
	var hits int32
	var pages []*pdk.Page
	for i := 0; i < patentsview.PageLimitWarning; i++ {
		pages = append(pages, fullPage(fmt.Sprintf("p%d-", i)))
	}
	pages = append(pages, test.EmptyPage())
	srv := pagingServer(t, &hits, pages...)
	defer srv.Close()

	log := &mock.Logger{}
	c := newTestClient(srv.URL, patentsview.OptClientPerPage(2), patentsview.OptClientLogger(log))
	got := drain(t, patentsview.NewSource(context.Background(), c, patentsview.PatentNumberQuery("x"), nil))
	require.Len(t, got, patentsview.PageLimitWarning+1)
	require.True(t, log.Contains("page limit reached, double check data"))
}

func TestSourceMaxPages(t *testing.T) {
	var hits int32
	srv := pagingServer(t, &hits, fullPage("a"), fullPage("b"), fullPage("c"))
	defer srv.Close()

	c := newTestClient(srv.URL, patentsview.OptClientPerPage(2))
	src := patentsview.NewSource(context.Background(), c, patentsview.PatentNumberQuery("x"), nil)
	src.MaxPages = 2
	require.Len(t, drain(t, src), 2)
	require.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestSourceErrorEndsPaging(t *testing.T) {
	var hits int32
	srv := pagingServer(t, &hits, fullPage("a"))
	defer srv.Close()

	c := newTestClient(srv.URL, patentsview.OptClientPerPage(2))
	src := patentsview.NewSource(context.Background(), c, patentsview.PatentNumberQuery("x"), nil)
	_, err := src.Record()
	require.NoError(t, err)
	_, err = src.Record()
	require.Error(t, err)
	_, err = src.Record()
	require.Equal(t, io.EOF, err)
}
