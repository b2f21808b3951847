package patentsview_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/patentdata/pdk"
	"github.com/patentdata/pdk/mock"
	"github.com/patentdata/pdk/patentsview"
	"github.com/patentdata/pdk/test"
	"github.com/pkg/errors"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string, opts ...patentsview.ClientOption) *patentsview.Client {
	opts = append([]patentsview.ClientOption{
		patentsview.OptClientURL(url),
		patentsview.OptClientPageInterval(0),
		patentsview.OptClientRetry(3, time.Millisecond),
	}, opts...)
	return patentsview.NewClient(opts...)
}

func writePage(t *testing.T, w http.ResponseWriter, p *pdk.Page) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(p); err != nil {
		t.Errorf("encoding page: %v", err)
	}
}

func TestBuildQuery(t *testing.T) {
	log := &mock.Logger{}
	q, fields, err := patentsview.BuildQuery("2015-01-01", "2015-03-31", []string{"9000001"}, log)
	require.NoError(t, err)
	require.Equal(t, patentsview.Query{"patent_number": "9000001"}, q)
	require.Equal(t, patentsview.PatentNumberFields, fields)
	require.True(t, log.Contains("other inputs ignored"))

	q, fields, err = patentsview.BuildQuery("", "", []string{"1", "2"}, nil)
	require.NoError(t, err)
	require.Equal(t, patentsview.Query{"patent_number": []string{"1", "2"}}, q)
	require.Len(t, fields, 5)

	q, fields, err = patentsview.BuildQuery("2015-01-01", "2015-03-31", nil, nil)
	require.NoError(t, err)
	require.Equal(t, patentsview.DateRangeFields, fields)
	enc, err := json.Marshal(q)
	require.NoError(t, err)
	require.JSONEq(t, `{"_and":[{"_gte":{"app_date":"2015-01-01"}},{"_lte":{"app_date":"2015-03-31"}}]}`, string(enc))

	_, _, err = patentsview.BuildQuery("", "", nil, nil)
	require.Error(t, err)
	_, _, err = patentsview.BuildQuery("2015-13-01", "2015-03-31", nil, nil)
	require.Error(t, err)
	_, _, err = patentsview.BuildQuery("2015-04-01", "2015-03-31", nil, nil)
	require.Error(t, err)
}

func TestClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.JSONEq(t, `{"patent_number":"9000001"}`, r.URL.Query().Get("q"))
		assert.JSONEq(t, `["patent_number","patent_type"]`, r.URL.Query().Get("f"))
		assert.JSONEq(t, `{"page":2,"per_page":10000}`, r.URL.Query().Get("o"))
		writePage(t, w, test.Page(test.Patent("9000001", "utility")))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	p, err := c.Page(context.Background(), patentsview.PatentNumberQuery("9000001"), []string{"patent_number", "patent_type"}, 2)
	require.NoError(t, err)
	require.Equal(t, 1, p.Count)
	require.Equal(t, "utility", p.Patents[0].TypeName())
}

func TestClientPostForLongQueries(t *testing.T) {
	numbers := make([]string, 200)
	for i := range numbers {
		numbers[i] = fmt.Sprintf("%d", 9000000+i)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body := struct {
			Q map[string][]string `json:"q"`
			F []string            `json:"f"`
			O patentsview.Options `json:"o"`
		}{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body.Q["patent_number"], 200)
		assert.Equal(t, patentsview.PatentNumberFields, body.F)
		assert.Equal(t, patentsview.Options{Page: 1, PerPage: patentsview.PerPage}, body.O)
		writePage(t, w, test.Page())
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Page(context.Background(), patentsview.PatentNumberQuery(numbers...), patentsview.PatentNumberFields, 1)
	require.NoError(t, err)
}

func TestClientRetriesRateLimit(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writePage(t, w, test.Page(test.Patent("1", "design")))
	}))
	defer srv.Close()

	stats := &mock.RecordingStatter{}
	log := &mock.Logger{}
	c := newTestClient(srv.URL, patentsview.OptClientStats(stats), patentsview.OptClientLogger(log))
	p, err := c.Page(context.Background(), patentsview.PatentNumberQuery("1"), patentsview.PatentNumberFields, 1)
	require.NoError(t, err)
	require.Len(t, p.Patents, 1)
	require.Equal(t, int32(3), atomic.LoadInt32(&hits))
	require.Equal(t, int64(2), stats.Get("client.retries"))
	require.True(t, log.Contains("429"))
}

func TestClientGivesUp(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Page(context.Background(), patentsview.PatentNumberQuery("1"), patentsview.PatentNumberFields, 1)
	require.Error(t, err)
	se, ok := errors.Cause(err).(*patentsview.StatusError)
	require.True(t, ok, "expected a StatusError, got %T", errors.Cause(err))
	require.Equal(t, http.StatusServiceUnavailable, se.Code)
	require.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestClientDoesNotRetryBadRequest(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("X-Status-Reason", "Invalid field")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, "bad field")
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Page(context.Background(), patentsview.PatentNumberQuery("1"), []string{"nope"}, 1)
	require.Error(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&hits))
	require.Contains(t, err.Error(), "Invalid field")
	require.Contains(t, err.Error(), "bad field")
}

func TestClientBreakerOpens(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL,
		patentsview.OptClientRetry(1, time.Millisecond),
		patentsview.OptClientBreaker(1, time.Hour),
	)
	q := patentsview.PatentNumberQuery("1")
	_, err := c.Page(context.Background(), q, patentsview.PatentNumberFields, 1)
	require.Error(t, err)
	_, err = c.Page(context.Background(), q, patentsview.PatentNumberFields, 1)
	require.Equal(t, gobreaker.ErrOpenState, errors.Cause(err))
	require.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestClientCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writePage(t, w, test.Page())
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := newTestClient(srv.URL)
	_, err := c.Page(ctx, patentsview.PatentNumberQuery("1"), patentsview.PatentNumberFields, 1)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "context canceled"), err.Error())
}
