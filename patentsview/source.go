package patentsview

import (
	"context"
	"io"
	"sync"

	"github.com/patentdata/pdk"
	"github.com/pkg/errors"
)

// PageLimitWarning is the page number at which a Source warns that the API's
// result cap has probably been hit.
const PageLimitWarning = 11

// Source is a pdk.Source which pages through the results of a single query.
// It keeps requesting pages while the previous one was full, and returns
// io.EOF after the last one.
type Source struct {
	client *Client
	ctx    context.Context
	query  Query
	fields []string

	// MaxPages stops paging after this many pages. Zero means no limit.
	MaxPages int

	mu   sync.Mutex
	next int
	done bool
}

// NewSource gets a Source for q. Requests are made with ctx.
func NewSource(ctx context.Context, client *Client, q Query, fields []string) *Source {
	return &Source{
		client: client,
		ctx:    ctx,
		query:  q,
		fields: fields,
		next:   1,
	}
}

// Record implements pdk.Source. The page which ends the query (short or
// empty) is still returned; the following call returns io.EOF.
func (s *Source) Record() (*pdk.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil, io.EOF
	}
	n := s.next
	if n == 1 {
		s.client.Log.Printf("fetching first page")
	} else {
		s.client.Log.Printf("fetching page %d", n)
	}
	if n == PageLimitWarning {
		s.client.Log.Printf("page limit reached, double check data")
	}
	page, err := s.client.Page(s.ctx, s.query, s.fields, n)
	if err != nil {
		s.done = true
		return nil, errors.Wrap(err, "paging query")
	}
	s.next++
	s.client.Stats.Count("source.pages", 1, 1)
	switch {
	case page.Empty():
		s.client.Log.Printf("page %d is empty, query limit reached", n)
		s.done = true
	case page.Count != s.client.PerPage:
		s.done = true
	case s.MaxPages > 0 && n >= s.MaxPages:
		s.client.Log.Printf("stopping after %d pages", n)
		s.done = true
	}
	return page, nil
}
