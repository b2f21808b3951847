package patentsview

import (
	"time"

	"github.com/patentdata/pdk"
	"github.com/pkg/errors"
)

// DateLayout is the layout of application dates in queries.
const DateLayout = "2006-01-02"

// PerPage is the largest page size the API accepts.
const PerPage = 10000

// Query is a filter expression in the PatentsView query language. It is sent
// as the "q" parameter.
type Query map[string]interface{}

// Options is the "o" parameter of a request.
type Options struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// DateRangeFields are the output fields requested for application date
// queries.
var DateRangeFields = []string{
	"patent_number",
	"cited_patent_number",
	"inventor_latitude",
	"inventor_longitude",
	"patent_type",
	"assignee_organization",
	"assignee_type",
}

// PatentNumberFields are the output fields requested when querying specific
// patents.
var PatentNumberFields = []string{
	"patent_number",
	"cited_patent_number",
	"inventor_latitude",
	"inventor_longitude",
	"patent_type",
}

// DateRangeQuery matches all patents whose application date falls between
// from and to, inclusive. Both dates must be YYYY-MM-DD.
func DateRangeQuery(from, to string) (Query, error) {
	f, err := time.Parse(DateLayout, from)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing from date '%s'", from)
	}
	t, err := time.Parse(DateLayout, to)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing to date '%s'", to)
	}
	if t.Before(f) {
		return nil, errors.Errorf("date range is backwards: %s > %s", from, to)
	}
	return Query{
		"_and": []interface{}{
			map[string]interface{}{"_gte": map[string]string{"app_date": from}},
			map[string]interface{}{"_lte": map[string]string{"app_date": to}},
		},
	}, nil
}

// PatentNumberQuery matches the given patent numbers. A single number is sent
// as a plain string, several as a list.
func PatentNumberQuery(numbers ...string) Query {
	if len(numbers) == 1 {
		return Query{"patent_number": numbers[0]}
	}
	return Query{"patent_number": numbers}
}

// BuildQuery picks the query type from the inputs. Patent numbers take
// precedence; if dates were given as well they are ignored with a warning.
// The returned fields are the ones appropriate for the query type.
func BuildQuery(from, to string, numbers []string, log pdk.Logger) (Query, []string, error) {
	if log == nil {
		log = pdk.NopLogger{}
	}
	if len(numbers) > 0 {
		if from != "" || to != "" {
			log.Printf("patent_number queried. other inputs ignored")
		}
		return PatentNumberQuery(numbers...), PatentNumberFields, nil
	}
	if from != "" && to != "" {
		q, err := DateRangeQuery(from, to)
		if err != nil {
			return nil, nil, err
		}
		return q, DateRangeFields, nil
	}
	return nil, nil, errors.New("need either patent numbers or both a from and a to date")
}
