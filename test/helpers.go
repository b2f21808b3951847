package test

import (
	"reflect"
	"testing"

	"github.com/patentdata/pdk"
)

// MustBe uses reflect.DeepEqual to assert that thing1 and thing2 are equal, and
// fails otherwise.
func MustBe(t *testing.T, thing1, thing2 interface{}, context ...string) {
	t.Helper()
	var ctx string
	if len(context) == 0 {
		ctx = ""
	} else {
		ctx = context[0] + ": "
	}
	if !reflect.DeepEqual(thing1, thing2) {
		t.Fatalf("%v'%#v' != '%#v'", ctx, thing1, thing2)
	}
}

// ErrNil asserts that the err is nil and fails otherwise.
func ErrNil(t *testing.T, err error, ctx string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%v: %v", ctx, err)
	}
}

// Null can be passed to the record builders below wherever a field should be
// JSON null rather than a string.
const Null = "\x00null"

func nullable(s string) *string {
	if s == Null {
		return nil
	}
	return pdk.StrPtr(s)
}

// Patent builds a patent record. Inventors, assignees and citations are
// attached with the With* options.
func Patent(number, typ string, opts ...func(p *pdk.Patent)) pdk.Patent {
	p := pdk.Patent{
		Number:       nullable(number),
		Type:         nullable(typ),
		Inventors:    []pdk.Inventor{},
		Assignees:    []pdk.Assignee{},
		CitedPatents: []pdk.CitedPatent{},
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// WithInventor attaches an inventor to a patent.
func WithInventor(key, lat, lon string) func(p *pdk.Patent) {
	return func(p *pdk.Patent) {
		p.Inventors = append(p.Inventors, pdk.Inventor{
			KeyID:     nullable(key),
			Latitude:  nullable(lat),
			Longitude: nullable(lon),
		})
	}
}

// WithAssignee attaches an assignee to a patent.
func WithAssignee(key, org, typ string) func(p *pdk.Patent) {
	return func(p *pdk.Patent) {
		p.Assignees = append(p.Assignees, pdk.Assignee{
			KeyID:        nullable(key),
			Organization: nullable(org),
			Type:         nullable(typ),
		})
	}
}

// WithCitations attaches cited patents to a patent.
func WithCitations(numbers ...string) func(p *pdk.Patent) {
	return func(p *pdk.Patent) {
		for _, n := range numbers {
			p.CitedPatents = append(p.CitedPatents, pdk.CitedPatent{Number: nullable(n)})
		}
	}
}

// Page wraps patents in a page whose count matches the number of patents.
func Page(patents ...pdk.Patent) *pdk.Page {
	if patents == nil {
		patents = []pdk.Patent{}
	}
	return &pdk.Page{
		Patents: patents,
		Count:   len(patents),
		Total:   len(patents),
	}
}

// EmptyPage returns a page with a null patent list.
func EmptyPage() *pdk.Page {
	return &pdk.Page{}
}
