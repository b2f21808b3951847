package pdk

import (
	"strconv"
)

// Table names, used by sinks as file, table and topic names.
const (
	TablePatents   = "patents"
	TableInventors = "inventors"
	TableAssignees = "assignees"
	TableCitations = "citations"
)

// TableNames lists the tables in the order sinks write them.
var TableNames = []string{TablePatents, TableInventors, TableAssignees, TableCitations}

// Columns names the columns of each table, in the order Records returns
// them.
var Columns = map[string][]string{
	TablePatents:   {"patent_number", "patent_type"},
	TableInventors: {"patent_number", "inventor_key_id", "latitude", "longitude", "valid"},
	TableAssignees: {"patent_number", "assignee_key_id", "organization", "type"},
	TableCitations: {"patent_number", "cited_patent_number"},
}

// PatentRow is one row of the patents table.
type PatentRow struct {
	PatentNumber string `json:"patent_number"`
	PatentType   string `json:"patent_type"`
}

// InventorRow is one row of the inventors table. Valid reports whether the
// coordinates are usable (see Inventor.Location); Latitude and Longitude are
// zero when they are not.
type InventorRow struct {
	PatentNumber  string  `json:"patent_number"`
	InventorKeyID string  `json:"inventor_key_id"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Valid         bool    `json:"valid"`
}

// AssigneeRow is one row of the assignees table.
type AssigneeRow struct {
	PatentNumber  string `json:"patent_number"`
	AssigneeKeyID string `json:"assignee_key_id"`
	Organization  string `json:"organization"`
	Type          string `json:"type"`
}

// CitationRow is one row of the citations table.
type CitationRow struct {
	PatentNumber      string `json:"patent_number"`
	CitedPatentNumber string `json:"cited_patent_number"`
}

// Tables holds the flat representation of some number of pages.
type Tables struct {
	Patents   []PatentRow
	Inventors []InventorRow
	Assignees []AssigneeRow
	Citations []CitationRow
}

// Len returns the total number of rows across all tables.
func (t *Tables) Len() int {
	return len(t.Patents) + len(t.Inventors) + len(t.Assignees) + len(t.Citations)
}

// Append adds all rows of o to t.
func (t *Tables) Append(o *Tables) {
	t.Patents = append(t.Patents, o.Patents...)
	t.Inventors = append(t.Inventors, o.Inventors...)
	t.Assignees = append(t.Assignees, o.Assignees...)
	t.Citations = append(t.Citations, o.Citations...)
}

// Rows returns the rows of the named table as a slice of interface values,
// or nil for an unknown table name.
func (t *Tables) Rows(table string) []interface{} {
	var rows []interface{}
	switch table {
	case TablePatents:
		for _, r := range t.Patents {
			rows = append(rows, r)
		}
	case TableInventors:
		for _, r := range t.Inventors {
			rows = append(rows, r)
		}
	case TableAssignees:
		for _, r := range t.Assignees {
			rows = append(rows, r)
		}
	case TableCitations:
		for _, r := range t.Citations {
			rows = append(rows, r)
		}
	}
	return rows
}

// Records returns the rows of the named table as strings, one per column
// in Columns. It returns nil for an unknown table name.
func (t *Tables) Records(table string) [][]string {
	var recs [][]string
	switch table {
	case TablePatents:
		for _, r := range t.Patents {
			recs = append(recs, []string{r.PatentNumber, r.PatentType})
		}
	case TableInventors:
		for _, r := range t.Inventors {
			recs = append(recs, []string{
				r.PatentNumber,
				r.InventorKeyID,
				formatFloat(r.Latitude),
				formatFloat(r.Longitude),
				strconv.FormatBool(r.Valid),
			})
		}
	case TableAssignees:
		for _, r := range t.Assignees {
			recs = append(recs, []string{r.PatentNumber, r.AssigneeKeyID, r.Organization, r.Type})
		}
	case TableCitations:
		for _, r := range t.Citations {
			recs = append(recs, []string{r.PatentNumber, r.CitedPatentNumber})
		}
	}
	return recs
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Flatten turns the nested records of a page into flat tables. Every record
// is kept, including reissues and records with unusable coordinates; null
// strings become "". An empty page yields empty tables.
func Flatten(p *Page) *Tables {
	t := &Tables{}
	if p.Empty() {
		return t
	}
	for i := range p.Patents {
		pat := &p.Patents[i]
		num := Str(pat.Number)
		t.Patents = append(t.Patents, PatentRow{PatentNumber: num, PatentType: pat.TypeName()})
		for j := range pat.Inventors {
			inv := &pat.Inventors[j]
			loc, ok := inv.Location()
			t.Inventors = append(t.Inventors, InventorRow{
				PatentNumber:  num,
				InventorKeyID: Str(inv.KeyID),
				Latitude:      loc.Lat,
				Longitude:     loc.Lon,
				Valid:         ok,
			})
		}
		for _, a := range pat.Assignees {
			t.Assignees = append(t.Assignees, AssigneeRow{
				PatentNumber:  num,
				AssigneeKeyID: Str(a.KeyID),
				Organization:  Str(a.Organization),
				Type:          Str(a.Type),
			})
		}
		for _, c := range pat.CitedPatents {
			t.Citations = append(t.Citations, CitationRow{
				PatentNumber:      num,
				CitedPatentNumber: Str(c.Number),
			})
		}
	}
	return t
}
