package pdk

import (
	"strconv"
)

// SentinelLatitude is the latitude the API reports for inventors whose
// location could not be resolved.
const SentinelLatitude = "0.1"

// Patent types with special meaning during aggregation.
const (
	TypeUtility = "utility"
	TypeDesign  = "design"
	TypeReissue = "reissue"
)

// Page is one page of results from the patents query endpoint. Patents is nil
// (rather than empty) when the API returns an empty page, which happens once
// the query limit has been reached.
type Page struct {
	Patents []Patent `json:"patents"`
	Count   int      `json:"count"`
	Total   int      `json:"total_patent_count"`
}

// Empty reports whether the page carried no patent list at all.
func (p *Page) Empty() bool {
	return p == nil || p.Patents == nil
}

// Patent is a single patent application record. Any field may be null in the
// response, hence the pointers.
type Patent struct {
	Number       *string       `json:"patent_number,omitempty"`
	Type         *string       `json:"patent_type"`
	Inventors    []Inventor    `json:"inventors"`
	Assignees    []Assignee    `json:"assignees"`
	CitedPatents []CitedPatent `json:"cited_patents"`
}

// Inventor is a nested inventor record. Coordinates arrive as strings.
type Inventor struct {
	KeyID     *string `json:"inventor_key_id"`
	Latitude  *string `json:"inventor_latitude"`
	Longitude *string `json:"inventor_longitude"`
}

// Assignee is a nested assignee record. Type is the numeric assignee type
// code as a string ("2" US company, "4" US individual, ...).
type Assignee struct {
	KeyID        *string `json:"assignee_key_id"`
	Organization *string `json:"assignee_organization"`
	Type         *string `json:"assignee_type"`
}

// CitedPatent is a nested record for a patent cited by the application.
type CitedPatent struct {
	Number *string `json:"cited_patent_number"`
}

// Location is a latitude/longitude pair. It is comparable and can be used as
// a map key.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Str dereferences a nullable string, returning "" for null.
func Str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StrPtr returns a pointer to s. It is mostly useful for building records by
// hand.
func StrPtr(s string) *string {
	return &s
}

// TypeName returns the patent type or "" if it is null.
func (p *Patent) TypeName() string {
	return Str(p.Type)
}

// Reissue reports whether the patent is a reissue.
func (p *Patent) Reissue() bool {
	return p.Type != nil && *p.Type == TypeReissue
}

// Countable reports whether the patent takes part in yearly statistics: its
// type must be present, non-empty and not a reissue.
func (p *Patent) Countable() bool {
	return p.Type != nil && *p.Type != "" && *p.Type != TypeReissue
}

// HasLatitude reports whether the inventor carries a usable latitude string,
// i.e. one that is neither null nor the sentinel value.
func (i *Inventor) HasLatitude() bool {
	return i.Latitude != nil && *i.Latitude != SentinelLatitude
}

// Location returns the inventor's location and whether it is valid. Locations
// with a null or sentinel latitude, or coordinates which do not parse, are
// invalid.
func (i *Inventor) Location() (Location, bool) {
	if !i.HasLatitude() || i.Longitude == nil {
		return Location{}, false
	}
	lat, err := strconv.ParseFloat(*i.Latitude, 64)
	if err != nil {
		return Location{}, false
	}
	lon, err := strconv.ParseFloat(*i.Longitude, 64)
	if err != nil {
		return Location{}, false
	}
	return Location{Lat: lat, Lon: lon}, true
}
