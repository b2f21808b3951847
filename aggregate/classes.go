package aggregate

// Class is a group of assignee types.
type Class int

const (
	ClassAll Class = iota
	ClassUS
	ClassNonUS
	ClassIndividual
)

var classTypes = map[Class]map[string]struct{}{
	ClassUS:         {"2": {}, "4": {}, "6": {}},
	ClassNonUS:      {"3": {}, "5": {}, "7": {}},
	ClassIndividual: {"4": {}, "5": {}},
}

// Has reports whether assignee type t belongs to the class.
func (c Class) Has(t string) bool {
	if c == ClassAll {
		return true
	}
	_, ok := classTypes[c][t]
	return ok
}

func (c Class) String() string {
	switch c {
	case ClassAll:
		return "all"
	case ClassUS:
		return "us"
	case ClassNonUS:
		return "non-us"
	case ClassIndividual:
		return "individual"
	}
	return "unknown"
}

// Filter returns the assignees in class c, keeping their order.
func Filter(assignees []*Assignee, c Class) []*Assignee {
	out := make([]*Assignee, 0)
	for _, a := range assignees {
		if c.Has(a.Type) {
			out = append(out, a)
		}
	}
	return out
}

// TopRow is one line of a top assignees table.
type TopRow struct {
	Organization string `json:"organization"`
	Patents      int    `json:"patents"`
}

// TopK merges the inventor locations of the first k assignees. It also
// returns their table rows and the number of inventors behind the merged
// locations. k larger than the list uses the whole list.
func TopK(assignees []*Assignee, k int) (Counter, []TopRow, int) {
	if k > len(assignees) {
		k = len(assignees)
	}
	if k < 0 {
		k = 0
	}
	locs := make(Counter)
	rows := make([]TopRow, 0, k)
	for _, a := range assignees[:k] {
		locs.Add(a.InventorLocations)
		rows = append(rows, TopRow{Organization: a.Organization, Patents: a.Patents})
	}
	return locs, rows, locs.Total()
}

// TopInventors is the number of inventors behind the k largest assignees in
// class c.
func TopInventors(s *Summary, c Class, k int) int {
	_, _, n := TopK(Filter(s.Assignees, c), k)
	return n
}

// AllLocations returns every inventor location of the summary with its
// count, heaviest first.
func AllLocations(s *Summary) []WeightedLocation {
	return s.Locations.Weighted()
}
