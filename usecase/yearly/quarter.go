package yearly

import (
	"fmt"
)

// Quarter is the unit the API is queried in. A full year of results exceeds
// what a single query can return.
type Quarter struct {
	Key  string
	From string
	To   string
}

var quarterDays = [4][2]string{
	{"01-01", "03-31"},
	{"04-01", "06-30"},
	{"07-01", "09-30"},
	{"10-01", "12-31"},
}

// Quarters returns the four quarters of year, keyed <year>q1 to <year>q4.
func Quarters(year int) []Quarter {
	qs := make([]Quarter, 0, 4)
	for i, days := range quarterDays {
		qs = append(qs, Quarter{
			Key:  fmt.Sprintf("%dq%d", year, i+1),
			From: fmt.Sprintf("%d-%s", year, days[0]),
			To:   fmt.Sprintf("%d-%s", year, days[1]),
		})
	}
	return qs
}

// Years returns the years from first to last, inclusive.
func Years(first, last int) []int {
	years := make([]int, 0)
	for y := first; y <= last; y++ {
		years = append(years, y)
	}
	return years
}
