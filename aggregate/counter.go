package aggregate

import (
	"sort"

	"github.com/goccy/go-json"
	"github.com/patentdata/pdk"
)

// WeightedLocation is a location with a count, the unit heat maps are drawn
// from.
type WeightedLocation struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Weight int     `json:"count"`
}

// Counter counts occurrences per location. It encodes to JSON as a list of
// weighted locations, heaviest first.
type Counter map[pdk.Location]int

// Add adds every count in o to c.
func (c Counter) Add(o Counter) {
	for loc, n := range o {
		c[loc] += n
	}
}

// Total returns the sum of all counts.
func (c Counter) Total() int {
	t := 0
	for _, n := range c {
		t += n
	}
	return t
}

// Weighted returns the counts as a list ordered by descending weight, then by
// latitude and longitude.
func (c Counter) Weighted() []WeightedLocation {
	wls := make([]WeightedLocation, 0, len(c))
	for loc, n := range c {
		wls = append(wls, WeightedLocation{Lat: loc.Lat, Lon: loc.Lon, Weight: n})
	}
	sort.Slice(wls, func(i, j int) bool {
		if wls[i].Weight != wls[j].Weight {
			return wls[i].Weight > wls[j].Weight
		}
		if wls[i].Lat != wls[j].Lat {
			return wls[i].Lat < wls[j].Lat
		}
		return wls[i].Lon < wls[j].Lon
	})
	return wls
}

func (c Counter) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Weighted())
}

func (c *Counter) UnmarshalJSON(data []byte) error {
	var wls []WeightedLocation
	if err := json.Unmarshal(data, &wls); err != nil {
		return err
	}
	*c = make(Counter, len(wls))
	for _, wl := range wls {
		(*c)[pdk.Location{Lat: wl.Lat, Lon: wl.Lon}] += wl.Weight
	}
	return nil
}
