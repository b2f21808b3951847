package aggregate

import (
	"github.com/patentdata/pdk"
	"github.com/pkg/errors"
)

// Series holds yearly figures for the time series chart. All figures except
// Individuals are in thousands.
type Series struct {
	Years       []int     `json:"years"`
	Patents     []float64 `json:"patents"`
	Inventors   []float64 `json:"inventors"`
	Citations   []float64 `json:"citations"`
	Utility     []float64 `json:"utility"`
	Design      []float64 `json:"design"`
	Individuals []int     `json:"individuals"`
}

// Other returns the patents which are neither utility nor design, in
// thousands.
func (s *Series) Other() []float64 {
	other := make([]float64, len(s.Years))
	for i := range s.Years {
		other[i] = s.Patents[i] - s.Utility[i] - s.Design[i]
	}
	return other
}

// Len returns the number of years in the series.
func (s *Series) Len() int {
	return len(s.Years)
}

// TimeSeries builds the series for years, in the given order. Every year
// must have a summary.
func TimeSeries(years []int, summaries map[int]*Summary) (*Series, error) {
	ts := &Series{Years: append([]int(nil), years...)}
	for _, y := range years {
		s, ok := summaries[y]
		if !ok || s == nil {
			return nil, errors.Errorf("no summary for %d", y)
		}
		patents := float64(s.NumPatents)
		ts.Patents = append(ts.Patents, patents/1000)
		ts.Inventors = append(ts.Inventors, float64(s.NumInventors)/1000)
		ts.Citations = append(ts.Citations, float64(s.NumCitations)/1000)
		ts.Utility = append(ts.Utility, s.TypeShare(pdk.TypeUtility)*patents/1000)
		ts.Design = append(ts.Design, s.TypeShare(pdk.TypeDesign)*patents/1000)
		ts.Individuals = append(ts.Individuals, len(Filter(s.Assignees, ClassIndividual)))
	}
	return ts, nil
}
