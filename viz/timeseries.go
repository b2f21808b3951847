package viz

import (
	"io"
	"path/filepath"

	"github.com/patentdata/pdk/aggregate"
	"github.com/pkg/errors"
)

// Chart colors.
const (
	Blue   = "#377EB8"
	Green  = "#55BA87"
	Maroon = "#7E1137"
)

// TimeSeriesFile is the name of the chart written by TimeSeriesChart.
const TimeSeriesFile = "tsplot.html"

// Line is one data series of a panel.
type Line struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
	Color string    `json:"color"`
	First bool      `json:"first"`
}

// Panel is one chart of the time series page.
type Panel struct {
	Height  int    `json:"height"`
	Stacked bool   `json:"stacked"`
	XAxis   bool   `json:"xaxis"`
	Right   bool   `json:"right"`
	Series  []Line `json:"series"`
}

// Chart is a stack of panels sharing the same years on the x axis.
type Chart struct {
	Title  string
	Years  []int
	Panels []Panel
}

// Render writes the chart as HTML.
func (c *Chart) Render(w io.Writer) error {
	return errors.Wrap(templates.ExecuteTemplate(w, "tsplot.html.tmpl", c), "executing chart template")
}

// NewTimeSeriesChart lays out the yearly figures in five panels. usTop and
// nonUSTop are the inventor counts of the top US and non-US assignees per
// year; they are scaled to thousands like the other figures.
func NewTimeSeriesChart(ts *aggregate.Series, usTop, nonUSTop []int) (*Chart, error) {
	if len(usTop) != ts.Len() || len(nonUSTop) != ts.Len() {
		return nil, errors.Errorf("top inventor counts for %d/%d years, series has %d", len(usTop), len(nonUSTop), ts.Len())
	}
	individuals := make([]float64, ts.Len())
	for i, n := range ts.Individuals {
		individuals[i] = float64(n)
	}
	return &Chart{
		Title: "All Numbers in [000's]",
		Years: ts.Years,
		Panels: []Panel{
			{Height: 240, Stacked: true, Series: []Line{
				{Label: "Number of Utility Patents", Data: ts.Utility, Color: Blue, First: true},
				{Label: "Design Patents", Data: ts.Design, Color: Green},
				{Label: "Other Patents", Data: ts.Other(), Color: Maroon},
			}},
			{Height: 240, Right: true, Series: []Line{
				{Label: "Number of Total Inventors", Data: ts.Inventors, Color: Maroon},
			}},
			{Height: 180, Series: []Line{
				{Label: "Inventors - top 10 US Assignees", Data: thousands(usTop), Color: Blue},
				{Label: "top 10 Non-US Assignees", Data: thousands(nonUSTop), Color: Green},
			}},
			{Height: 180, Right: true, Series: []Line{
				{Label: "Total Number of Citations by All Patents", Data: ts.Citations, Color: Blue},
			}},
			{Height: 120, XAxis: true, Series: []Line{
				{Label: "Number of Individuals as Assignees [in units]", Data: individuals, Color: Green},
			}},
		},
	}, nil
}

// TimeSeriesChart writes tsplot.html into dir and returns its path.
func TimeSeriesChart(dir string, ts *aggregate.Series, usTop, nonUSTop []int) (string, error) {
	c, err := NewTimeSeriesChart(ts, usTop, nonUSTop)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, TimeSeriesFile)
	return path, writeFile(path, c.Render)
}

func thousands(ns []int) []float64 {
	out := make([]float64, len(ns))
	for i, n := range ns {
		out[i] = float64(n) / 1000
	}
	return out
}
