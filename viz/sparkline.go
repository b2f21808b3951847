package viz

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/lipgloss"
	"github.com/patentdata/pdk/aggregate"
)

const (
	sparklineWidth  = 30
	sparklineHeight = 3
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45")).
			Width(12)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	sparklineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51"))
)

// Sparklines renders the main series as terminal sparklines, one row per
// series, labeled with the first and last year's values.
func Sparklines(ts *aggregate.Series) string {
	individuals := make([]float64, ts.Len())
	for i, n := range ts.Individuals {
		individuals[i] = float64(n)
	}
	rows := []struct {
		label string
		data  []float64
	}{
		{"patents", ts.Patents},
		{"utility", ts.Utility},
		{"design", ts.Design},
		{"inventors", ts.Inventors},
		{"citations", ts.Citations},
		{"individuals", individuals},
	}

	var b strings.Builder
	if ts.Len() > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d-%d, thousands except individuals", ts.Years[0], ts.Years[ts.Len()-1])))
		b.WriteString("\n")
	}
	for _, r := range rows {
		line := lipgloss.JoinHorizontal(lipgloss.Bottom,
			labelStyle.Render(r.label),
			createSparkline(r.data),
			" ",
			valueStyle.Render(span(r.data)),
		)
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func createSparkline(data []float64) string {
	if len(data) == 0 {
		return dimStyle.Render(fmt.Sprintf("%*s", sparklineWidth, "no data"))
	}
	spark := sparkline.New(sparklineWidth, sparklineHeight)
	spark.PushAll(data)
	spark.Draw()
	return sparklineStyle.Render(spark.View())
}

func span(data []float64) string {
	if len(data) == 0 {
		return ""
	}
	return fmt.Sprintf("%.2f -> %.2f", data[0], data[len(data)-1])
}
