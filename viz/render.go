package viz

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/patentdata/pdk/aggregate"
	"github.com/pkg/errors"
)

// Views of a yearly summary.
const (
	ViewAll   = "All"
	ViewUS    = "US Assignees"
	ViewNonUS = "Non-US Assignees"
)

// Views lists every view RenderYear knows.
var Views = []string{ViewAll, ViewUS, ViewNonUS}

// TopHeader is the header row of a top assignees table.
var TopHeader = []string{"Top Assignees", "Patent Applications"}

// RenderYear writes the heat map of one view of a yearly summary into dir as
// <view>_<year>.html. With k > 0 only the inventors of the k largest
// assignees of the view are drawn, the table of those assignees is written
// next to the map as <view>_<year>.csv, and their number of inventors is
// returned. The assignee views draw nothing unless k > 0.
func RenderYear(dir string, s *aggregate.Summary, view string, year, k int, zoom *ZoomOn) (int, error) {
	const opacity = 0.2
	var (
		class      aggregate.Class
		minOpacity = opacity
	)
	switch view {
	case ViewAll:
		class = aggregate.ClassAll
	case ViewUS:
		class = aggregate.ClassUS
		minOpacity = opacity + 0.2
	case ViewNonUS:
		class = aggregate.ClassNonUS
		minOpacity = opacity + 0.2
	default:
		return 0, errors.Errorf("unknown view '%s'", view)
	}

	base := filepath.Join(dir, fmt.Sprintf("%s_%d", view, year))
	title := fmt.Sprintf("%s %d", view, year)
	layers := []HeatLayer{}
	numInventors := 0
	if k > 0 {
		locs, rows, n := aggregate.TopK(aggregate.Filter(s.Assignees, class), k)
		if err := WriteTop(base+".csv", rows); err != nil {
			return 0, errors.Wrap(err, "writing top assignees")
		}
		layers = append(layers, NewHeatLayer(view, locs.Weighted()))
		numInventors = n
	} else if view == ViewAll {
		layers = append(layers, NewHeatLayer(view, aggregate.AllLocations(s)))
	}

	m := NewHeatMap(title, layers, OptMapZoom(zoom), OptMapHeat(5, 5, minOpacity))
	if err := m.WriteFile(base + ".html"); err != nil {
		return 0, errors.Wrap(err, "writing map")
	}
	return numInventors, nil
}

// RenderLayers writes the heat maps of citation layers into dir. In layered
// mode all layers go onto a single map, <name>.html, with a layer control.
// Otherwise each layer gets its own map, <name>_Layer<layer name>.html. The
// written paths are returned.
func RenderLayers(dir, name string, layers []HeatLayer, zoom *ZoomOn, layered bool) ([]string, error) {
	opts := []MapOption{OptMapZoom(zoom), OptMapSize(960, 600), OptMapHeat(10, 5, 0.5)}
	if layered {
		path := filepath.Join(dir, name+".html")
		m := NewHeatMap(name, layers, append(opts, OptMapLayerControl())...)
		if err := m.WriteFile(path); err != nil {
			return nil, errors.Wrap(err, "writing layered map")
		}
		return []string{path}, nil
	}
	paths := make([]string, 0, len(layers))
	for _, l := range layers {
		path := filepath.Join(dir, name+"_Layer"+l.Name+".html")
		m := NewHeatMap(name+" "+l.Name, []HeatLayer{l}, opts...)
		if err := m.WriteFile(path); err != nil {
			return nil, errors.Wrapf(err, "writing layer %s", l.Name)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteTop writes a top assignees table as CSV.
func WriteTop(path string, rows []aggregate.TopRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating output dir")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	w := csv.NewWriter(f)
	records := make([][]string, 0, len(rows)+1)
	records = append(records, TopHeader)
	for _, r := range rows {
		records = append(records, []string{r.Organization, strconv.Itoa(r.Patents)})
	}
	if err := w.WriteAll(records); err != nil {
		f.Close()
		return errors.Wrap(err, "writing csv")
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}
