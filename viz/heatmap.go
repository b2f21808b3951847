// Package viz renders summaries as HTML heat maps and time series charts,
// and as sparklines for the terminal.
package viz

import (
	"embed"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/patentdata/pdk"
	"github.com/patentdata/pdk/aggregate"
	"github.com/pkg/errors"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// ZoomOn overrides the center and zoom level of a map.
type ZoomOn struct {
	Lat  float64
	Lon  float64
	Zoom float64
}

// ParseZoom parses "lat,lon,zoom". The empty string yields nil.
func ParseZoom(s string) (*ZoomOn, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, errors.Errorf("zoom must be lat,lon,zoom, got '%s'", s)
	}
	vals := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing zoom '%s'", s)
		}
		vals[i] = v
	}
	return &ZoomOn{Lat: vals[0], Lon: vals[1], Zoom: vals[2]}, nil
}

// HeatLayer is one named set of weighted points.
type HeatLayer struct {
	Name   string
	Points [][3]float64
}

// NewHeatLayer converts weighted locations into heat points.
func NewHeatLayer(name string, wls []aggregate.WeightedLocation) HeatLayer {
	pts := make([][3]float64, 0, len(wls))
	for _, wl := range wls {
		pts = append(pts, [3]float64{wl.Lat, wl.Lon, float64(wl.Weight)})
	}
	return HeatLayer{Name: name, Points: pts}
}

// HeatMap is a Leaflet map with one or more Leaflet.heat layers.
type HeatMap struct {
	Title   string
	Center  pdk.Location
	Zoom    float64
	Width   int
	Height  int
	MinZoom int
	MinLat  float64
	MaxLat  float64

	Radius     int
	Blur       int
	MinOpacity float64
	Max        float64

	Layers []HeatLayer
	// Show adds every layer to the map on load. Layers which are not shown
	// can still be switched on through the layer control.
	Show         bool
	LayerControl bool
}

// MapOption configures a HeatMap.
type MapOption func(h *HeatMap)

// OptMapZoom centers the map on z. A nil z keeps the default view.
func OptMapZoom(z *ZoomOn) MapOption {
	return func(h *HeatMap) {
		if z == nil {
			return
		}
		h.Center = pdk.Location{Lat: z.Lat, Lon: z.Lon}
		h.Zoom = z.Zoom
	}
}

// OptMapSize sets the size of the map in pixels.
func OptMapSize(width, height int) MapOption {
	return func(h *HeatMap) {
		h.Width = width
		h.Height = height
	}
}

// OptMapHeat sets the heat layer parameters.
func OptMapHeat(radius, blur int, minOpacity float64) MapOption {
	return func(h *HeatMap) {
		h.Radius = radius
		h.Blur = blur
		h.MinOpacity = minOpacity
	}
}

// OptMapLayerControl adds a layer switcher which is not collapsed, and
// leaves the layers hidden until switched on.
func OptMapLayerControl() MapOption {
	return func(h *HeatMap) {
		h.LayerControl = true
		h.Show = false
	}
}

// NewHeatMap gets a world map showing layers with the default view.
func NewHeatMap(title string, layers []HeatLayer, opts ...MapOption) *HeatMap {
	h := &HeatMap{
		Title:      title,
		Center:     pdk.Location{Lat: 30, Lon: 15},
		Zoom:       1.75,
		Width:      1000,
		Height:     600,
		MinZoom:    2,
		MinLat:     -60,
		MaxLat:     80,
		Radius:     5,
		Blur:       5,
		MinOpacity: 0.2,
		Max:        1,
		Layers:     layers,
		Show:       true,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Render writes the map as HTML.
func (h *HeatMap) Render(w io.Writer) error {
	return errors.Wrap(templates.ExecuteTemplate(w, "heatmap.html.tmpl", h), "executing heatmap template")
}

// WriteFile renders the map into path.
func (h *HeatMap) WriteFile(path string) error {
	return writeFile(path, h.Render)
}

func writeFile(path string, render func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating output dir")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := render(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "rendering %s", path)
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}
