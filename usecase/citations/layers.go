// Package citations follows citations outwards from a set of patents, layer
// by layer, and maps where the inventors of each layer were based.
package citations

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/patentdata/pdk"
	"github.com/patentdata/pdk/patentsview"
	"github.com/patentdata/pdk/viz"
	"github.com/pkg/errors"
)

// ChunkSize is the number of patent numbers sent in one query.
const ChunkSize = 100

// LayerInventor is an inventor of a patent in a layer.
type LayerInventor struct {
	Key string  `json:"inventor_key_id"`
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Layer is what one step of the citation walk found: the patents cited by
// the layer's patents, duplicates included, and the layer's unique
// inventors.
type Layer struct {
	CitedPatents []string        `json:"cited_patents"`
	Inventors    []LayerInventor `json:"inventors"`
}

// Result holds the layers of a walk, keyed by depth starting at 0.
type Result map[int]*Layer

// Indexes returns the layer depths in ascending order.
func (r Result) Indexes() []int {
	idxs := make([]int, 0, len(r))
	for i := range r {
		idxs = append(idxs, i)
	}
	sort.Ints(idxs)
	return idxs
}

// HeatLayers converts the result into one heat layer per depth, each
// inventor counting once.
func (r Result) HeatLayers() []viz.HeatLayer {
	hls := make([]viz.HeatLayer, 0, len(r))
	for _, i := range r.Indexes() {
		pts := make([][3]float64, 0, len(r[i].Inventors))
		for _, inv := range r[i].Inventors {
			pts = append(pts, [3]float64{inv.Lat, inv.Lon, 1})
		}
		hls = append(hls, viz.HeatLayer{Name: strconv.Itoa(i), Points: pts})
	}
	return hls
}

// LayerKey is the store key of the raw data of layer i of a walk.
func LayerKey(name string, i int) string {
	return fmt.Sprintf("%s_layer%d", name, i)
}

// Preprocess extracts a layer from its raw folds. Reissues are skipped. An
// inventor is kept the first time its key shows up with a latitude that is
// present and not the sentinel; coordinates which do not parse are dropped.
func Preprocess(folds pdk.Folds) *Layer {
	l := &Layer{
		CitedPatents: []string{},
		Inventors:    []LayerInventor{},
	}
	seen := make(map[string]struct{})
	for _, page := range folds.Pages() {
		if page.Empty() {
			continue
		}
		for i := range page.Patents {
			p := &page.Patents[i]
			if p.Reissue() {
				continue
			}
			for j := range p.Inventors {
				inv := &p.Inventors[j]
				if !inv.HasLatitude() {
					continue
				}
				key := pdk.Str(inv.KeyID)
				if _, ok := seen[key]; ok {
					continue
				}
				loc, ok := inv.Location()
				if !ok {
					continue
				}
				seen[key] = struct{}{}
				l.Inventors = append(l.Inventors, LayerInventor{Key: key, Lat: loc.Lat, Lon: loc.Lon})
			}
			for _, c := range p.CitedPatents {
				if c.Number != nil {
					l.CitedPatents = append(l.CitedPatents, *c.Number)
				}
			}
		}
	}
	return l
}

// Dedupe returns nums without repeats, in first seen order.
func Dedupe(nums []string) []string {
	out := make([]string, 0, len(nums))
	seen := make(map[string]struct{}, len(nums))
	for _, n := range nums {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Chunk splits nums into consecutive slices of at most size numbers.
func Chunk(nums []string, size int) [][]string {
	if size < 1 {
		size = 1
	}
	chunks := make([][]string, 0, (len(nums)+size-1)/size)
	for len(nums) > size {
		chunks = append(chunks, nums[:size])
		nums = nums[size:]
	}
	if len(nums) > 0 {
		chunks = append(chunks, nums)
	}
	return chunks
}

// Walker runs citation walks, caching the raw data of every layer.
type Walker struct {
	Fetcher   *patentsview.Fetcher
	ChunkSize int
	Log       pdk.Logger
}

// NewWalker gets a Walker.
func NewWalker(f *patentsview.Fetcher) *Walker {
	return &Walker{
		Fetcher:   f,
		ChunkSize: ChunkSize,
		Log:       f.Client.Log,
	}
}

// Layers walks up to n layers out from seeds. Layers already in the store
// are not fetched again. The walk ends early once a layer cites nothing.
// The result is saved under name.
func (w *Walker) Layers(ctx context.Context, name string, seeds []string, n int) (Result, error) {
	seeds = Dedupe(seeds)
	if len(seeds) == 0 {
		return nil, errors.New("no patent numbers to start from")
	}
	res := make(Result, n)
	for i := 0; i < n; i++ {
		folds, err := w.layer(ctx, LayerKey(name, i), seeds)
		if err != nil {
			return nil, errors.Wrapf(err, "getting layer %d", i)
		}
		l := Preprocess(folds)
		res[i] = l
		w.Log.Printf("layer %d: %d seeds, %d inventors, %d citations", i, len(seeds), len(l.Inventors), len(l.CitedPatents))
		seeds = Dedupe(l.CitedPatents)
		if len(seeds) == 0 && i < n-1 {
			w.Log.Printf("layer %d cites nothing, stopping", i)
			break
		}
	}
	w.Log.Printf("saving %s", name)
	if err := w.Fetcher.Store.Put(name, res); err != nil {
		return nil, errors.Wrapf(err, "saving %s", name)
	}
	return res, nil
}

func (w *Walker) layer(ctx context.Context, key string, seeds []string) (pdk.Folds, error) {
	folds := pdk.Folds{}
	has, err := w.Fetcher.Store.Has(key)
	if err != nil {
		return nil, errors.Wrapf(err, "checking store for %s", key)
	}
	if has {
		w.Log.Printf("%s already on file", key)
		if err := w.Fetcher.Store.Get(key, &folds); err != nil {
			return nil, errors.Wrapf(err, "loading %s", key)
		}
		return folds, nil
	}
	for i, chunk := range Chunk(seeds, w.ChunkSize) {
		ds, err := patentsview.Fetch(ctx, w.Fetcher.Client, patentsview.PatentNumberQuery(chunk...), patentsview.PatentNumberFields, w.Fetcher.MaxPages)
		if err != nil {
			return nil, errors.Wrapf(err, "fetching chunk %d", i)
		}
		folds[i] = ds
	}
	if err := w.Fetcher.Store.Put(key, folds); err != nil {
		return nil, errors.Wrapf(err, "saving %s", key)
	}
	return folds, nil
}

// Load reads a walk saved by Layers.
func Load(store pdk.Store, name string) (Result, error) {
	res := Result{}
	if err := store.Get(name, &res); err != nil {
		return nil, errors.Wrapf(err, "loading %s", name)
	}
	return res, nil
}
