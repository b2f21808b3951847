// Package geohash snaps locations onto a geohash grid so that nearby inventor
// locations can be counted together.
package geohash

import (
	"github.com/mmcloughlin/geohash"
	"github.com/patentdata/pdk"
	"github.com/pkg/errors"
)

// MaxPrecision is the longest geohash supported.
const MaxPrecision = 12

// Binner maps locations to the center of the geohash cell containing them.
// Precision is the length of the geohash in characters; 0 disables binning.
type Binner struct {
	Precision int
}

// NewBinner gets a Binner, validating the precision.
func NewBinner(precision int) (*Binner, error) {
	if precision < 0 || precision > MaxPrecision {
		return nil, errors.Errorf("geohash precision must be between 0 and %d, got %d", MaxPrecision, precision)
	}
	return &Binner{Precision: precision}, nil
}

// Hash returns the geohash of loc at the binner's precision.
func (b *Binner) Hash(loc pdk.Location) string {
	return geoHash(loc.Lat, loc.Lon, b.Precision)
}

// Bin returns the center of the cell containing loc, or loc itself if
// binning is disabled.
func (b *Binner) Bin(loc pdk.Location) pdk.Location {
	if b == nil || b.Precision == 0 {
		return loc
	}
	lat, lon := geohash.DecodeCenter(b.Hash(loc))
	return pdk.Location{Lat: lat, Lon: lon}
}

func geoHash(lat, lon float64, precision int) string {
	return geohash.EncodeWithPrecision(lat, lon, uint(precision))
}
