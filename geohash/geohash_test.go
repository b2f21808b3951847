package geohash_test

import (
	"math"
	"testing"

	"github.com/patentdata/pdk"
	"github.com/patentdata/pdk/geohash"
)

func TestBin(t *testing.T) {
	tests := []struct {
		name      string
		precision int
		a, b      pdk.Location
		same      bool
	}{
		{
			name:      "nearby points share a coarse cell",
			precision: 4,
			a:         pdk.Location{Lat: 37.3861, Lon: -122.0839},
			b:         pdk.Location{Lat: 37.3900, Lon: -122.0800},
			same:      true,
		},
		{
			name:      "distant points do not",
			precision: 4,
			a:         pdk.Location{Lat: 37.3861, Lon: -122.0839},
			b:         pdk.Location{Lat: 48.1351, Lon: 11.5820},
			same:      false,
		},
		{
			name:      "zero precision leaves locations alone",
			precision: 0,
			a:         pdk.Location{Lat: 1, Lon: 2},
			b:         pdk.Location{Lat: 1.0001, Lon: 2},
			same:      false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			b, err := geohash.NewBinner(test.precision)
			if err != nil {
				t.Fatalf("getting binner: %v", err)
			}
			ba, bb := b.Bin(test.a), b.Bin(test.b)
			if (ba == bb) != test.same {
				t.Fatalf("expected same=%v for %v and %v", test.same, ba, bb)
			}
			if test.precision > 0 {
				if len(b.Hash(test.a)) != test.precision {
					t.Fatalf("unexpected hash length %q", b.Hash(test.a))
				}
				if math.Abs(ba.Lat-test.a.Lat) > 1 || math.Abs(ba.Lon-test.a.Lon) > 1 {
					t.Fatalf("bin center %v too far from %v", ba, test.a)
				}
			}
		})
	}
}

func TestNewBinnerPrecision(t *testing.T) {
	if _, err := geohash.NewBinner(13); err == nil {
		t.Fatalf("expected error for precision 13")
	}
	if _, err := geohash.NewBinner(-1); err == nil {
		t.Fatalf("expected error for negative precision")
	}
}
