package pdk_test

import (
	"testing"

	"github.com/patentdata/pdk"
	"github.com/patentdata/pdk/test"
)

func TestInventorLocation(t *testing.T) {
	tests := []struct {
		lat, lon string
		exp      pdk.Location
		ok       bool
	}{
		{lat: "37.3861", lon: "-122.0839", exp: pdk.Location{Lat: 37.3861, Lon: -122.0839}, ok: true},
		{lat: "0.1", lon: "0.1", ok: false},
		{lat: test.Null, lon: "12.0", ok: false},
		{lat: "12.0", lon: test.Null, ok: false},
		{lat: "north", lon: "12.0", ok: false},
		{lat: "0.10", lon: "5", exp: pdk.Location{Lat: 0.1, Lon: 5}, ok: true},
	}
	for i, tst := range tests {
		p := test.Patent("1", "utility", test.WithInventor("k", tst.lat, tst.lon))
		loc, ok := p.Inventors[0].Location()
		if ok != tst.ok {
			t.Fatalf("test %d: expected ok=%v, got %v", i, tst.ok, ok)
		}
		if loc != tst.exp {
			t.Fatalf("test %d: expected %v, got %v", i, tst.exp, loc)
		}
	}
}

func TestPatentCountable(t *testing.T) {
	tests := []struct {
		typ       string
		countable bool
		reissue   bool
	}{
		{typ: "utility", countable: true},
		{typ: "design", countable: true},
		{typ: "reissue", countable: false, reissue: true},
		{typ: "", countable: false},
		{typ: test.Null, countable: false},
	}
	for _, tst := range tests {
		p := test.Patent("1", tst.typ)
		if p.Countable() != tst.countable {
			t.Errorf("type %q: expected countable=%v", tst.typ, tst.countable)
		}
		if p.Reissue() != tst.reissue {
			t.Errorf("type %q: expected reissue=%v", tst.typ, tst.reissue)
		}
	}
}

func TestDatasetPagesInOrder(t *testing.T) {
	d := pdk.Dataset{
		3: test.Page(test.Patent("3", "utility")),
		1: test.Page(test.Patent("1", "utility")),
		2: test.Page(test.Patent("2", "design")),
	}
	test.MustBe(t, d.PageNumbers(), []int{1, 2, 3})
	var nums []string
	for _, p := range d.Pages() {
		nums = append(nums, pdk.Str(p.Patents[0].Number))
	}
	test.MustBe(t, nums, []string{"1", "2", "3"})
	test.MustBe(t, d.NumPatents(), 3)

	f := pdk.Folds{1: pdk.Dataset{1: test.Page(test.Patent("b", "utility"))}, 0: d}
	test.MustBe(t, len(f.Pages()), 4)
	test.MustBe(t, pdk.Str(f.Pages()[3].Patents[0].Number), "b")
}
