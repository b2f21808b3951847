package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/patentdata/pdk"
	"github.com/patentdata/pdk/test"
)

func TestStore(t *testing.T) {
	d := filepath.Join(t.TempDir(), "data")
	s, err := NewStore(d)
	test.ErrNil(t, err, "getting store")
	defer s.Close()

	has, err := s.Has("2015q1")
	test.ErrNil(t, err, "has")
	test.MustBe(t, has, false)

	ds := pdk.Dataset{1: test.Page(test.Patent("9000001", "utility", test.WithInventor("i", "1.5", "2.5")))}
	test.ErrNil(t, s.Put("2015q1", ds), "put")

	has, err = s.Has("2015q1")
	test.ErrNil(t, err, "has")
	test.MustBe(t, has, true)
	if _, err := os.Stat(filepath.Join(d, "2015q1.json")); err != nil {
		t.Fatalf("expected cache file: %v", err)
	}

	got := pdk.Dataset{}
	test.ErrNil(t, s.Get("2015q1", &got), "get")
	test.MustBe(t, got, ds)

	test.ErrNil(t, s.Put("2014q4", pdk.Dataset{}), "put")
	keys, err := s.Keys()
	test.ErrNil(t, err, "keys")
	test.MustBe(t, keys, []string{"2014q4", "2015q1"})

	err = s.Get("nope", &got)
	if !pdk.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStoreOverwrite(t *testing.T) {
	s, err := NewStore(t.TempDir())
	test.ErrNil(t, err, "getting store")
	test.ErrNil(t, s.Put("k", []int{1}), "first put")
	test.ErrNil(t, s.Put("k", []int{2, 3}), "second put")
	var got []int
	test.ErrNil(t, s.Get("k", &got), "get")
	test.MustBe(t, got, []int{2, 3})

	entries, err := os.ReadDir(s.Dir())
	test.ErrNil(t, err, "reading dir")
	test.MustBe(t, len(entries), 1, "leftover temp files")
}
