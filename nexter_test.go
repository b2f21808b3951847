package pdk_test

import (
	"testing"

	"github.com/patentdata/pdk"
)

func TestNexter(t *testing.T) {
	n := pdk.NewNexter(pdk.NexterStartFrom(19))
	if num := n.Next(); num != 19 {
		t.Fatalf("expected 19 for Next, but %d", num)
	}
	if num := n.Last(); num != 19 {
		t.Fatalf("expected 19 for Last, but %d", num)
	}
}

func TestNexterCount(t *testing.T) {
	n := pdk.NewNexter()
	for i := 0; i < 5; i++ {
		n.Next()
	}
	if c := n.Count(); c != 5 {
		t.Fatalf("expected count 5, got %d", c)
	}
	if l := n.Last(); l != 4 {
		t.Fatalf("expected last 4, got %d", l)
	}
}
