// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

package boltdb

import (
	"path/filepath"
	"testing"

	"github.com/patentdata/pdk"
	"github.com/patentdata/pdk/test"
)

func TestBoltStore(t *testing.T) {
	boltFile := filepath.Join(t.TempDir(), "cache.db")
	s, err := NewStore(boltFile)
	if err != nil {
		t.Fatalf("couldn't get bolt db: %v", err)
	}

	ds := pdk.Dataset{1: test.Page(test.Patent("9000001", "utility", test.WithCitations("1", "2")))}
	if err := s.Put("2015q1", ds); err != nil {
		t.Fatalf("putting: %v", err)
	}
	has, err := s.Has("2015q1")
	if err != nil || !has {
		t.Fatalf("expected key after put: %v %v", has, err)
	}
	if has, _ := s.Has("2015q2"); has {
		t.Fatalf("unexpected key 2015q2")
	}

	err = s.Close()
	if err != nil {
		t.Fatalf("closing bolt db: %v", err)
	}

	s, err = NewStore(boltFile)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer s.Close()

	got := pdk.Dataset{}
	if err := s.Get("2015q1", &got); err != nil {
		t.Fatalf("after reopen, getting: %v", err)
	}
	test.MustBe(t, got, ds, "after reopen")

	if err := s.Get("2015q2", &got); !pdk.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := s.Put("cites", map[string]int{"a": 1}); err != nil {
		t.Fatalf("putting: %v", err)
	}
	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("listing keys: %v", err)
	}
	test.MustBe(t, keys, []string{"2015q1", "cites"})
}
