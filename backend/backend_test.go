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

package backend_test

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/pilosa/nyctaxi"
	"github.com/pilosa/nyctaxi/backend"
	"github.com/pilosa/nyctaxi/test"
)

func TestOpen(t *testing.T) {
	dir, err := ioutil.TempDir("", "nyctaxi-backend")
	test.ErrNil(t, err, "temp dir")
	defer os.RemoveAll(dir)

	day := nyctaxi.MustParseDay("2016-01-31")
	for i, kind := range backend.Kinds {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			s, err := backend.Open(kind, filepath.Join(dir, kind), 10)
			test.ErrNil(t, err, "opening "+kind)
			defer s.Close()
			ctx := context.Background()
			test.ErrNil(t, s.Ping(ctx), "ping")
			_, err = s.InsertMany(ctx, []nyctaxi.Trip{test.ValidTrip(day.Start(), 4)})
			test.ErrNil(t, err, "inserting")
			trips, err := s.Range(ctx, day.Start(), day.End())
			test.ErrNil(t, err, "range")
			test.MustBe(t, 1, len(trips), kind)
		})
	}
	if _, err := backend.Open("mongo", dir, 0); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
	if _, err := backend.Open(backend.Bolt, "", 0); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestFinder(t *testing.T) {
	ctx := context.Background()
	day := nyctaxi.MustParseDay("2016-01-31")
	for i, kind := range backend.Kinds {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), kind)
			f := &backend.Finder{Kind: kind, Path: path}
			if _, err := f.TopLongest(ctx, 5); nyctaxi.KindOf(err) != nyctaxi.KindStoreUnavailable {
				t.Fatalf("expected StoreUnavailable before the store exists, got %v", err)
			}

			s, err := backend.Open(kind, path, 0)
			test.ErrNil(t, err, "opening "+kind)
			trip := test.ValidTrip(day.Start(), 4)
			trip.ID = "t1"
			_, err = s.InsertMany(ctx, []nyctaxi.Trip{trip})
			test.ErrNil(t, err, "inserting")
			if _, err := f.Get(ctx, "t1"); nyctaxi.KindOf(err) != nyctaxi.KindStoreUnavailable {
				t.Fatalf("expected StoreUnavailable while the writer is open, got %v", err)
			}
			test.ErrNil(t, s.Close(), "closing")

			got, err := f.Get(ctx, "t1")
			test.ErrNil(t, err, "get")
			test.MustBe(t, 4.0, got.TripDistance, "distance")
			if _, err := f.Get(ctx, "t2"); err != nyctaxi.ErrNotFound {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			top, err := f.TopLongest(ctx, 5)
			test.ErrNil(t, err, "top longest")
			test.MustBe(t, 1, len(top), "top longest")
			trips, err := f.Range(ctx, day.Start(), day.End())
			test.ErrNil(t, err, "range")
			test.MustBe(t, 1, len(trips), "range")

			// nothing is left open between calls.
			s, err = backend.Open(kind, path, 0)
			test.ErrNil(t, err, "reopening "+kind)
			test.ErrNil(t, s.Close(), "closing")
		})
	}
}
