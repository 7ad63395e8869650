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

// Package backend opens the trip store named by the configuration.
package backend

import (
	"context"
	"strings"
	"time"

	"github.com/pilosa/nyctaxi"
	"github.com/pilosa/nyctaxi/boltdb"
	"github.com/pilosa/nyctaxi/leveldb"
	"github.com/pkg/errors"
)

// Store kinds.
const (
	Bolt    = "bolt"
	LevelDB = "leveldb"
)

// Kinds lists the store kinds Open knows.
var Kinds = []string{Bolt, LevelDB}

// Open opens a store of the given kind at path: a file for bolt, a
// directory for leveldb. batchSize <= 0 keeps the store's default.
func Open(kind, path string, batchSize int) (nyctaxi.Backend, error) {
	if path == "" {
		return nil, errors.Errorf("no path for %s store", kind)
	}
	switch strings.ToLower(kind) {
	case Bolt, "boltdb":
		s, err := boltdb.NewStore(path)
		if err != nil {
			return nil, err
		}
		if batchSize > 0 {
			s.BatchSize = batchSize
		}
		return s, nil
	case LevelDB:
		s, err := leveldb.NewStore(path)
		if err != nil {
			return nil, err
		}
		if batchSize > 0 {
			s.BatchSize = batchSize
		}
		return s, nil
	}
	return nil, errors.Errorf("unknown store kind '%s', want one of %s", kind, strings.Join(Kinds, ", "))
}

// OpenReadOnly opens the existing store of the given kind at path for
// reading.
func OpenReadOnly(kind, path string) (nyctaxi.Backend, error) {
	if path == "" {
		return nil, errors.Errorf("no path for %s store", kind)
	}
	switch strings.ToLower(kind) {
	case Bolt, "boltdb":
		s, err := boltdb.OpenReadOnly(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case LevelDB:
		s, err := leveldb.OpenReadOnly(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, errors.Errorf("unknown store kind '%s', want one of %s", kind, strings.Join(Kinds, ", "))
}

// Finder is a nyctaxi.TripFinder which opens the store read-only for every
// call and closes it before returning. The embedded stores lock their files,
// so holding one open would keep every load out; between calls a load can
// take the store, and a call made during a load waits for it up to the
// store's open timeout before failing with StoreUnavailable.
type Finder struct {
	Kind string
	Path string
}

var _ nyctaxi.TripFinder = &Finder{}

func (f *Finder) with(fn func(s nyctaxi.TripFinder) error) error {
	s, err := OpenReadOnly(f.Kind, f.Path)
	if err != nil {
		return err
	}
	err = fn(s)
	if cerr := s.Close(); err == nil && cerr != nil {
		err = nyctaxi.Unavailable(cerr, "close")
	}
	return err
}

// Get implements nyctaxi.TripFinder.
func (f *Finder) Get(ctx context.Context, id nyctaxi.ID) (trip nyctaxi.Trip, err error) {
	err = f.with(func(s nyctaxi.TripFinder) (err error) {
		trip, err = s.Get(ctx, id)
		return err
	})
	return trip, err
}

// TopLongest implements nyctaxi.TripFinder.
func (f *Finder) TopLongest(ctx context.Context, n int) (trips []nyctaxi.Trip, err error) {
	err = f.with(func(s nyctaxi.TripFinder) (err error) {
		trips, err = s.TopLongest(ctx, n)
		return err
	})
	return trips, err
}

// Range implements nyctaxi.TripFinder.
func (f *Finder) Range(ctx context.Context, from, to time.Time) (trips []nyctaxi.Trip, err error) {
	err = f.with(func(s nyctaxi.TripFinder) (err error) {
		trips, err = s.Range(ctx, from, to)
		return err
	})
	return trips, err
}
