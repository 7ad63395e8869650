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

// Package mock provides in-memory implementations of the nyctaxi interfaces
// for use in tests.
package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pilosa/nyctaxi"
	"github.com/pkg/errors"
)

// ErrInjected is returned by the operations of a Store set up to fail.
var ErrInjected = errors.New("injected failure")

// Store is an in-memory nyctaxi.Backend. Failures can be injected with the
// Fail fields, and every call is appended to Calls.
type Store struct {
	mu    sync.Mutex
	trips map[nyctaxi.ID]nyctaxi.Trip

	FailPing   bool
	FailDelete bool
	// FailInsertAfter makes InsertMany fail once that many trips were
	// inserted by the call. Negative means never.
	FailInsertAfter int
	FailFind        bool

	// Calls records the name of every operation called, in order.
	Calls []string
}

var _ nyctaxi.Backend = &Store{}

// NewStore returns an empty Store which never fails.
func NewStore() *Store {
	return &Store{
		trips:           make(map[nyctaxi.ID]nyctaxi.Trip),
		FailInsertAfter: -1,
	}
}

func (s *Store) call(name string) {
	s.Calls = append(s.Calls, name)
}

// Called reports whether name was called.
func (s *Store) Called(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.Calls {
		if c == name {
			return true
		}
	}
	return false
}

// Ping implements nyctaxi.Pinger.
func (s *Store) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.call("Ping")
	if s.FailPing {
		return ErrInjected
	}
	return nil
}

// DeleteRange implements nyctaxi.Store.
func (s *Store) DeleteRange(ctx context.Context, from, to time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.call("DeleteRange")
	if s.FailDelete {
		return 0, ErrInjected
	}
	n := 0
	for id, t := range s.trips {
		if !t.PickupAt.Before(from) && t.PickupAt.Before(to) {
			delete(s.trips, id)
			n++
		}
	}
	return n, nil
}

// InsertMany implements nyctaxi.Store.
func (s *Store) InsertMany(ctx context.Context, trips []nyctaxi.Trip) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.call("InsertMany")
	for i, t := range trips {
		if s.FailInsertAfter >= 0 && i >= s.FailInsertAfter {
			return i, ErrInjected
		}
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if t.ID == "" {
			t.ID = nyctaxi.NewID()
		}
		s.trips[t.ID] = t
	}
	return len(trips), nil
}

// Get implements nyctaxi.TripFinder.
func (s *Store) Get(ctx context.Context, id nyctaxi.ID) (nyctaxi.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.call("Get")
	if s.FailFind {
		return nyctaxi.Trip{}, ErrInjected
	}
	t, ok := s.trips[id]
	if !ok {
		return nyctaxi.Trip{}, nyctaxi.ErrNotFound
	}
	return t, nil
}

// TopLongest implements nyctaxi.TripFinder.
func (s *Store) TopLongest(ctx context.Context, n int) ([]nyctaxi.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.call("TopLongest")
	if s.FailFind {
		return nil, ErrInjected
	}
	all := s.all()
	sort.Slice(all, func(i, j int) bool {
		if all[i].TripDistance != all[j].TripDistance {
			return all[i].TripDistance > all[j].TripDistance
		}
		return all[i].ID > all[j].ID
	})
	if n < len(all) {
		all = all[:n]
	}
	return all, nil
}

// Range implements nyctaxi.TripFinder.
func (s *Store) Range(ctx context.Context, from, to time.Time) ([]nyctaxi.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.call("Range")
	if s.FailFind {
		return nil, ErrInjected
	}
	var res []nyctaxi.Trip
	for _, t := range s.all() {
		if !t.PickupAt.Before(from) && t.PickupAt.Before(to) {
			res = append(res, t)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].PickupAt.Equal(res[j].PickupAt) {
			return res[i].PickupAt.Before(res[j].PickupAt)
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}

// Len returns the number of stored trips.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.trips)
}

// Close implements io.Closer.
func (s *Store) Close() error { return nil }

func (s *Store) all() []nyctaxi.Trip {
	all := make([]nyctaxi.Trip, 0, len(s.trips))
	for _, t := range s.trips {
		all = append(all, t)
	}
	return all
}

// Extractor is a nyctaxi.Extractor returning fixed trips.
type Extractor struct {
	Trips []nyctaxi.RawTrip
	Err   error
	Calls int
}

// Extract implements nyctaxi.Extractor. It returns the trips picked up on
// day.
func (e *Extractor) Extract(ctx context.Context, day nyctaxi.Day) ([]nyctaxi.RawTrip, error) {
	e.Calls++
	if e.Err != nil {
		return nil, e.Err
	}
	var res []nyctaxi.RawTrip
	for _, r := range e.Trips {
		if day.Contains(r.PickupAt) {
			res = append(res, r)
		}
	}
	return res, nil
}

// Reporter records the results it is given.
type Reporter struct {
	mu      sync.Mutex
	Results []nyctaxi.Result
	Err     error
}

// Report implements nyctaxi.Reporter.
func (r *Reporter) Report(ctx context.Context, res nyctaxi.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Results = append(r.Results, res)
	return r.Err
}
