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

package nyctaxi

import (
	"context"
	"io"
	"time"
)

// Store is the write side of a trip document store.
type Store interface {
	// DeleteRange removes every trip whose pickup is in [from, to) and
	// returns how many were removed.
	DeleteRange(ctx context.Context, from, to time.Time) (int, error)

	// InsertMany stores trips, assigning an ID to any trip which has none.
	// On failure it returns how many of the leading trips were stored before
	// the failure.
	InsertMany(ctx context.Context, trips []Trip) (int, error)
}

// Pinger is implemented by stores which can check that they are reachable
// without changing anything.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TripFinder is the read side of a trip document store.
type TripFinder interface {
	// Get returns the trip with the given ID, or ErrNotFound.
	Get(ctx context.Context, id ID) (Trip, error)

	// TopLongest returns at most n trips ordered by TripDistance,
	// descending. Trips of equal distance are ordered by ID, descending.
	TopLongest(ctx context.Context, n int) ([]Trip, error)

	// Range returns the trips whose pickup is in [from, to), ordered by
	// pickup.
	Range(ctx context.Context, from, to time.Time) ([]Trip, error)
}

// Backend is a full trip store.
type Backend interface {
	Store
	Pinger
	TripFinder
	io.Closer
}
