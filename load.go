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

	"github.com/pkg/errors"
)

// LoadStats reports what a Load did to the store.
type LoadStats struct {
	Deleted  int
	Inserted int
}

// Writer replaces the stored trips of a day.
type Writer struct {
	Store Store
	// Locker serializes loads of the same day. Writers sharing a store
	// should share a Locker. If nil, loads are not serialized.
	Locker *DayLocker
}

// Load deletes every stored trip picked up on day, then inserts trips. The
// two steps are separate store calls: if the insert fails, the error is a
// *LoadError and the store holds only the trips inserted before the failure.
func (w *Writer) Load(ctx context.Context, day Day, trips []Trip) (LoadStats, error) {
	var stats LoadStats
	if day.IsZero() {
		return stats, errors.New("loading zero day")
	}
	if w.Locker != nil {
		defer w.Locker.Lock(day)()
	}
	if p, ok := w.Store.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return stats, asUnavailable(err, "ping")
		}
	}

	n, err := w.Store.DeleteRange(ctx, day.Start(), day.End())
	if err != nil {
		return stats, asUnavailable(err, "delete "+day.String())
	}
	stats.Deleted = n
	if len(trips) == 0 {
		return stats, nil
	}

	n, err = w.Store.InsertMany(ctx, trips)
	stats.Inserted = n
	if err != nil {
		return stats, &LoadError{
			Day:      day,
			Deleted:  stats.Deleted,
			Inserted: n,
			Err:      asUnavailable(err, "insert"),
		}
	}
	return stats, nil
}

// asUnavailable classifies an unclassified store error as StoreUnavailable.
// Cancellation keeps its own identity.
func asUnavailable(err error, op string) error {
	if KindOf(err) != KindUnknown {
		return err
	}
	if c := errors.Cause(err); c == context.Canceled || c == context.DeadlineExceeded {
		return errors.Wrap(err, op)
	}
	return Unavailable(err, op)
}
