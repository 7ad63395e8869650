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

package nyctaxi_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pilosa/nyctaxi"
	"github.com/pilosa/nyctaxi/mock"
	"github.com/pilosa/nyctaxi/test"
	"github.com/pkg/errors"
)

var jan31 = nyctaxi.MustParseDay("2016-01-31")

func TestWriterReplacesDay(t *testing.T) {
	ctx := context.Background()
	store := mock.NewStore()
	prev := test.ValidTrip(jan31.Start().Add(-time.Second), 1)
	first := test.ValidTrip(jan31.Start(), 2)
	last := test.ValidTrip(jan31.End().Add(-time.Second), 3)
	next := test.ValidTrip(jan31.End(), 4)
	_, err := store.InsertMany(ctx, []nyctaxi.Trip{prev, first, last, next})
	test.ErrNil(t, err, "seeding store")

	w := &nyctaxi.Writer{Store: store, Locker: &nyctaxi.DayLocker{}}
	fresh := test.ValidTrip(jan31.Start().Add(time.Hour), 5)
	stats, err := w.Load(ctx, jan31, []nyctaxi.Trip{fresh})
	test.ErrNil(t, err, "loading")
	test.MustBe(t, nyctaxi.LoadStats{Deleted: 2, Inserted: 1}, stats)

	day, err := store.Range(ctx, jan31.Start(), jan31.End())
	test.ErrNil(t, err, "range")
	if len(day) != 1 || day[0].TripDistance != 5 {
		t.Fatalf("unexpected trips for day: %+v", day)
	}
	if store.Len() != 3 {
		t.Fatalf("neighbouring days touched, %d trips left", store.Len())
	}
	test.MustBe(t, []string{"InsertMany", "Ping", "DeleteRange", "InsertMany"}, store.Calls)
}

func TestWriterPingFailsBeforeDelete(t *testing.T) {
	store := mock.NewStore()
	store.FailPing = true
	w := &nyctaxi.Writer{Store: store}
	_, err := w.Load(context.Background(), jan31, []nyctaxi.Trip{test.ValidTrip(jan31.Start(), 2)})
	if nyctaxi.KindOf(err) != nyctaxi.KindStoreUnavailable {
		t.Fatalf("expected StoreUnavailable, got %v", err)
	}
	if store.Called("DeleteRange") {
		t.Fatalf("delete attempted after failed ping")
	}
}

func TestWriterDeleteFails(t *testing.T) {
	store := mock.NewStore()
	store.FailDelete = true
	w := &nyctaxi.Writer{Store: store}
	_, err := w.Load(context.Background(), jan31, []nyctaxi.Trip{test.ValidTrip(jan31.Start(), 2)})
	if nyctaxi.KindOf(err) != nyctaxi.KindStoreUnavailable {
		t.Fatalf("expected StoreUnavailable, got %v", err)
	}
	if _, ok := err.(*nyctaxi.LoadError); ok {
		t.Fatalf("delete failure reported as partial load")
	}
	if store.Called("InsertMany") {
		t.Fatalf("insert attempted after failed delete")
	}
}

func TestWriterPartialInsert(t *testing.T) {
	ctx := context.Background()
	store := mock.NewStore()
	_, err := store.InsertMany(ctx, []nyctaxi.Trip{test.ValidTrip(jan31.Start(), 1), test.ValidTrip(jan31.Start(), 2)})
	test.ErrNil(t, err, "seeding store")
	store.FailInsertAfter = 2

	w := &nyctaxi.Writer{Store: store}
	batch := []nyctaxi.Trip{
		test.ValidTrip(jan31.Start(), 10),
		test.ValidTrip(jan31.Start(), 11),
		test.ValidTrip(jan31.Start(), 12),
	}
	stats, err := w.Load(ctx, jan31, batch)
	lerr, ok := err.(*nyctaxi.LoadError)
	if !ok {
		t.Fatalf("expected LoadError, got %T %v", err, err)
	}
	if lerr.Deleted != 2 || lerr.Inserted != 2 || lerr.Day != jan31 {
		t.Fatalf("unexpected load error %+v", lerr)
	}
	test.MustBe(t, nyctaxi.LoadStats{Deleted: 2, Inserted: 2}, stats)
	if nyctaxi.KindOf(err) != nyctaxi.KindStoreUnavailable {
		t.Fatalf("expected StoreUnavailable, got %s", nyctaxi.KindOf(err))
	}
	if store.Len() != 2 {
		t.Fatalf("expected the inserted subset to stay, got %d trips", store.Len())
	}
}

func TestWriterEmptyBatchClearsDay(t *testing.T) {
	ctx := context.Background()
	store := mock.NewStore()
	_, err := store.InsertMany(ctx, []nyctaxi.Trip{test.ValidTrip(jan31.Start(), 1)})
	test.ErrNil(t, err, "seeding store")
	w := &nyctaxi.Writer{Store: store}
	stats, err := w.Load(ctx, jan31, nil)
	test.ErrNil(t, err, "loading")
	test.MustBe(t, nyctaxi.LoadStats{Deleted: 1}, stats)
	if store.Len() != 0 {
		t.Fatalf("day not cleared")
	}
}

func TestWriterCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := mock.NewStore()
	w := &nyctaxi.Writer{Store: store}
	_, err := w.Load(ctx, jan31, []nyctaxi.Trip{test.ValidTrip(jan31.Start(), 1)})
	if errors.Cause(err) != context.Canceled {
		t.Fatalf("expected canceled, got %v", err)
	}
	if nyctaxi.KindOf(err) == nyctaxi.KindStoreUnavailable {
		t.Fatalf("cancellation reported as unavailable store")
	}
}

func TestDayLockerSerializes(t *testing.T) {
	l := &nyctaxi.DayLocker{}
	var mu sync.Mutex
	inside := 0
	wg := sync.WaitGroup{}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock(jan31)
			defer unlock()
			mu.Lock()
			inside++
			n := inside
			mu.Unlock()
			if n != 1 {
				t.Errorf("%d holders of the lock", n)
			}
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()
}
