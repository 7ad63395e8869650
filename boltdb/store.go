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

// Package boltdb provides a nyctaxi.Backend storing trips as JSON documents
// in a bolt file. Besides the documents, the file holds two indexes: trips by
// pickup time, used to replace a day, and trips by distance, used to find the
// longest trips.
package boltdb

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pilosa/nyctaxi"
	"github.com/pkg/errors"
)

var (
	tripBucket     = []byte("trips")
	pickupBucket   = []byte("trips_by_pickup")
	distanceBucket = []byte("trips_by_distance")
)

// DefaultBatchSize is the number of trips written per transaction by
// InsertMany.
const DefaultBatchSize = 1000

// Store is a nyctaxi.Backend which keeps trips in boltdb.
type Store struct {
	Db *bolt.DB

	// BatchSize is the number of trips written per transaction.
	BatchSize int

	readOnly bool
}

var _ nyctaxi.Backend = &Store{}

// Close syncs and closes the underlying boltdb.
func (s *Store) Close() error {
	if !s.readOnly {
		if err := s.Db.Sync(); err != nil {
			return errors.Wrap(err, "syncing db")
		}
	}
	return s.Db.Close()
}

// NewStore opens or creates the bolt file at filename. Bolt allows a single
// process to open the file; another one waits for a second and then fails
// with a StoreUnavailable error.
func NewStore(filename string) (s *Store, err error) {
	s = &Store{BatchSize: DefaultBatchSize}
	s.Db, err = bolt.Open(filename, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, nyctaxi.Unavailable(errors.Wrapf(err, "opening db file '%v'", filename), "open")
	}
	err = s.Db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{tripBucket, pickupBucket, distanceBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return errors.Wrapf(err, "creating %s bucket", name)
			}
		}
		return nil
	})
	if err != nil {
		s.Db.Close()
		return nil, nyctaxi.Unavailable(errors.Wrap(err, "ensuring bucket existence"), "open")
	}
	return s, nil
}

// OpenReadOnly opens the existing bolt file at filename for reading. Any
// number of readers may hold the file at once, but not alongside a store
// opened with NewStore: each side waits up to a second for the other to let
// go. Writes to a read-only store fail.
func OpenReadOnly(filename string) (*Store, error) {
	db, err := bolt.Open(filename, 0600, &bolt.Options{Timeout: 1 * time.Second, ReadOnly: true})
	if err != nil {
		return nil, nyctaxi.Unavailable(errors.Wrapf(err, "opening db file '%v' read-only", filename), "open")
	}
	return &Store{Db: db, BatchSize: DefaultBatchSize, readOnly: true}, nil
}

// Ping implements nyctaxi.Pinger.
func (s *Store) Ping(ctx context.Context) error {
	err := s.Db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(tripBucket) == nil {
			return errors.New("trips bucket missing")
		}
		return nil
	})
	return nyctaxi.Unavailable(err, "ping")
}

// DeleteRange implements nyctaxi.Store. The trips and their index entries
// are removed in one transaction.
func (s *Store) DeleteRange(ctx context.Context, from, to time.Time) (n int, err error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	err = s.Db.Update(func(tx *bolt.Tx) error {
		tb, pb, db := tx.Bucket(tripBucket), tx.Bucket(pickupBucket), tx.Bucket(distanceBucket)
		keys, err := pickupKeys(pb, from, to)
		if err != nil {
			return err
		}
		for _, key := range keys {
			id, _ := nyctaxi.PickupKeyID(key)
			doc := tb.Get([]byte(id))
			if doc != nil {
				var trip nyctaxi.Trip
				if err := json.Unmarshal(doc, &trip); err != nil {
					return errors.Wrapf(err, "decoding trip %s", id)
				}
				if err := db.Delete(nyctaxi.DistanceKey(trip.TripDistance, id)); err != nil {
					return errors.Wrap(err, "deleting from distance index")
				}
				if err := tb.Delete([]byte(id)); err != nil {
					return errors.Wrap(err, "deleting trip")
				}
			}
			if err := pb.Delete(key); err != nil {
				return errors.Wrap(err, "deleting from pickup index")
			}
		}
		n = len(keys)
		return nil
	})
	if err != nil {
		return 0, nyctaxi.Unavailable(err, "delete")
	}
	return n, nil
}

// pickupKeys returns the keys of the pickup index in [from, to). The keys
// are copied because they are only valid during the transaction and the
// bucket can't be modified while iterating.
func pickupKeys(pb *bolt.Bucket, from, to time.Time) ([][]byte, error) {
	min := nyctaxi.PickupKey(from, "")
	max := nyctaxi.PickupKey(to, "")
	keys := make([][]byte, 0)
	c := pb.Cursor()
	for k, _ := c.Seek(min); k != nil && bytes.Compare(k, max) < 0; k, _ = c.Next() {
		keys = append(keys, append([]byte(nil), k...))
	}
	return keys, nil
}

// InsertMany implements nyctaxi.Store. Trips are written BatchSize at a time,
// so on failure the leading batches stay stored.
func (s *Store) InsertMany(ctx context.Context, trips []nyctaxi.Trip) (n int, err error) {
	size := s.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	for start := 0; start < len(trips); start += size {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		end := start + size
		if end > len(trips) {
			end = len(trips)
		}
		err = s.Db.Update(func(tx *bolt.Tx) error {
			tb, pb, db := tx.Bucket(tripBucket), tx.Bucket(pickupBucket), tx.Bucket(distanceBucket)
			for _, trip := range trips[start:end] {
				if trip.ID == "" {
					trip.ID = nyctaxi.NewID()
				}
				doc, err := json.Marshal(trip)
				if err != nil {
					return errors.Wrap(err, "encoding trip")
				}
				if err := tb.Put([]byte(trip.ID), doc); err != nil {
					return errors.Wrap(err, "inserting into trips bucket")
				}
				if err := pb.Put(nyctaxi.PickupKey(trip.PickupAt, trip.ID), nil); err != nil {
					return errors.Wrap(err, "inserting into pickup index")
				}
				if err := db.Put(nyctaxi.DistanceKey(trip.TripDistance, trip.ID), nil); err != nil {
					return errors.Wrap(err, "inserting into distance index")
				}
			}
			return nil
		})
		if err != nil {
			return n, nyctaxi.Unavailable(errors.Wrapf(err, "inserting batch at %d", start), "insert")
		}
		n = end
	}
	return n, nil
}

// Get implements nyctaxi.TripFinder.
func (s *Store) Get(ctx context.Context, id nyctaxi.ID) (trip nyctaxi.Trip, err error) {
	err = s.Db.View(func(tx *bolt.Tx) error {
		doc := tx.Bucket(tripBucket).Get([]byte(id))
		if doc == nil {
			return nyctaxi.ErrNotFound
		}
		return errors.Wrapf(json.Unmarshal(doc, &trip), "decoding trip %s", id)
	})
	if err == nyctaxi.ErrNotFound {
		return trip, err
	}
	return trip, nyctaxi.Unavailable(err, "get")
}

// TopLongest implements nyctaxi.TripFinder by walking the distance index
// backwards.
func (s *Store) TopLongest(ctx context.Context, n int) ([]nyctaxi.Trip, error) {
	trips := make([]nyctaxi.Trip, 0)
	err := s.Db.View(func(tx *bolt.Tx) error {
		tb := tx.Bucket(tripBucket)
		c := tx.Bucket(distanceBucket).Cursor()
		for k, _ := c.Last(); k != nil && len(trips) < n; k, _ = c.Prev() {
			trip, err := getTrip(tb, k, nyctaxi.DistanceKeyID)
			if err != nil {
				return err
			}
			trips = append(trips, trip)
		}
		return nil
	})
	return trips, nyctaxi.Unavailable(err, "top longest")
}

// Range implements nyctaxi.TripFinder.
func (s *Store) Range(ctx context.Context, from, to time.Time) ([]nyctaxi.Trip, error) {
	trips := make([]nyctaxi.Trip, 0)
	err := s.Db.View(func(tx *bolt.Tx) error {
		tb := tx.Bucket(tripBucket)
		max := nyctaxi.PickupKey(to, "")
		c := tx.Bucket(pickupBucket).Cursor()
		for k, _ := c.Seek(nyctaxi.PickupKey(from, "")); k != nil && bytes.Compare(k, max) < 0; k, _ = c.Next() {
			trip, err := getTrip(tb, k, nyctaxi.PickupKeyID)
			if err != nil {
				return err
			}
			trips = append(trips, trip)
		}
		return nil
	})
	return trips, nyctaxi.Unavailable(err, "range")
}

// getTrip decodes the trip an index key points to.
func getTrip(tb *bolt.Bucket, key []byte, keyID func([]byte) (nyctaxi.ID, error)) (trip nyctaxi.Trip, err error) {
	id, err := keyID(key)
	if err != nil {
		return trip, err
	}
	doc := tb.Get([]byte(id))
	if doc == nil {
		return trip, errors.Errorf("index points to missing trip %s", id)
	}
	return trip, errors.Wrapf(json.Unmarshal(doc, &trip), "decoding trip %s", id)
}
