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

// Package leveldb provides a nyctaxi.Backend storing trips as JSON documents
// in a leveldb directory, with the same indexes as the boltdb package kept
// under their own key prefixes.
package leveldb

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/pilosa/nyctaxi"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var (
	docPrefix      = []byte("doc/")
	pickupPrefix   = []byte("pickup/")
	distancePrefix = []byte("dist/")
)

// DefaultBatchSize is the number of trips written per leveldb batch by
// InsertMany.
const DefaultBatchSize = 1000

// Store is a nyctaxi.Backend which keeps trips in leveldb.
type Store struct {
	db *leveldb.DB

	// BatchSize is the number of trips written per batch.
	BatchSize int
}

var _ nyctaxi.Backend = &Store{}

// OpenTimeout is how long opening a store keeps retrying while another
// opener holds the lock file.
const OpenTimeout = time.Second

// NewStore opens or creates the leveldb at dirname. Leveldb holds a lock
// file in the directory, so while another store is open on it NewStore
// retries for OpenTimeout and then fails with a StoreUnavailable error.
func NewStore(dirname string) (*Store, error) {
	err := os.MkdirAll(dirname, 0700)
	if err != nil {
		return nil, nyctaxi.Unavailable(errors.Wrap(err, "making directory"), "open")
	}
	db, err := openFile(dirname, &opt.Options{})
	if err != nil {
		return nil, nyctaxi.Unavailable(errors.Wrapf(err, "opening leveldb at %v", dirname), "open")
	}
	return &Store{db: db, BatchSize: DefaultBatchSize}, nil
}

// OpenReadOnly opens the existing leveldb at dirname for reading. Readers
// share the lock file, but exclude a store opened with NewStore. Writes to
// a read-only store fail.
func OpenReadOnly(dirname string) (*Store, error) {
	db, err := openFile(dirname, &opt.Options{ReadOnly: true, ErrorIfMissing: true})
	if err != nil {
		return nil, nyctaxi.Unavailable(errors.Wrapf(err, "opening leveldb at %v read-only", dirname), "open")
	}
	return &Store{db: db, BatchSize: DefaultBatchSize}, nil
}

// openFile retries leveldb.OpenFile until OpenTimeout, as the lock file
// is taken without waiting.
func openFile(dirname string, o *opt.Options) (*leveldb.DB, error) {
	deadline := time.Now().Add(OpenTimeout)
	for {
		db, err := leveldb.OpenFile(dirname, o)
		if err == nil || time.Now().After(deadline) || os.IsNotExist(err) {
			return db, err
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// Close closes the underlying leveldb.
func (s *Store) Close() error {
	return errors.Wrap(s.db.Close(), "closing leveldb")
}

func key(prefix []byte, k []byte) []byte {
	return append(append(make([]byte, 0, len(prefix)+len(k)), prefix...), k...)
}

// Ping implements nyctaxi.Pinger.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.db.GetProperty("leveldb.stats")
	return nyctaxi.Unavailable(err, "ping")
}

func pickupRange(from, to time.Time) *util.Range {
	return &util.Range{
		Start: key(pickupPrefix, nyctaxi.PickupKey(from, "")),
		Limit: key(pickupPrefix, nyctaxi.PickupKey(to, "")),
	}
}

// DeleteRange implements nyctaxi.Store. All removals are written in one
// batch.
func (s *Store) DeleteRange(ctx context.Context, from, to time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	snap, err := s.db.GetSnapshot()
	if err != nil {
		return 0, nyctaxi.Unavailable(errors.Wrap(err, "getting snapshot"), "delete")
	}
	defer snap.Release()

	batch := new(leveldb.Batch)
	n := 0
	iter := snap.NewIterator(pickupRange(from, to), nil)
	for iter.Next() {
		pk := iter.Key()[len(pickupPrefix):]
		id, err := nyctaxi.PickupKeyID(pk)
		if err != nil {
			iter.Release()
			return 0, nyctaxi.Unavailable(err, "delete")
		}
		doc, err := snap.Get(key(docPrefix, []byte(id)), nil)
		if err == nil {
			var trip nyctaxi.Trip
			if err := json.Unmarshal(doc, &trip); err != nil {
				iter.Release()
				return 0, nyctaxi.Unavailable(errors.Wrapf(err, "decoding trip %s", id), "delete")
			}
			batch.Delete(key(distancePrefix, nyctaxi.DistanceKey(trip.TripDistance, id)))
			batch.Delete(key(docPrefix, []byte(id)))
		} else if err != leveldb.ErrNotFound {
			iter.Release()
			return 0, nyctaxi.Unavailable(errors.Wrapf(err, "fetching trip %s", id), "delete")
		}
		batch.Delete(key(pickupPrefix, pk))
		n++
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return 0, nyctaxi.Unavailable(errors.Wrap(err, "iterating pickup index"), "delete")
	}
	if err := s.db.Write(batch, &opt.WriteOptions{Sync: true}); err != nil {
		return 0, nyctaxi.Unavailable(errors.Wrap(err, "writing delete batch"), "delete")
	}
	return n, nil
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
		batch := new(leveldb.Batch)
		for _, trip := range trips[start:end] {
			if trip.ID == "" {
				trip.ID = nyctaxi.NewID()
			}
			doc, err := json.Marshal(trip)
			if err != nil {
				return n, errors.Wrap(err, "encoding trip")
			}
			batch.Put(key(docPrefix, []byte(trip.ID)), doc)
			batch.Put(key(pickupPrefix, nyctaxi.PickupKey(trip.PickupAt, trip.ID)), nil)
			batch.Put(key(distancePrefix, nyctaxi.DistanceKey(trip.TripDistance, trip.ID)), nil)
		}
		if err := s.db.Write(batch, &opt.WriteOptions{Sync: true}); err != nil {
			return n, nyctaxi.Unavailable(errors.Wrapf(err, "writing batch at %d", start), "insert")
		}
		n = end
	}
	return n, nil
}

// Get implements nyctaxi.TripFinder.
func (s *Store) Get(ctx context.Context, id nyctaxi.ID) (trip nyctaxi.Trip, err error) {
	doc, err := s.db.Get(key(docPrefix, []byte(id)), nil)
	if err == leveldb.ErrNotFound {
		return trip, nyctaxi.ErrNotFound
	} else if err != nil {
		return trip, nyctaxi.Unavailable(errors.Wrap(err, "fetching trip"), "get")
	}
	err = json.Unmarshal(doc, &trip)
	return trip, nyctaxi.Unavailable(errors.Wrapf(err, "decoding trip %s", id), "get")
}

func (s *Store) getIndexed(indexKey []byte, keyID func([]byte) (nyctaxi.ID, error)) (nyctaxi.Trip, error) {
	id, err := keyID(indexKey)
	if err != nil {
		return nyctaxi.Trip{}, err
	}
	doc, err := s.db.Get(key(docPrefix, []byte(id)), nil)
	if err != nil {
		return nyctaxi.Trip{}, errors.Wrapf(err, "fetching indexed trip %s", id)
	}
	var trip nyctaxi.Trip
	return trip, errors.Wrapf(json.Unmarshal(doc, &trip), "decoding trip %s", id)
}

// TopLongest implements nyctaxi.TripFinder by walking the distance index
// backwards.
func (s *Store) TopLongest(ctx context.Context, n int) ([]nyctaxi.Trip, error) {
	trips := make([]nyctaxi.Trip, 0)
	iter := s.db.NewIterator(util.BytesPrefix(distancePrefix), nil)
	defer iter.Release()
	for ok := iter.Last(); ok && len(trips) < n; ok = iter.Prev() {
		trip, err := s.getIndexed(iter.Key()[len(distancePrefix):], nyctaxi.DistanceKeyID)
		if err != nil {
			return nil, nyctaxi.Unavailable(err, "top longest")
		}
		trips = append(trips, trip)
	}
	return trips, nyctaxi.Unavailable(iter.Error(), "top longest")
}

// Range implements nyctaxi.TripFinder.
func (s *Store) Range(ctx context.Context, from, to time.Time) ([]nyctaxi.Trip, error) {
	trips := make([]nyctaxi.Trip, 0)
	iter := s.db.NewIterator(pickupRange(from, to), nil)
	defer iter.Release()
	for iter.Next() {
		trip, err := s.getIndexed(iter.Key()[len(pickupPrefix):], nyctaxi.PickupKeyID)
		if err != nil {
			return nil, nyctaxi.Unavailable(err, "range")
		}
		trips = append(trips, trip)
	}
	return trips, nyctaxi.Unavailable(iter.Error(), "range")
}
