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

// Package nyctaxi loads one day of NYC taxi trip records at a time from a flat
// file into a document store, and serves the stored trips over HTTP.
//
// A run of the pipeline is made of the stages below. Interfaces and the
// default implementations of each stage live in this package; the
// implementations which depend on other software (CSV parsing, S3, bolt,
// leveldb, Kafka, statsd) are in sub-packages.
//
// # Extractor
//
// An Extractor reads the raw trip table and returns the rows whose pickup
// falls on the target day, in source order, as RawTrip values. It is not
// the job of the Extractor to judge the data - every field is parsed into
// its fixed type and nothing else. A cell which cannot be parsed fails the
// whole run with a ParseError naming the row and the field; a source which
// cannot be opened or read fails it with a SourceUnreadable error.
//
// # Cleaner
//
// The Cleaner applies a fixed list of data quality Rules to each RawTrip.
// A row survives only if it passes all of them. Every rule is evaluated
// for every row so that the rejection statistics count each failing rule,
// and no rule may depend on anything but the row it is given. Surviving
// rows are normalized into Trip values (store_and_fwd_flag becomes a bool,
// both endpoints get a geohash cell).
//
// # Writer
//
// The Writer replaces the stored trips of the target day: it deletes every
// trip whose pickup is in [day 00:00, day+1 00:00) and then inserts the
// cleaned batch. These are two separate store calls. If the insert fails
// after the delete succeeded, the day is left holding only what was
// inserted and the deleted trips are gone; the Writer reports exactly that
// in a LoadError. Runs for the same day in one process are serialized by a
// DayLocker. Serializing runs across processes is up to whoever schedules
// them (the embedded stores also refuse a second concurrent opener).
//
// # Pipeline
//
// The Pipeline sequences the stages for one day and reports a Result. A
// day with no rows at all is a successful no-op and the Writer is never
// called. Errors are returned wrapped, but KindOf still reports the kind
// of the failure which started it. The Pipeline never retries.
//
// # Serving
//
// The read API serves a TripFinder. Over an embedded store it uses
// backend.Finder, which opens the store read-only for each request and
// closes it before replying, so an ETL run in another process can take the
// store between requests. While a load holds the store, requests wait for it
// up to the store's open timeout and then fail with StoreUnavailable; a load
// likewise waits for in-flight requests.
package nyctaxi
