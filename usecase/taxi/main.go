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

// Package taxi wires the trip pipeline to its configured source, store,
// stats and reports. Main runs one day, Backfill runs a range of days.
package taxi

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/pilosa/nyctaxi"
	"github.com/pilosa/nyctaxi/aws/s3"
	"github.com/pilosa/nyctaxi/backend"
	"github.com/pilosa/nyctaxi/csv"
	"github.com/pilosa/nyctaxi/datadog"
	"github.com/pilosa/nyctaxi/kafka"
	"github.com/pilosa/nyctaxi/termstat"
	"github.com/pkg/errors"
)

// DefaultDate is the day loaded when none is given.
const DefaultDate = "2016-01-31"

// Main holds the config for one ETL run.
type Main struct {
	Date       string   `help:"Day to load, as YYYY-MM-DD."`
	Source     string   `help:"Trip CSV: a local path, an http(s) URL or s3://bucket/key."`
	Region     string   `help:"AWS region of an S3 source."`
	Store      string   `help:"Kind of trip store: bolt or leveldb."`
	StorePath  string   `help:"Bolt file or leveldb directory holding the trips."`
	BatchSize  int      `help:"Number of trips written per store transaction."`
	KafkaHosts []string `help:"Kafka brokers receiving run reports. No reports are sent if empty."`
	KafkaTopic string   `help:"Kafka topic of run reports."`
	StatsdAddr string   `help:"Address of a statsd agent receiving run stats."`
	TermStats  bool     `help:"Print stats to stderr while running."`
	Verbose    bool     `help:"Enable verbose logging."`
	LogPath    string   `help:"Log to this file instead of stderr."`

	Stderr io.Writer `flag:"-"`

	// Opener, Backend and Reporter replace the configured ones when set.
	// A Backend set here is not closed by Main.
	Opener   nyctaxi.Opener   `flag:"-"`
	Backend  nyctaxi.Backend  `flag:"-"`
	Reporter nyctaxi.Reporter `flag:"-"`
}

// NewMain gets a new Main with default values.
func NewMain() *Main {
	return &Main{
		Date:       DefaultDate,
		Source:     "dataset_sample.csv",
		Region:     "us-east-1",
		Store:      backend.Bolt,
		StorePath:  "trips.db",
		BatchSize:  1000,
		KafkaTopic: "nyctaxi-runs",
		Stderr:     os.Stderr,
	}
}

// Run loads the trips of m.Date.
func (m *Main) Run(ctx context.Context) (nyctaxi.Result, error) {
	day, err := nyctaxi.ParseDay(m.Date)
	if err != nil {
		return nyctaxi.Result{}, err
	}
	p, closeFn, err := m.NewPipeline()
	if err != nil {
		return nyctaxi.Result{Day: day, State: nyctaxi.StateFailed, Kind: nyctaxi.KindOf(err), Err: err}, err
	}
	defer closeFn()
	return p.Run(ctx, day)
}

// NewPipeline opens everything the configuration names and returns a
// pipeline over it, along with a function releasing it all.
func (m *Main) NewPipeline() (p *nyctaxi.Pipeline, closeFn func(), err error) {
	var closers []io.Closer
	closeFn = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i].Close()
		}
	}
	defer func() {
		if err != nil {
			closeFn()
		}
	}()

	stderr := m.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	logOut := stderr
	if m.LogPath != "" {
		f, err := os.OpenFile(m.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening log file")
		}
		closers = append(closers, f)
		logOut = f
	}
	log := nyctaxi.NewLogger(logOut, m.Verbose)

	opener := m.Opener
	if opener == nil {
		opener, err = m.opener()
		if err != nil {
			return nil, nil, err
		}
	}
	source := csv.NewSource(m.Source, csv.WithOpener(opener), csv.WithLogger(log))

	store := m.Backend
	if store == nil {
		store, err = backend.Open(m.Store, m.StorePath, m.BatchSize)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening store")
		}
		closers = append(closers, store)
	}

	var stats nyctaxi.MultiStatter
	if m.TermStats {
		ts := termstat.NewCollector(stderr, time.Second)
		closers = append(closers, ts)
		stats = append(stats, ts)
	}
	if m.StatsdAddr != "" {
		dd, err := datadog.NewStatter(m.StatsdAddr, log)
		if err != nil {
			return nil, nil, errors.Wrap(err, "connecting to statsd")
		}
		closers = append(closers, dd)
		stats = append(stats, dd)
	}

	reporter := m.Reporter
	if reporter == nil && len(m.KafkaHosts) > 0 {
		kr, err := kafka.NewReporter(m.KafkaHosts, m.KafkaTopic)
		if err != nil {
			return nil, nil, errors.Wrap(err, "connecting to kafka")
		}
		closers = append(closers, kr)
		reporter = kr
	}

	p = &nyctaxi.Pipeline{
		Source:   source,
		Cleaner:  &nyctaxi.Cleaner{},
		Store:    store,
		Log:      log,
		Reporter: reporter,
	}
	if len(stats) > 0 {
		p.Stats = stats
	}
	return p, closeFn, nil
}

func (m *Main) opener() (nyctaxi.Opener, error) {
	if s3.IsLocation(m.Source) {
		o, err := s3.NewOpener(m.Region)
		return o, errors.Wrap(err, "getting s3 opener")
	}
	return &csv.URLOpener{}, nil
}
