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
	"time"

	"github.com/pkg/errors"
)

// State is a stage of a pipeline run.
type State int

// Run states. Done and Failed are terminal.
const (
	StateIdle State = iota
	StateExtracting
	StateEmpty
	StateCleaning
	StateLoading
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExtracting:
		return "extracting"
	case StateEmpty:
		return "empty"
	case StateCleaning:
		return "cleaning"
	case StateLoading:
		return "loading"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the report of one pipeline run.
type Result struct {
	Day   Day
	State State
	// FailedIn is the state the run failed in, if State is StateFailed.
	FailedIn State

	Found    int
	Kept     int
	Rejected map[string]int
	Deleted  int
	Inserted int

	Kind     Kind
	Err      error
	Duration time.Duration
}

// NoOp reports whether the run succeeded without touching the store, which
// only happens when the source had no rows for the day. A day whose rows were
// all rejected is not a no-op: its stored trips are deleted.
func (r Result) NoOp() bool { return r.State == StateDone && r.Found == 0 }

// Pipeline runs the ETL for one day at a time.
type Pipeline struct {
	Source  Extractor
	Cleaner *Cleaner
	Store   Store
	// Locker is shared by every run of the pipeline. If nil, the pipeline
	// uses its own.
	Locker *DayLocker

	Log      Logger
	Stats    Statter
	Reporter Reporter

	locker DayLocker
}

// Run extracts, cleans and loads the trips of day. It never retries. On
// failure the error keeps the kind of its cause, see KindOf.
func (p *Pipeline) Run(ctx context.Context, day Day) (res Result, err error) {
	log, stats := p.logger(), p.statter()
	start := time.Now()
	res = Result{Day: day, State: StateIdle}
	defer func() {
		res.Duration = time.Since(start)
		if err != nil {
			res.FailedIn = res.State
			res.State = StateFailed
			res.Kind = KindOf(err)
			res.Err = err
			log.Printf("etl %s failed while %s: %s: %v", day, res.FailedIn, res.Kind, err)
		}
		stats.Count(StatRuns, 1, 1, "state:"+res.State.String())
		stats.Timing(StatDuration, res.Duration, 1)
		if p.Reporter != nil {
			if rerr := p.Reporter.Report(ctx, res); rerr != nil {
				log.Printf("reporting result of %s: %v", day, rerr)
			}
		}
	}()
	if day.IsZero() {
		return res, errors.New("running pipeline for zero day")
	}

	res.State = StateExtracting
	raws, err := p.Source.Extract(ctx, day)
	if err != nil {
		return res, errors.Wrapf(err, "extracting %s", day)
	}
	res.Found = len(raws)
	stats.Count(StatRead, int64(len(raws)), 1)
	if len(raws) == 0 {
		res.State = StateEmpty
		log.Printf("no data found for %s", day)
		res.State = StateDone
		return res, nil
	}
	log.Debugf("extracted %d trips for %s", len(raws), day)

	res.State = StateCleaning
	if err := ctx.Err(); err != nil {
		return res, errors.Wrapf(err, "cleaning %s", day)
	}
	cleaner := p.Cleaner
	if cleaner == nil {
		cleaner = &Cleaner{}
	}
	trips, cs := cleaner.Clean(raws)
	res.Kept = cs.Out
	res.Rejected = cs.Rejected
	stats.Count(StatKept, int64(cs.Out), 1)
	for rule, n := range cs.Rejected {
		stats.Count(StatRejected, int64(n), 1, "rule:"+rule)
	}
	if len(trips) == 0 {
		log.Printf("all %d trips for %s were rejected, clearing the day", cs.In, day)
	} else {
		log.Debugf("kept %d of %d trips for %s", cs.Out, cs.In, day)
	}

	res.State = StateLoading
	locker := p.Locker
	if locker == nil {
		locker = &p.locker
	}
	w := &Writer{Store: p.Store, Locker: locker}
	ls, err := w.Load(ctx, day, trips)
	res.Deleted, res.Inserted = ls.Deleted, ls.Inserted
	stats.Count(StatDeleted, int64(ls.Deleted), 1)
	stats.Count(StatInserted, int64(ls.Inserted), 1)
	if err != nil {
		return res, errors.Wrapf(err, "loading %s", day)
	}

	res.State = StateDone
	log.Printf("etl %s done: found %d, kept %d, deleted %d, inserted %d", day, res.Found, res.Kept, res.Deleted, res.Inserted)
	return res, nil
}

func (p *Pipeline) logger() Logger {
	if p.Log == nil {
		return NopLogger{}
	}
	return p.Log
}

func (p *Pipeline) statter() Statter {
	if p.Stats == nil {
		return NopStatter{}
	}
	return p.Stats
}
