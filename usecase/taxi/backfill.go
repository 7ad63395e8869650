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

package taxi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pilosa/nyctaxi"
	"github.com/pkg/errors"
)

// Backfill runs the pipeline once for every day from Start to End
// inclusive, one day at a time. A failed day is retried up to Retries times,
// RetryDelay apart, and the run moves on to the next day when the retries
// are exhausted.
type Backfill struct {
	*Main

	Start      string
	End        string
	Retries    int
	RetryDelay time.Duration
}

// NewBackfill gets a Backfill over the days of February 2016, retried once
// after a minute.
func NewBackfill() *Backfill {
	return &Backfill{
		Main:       NewMain(),
		Start:      "2016-02-01",
		End:        "2016-02-28",
		Retries:    1,
		RetryDelay: time.Minute,
	}
}

// FailedDays is returned by Backfill.Run when some days could not be loaded.
type FailedDays []nyctaxi.Result

func (f FailedDays) Error() string {
	msgs := make([]string, len(f))
	for i, res := range f {
		msgs[i] = fmt.Sprintf("%s: %v", res.Day, res.Err)
	}
	return fmt.Sprintf("%d days failed: %s", len(f), strings.Join(msgs, "; "))
}

// Run loads every day of the range and returns the final result of each.
func (b *Backfill) Run(ctx context.Context) ([]nyctaxi.Result, error) {
	start, err := nyctaxi.ParseDay(b.Start)
	if err != nil {
		return nil, errors.Wrap(err, "start")
	}
	end, err := nyctaxi.ParseDay(b.End)
	if err != nil {
		return nil, errors.Wrap(err, "end")
	}
	if end.Before(start) {
		return nil, errors.Errorf("end %s is before start %s", end, start)
	}
	if b.Retries < 0 {
		return nil, errors.Errorf("negative retries: %d", b.Retries)
	}

	p, closeFn, err := b.NewPipeline()
	if err != nil {
		return nil, err
	}
	defer closeFn()
	log := p.Log

	var results []nyctaxi.Result
	var failed FailedDays
	for day := start; !end.Before(day); day = day.Next() {
		res, err := b.runDay(ctx, p, log, day)
		results = append(results, res)
		if err != nil {
			if ctx.Err() != nil {
				return results, errors.Wrapf(ctx.Err(), "backfill stopped at %s", day)
			}
			failed = append(failed, res)
		}
	}
	if len(failed) > 0 {
		return results, failed
	}
	return results, nil
}

func (b *Backfill) runDay(ctx context.Context, p *nyctaxi.Pipeline, log nyctaxi.Logger, day nyctaxi.Day) (res nyctaxi.Result, err error) {
	for attempt := 0; ; attempt++ {
		res, err = p.Run(ctx, day)
		if err == nil || attempt >= b.Retries || ctx.Err() != nil {
			return res, err
		}
		log.Printf("%s failed (%s), retrying in %v", day, res.Kind, b.RetryDelay)
		select {
		case <-time.After(b.RetryDelay):
		case <-ctx.Done():
			return res, err
		}
	}
}
