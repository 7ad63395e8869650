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
	"time"

	"github.com/pkg/errors"
)

// DayLayout is the layout of a Day in its text form.
const DayLayout = "2006-01-02"

// Day is a calendar date without a time zone. All timestamps handled by this
// package are naive wall clock times, represented as UTC.
type Day struct {
	year  int
	month time.Month
	day   int
}

// ParseDay parses a YYYY-MM-DD date. Dates which don't exist on the
// calendar (e.g. 2016-02-30) are rejected.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return Day{}, errors.Wrapf(err, "parsing day '%s'", s)
	}
	return DayOf(t), nil
}

// MustParseDay is like ParseDay but panics on error. For tests and constants.
func MustParseDay(s string) Day {
	d, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DayOf returns the calendar date of t's wall clock.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{year: y, month: m, day: d}
}

// IsZero reports whether d is the zero Day, which is not a valid date.
func (d Day) IsZero() bool { return d == Day{} }

// Start returns 00:00 of the day.
func (d Day) Start() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// End returns 00:00 of the following day, the exclusive end of d.
func (d Day) End() time.Time {
	return d.Start().AddDate(0, 0, 1)
}

// Next returns the following day.
func (d Day) Next() Day { return DayOf(d.End()) }

// Before reports whether d is earlier than o.
func (d Day) Before(o Day) bool { return d.Start().Before(o.Start()) }

// Contains reports whether the wall clock date of t is d.
func (d Day) Contains(t time.Time) bool { return DayOf(t) == d }

func (d Day) String() string { return d.Start().Format(DayLayout) }

// MarshalText implements encoding.TextMarshaler.
func (d Day) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Day) UnmarshalText(text []byte) (err error) {
	*d, err = ParseDay(string(text))
	return err
}

// Naive drops the zone of t and returns its wall clock as UTC.
func Naive(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
