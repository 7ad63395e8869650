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
	"fmt"
	"testing"
	"time"

	"github.com/pilosa/nyctaxi"
)

func TestParseDay(t *testing.T) {
	tests := []struct {
		in    string
		start time.Time
		err   bool
	}{
		{in: "2016-01-31", start: time.Date(2016, 1, 31, 0, 0, 0, 0, time.UTC)},
		{in: "2016-02-29", start: time.Date(2016, 2, 29, 0, 0, 0, 0, time.UTC)},
		{in: "2015-02-29", err: true},
		{in: "2016-02-30", err: true},
		{in: "2016/01/31", err: true},
		{in: "", err: true},
	}
	for i, tst := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			d, err := nyctaxi.ParseDay(tst.in)
			if tst.err {
				if err == nil {
					t.Fatalf("expected error parsing '%s', got %v", tst.in, d)
				}
				return
			}
			if err != nil {
				t.Fatalf("parsing '%s': %v", tst.in, err)
			}
			if !d.Start().Equal(tst.start) {
				t.Fatalf("start of %s: got %v, exp %v", tst.in, d.Start(), tst.start)
			}
			if d.String() != tst.in {
				t.Fatalf("string of %s: got %s", tst.in, d)
			}
		})
	}
}

func TestDayWindow(t *testing.T) {
	d := nyctaxi.MustParseDay("2016-02-28")
	if exp := time.Date(2016, 2, 29, 0, 0, 0, 0, time.UTC); !d.End().Equal(exp) {
		t.Fatalf("end: got %v, exp %v", d.End(), exp)
	}
	if d.Next().String() != "2016-02-29" {
		t.Fatalf("next: %s", d.Next())
	}
	if !d.Before(d.Next()) || d.Next().Before(d) {
		t.Fatalf("before is wrong")
	}
	if !d.Contains(d.Start()) {
		t.Fatalf("day doesn't contain its start")
	}
	if d.Contains(d.End()) {
		t.Fatalf("day contains its end")
	}
	if !d.Contains(d.End().Add(-time.Nanosecond)) {
		t.Fatalf("day doesn't contain its last instant")
	}
}

func TestNaive(t *testing.T) {
	ny := time.FixedZone("EST", -5*3600)
	tm := time.Date(2016, 1, 31, 23, 30, 0, 0, ny)
	n := nyctaxi.Naive(tm)
	if n.Location() != time.UTC || n.Hour() != 23 || n.Day() != 31 {
		t.Fatalf("unexpected naive time %v", n)
	}
}

func TestDayText(t *testing.T) {
	var d nyctaxi.Day
	if err := d.UnmarshalText([]byte("2016-02-01")); err != nil {
		t.Fatalf("unmarshaling: %v", err)
	}
	bs, err := d.MarshalText()
	if err != nil {
		t.Fatalf("marshaling: %v", err)
	}
	if string(bs) != "2016-02-01" {
		t.Fatalf("got %s", bs)
	}
}
