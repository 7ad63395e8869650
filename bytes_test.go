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
	"bytes"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/pilosa/nyctaxi"
)

func TestDistanceKeyOrder(t *testing.T) {
	vals := []float64{math.Inf(-1), -100, -0.5, 0, 0.5, 0.51, 9.9, 10.1, 99.99, 100, math.Inf(1)}
	for i := 1; i < len(vals); i++ {
		a := nyctaxi.DistanceKey(vals[i-1], "x")
		b := nyctaxi.DistanceKey(vals[i], "x")
		if bytes.Compare(a, b) >= 0 {
			t.Fatalf("key of %v not less than key of %v", vals[i-1], vals[i])
		}
	}
}

func TestPickupKeyOrder(t *testing.T) {
	base := time.Date(2016, 1, 31, 0, 0, 0, 0, time.UTC)
	times := []time.Time{
		time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(1500, 6, 1, 12, 0, 0, 0, time.UTC),
		time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(1969, 12, 31, 23, 59, 59, 999999999, time.UTC),
		time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		base,
		base.Add(time.Nanosecond),
		base.Add(24 * time.Hour),
		time.Date(2262, 4, 12, 0, 0, 0, 0, time.UTC),
		time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC),
	}
	for i := 1; i < len(times); i++ {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			a := nyctaxi.PickupKey(times[i-1], "zzz")
			b := nyctaxi.PickupKey(times[i], "aaa")
			if bytes.Compare(a, b) >= 0 {
				t.Fatalf("key of %v not less than key of %v", times[i-1], times[i])
			}
		})
	}
}

func TestKeyID(t *testing.T) {
	id, err := nyctaxi.DistanceKeyID(nyctaxi.DistanceKey(3.2, "abc-123"))
	if err != nil {
		t.Fatalf("getting id: %v", err)
	}
	if id != "abc-123" {
		t.Fatalf("got id %s", id)
	}
	at := time.Date(2300, 1, 31, 8, 0, 0, 0, time.UTC)
	id, err = nyctaxi.PickupKeyID(nyctaxi.PickupKey(at, "def-456"))
	if err != nil {
		t.Fatalf("getting id: %v", err)
	}
	if id != "def-456" {
		t.Fatalf("got id %s", id)
	}
	if _, err := nyctaxi.PickupKeyID(make([]byte, 10)); err == nil {
		t.Fatalf("expected error for short key")
	}
}
