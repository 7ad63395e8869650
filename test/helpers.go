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

// Package test holds helpers shared by the tests of several packages.
package test

import (
	"io/ioutil"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/pilosa/nyctaxi"
)

// MustBe uses reflect.DeepEqual to assert that thing1 and thing2 are equal, and
// fails otherwise.
func MustBe(t *testing.T, thing1, thing2 interface{}, context ...string) {
	t.Helper()
	var ctx string
	if len(context) == 0 {
		ctx = ""
	} else {
		ctx = context[0] + ": "
	}
	if !reflect.DeepEqual(thing1, thing2) {
		t.Fatalf("%v'%#v' != '%#v'", ctx, thing1, thing2)
	}
}

// ErrNil asserts that the err is nil and fails otherwise.
func ErrNil(t *testing.T, err error, ctx string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%v: %v", ctx, err)
	}
}

// TempFileName returns the name of a new empty temporary file which is
// removed at the end of the test.
func TempFileName(t *testing.T) string {
	t.Helper()
	tf, err := ioutil.TempFile("", "nyctaxi")
	if err != nil {
		t.Fatalf("couldn't get temp file: %v", err)
	}
	err = tf.Close()
	if err != nil {
		t.Fatalf("couldn't close temp file: %v", err)
	}
	t.Cleanup(func() { os.Remove(tf.Name()) })
	return tf.Name()
}

// TempFile writes content to a new temporary file and returns its name.
func TempFile(t *testing.T, content string) string {
	t.Helper()
	name := TempFileName(t)
	if err := ioutil.WriteFile(name, []byte(content), 0600); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return name
}

// Time parses a "2006-01-02 15:04:05" wall clock time.
func Time(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		t.Fatalf("parsing time %s: %v", s, err)
	}
	return tm
}

func f(v float64) *float64 { return &v }
func i(v int) *int         { return &v }

// ValidRaw returns a RawTrip picked up at pickup which passes every rule.
func ValidRaw(pickup time.Time) nyctaxi.RawTrip {
	dropoff := pickup.Add(15 * time.Minute)
	return nyctaxi.RawTrip{
		PickupAt:             pickup,
		DropoffAt:            &dropoff,
		PickupLatitude:       f(40.7506),
		PickupLongitude:      f(-73.9935),
		DropoffLatitude:      f(40.7614),
		DropoffLongitude:     f(-73.9776),
		PassengerCount:       i(1),
		TripDistance:         f(2.3),
		RateCode:             i(1),
		PaymentType:          i(1),
		FareAmount:           f(11),
		Extra:                f(0.5),
		MTATax:               f(0.5),
		TipAmount:            f(2.36),
		TollsAmount:          f(0),
		ImprovementSurcharge: f(0.3),
		TotalAmount:          f(14.66),
		StoreAndFwdFlag:      "N",
	}
}

// ValidTrip returns a normalized trip picked up at pickup with the given
// distance.
func ValidTrip(pickup time.Time, distance float64) nyctaxi.Trip {
	return nyctaxi.Trip{
		PickupAt:             pickup,
		DropoffAt:            pickup.Add(15 * time.Minute),
		PickupLatitude:       40.7506,
		PickupLongitude:      -73.9935,
		DropoffLatitude:      40.7614,
		DropoffLongitude:     -73.9776,
		PassengerCount:       1,
		TripDistance:         distance,
		RateCode:             1,
		PaymentType:          1,
		FareAmount:           11,
		Extra:                0.5,
		MTATax:               0.5,
		TipAmount:            2.36,
		ImprovementSurcharge: 0.3,
		TotalAmount:          14.66,
	}
}
