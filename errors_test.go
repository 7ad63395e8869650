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
	"strings"
	"testing"

	"github.com/pilosa/nyctaxi"
	"github.com/pkg/errors"
)

func TestKindOf(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		err  error
		kind nyctaxi.Kind
	}{
		{err: nil, kind: nyctaxi.KindUnknown},
		{err: base, kind: nyctaxi.KindUnknown},
		{err: nyctaxi.Unreadable(base, "open"), kind: nyctaxi.KindSourceUnreadable},
		{err: errors.Wrap(nyctaxi.Unreadable(base, "open"), "extracting"), kind: nyctaxi.KindSourceUnreadable},
		{err: errors.Wrap(&nyctaxi.ParseError{Row: 3, Field: "trip_distance", Value: "x", Err: base}, "a"), kind: nyctaxi.KindSourceParse},
		{err: errors.Wrap(nyctaxi.Unavailable(base, "ping"), "loading"), kind: nyctaxi.KindStoreUnavailable},
		{err: &nyctaxi.LoadError{Err: nyctaxi.Unavailable(base, "insert")}, kind: nyctaxi.KindStoreUnavailable},
	}
	for i, tst := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			if k := nyctaxi.KindOf(tst.err); k != tst.kind {
				t.Fatalf("got kind %s, exp %s", k, tst.kind)
			}
		})
	}
}

func TestParseErrorMessage(t *testing.T) {
	inner := errors.New("invalid syntax")
	err := &nyctaxi.ParseError{Row: 7, Field: "passenger_count", Value: "two", Err: inner}
	msg := err.Error()
	for _, part := range []string{"row 7", "passenger_count", "two"} {
		if !strings.Contains(msg, part) {
			t.Fatalf("message '%s' doesn't name %s", msg, part)
		}
	}
	if errors.Cause(errors.Wrap(err, "x")) != inner {
		t.Fatalf("cause lost")
	}
}

func TestUnreadableNil(t *testing.T) {
	if nyctaxi.Unreadable(nil, "x") != nil || nyctaxi.Unavailable(nil, "x") != nil {
		t.Fatalf("wrapping nil should be nil")
	}
}
