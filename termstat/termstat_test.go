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

package termstat_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/pilosa/nyctaxi/termstat"
)

func TestCollector(t *testing.T) {
	out := &bytes.Buffer{}
	c := termstat.NewCollector(out, time.Hour)
	c.Count("trips.read", 3, 1)
	c.Count("trips.read", 2, 1)
	c.Count("trips.rejected", 1, 1, "rule:fares")
	c.Timing("etl.duration", 1500*time.Millisecond, 1)
	if err := c.Close(); err != nil {
		t.Fatalf("closing: %v", err)
	}
	got := out.String()
	for _, exp := range []string{"trips.read: 5 ", "trips.rejected[rule:fares]: 1 ", "etl.duration: 1.5s "} {
		if !strings.Contains(got, exp) {
			t.Fatalf("output '%s' missing '%s'", got, exp)
		}
	}
	if !strings.HasSuffix(got, "\n") {
		t.Fatalf("final line not terminated: '%s'", got)
	}
}
