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

package datadog_test

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/pilosa/nyctaxi/datadog"
)

func TestStatter(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listening: %v", err)
	}
	defer conn.Close()

	s, err := datadog.NewStatter(conn.LocalAddr().String(), nil, "env:test")
	if err != nil {
		t.Fatalf("getting statter: %v", err)
	}
	s.Count("trips.kept", 2, 1, "day:2016-01-31")
	s.Timing("etl.duration", 1500*time.Millisecond, 1)

	buf := make([]byte, 1024)
	got := make([]string, 0)
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for len(got) < 2 {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			t.Fatalf("reading packet after %v: %v", got, err)
		}
		for _, line := range strings.Split(strings.TrimSpace(string(buf[:n])), "\n") {
			got = append(got, line)
		}
	}
	if !strings.HasPrefix(got[0], "nyctaxi.trips.kept:2|c") || !strings.Contains(got[0], "env:test") || !strings.Contains(got[0], "day:2016-01-31") {
		t.Fatalf("unexpected count packet %s", got[0])
	}
	if !strings.HasPrefix(got[1], "nyctaxi.etl.duration:1500") {
		t.Fatalf("unexpected timing packet %s", got[1])
	}
	if err := s.Close(); err != nil {
		t.Fatalf("closing: %v", err)
	}
}
