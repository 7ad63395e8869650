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

// Package datadog sends nyctaxi stats to a statsd agent.
package datadog

import (
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/pilosa/nyctaxi"
	"github.com/pkg/errors"
)

// Namespace is prepended to every stat name.
const Namespace = "nyctaxi."

// Statter is a nyctaxi.Statter sending stats over UDP with datadog-go.
// Sending failures are logged, they never fail a run.
type Statter struct {
	client *statsd.Client
	log    nyctaxi.Logger
}

var _ nyctaxi.Statter = &Statter{}

// NewStatter returns a Statter sending to the agent at addr (host:port).
// tags are added to every stat.
func NewStatter(addr string, log nyctaxi.Logger, tags ...string) (*Statter, error) {
	c, err := statsd.New(addr)
	if err != nil {
		return nil, errors.Wrapf(err, "creating statsd client for %s", addr)
	}
	c.Namespace = Namespace
	c.Tags = append(c.Tags, tags...)
	if log == nil {
		log = nyctaxi.NopLogger{}
	}
	return &Statter{client: c, log: log}, nil
}

func (s *Statter) check(name string, err error) {
	if err != nil {
		s.log.Debugf("sending stat %s: %v", name, err)
	}
}

// Count implements nyctaxi.Statter.
func (s *Statter) Count(name string, value int64, rate float64, tags ...string) {
	s.check(name, s.client.Count(name, value, tags, rate))
}

// Gauge implements nyctaxi.Statter.
func (s *Statter) Gauge(name string, value float64, rate float64, tags ...string) {
	s.check(name, s.client.Gauge(name, value, tags, rate))
}

// Histogram implements nyctaxi.Statter.
func (s *Statter) Histogram(name string, value float64, rate float64, tags ...string) {
	s.check(name, s.client.Histogram(name, value, tags, rate))
}

// Set implements nyctaxi.Statter.
func (s *Statter) Set(name string, value string, rate float64, tags ...string) {
	s.check(name, s.client.Set(name, value, tags, rate))
}

// Timing implements nyctaxi.Statter.
func (s *Statter) Timing(name string, value time.Duration, rate float64, tags ...string) {
	s.check(name, s.client.Timing(name, value, tags, rate))
}

// Close flushes and closes the client.
func (s *Statter) Close() error {
	return errors.Wrap(s.client.Close(), "closing statsd client")
}
