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

// Package kafka publishes the result of every ETL run to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"

	"github.com/Shopify/sarama"
	"github.com/pilosa/nyctaxi"
	"github.com/pkg/errors"
)

// Report is the JSON form of a nyctaxi.Result.
type Report struct {
	Day        string         `json:"day"`
	State      string         `json:"state"`
	FailedIn   string         `json:"failed_in,omitempty"`
	Found      int            `json:"found"`
	Kept       int            `json:"kept"`
	Rejected   map[string]int `json:"rejected,omitempty"`
	Deleted    int            `json:"deleted"`
	Inserted   int            `json:"inserted"`
	Kind       string         `json:"kind,omitempty"`
	Error      string         `json:"error,omitempty"`
	DurationMS int64          `json:"duration_ms"`
}

// NewReport converts res.
func NewReport(res nyctaxi.Result) Report {
	r := Report{
		Day:        res.Day.String(),
		State:      res.State.String(),
		Found:      res.Found,
		Kept:       res.Kept,
		Rejected:   res.Rejected,
		Deleted:    res.Deleted,
		Inserted:   res.Inserted,
		DurationMS: res.Duration.Milliseconds(),
	}
	if res.Err != nil {
		r.FailedIn = res.FailedIn.String()
		r.Kind = res.Kind.String()
		r.Error = res.Err.Error()
	}
	return r
}

// Encode marshals the report to json.
func (r Report) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// Length returns the length of the marshalled json.
func (r Report) Length() int {
	bytes, _ := r.Encode()
	return len(bytes)
}

// Reporter is a nyctaxi.Reporter sending each Result to Topic, keyed by day.
type Reporter struct {
	Topic    string
	producer sarama.SyncProducer
}

var _ nyctaxi.Reporter = &Reporter{}

// NewConfig returns the producer configuration used by NewReporter.
func NewConfig() *sarama.Config {
	conf := sarama.NewConfig()
	conf.Version = sarama.V0_10_0_0
	conf.Producer.Return.Successes = true
	conf.Producer.RequiredAcks = sarama.WaitForAll
	conf.Producer.Retry.Max = 3
	return conf
}

// NewReporter connects to the brokers at hosts.
func NewReporter(hosts []string, topic string) (*Reporter, error) {
	producer, err := sarama.NewSyncProducer(hosts, NewConfig())
	if err != nil {
		return nil, errors.Wrap(err, "getting new producer")
	}
	return NewReporterWithProducer(producer, topic), nil
}

// NewReporterWithProducer returns a Reporter using producer.
func NewReporterWithProducer(producer sarama.SyncProducer, topic string) *Reporter {
	return &Reporter{Topic: topic, producer: producer}
}

// Report implements nyctaxi.Reporter.
func (r *Reporter) Report(ctx context.Context, res nyctaxi.Result) error {
	msg := &sarama.ProducerMessage{
		Topic: r.Topic,
		Key:   sarama.StringEncoder(res.Day.String()),
		Value: NewReport(res),
	}
	_, _, err := r.producer.SendMessage(msg)
	return errors.Wrapf(err, "sending report of %s to %s", res.Day, r.Topic)
}

// Close closes the producer.
func (r *Reporter) Close() error {
	return errors.Wrap(r.producer.Close(), "closing producer")
}
