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

// Package csv implements the nyctaxi Extractor for trip tables stored as
// CSV with a header line.
package csv

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/pilosa/nyctaxi"
	"github.com/pkg/errors"
)

// checkEvery is the number of rows read between two checks of the context.
const checkEvery = 4096

// Source is a nyctaxi.Extractor reading one CSV trip table. Every call to
// Extract reads the whole table again from the start. Rows are kept when
// their pickup is on the requested day; the other columns of a row are only
// parsed if it is kept.
type Source struct {
	location string
	opener   nyctaxi.Opener
	log      nyctaxi.Logger
}

var _ nyctaxi.Extractor = &Source{}

// NewSource creates a Source for the table at location, which is opened
// with a URLOpener unless WithOpener is given. e.g.
//
// src := NewSource("dataset_sample.csv", WithLogger(nyctaxi.StdLogger{log.New(os.Stderr, "", log.LstdFlags)}))
func NewSource(location string, options ...Option) *Source {
	src := &Source{
		location: location,
		opener:   &URLOpener{},
		log:      nyctaxi.NopLogger{},
	}
	for _, opt := range options {
		opt(src)
	}
	return src
}

// Option is a functional option to pass to NewSource.
type Option func(*Source)

// WithOpener returns an Option which sets the Opener used to read the table.
func WithOpener(o nyctaxi.Opener) Option {
	return func(s *Source) {
		if o != nil {
			s.opener = o
		}
	}
}

// WithLogger returns an Option which sets the Logger of a Source.
func WithLogger(l nyctaxi.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.log = l
		}
	}
}

func (s *Source) String() string { return s.location }

// URLOpener opens http(s) URLs and local files.
type URLOpener struct {
	// Client defaults to http.DefaultClient.
	Client *http.Client
}

// Open implements nyctaxi.Opener.
func (u *URLOpener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		client := u.Client
		if client == nil {
			client = http.DefaultClient
		}
		req, err := http.NewRequest(http.MethodGet, location, nil)
		if err != nil {
			return nil, nyctaxi.Unreadable(errors.Wrap(err, "making request"), "open "+location)
		}
		resp, err := client.Do(req.WithContext(ctx))
		if err != nil {
			return nil, nyctaxi.Unreadable(errors.Wrap(err, "getting via http"), "open "+location)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, nyctaxi.Unreadable(errors.Errorf("unexpected status %s", resp.Status), "open "+location)
		}
		return resp.Body, nil
	}
	f, err := os.Open(strings.TrimPrefix(location, "file://"))
	if err != nil {
		return nil, nyctaxi.Unreadable(errors.Wrap(err, "opening file"), "open "+location)
	}
	return f, nil
}

// Extract implements nyctaxi.Extractor.
func (s *Source) Extract(ctx context.Context, day nyctaxi.Day) ([]nyctaxi.RawTrip, error) {
	content, err := s.opener.Open(ctx, s.location)
	if err != nil {
		if nyctaxi.KindOf(err) == nyctaxi.KindUnknown && ctx.Err() == nil {
			err = nyctaxi.Unreadable(err, "open "+s.location)
		}
		return nil, err
	}
	defer content.Close()

	r := csv.NewReader(bufio.NewReader(content))
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err == io.EOF {
		return nil, nyctaxi.Unreadable(errors.New("no header line"), "read "+s.location)
	} else if err != nil {
		return nil, nyctaxi.Unreadable(errors.Wrap(err, "reading header"), "read "+s.location)
	}
	cols, err := processHeader(header)
	if err != nil {
		return nil, errors.Wrapf(err, "validating header of %s", s.location)
	}

	trips := make([]nyctaxi.RawTrip, 0)
	for line := 1; ; line++ {
		if line%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrapf(err, "reading %s", s.location)
			}
		}
		row, err := r.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, nyctaxi.Unreadable(errors.Wrapf(err, "line %d", line), "read "+s.location)
		}
		if err := s.checkLength(header, row, line); err != nil {
			return nil, err
		}
		p := rowParser{line: line, row: row, cols: cols}
		pickup := p.required(nyctaxi.ColPickupDatetime)
		if p.err != nil {
			return nil, errors.Wrapf(p.err, "file %s", s.location)
		}
		if !day.Contains(pickup) {
			continue
		}
		raw := p.raw(pickup)
		if p.err != nil {
			return nil, errors.Wrapf(p.err, "file %s", s.location)
		}
		trips = append(trips, raw)
	}
	s.log.Debugf("read %d trips for %s from %s", len(trips), day, s.location)
	return trips, nil
}

func (s *Source) checkLength(header, row []string, line int) error {
	if len(header) > len(row) {
		return &nyctaxi.ParseError{
			Row:   line,
			Field: header[len(row)],
			Err:   errors.Errorf("header/row len mismatch: %d vs %d", len(header), len(row)),
		}
	}
	for i := len(header); i < len(row); i++ {
		if strings.TrimSpace(row[i]) != "" {
			s.log.Printf("data in non headered field: line %d, field %d: %s", line, i, row[i])
		}
	}
	return nil
}

// processHeader validates header and returns the position of each column.
func processHeader(header []string) (map[string]int, error) {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	fields := make(map[string]int, len(header))
	for i, h := range header {
		if h == "" {
			return nil, headerError("", errors.Errorf("header contains empty string at %d", i))
		}
		if pos, exists := fields[h]; exists {
			return nil, headerError(h, errors.Errorf("appeared at both %d and %d in header", pos, i))
		}
		fields[h] = i
	}
	for _, col := range nyctaxi.RequiredColumns {
		if _, ok := fields[col]; !ok {
			return nil, headerError(col, errors.New("required column missing"))
		}
	}
	return fields, nil
}

func headerError(field string, err error) error {
	return &nyctaxi.ParseError{Row: 0, Field: field, Err: err}
}
