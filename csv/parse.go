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

package csv

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pilosa/nyctaxi"
	"github.com/pkg/errors"
)

// timeLayouts are tried in order. Fractional seconds are accepted after the
// seconds of any layout which has them.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"01/02/2006 03:04:05 PM",
	"1/2/2006 15:04",
	nyctaxi.DayLayout,
}

// ParseTime parses a timestamp in any of the supported layouts and returns
// its wall clock as a naive (UTC) time.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return nyctaxi.Naive(t), nil
		}
	}
	return time.Time{}, errors.Errorf("unknown timestamp format '%s'", s)
}

// ParseInt parses decimal integer text within the int32 range. Integral
// floats such as "1.0" are accepted.
func ParseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 32); err == nil {
		return int(i), nil
	} else if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
		return 0, errors.Errorf("integer out of range: '%s'", s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrap(err, "parsing int")
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, errors.Errorf("not an integer: '%s'", s)
	}
	return int(f), nil
}

// ParseFloat parses decimal float text. Infinities and NaN are rejected.
func ParseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrap(err, "parsing float")
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, errors.Errorf("not a finite number: '%s'", s)
	}
	return f, nil
}

// rowParser parses the cells of one row. After the first failure every
// method returns zero values and err holds the failure.
type rowParser struct {
	line int
	row  []string
	cols map[string]int
	err  error
}

func (p *rowParser) cell(col string) string {
	return strings.TrimSpace(p.row[p.cols[col]])
}

func (p *rowParser) fail(col string, err error) {
	p.err = &nyctaxi.ParseError{Row: p.line, Field: col, Value: p.row[p.cols[col]], Err: err}
}

func (p *rowParser) required(col string) time.Time {
	if p.err != nil {
		return time.Time{}
	}
	v := p.cell(col)
	if v == "" {
		p.fail(col, errors.New("required value is empty"))
		return time.Time{}
	}
	t, err := ParseTime(v)
	if err != nil {
		p.fail(col, err)
	}
	return t
}

func (p *rowParser) timeAt(col string) *time.Time {
	if p.err != nil || p.cell(col) == "" {
		return nil
	}
	t, err := ParseTime(p.cell(col))
	if err != nil {
		p.fail(col, err)
		return nil
	}
	return &t
}

func (p *rowParser) floatAt(col string) *float64 {
	if p.err != nil || p.cell(col) == "" {
		return nil
	}
	f, err := ParseFloat(p.cell(col))
	if err != nil {
		p.fail(col, err)
		return nil
	}
	return &f
}

func (p *rowParser) intAt(col string) *int {
	if p.err != nil || p.cell(col) == "" {
		return nil
	}
	i, err := ParseInt(p.cell(col))
	if err != nil {
		p.fail(col, err)
		return nil
	}
	return &i
}

// raw parses the remaining required columns of the row.
func (p *rowParser) raw(pickup time.Time) nyctaxi.RawTrip {
	return nyctaxi.RawTrip{
		Row:                  p.line,
		PickupAt:             pickup,
		DropoffAt:            p.timeAt(nyctaxi.ColDropoffDatetime),
		PickupLatitude:       p.floatAt(nyctaxi.ColPickupLatitude),
		PickupLongitude:      p.floatAt(nyctaxi.ColPickupLongitude),
		DropoffLatitude:      p.floatAt(nyctaxi.ColDropoffLatitude),
		DropoffLongitude:     p.floatAt(nyctaxi.ColDropoffLongitude),
		PassengerCount:       p.intAt(nyctaxi.ColPassengerCount),
		TripDistance:         p.floatAt(nyctaxi.ColTripDistance),
		RateCode:             p.intAt(nyctaxi.ColRateCode),
		PaymentType:          p.intAt(nyctaxi.ColPaymentType),
		FareAmount:           p.floatAt(nyctaxi.ColFareAmount),
		Extra:                p.floatAt(nyctaxi.ColExtra),
		MTATax:               p.floatAt(nyctaxi.ColMTATax),
		TipAmount:            p.floatAt(nyctaxi.ColTipAmount),
		TollsAmount:          p.floatAt(nyctaxi.ColTollsAmount),
		ImprovementSurcharge: p.floatAt(nyctaxi.ColImprovementSurcharge),
		TotalAmount:          p.floatAt(nyctaxi.ColTotalAmount),
		StoreAndFwdFlag:      p.cell(nyctaxi.ColStoreAndFwdFlag),
	}
}
