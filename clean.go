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

package nyctaxi

import (
	"math"

	"github.com/mmcloughlin/geohash"
)

// GeohashPrecision is the number of characters of the geohash cells given to
// both ends of a trip, about 150m.
const GeohashPrecision = 7

// BBox is a latitude/longitude box, bounds included.
type BBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// NYC bounds the five boroughs.
var NYC = BBox{
	MinLat: 40.4774, MaxLat: 40.9176,
	MinLon: -74.2591, MaxLon: -73.7004,
}

// Contains reports whether the point is in b. A missing coordinate is never
// contained.
func (b BBox) Contains(lat, lon *float64) bool {
	if lat == nil || lon == nil {
		return false
	}
	return *lat >= b.MinLat && *lat <= b.MaxLat && *lon >= b.MinLon && *lon <= b.MaxLon
}

// Rule is a data quality predicate. Check must not modify the trip or
// depend on anything but it.
type Rule struct {
	Name  string
	Check func(r *RawTrip) bool
}

// Rules is the list of predicates a trip must pass to be stored.
var Rules = []Rule{
	{"pickup_in_nyc", func(r *RawTrip) bool { return NYC.Contains(r.PickupLatitude, r.PickupLongitude) }},
	{"dropoff_in_nyc", func(r *RawTrip) bool { return NYC.Contains(r.DropoffLatitude, r.DropoffLongitude) }},
	{"passenger_count", func(r *RawTrip) bool { return r.PassengerCount != nil && *r.PassengerCount > 0 }},
	{"trip_distance", func(r *RawTrip) bool {
		return r.TripDistance != nil && *r.TripDistance > 0.5 && *r.TripDistance < 100
	}},
	{"rate_code", func(r *RawTrip) bool { return r.RateCode != nil && *r.RateCode >= 1 && *r.RateCode <= 6 }},
	{"payment_type", func(r *RawTrip) bool {
		return r.PaymentType != nil && *r.PaymentType >= 1 && *r.PaymentType <= 5
	}},
	{"fares", func(r *RawTrip) bool {
		for _, f := range []*float64{r.FareAmount, r.Extra, r.MTATax, r.TipAmount, r.TollsAmount, r.ImprovementSurcharge} {
			if !nonNegative(f) {
				return false
			}
		}
		return finite(r.TotalAmount) && *r.TotalAmount > 0
	}},
	{"pickup_before_dropoff", func(r *RawTrip) bool { return r.DropoffAt != nil && r.PickupAt.Before(*r.DropoffAt) }},
	{"store_and_fwd_flag", func(r *RawTrip) bool {
		_, ok := storeAndFwd(r.StoreAndFwdFlag)
		return ok
	}},
}

// NaN compares false against everything, so it fails every bound above.
// Infinities pass a lower bound and so are checked for.
func nonNegative(f *float64) bool {
	return finite(f) && *f >= 0
}

func finite(f *float64) bool {
	return f != nil && !math.IsInf(*f, 0) && !math.IsNaN(*f)
}

func storeAndFwd(flag string) (bool, bool) {
	switch flag {
	case "Y":
		return true, true
	case "N":
		return false, true
	}
	return false, false
}

// CleanStats counts what a Cleaner did with its input.
type CleanStats struct {
	In  int
	Out int
	// Rejected maps a rule name to the number of trips failing it. A trip
	// failing several rules is counted under each of them.
	Rejected map[string]int
}

// Dropped returns the number of rejected trips.
func (s CleanStats) Dropped() int { return s.In - s.Out }

// Cleaner validates and normalizes RawTrips.
type Cleaner struct {
	// Rules defaults to the package Rules.
	Rules []Rule
}

// Clean returns the trips of raws passing every rule, in input order.
func (c *Cleaner) Clean(raws []RawTrip) ([]Trip, CleanStats) {
	rules := c.Rules
	if rules == nil {
		rules = Rules
	}
	stats := CleanStats{In: len(raws), Rejected: make(map[string]int)}
	trips := make([]Trip, 0, len(raws))
	for i := range raws {
		r := &raws[i]
		ok := true
		for _, rule := range rules {
			if !rule.Check(r) {
				stats.Rejected[rule.Name]++
				ok = false
			}
		}
		if !ok {
			continue
		}
		if t, ok := normalize(r); ok {
			trips = append(trips, t)
		}
	}
	stats.Out = len(trips)
	return trips, stats
}

// Valid reports whether r passes every rule of the package Rules.
func Valid(r *RawTrip) bool {
	for _, rule := range Rules {
		if !rule.Check(r) {
			return false
		}
	}
	return true
}

// normalize converts a checked RawTrip. It returns false if a field needed
// for the conversion is missing, which can only happen with custom Rules.
func normalize(r *RawTrip) (Trip, bool) {
	fwd, ok := storeAndFwd(r.StoreAndFwdFlag)
	if !ok || r.DropoffAt == nil {
		return Trip{}, false
	}
	ptrs := []*float64{
		r.PickupLatitude, r.PickupLongitude, r.DropoffLatitude, r.DropoffLongitude, r.TripDistance,
		r.FareAmount, r.Extra, r.MTATax, r.TipAmount, r.TollsAmount, r.ImprovementSurcharge, r.TotalAmount,
	}
	for _, p := range ptrs {
		if p == nil || math.IsNaN(*p) {
			return Trip{}, false
		}
	}
	if r.PassengerCount == nil || r.RateCode == nil || r.PaymentType == nil {
		return Trip{}, false
	}
	return Trip{
		PickupAt:             r.PickupAt,
		DropoffAt:            *r.DropoffAt,
		PickupLatitude:       *r.PickupLatitude,
		PickupLongitude:      *r.PickupLongitude,
		DropoffLatitude:      *r.DropoffLatitude,
		DropoffLongitude:     *r.DropoffLongitude,
		PassengerCount:       *r.PassengerCount,
		TripDistance:         *r.TripDistance,
		RateCode:             *r.RateCode,
		PaymentType:          *r.PaymentType,
		FareAmount:           *r.FareAmount,
		Extra:                *r.Extra,
		MTATax:               *r.MTATax,
		TipAmount:            *r.TipAmount,
		TollsAmount:          *r.TollsAmount,
		ImprovementSurcharge: *r.ImprovementSurcharge,
		TotalAmount:          *r.TotalAmount,
		StoreAndFwd:          fwd,
		PickupGeohash:        geohash.EncodeWithPrecision(*r.PickupLatitude, *r.PickupLongitude, GeohashPrecision),
		DropoffGeohash:       geohash.EncodeWithPrecision(*r.DropoffLatitude, *r.DropoffLongitude, GeohashPrecision),
	}, true
}
