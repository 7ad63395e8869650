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
	"time"

	"github.com/google/uuid"
)

// Source column names. The header of a trip file must contain all of them;
// other columns are ignored.
const (
	ColPickupDatetime       = "tpep_pickup_datetime"
	ColDropoffDatetime      = "tpep_dropoff_datetime"
	ColPickupLatitude       = "pickup_latitude"
	ColPickupLongitude      = "pickup_longitude"
	ColDropoffLatitude      = "dropoff_latitude"
	ColDropoffLongitude     = "dropoff_longitude"
	ColPassengerCount       = "passenger_count"
	ColTripDistance         = "trip_distance"
	ColRateCode             = "RatecodeID"
	ColPaymentType          = "payment_type"
	ColFareAmount           = "fare_amount"
	ColExtra                = "extra"
	ColMTATax               = "mta_tax"
	ColTipAmount            = "tip_amount"
	ColTollsAmount          = "tolls_amount"
	ColImprovementSurcharge = "improvement_surcharge"
	ColTotalAmount          = "total_amount"
	ColStoreAndFwdFlag      = "store_and_fwd_flag"
)

// RequiredColumns lists every column an Extractor needs, in the order of the
// NYC TLC yellow trip data dictionary.
var RequiredColumns = []string{
	ColPickupDatetime,
	ColDropoffDatetime,
	ColPassengerCount,
	ColTripDistance,
	ColPickupLongitude,
	ColPickupLatitude,
	ColRateCode,
	ColStoreAndFwdFlag,
	ColDropoffLongitude,
	ColDropoffLatitude,
	ColPaymentType,
	ColFareAmount,
	ColExtra,
	ColMTATax,
	ColTipAmount,
	ColTollsAmount,
	ColImprovementSurcharge,
	ColTotalAmount,
}

// ID identifies a stored trip. It is opaque: nothing may be assumed about
// its format or ordering.
type ID string

// NewID returns a fresh random ID.
func NewID() ID {
	return ID(uuid.New().String())
}

// RawTrip is one source row, parsed but not validated. Every field but
// PickupAt is optional and nil when the source cell was empty.
type RawTrip struct {
	// Row is the 1-based position of the row among the data rows of the
	// source.
	Row int

	PickupAt  time.Time
	DropoffAt *time.Time

	PickupLatitude   *float64
	PickupLongitude  *float64
	DropoffLatitude  *float64
	DropoffLongitude *float64

	PassengerCount *int
	TripDistance   *float64
	RateCode       *int
	PaymentType    *int

	FareAmount           *float64
	Extra                *float64
	MTATax               *float64
	TipAmount            *float64
	TollsAmount          *float64
	ImprovementSurcharge *float64
	TotalAmount          *float64

	StoreAndFwdFlag string
}

// Trip is a validated, normalized trip as it is persisted. JSON names match
// the source columns.
type Trip struct {
	ID ID `json:"_id,omitempty"`

	PickupAt  time.Time `json:"tpep_pickup_datetime"`
	DropoffAt time.Time `json:"tpep_dropoff_datetime"`

	PickupLatitude   float64 `json:"pickup_latitude"`
	PickupLongitude  float64 `json:"pickup_longitude"`
	DropoffLatitude  float64 `json:"dropoff_latitude"`
	DropoffLongitude float64 `json:"dropoff_longitude"`

	PassengerCount int     `json:"passenger_count"`
	TripDistance   float64 `json:"trip_distance"`
	RateCode       int     `json:"RatecodeID"`
	PaymentType    int     `json:"payment_type"`

	FareAmount           float64 `json:"fare_amount"`
	Extra                float64 `json:"extra"`
	MTATax               float64 `json:"mta_tax"`
	TipAmount            float64 `json:"tip_amount"`
	TollsAmount          float64 `json:"tolls_amount"`
	ImprovementSurcharge float64 `json:"improvement_surcharge"`
	TotalAmount          float64 `json:"total_amount"`

	StoreAndFwd bool `json:"store_and_fwd_flag"`

	PickupGeohash  string `json:"pickup_geohash,omitempty"`
	DropoffGeohash string `json:"dropoff_geohash,omitempty"`
}
