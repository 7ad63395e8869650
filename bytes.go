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
	"encoding/binary"
	"math"
	"time"

	"github.com/pkg/errors"
)

// Index keys are built so that their byte order is the order of the indexed
// value, with the trip ID appended to keep them unique.

// Lengths of the ordered part of the index keys.
const (
	pickupKeyLen   = 12
	distanceKeyLen = 8
)

// PickupKey returns the pickup index key of a trip: the Unix seconds with
// the sign bit flipped, then the nanoseconds, then the ID. Any time.Time
// gets a key, not just those UnixNano can represent.
func PickupKey(t time.Time, id ID) []byte {
	key := make([]byte, pickupKeyLen, pickupKeyLen+len(id))
	binary.BigEndian.PutUint64(key, uint64(t.Unix())^(1<<63))
	binary.BigEndian.PutUint32(key[8:], uint32(t.Nanosecond()))
	return append(key, id...)
}

// DistanceKey returns the distance index key of a trip.
func DistanceKey(d float64, id ID) []byte {
	key := make([]byte, distanceKeyLen, distanceKeyLen+len(id))
	binary.BigEndian.PutUint64(key, FloatBits(d))
	return append(key, id...)
}

// FloatBits maps f to a uint64 which sorts like f.
func FloatBits(f float64) uint64 {
	b := math.Float64bits(f)
	if b&(1<<63) == 0 {
		return b ^ (1 << 63)
	}
	return ^b
}

// PickupKeyID returns the trip ID in a pickup index key.
func PickupKeyID(key []byte) (ID, error) {
	return keyID(key, pickupKeyLen)
}

// DistanceKeyID returns the trip ID in a distance index key.
func DistanceKeyID(key []byte) (ID, error) {
	return keyID(key, distanceKeyLen)
}

func keyID(key []byte, n int) (ID, error) {
	if len(key) < n {
		return "", errors.Errorf("index key too short: %d bytes", len(key))
	}
	return ID(key[n:]), nil
}
