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
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies the failure of a run.
type Kind int

const (
	// KindUnknown is any failure not listed below.
	KindUnknown Kind = iota
	// KindSourceUnreadable means the source is missing or corrupt.
	KindSourceUnreadable
	// KindSourceParse means a source field could not be parsed into its
	// type.
	KindSourceParse
	// KindStoreUnavailable means the store could not be reached or failed
	// an operation.
	KindStoreUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindSourceUnreadable:
		return "SourceUnreadable"
	case KindSourceParse:
		return "SourceParseError"
	case KindStoreUnavailable:
		return "StoreUnavailable"
	default:
		return "Unknown"
	}
}

// ErrNotFound is returned by a TripFinder when no trip has the given ID.
var ErrNotFound = errors.New("trip not found")

// Error is a failure of a given Kind during operation Op.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

// Cause returns the underlying error.
func (e *Error) Cause() error { return e.Err }

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// Unreadable marks err as a SourceUnreadable failure of op.
func Unreadable(err error, op string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindSourceUnreadable, Op: op, Err: err}
}

// Unavailable marks err as a StoreUnavailable failure of op.
func Unavailable(err error, op string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindStoreUnavailable, Op: op, Err: err}
}

// ParseError reports a source cell which could not be parsed.
type ParseError struct {
	// Row is the 1-based data row, 0 for the header.
	Row   int
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("%s: header: %s: %v", KindSourceParse, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: row %d: field %s: value '%s': %v", KindSourceParse, e.Row, e.Field, e.Value, e.Err)
}

// Kind returns KindSourceParse.
func (e *ParseError) Kind() Kind { return KindSourceParse }

// Cause returns the underlying error.
func (e *ParseError) Cause() error { return e.Err }

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error { return e.Err }

// LoadError is returned by Writer.Load when the insert fails after the
// day's trips were deleted. The store is left with the first Inserted trips
// of the batch for Day, and the Deleted trips can't be recovered.
type LoadError struct {
	Day      Day
	Deleted  int
	Inserted int
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("partial load of %s: deleted %d, inserted only %d: %v", e.Day, e.Deleted, e.Inserted, e.Err)
}

// Kind returns the kind of the store failure.
func (e *LoadError) Kind() Kind { return KindOf(e.Err) }

// Cause returns the underlying error.
func (e *LoadError) Cause() error { return e.Err }

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error { return e.Err }

type kinder interface {
	Kind() Kind
}

type causer interface {
	Cause() error
}

// KindOf returns the Kind of the first classified error in err's cause
// chain, or KindUnknown.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		if k, ok := err.(kinder); ok {
			return k.Kind()
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return KindUnknown
}
