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

// Package http serves the stored trips over HTTP. It is read only.
package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pilosa/nyctaxi"
	"github.com/pkg/errors"
)

// DefaultLimit is the number of trips returned by /trips/top-longest when
// no limit is given.
const DefaultLimit = 5

// MaxLimit bounds the limit of /trips/top-longest.
const MaxLimit = 1000

// Handler serves trips from a TripFinder.
type Handler struct {
	Finder nyctaxi.TripFinder
	Log    nyctaxi.Logger
}

// NewHandler returns the routes of the read API over finder, with access
// logs written to accessLog in Apache combined format. A nil accessLog
// disables them.
func NewHandler(finder nyctaxi.TripFinder, log nyctaxi.Logger, accessLog io.Writer) http.Handler {
	if log == nil {
		log = nyctaxi.NopLogger{}
	}
	h := &Handler{Finder: finder, Log: log}
	router := mux.NewRouter()
	router.HandleFunc("/", h.handleRoot).Methods("GET")
	router.HandleFunc("/apidocs", h.handleDocs).Methods("GET")
	// top-longest goes first so that it isn't taken for an id.
	router.HandleFunc("/trips/top-longest", h.handleTopLongest).Methods("GET")
	router.HandleFunc("/trips/{id}", h.handleGetTrip).Methods("GET")
	router.HandleFunc("/trips", h.handleDay).Methods("GET").Queries("date", "{date}")
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})

	var handler http.Handler = router
	if accessLog != nil {
		handler = handlers.CombinedLoggingHandler(accessLog, handler)
	}
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(handler)
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/apidocs", http.StatusFound)
}

func (h *Handler) handleDocs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(apiDocs)
}

func (h *Handler) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	id := nyctaxi.ID(mux.Vars(r)["id"])
	trip, err := h.Finder.Get(r.Context(), id)
	if errors.Cause(err) == nyctaxi.ErrNotFound {
		writeError(w, http.StatusNotFound, "Trip not found")
		return
	} else if err != nil {
		h.storeError(w, errors.Wrapf(err, "getting trip %s", id))
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

func (h *Handler) handleTopLongest(w http.ResponseWriter, r *http.Request) {
	limit := DefaultLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	trips, err := h.Finder.TopLongest(r.Context(), limit)
	if err != nil {
		h.storeError(w, errors.Wrap(err, "getting longest trips"))
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

func (h *Handler) handleDay(w http.ResponseWriter, r *http.Request) {
	day, err := nyctaxi.ParseDay(mux.Vars(r)["date"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	trips, err := h.Finder.Range(r.Context(), day.Start(), day.End())
	if err != nil {
		h.storeError(w, errors.Wrapf(err, "getting trips of %s", day))
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

func (h *Handler) storeError(w http.ResponseWriter, err error) {
	h.Log.Printf("%v", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
