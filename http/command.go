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

package http

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/pilosa/nyctaxi"
	"github.com/pilosa/nyctaxi/backend"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Main holds the config for the serve command.
type Main struct {
	Bind      string `help:"Listen for requests on this address."`
	Store     string `help:"Kind of trip store: bolt or leveldb."`
	StorePath string `help:"Bolt file or leveldb directory holding the trips."`
	AccessLog bool   `help:"Write an access log line for every request."`
	Verbose   bool   `help:"Enable verbose logging."`

	Stderr io.Writer          `flag:"-"`
	Finder nyctaxi.TripFinder `flag:"-"`
	ready  chan net.Addr
}

// NewMain gets a new Main with default values.
func NewMain() *Main {
	return &Main{
		Bind:      ":5000",
		Store:     backend.Bolt,
		StorePath: "trips.db",
		AccessLog: true,
		Stderr:    os.Stderr,
		ready:     make(chan net.Addr, 1),
	}
}

// Ready returns a channel which receives the listening address once the
// server accepts connections.
func (m *Main) Ready() <-chan net.Addr {
	return m.ready
}

// Run serves the API until ctx is done, then shuts the server down.
func (m *Main) Run(ctx context.Context) error {
	log := nyctaxi.NewLogger(m.Stderr, m.Verbose)
	finder := m.Finder
	if finder == nil {
		// make sure the store exists, then only hold it during requests so
		// that loads can run while serving.
		store, err := backend.Open(m.Store, m.StorePath, 0)
		if err != nil {
			return errors.Wrap(err, "opening store")
		}
		if err := store.Close(); err != nil {
			return errors.Wrap(err, "closing store")
		}
		finder = &backend.Finder{Kind: m.Store, Path: m.StorePath}
	}

	ln, err := net.Listen("tcp", m.Bind)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", m.Bind)
	}
	var accessLog io.Writer
	if m.AccessLog {
		accessLog = m.Stderr
	}
	server := &http.Server{
		Handler:           NewHandler(finder, log, accessLog),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("listening on %s", ln.Addr())
	if m.ready != nil {
		m.ready <- ln.Addr()
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		err := server.Serve(ln)
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.Wrap(err, "serving")
	})
	eg.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return errors.Wrap(server.Shutdown(sctx), "shutting down")
	})
	return eg.Wait()
}
