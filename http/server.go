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

// Package http serves the rendered maps and charts, and the summaries and
// exported tables behind them.
package http

import (
	"io/fs"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/patentdata/pdk"
	"github.com/patentdata/pdk/csv"
	"github.com/patentdata/pdk/usecase/yearly"
	"github.com/pkg/errors"
)

// Server serves an output directory.
type Server struct {
	addr      string
	listener  net.Listener
	server    *http.Server
	dir       string
	exportDir string
	log       pdk.Logger
}

// ServerOption is a functional option type for Server.
type ServerOption func(s *Server)

// WithAddr is an option for the Server which causes it to bind to the given
// address.
func WithAddr(addr string) ServerOption {
	return func(s *Server) {
		s.addr = addr
	}
}

// WithListener is an option for Server which causes it to use the given
// listener. It will infer the address from the listener.
func WithListener(l net.Listener) ServerOption {
	return func(s *Server) {
		s.listener = l
		s.addr = l.Addr().String()
	}
}

// WithExportDir makes the tables exported to dir available under
// /api/tables.
func WithExportDir(dir string) ServerOption {
	return func(s *Server) {
		s.exportDir = dir
	}
}

// WithLogger sets the logger requests are logged to.
func WithLogger(l pdk.Logger) ServerOption {
	return func(s *Server) {
		s.log = l
	}
}

// NewServer gets a Server for the output directory dir.
func NewServer(dir string, opts ...ServerOption) *Server {
	s := &Server{
		addr: ":8080",
		dir:  dir,
		log:  pdk.NopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routes of s.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handleIndex)
	r.Handle("/files/*", http.StripPrefix("/files/", http.FileServer(http.Dir(s.dir))))
	r.Route("/api", func(r chi.Router) {
		r.Get("/summaries/{year}", s.handleSummary)
		r.Get("/timeseries", s.handleTimeSeries)
		r.Get("/tables/{table}", s.handleTable)
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debugf("%s %s %d %v", r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}

// Serve listens on the address of s and serves until Close is called.
func (s *Server) Serve() error {
	if s.listener == nil {
		var err error
		s.listener, err = net.Listen("tcp", s.addr)
		if err != nil {
			return errors.Wrap(err, "listening")
		}
	}
	s.log.Printf("serving %s on %s", s.dir, s.Addr())
	err := s.server.Serve(s.listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return errors.Wrap(err, "serving")
}

// Addr gets the address that the Server is listening on.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Close stops the server.
func (s *Server) Close() error {
	return errors.Wrap(s.server.Close(), "closing server")
}

// Files lists the rendered files under dir, relative to it.
func Files(dir string) ([]string, error) {
	files := []string{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if os.IsNotExist(err) {
		return files, nil
	}
	sort.Strings(files)
	return files, errors.Wrap(err, "walking output dir")
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	files, err := Files(s.dir)
	if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	links := make(map[string]string, len(files))
	for _, f := range files {
		links[f] = "/files/" + f
	}
	s.writeJSON(w, struct {
		Files []string          `json:"files"`
		Links map[string]string `json:"links"`
	}{files, links})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		s.fail(w, errors.Errorf("bad year '%s'", chi.URLParam(r, "year")), http.StatusBadRequest)
		return
	}
	s.serveJSONFile(w, yearly.SummaryPath(s.dir, year))
}

func (s *Server) handleTimeSeries(w http.ResponseWriter, r *http.Request) {
	s.serveJSONFile(w, filepath.Join(s.dir, yearly.TimeSeriesJSON))
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	if _, ok := pdk.Columns[table]; !ok || s.exportDir == "" {
		s.fail(w, errors.Errorf("no table '%s'", table), http.StatusNotFound)
		return
	}
	rows, err := csv.ReadTable(csv.Path(s.exportDir, table))
	if os.IsNotExist(errors.Cause(err)) {
		s.fail(w, errors.Errorf("table '%s' not exported", table), http.StatusNotFound)
		return
	} else if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, rows)
}

func (s *Server) serveJSONFile(w http.ResponseWriter, path string) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s.fail(w, errors.Errorf("%s not found", strings.TrimPrefix(path, s.dir+string(filepath.Separator))), http.StatusNotFound)
		return
	} else if err != nil {
		s.fail(w, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("encoding response: %v", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, err error, status int) {
	if status >= http.StatusInternalServerError {
		s.log.Printf("%v", err)
	}
	http.Error(w, err.Error(), status)
}

// Main holds the config for the serve command.
type Main struct {
	Bind      string `help:"Listen on this address."`
	OutDir    string `help:"Directory of rendered maps, charts and summaries."`
	ExportDir string `help:"Directory of exported CSV tables. Empty disables /api/tables."`

	Log pdk.Logger `flag:"-"`
}

// NewMain gets a new Main with default values.
func NewMain() *Main {
	return &Main{
		Bind:   ":8080",
		OutDir: "output",
		Log:    pdk.NopLogger{},
	}
}

// Run runs the serve command.
func (m *Main) Run() error {
	s := NewServer(m.OutDir, WithAddr(m.Bind), WithExportDir(m.ExportDir), WithLogger(m.Log))
	return s.Serve()
}
