// Package mockapi serves a small fixed OpenF1 data set for local development.
package mockapi

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"path"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

//go:embed data/*.json
var data embed.FS

type record map[string]interface{}

type Server struct {
	records map[string][]record
}

func NewServer() (*Server, error) {
	s := &Server{records: map[string][]record{}}
	for _, name := range []string{"meetings", "sessions", "session_result", "drivers"} {
		raw, err := data.ReadFile(path.Join("data", name+".json"))
		if err != nil {
			return nil, errors.Wrapf(err, "read %s fixture", name)
		}
		var rs []record
		if err := json.Unmarshal(raw, &rs); err != nil {
			return nil, errors.Wrapf(err, "decode %s fixture", name)
		}
		s.records[name] = rs
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/v1/{resource}", s.handleResource).Methods(http.MethodGet)
	return r
}

// handleResource answers with the records whose fields equal every query
// parameter, like the real API does for plain equality filters.
func (s *Server) handleResource(w http.ResponseWriter, r *http.Request) {
	records, ok := s.records[mux.Vars(r)["resource"]]
	if !ok {
		http.NotFound(w, r)
		return
	}

	matched := []record{}
	for _, rec := range records {
		if matches(rec, r) {
			matched = append(matched, rec)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(matched); err != nil {
		log.Printf("An error occured: %s", err)
	}
}

func matches(rec record, r *http.Request) bool {
	for key, values := range r.URL.Query() {
		v, ok := rec[key]
		if !ok || len(values) == 0 || fmt.Sprint(v) != values[0] {
			return false
		}
	}
	return true
}

// Start serves the fake API on addr and returns its base URL. The server
// stops when ctx is done.
func (s *Server) Start(ctx context.Context, addr string) (string, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return "", errors.Wrap(err, "listen mock api")
	}
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  time.Second * 15,
		WriteTimeout: time.Second * 15,
	}

	go func() {
		if err := srv.Serve(l); err != nil && err != http.ErrServerClosed {
			log.Println(err)
		}
	}()
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	baseURL := fmt.Sprintf("http://%s/v1", l.Addr().String())
	log.Printf("Starting mock OpenF1 API at %s\n", baseURL)
	return baseURL, nil
}
