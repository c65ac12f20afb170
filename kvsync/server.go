package kvsync

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Storage keys. The per-key names match what the clients persist locally;
// lastModified is maintained by the server alone.
const (
	keySnapshots    = "snapshots"
	keyTargets      = "targets"
	keyTargetsMeta  = "targets_meta"
	keyLastModified = "last_modified"
)

const stampFormat = "2006-01-02T15:04:05.000Z"

// payload is the wire format shared with the clients. Absent or null
// fields mean "not set"; present fields overwrite the whole key.
type payload struct {
	Snapshots    json.RawMessage `json:"snapshots"`
	Targets      json.RawMessage `json:"targets"`
	TargetsMeta  json.RawMessage `json:"targetsMeta"`
	LastModified *string         `json:"lastModified,omitempty"`
}

// Server serves the sync endpoint over a Store.
type Server struct {
	store *Store
	log   zerolog.Logger

	// now is replaceable in tests.
	now func() time.Time
}

// NewServer wires the handler over the given store.
func NewServer(store *Store, log zerolog.Logger) *Server {
	return &Server{store: store, log: log, now: time.Now}
}

// Handler builds the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Get("/sync", s.handleGet)
	r.Put("/sync", s.handlePut)
	return r
}

// handleGet returns all keys in one payload; never-set keys come back as
// explicit nulls so the client can tell "unset" from "empty".
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	var p payload
	for _, f := range []struct {
		key  string
		dest *json.RawMessage
	}{
		{keySnapshots, &p.Snapshots},
		{keyTargets, &p.Targets},
		{keyTargetsMeta, &p.TargetsMeta},
	} {
		value, ok, err := s.store.Get(r.Context(), f.key)
		if err != nil {
			s.log.Error().Err(err).Str("key", f.key).Msg("sync read failed")
			writeError(w, http.StatusInternalServerError, "failed to read data")
			return
		}
		if ok {
			*f.dest = json.RawMessage(value)
		} else {
			*f.dest = json.RawMessage("null")
		}
	}

	stamp, ok, err := s.store.Get(r.Context(), keyLastModified)
	if err != nil {
		s.log.Error().Err(err).Msg("sync read failed")
		writeError(w, http.StatusInternalServerError, "failed to read data")
		return
	}
	if ok {
		p.LastModified = &stamp
	}
	writeJSON(w, http.StatusOK, p)
}

// handlePut overwrites every key present in the request and refreshes the
// last-write stamp. Last write wins; there is no merging.
func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	var p payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	for _, f := range []struct {
		key string
		raw json.RawMessage
	}{
		{keySnapshots, p.Snapshots},
		{keyTargets, p.Targets},
		{keyTargetsMeta, p.TargetsMeta},
	} {
		if len(f.raw) == 0 {
			continue
		}
		if err := s.store.Put(r.Context(), f.key, string(f.raw)); err != nil {
			s.log.Error().Err(err).Str("key", f.key).Msg("sync write failed")
			writeError(w, http.StatusInternalServerError, "failed to save data")
			return
		}
	}

	stamp := s.now().UTC().Format(stampFormat)
	if err := s.store.Put(r.Context(), keyLastModified, stamp); err != nil {
		s.log.Error().Err(err).Msg("sync write failed")
		writeError(w, http.StatusInternalServerError, "failed to save data")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "lastModified": stamp})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
