// Package remotetest provides an in-memory PostgREST stand-in for tests.
//
// It understands the subset of the PostgREST protocol the remote client
// uses: eq and in filters, or=(col.ilike.*term*) search, order, offset and
// limit, exact counts, single-object responses, insert, patch and delete.
package remotetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/omarluq/holicache/internal/remote"
)

// Table is the table name the fake serves.
const Table = remote.DefaultTable

// ServiceKey is accepted by the fake as a valid key.
const ServiceKey = "service-role-test-key"

// Server is a fake Supabase REST endpoint backed by a slice of rows.
type Server struct {
	failWhen func(r *http.Request) bool
	srv      *httptest.Server
	rows     []remote.Row
	queries  []string
	requests atomic.Int64
	mu       sync.Mutex
	failing  atomic.Bool
}

// NewServer starts a fake and registers its shutdown with t.Cleanup.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.srv.Close)
	return s
}

// URL is the Supabase project URL; the REST API lives under /rest/v1.
func (s *Server) URL() string {
	return s.srv.URL
}

// Config returns a remote.Config pointing at the fake.
func (s *Server) Config() remote.Config {
	return remote.Config{URL: s.srv.URL, ServiceKey: ServiceKey}
}

// Seed inserts rows, assigning ids and timestamps when missing.
func (s *Server) Seed(rows ...remote.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		s.rows = append(s.rows, stamp(row))
	}
}

// Rows returns a copy of the stored rows.
func (s *Server) Rows() []remote.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.rows)
}

// SetFailing makes every request fail with a 500 while on is true.
func (s *Server) SetFailing(on bool) {
	s.failing.Store(on)
}

// FailWhen makes matching requests fail with a 500. Pass nil to clear.
func (s *Server) FailWhen(fn func(r *http.Request) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWhen = fn
}

// Requests returns how many requests reached the fake.
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

// Queries returns the raw query strings received, in order.
func (s *Server) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.queries)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)

	s.mu.Lock()
	s.queries = append(s.queries, r.URL.RawQuery)
	failWhen := s.failWhen
	s.mu.Unlock()

	if r.Header.Get("apikey") != ServiceKey {
		writeError(w, http.StatusUnauthorized, "PGRST301", "invalid api key")
		return
	}
	if r.URL.Path != "/rest/v1/"+Table {
		writeError(w, http.StatusNotFound, "42P01", "relation does not exist")
		return
	}
	if s.failing.Load() || (failWhen != nil && failWhen(r)) {
		writeError(w, http.StatusInternalServerError, "XX000", "simulated failure")
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.handleSelect(w, r)
	case http.MethodPost:
		s.handleInsert(w, r)
	case http.MethodPatch:
		s.handleUpdate(w, r)
	case http.MethodDelete:
		s.handleDelete(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "PGRST000", "method not allowed")
	}
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	s.mu.Lock()
	matched := filterRows(s.rows, q)
	s.mu.Unlock()

	if order := q.Get("order"); strings.HasPrefix(order, "updated_at.desc") {
		slices.SortStableFunc(matched, func(a, b remote.Row) int {
			return b.UpdatedAt.Compare(*a.UpdatedAt)
		})
	}

	total := len(matched)
	offset, _ := strconv.Atoi(q.Get("offset"))
	offset = min(offset, len(matched))
	matched = matched[offset:]
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit < len(matched) {
		matched = matched[:limit]
	}

	if strings.Contains(r.Header.Get("Prefer"), "count=exact") {
		w.Header().Set("Content-Range", fmt.Sprintf("%d-%d/%d", offset, offset+len(matched)-1, total))
	}

	if r.Header.Get("Accept") == "application/vnd.pgrst.object+json" {
		if len(matched) != 1 {
			writeError(w, http.StatusNotAcceptable, "PGRST116", "JSON object requested, multiple (or no) rows returned")
			return
		}
		writeJSON(w, http.StatusOK, matched[0])
		return
	}
	writeJSON(w, http.StatusOK, matched)
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	var row remote.Row
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		writeError(w, http.StatusBadRequest, "PGRST102", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rows {
		if existing.HolidayName == row.HolidayName && existing.CountryName == row.CountryName && existing.Locale == row.Locale {
			writeError(w, http.StatusConflict, "23505", "duplicate key value violates unique constraint")
			return
		}
	}
	row = stamp(row)
	s.rows = append(s.rows, row)
	writeJSON(w, http.StatusCreated, []remote.Row{row})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "PGRST102", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	q := r.URL.Query()
	updated := []remote.Row{}
	for i, row := range s.rows {
		if !matches(row, q) {
			continue
		}
		merged, err := merge(row, fields)
		if err != nil {
			writeError(w, http.StatusBadRequest, "22P02", err.Error())
			return
		}
		now := time.Now().UTC()
		merged.UpdatedAt = &now
		s.rows[i] = merged
		updated = append(updated, merged)
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := r.URL.Query()
	removed := []remote.Row{}
	kept := s.rows[:0]
	for _, row := range s.rows {
		if matches(row, q) {
			removed = append(removed, row)
			continue
		}
		kept = append(kept, row)
	}
	s.rows = kept
	writeJSON(w, http.StatusOK, removed)
}

func stamp(row remote.Row) remote.Row {
	now := time.Now().UTC()
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.CreatedAt == nil {
		row.CreatedAt = &now
	}
	if row.UpdatedAt == nil {
		row.UpdatedAt = &now
	}
	if row.GeneratedAt == nil {
		row.GeneratedAt = &now
	}
	return row
}

func merge(row remote.Row, fields map[string]any) (remote.Row, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return row, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return row, err
	}
	for k, v := range fields {
		m[k] = v
	}
	data, err = json.Marshal(m)
	if err != nil {
		return row, err
	}
	var out remote.Row
	err = json.Unmarshal(data, &out)
	return out, err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message})
}
