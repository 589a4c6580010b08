package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/omarluq/holicache/internal/hybrid"
)

// StatusSource reports engine status. *hybrid.Engine satisfies it.
type StatusSource interface {
	Status(ctx context.Context) (hybrid.Status, error)
	Stats() hybrid.Stats
}

// Instrumenter wraps handlers with request metrics.
// *metrics.Registry satisfies it.
type Instrumenter interface {
	Instrument(route string, next http.Handler) http.Handler
	Handler() http.Handler
}

// Routes creates the ops handler.
// Routes:
//   - GET /healthz - liveness plus the cached remote flag
//   - GET /status - engine counters and tier status as JSON
//   - GET /metrics - Prometheus exposition (when metrics is non-nil)
func Routes(source StatusSource, metrics Instrumenter, logger *zerolog.Logger) http.Handler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	mux := http.NewServeMux()

	handle := func(pattern, route string, h http.Handler) {
		if metrics != nil {
			h = metrics.Instrument(route, h)
		}
		mux.Handle(pattern, h)
	}

	handle("GET /healthz", "/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":              "ok",
			"isSupabaseAvailable": source.Stats().IsSupabaseAvailable,
		})
	}))

	handle("GET /status", "/status", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status, err := source.Status(r.Context())
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("status unavailable")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, status)
	}))

	if metrics != nil {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	var h http.Handler = mux
	h = LoggingMiddleware()(h)
	h = RequestIDMiddleware(logger)(h)
	return h
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
