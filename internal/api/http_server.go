package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"deskbook/internal/config"
	"deskbook/internal/domain"
	"deskbook/internal/service"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the desk CRUD and booking endpoints.
type HTTPServer struct {
	cfg      *config.APIConfig
	desks    domain.DeskModel
	bookings *service.BookingService
	exporter ReportBuilder
	server   *http.Server
	auth     *HTTPAuth
	logger   *zerolog.Logger
}

func NewHTTPServer(cfg *config.APIConfig, desks domain.DeskModel, bookings *service.BookingService, exporter ReportBuilder, logger *zerolog.Logger) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:      cfg,
		desks:    desks,
		bookings: bookings,
		exporter: exporter,
		logger:   logger,
	}
	srv.auth = NewHTTPAuth(cfg)

	mux.HandleFunc("/api/v1/desks", srv.handleDesks)
	mux.HandleFunc("/api/v1/desks/", srv.handleDeskSubroutes)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the wrapped handler for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("dur", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError emits the client error envelope. Internal detail never goes
// into the message; drivers already logged it server-side.
func writeError(w http.ResponseWriter, statusCode int, message, internalCode string) {
	writeJSON(w, statusCode, map[string]string{
		"message":       message,
		"internal_code": internalCode,
	})
}

// writeDomainError maps the error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	var validation *domain.ValidationError
	var partial *domain.PartialBulkError

	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Error(), "validation_error")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "desk not found", "not_found")
	case errors.As(err, &partial):
		ids := make([]string, 0, len(partial.Updated))
		for _, d := range partial.Updated {
			ids = append(ids, d.ID)
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"message":       fmt.Sprintf("bulk update failed after %d records", len(ids)),
			"internal_code": "partial_bulk_failure",
			"updated_ids":   ids,
		})
	case errors.Is(err, domain.ErrBackendUnavailable):
		writeError(w, http.StatusServiceUnavailable, "storage backend unavailable", "backend_unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal error", "internal")
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
