package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"maestro/internal/config"
	"maestro/internal/domain"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the marketplace REST API: booking lifecycle,
// moderation queues, catalog search and city autocomplete.
type HTTPServer struct {
	cfg        config.APIConfig
	bookings   domain.BookingService
	moderation domain.ModerationService
	performers domain.PerformerService
	server     *http.Server
	auth       *HTTPAuth
	logger     zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, bookings domain.BookingService, moderation domain.ModerationService, performers domain.PerformerService, logger *zerolog.Logger) *HTTPServer {
	var log zerolog.Logger
	if logger != nil {
		log = logger.With().Str("component", "http-api").Logger()
	} else {
		log = zerolog.Nop()
	}

	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:        cfg,
		bookings:   bookings,
		moderation: moderation,
		performers: performers,
		logger:     log,
	}
	srv.auth = NewHTTPAuth(cfg)

	mux.HandleFunc("/api/v1/bookings", srv.handleBookings)
	mux.HandleFunc("/api/v1/bookings/", srv.handleBookingByID)
	mux.HandleFunc("/api/v1/moderation/", srv.handleModeration)
	mux.HandleFunc("/api/v1/performers/search", srv.handleSearch)
	mux.HandleFunc("/api/v1/performers/", srv.handlePerformerByID)
	mux.HandleFunc("/api/v1/cities", srv.handleCities)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
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

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
