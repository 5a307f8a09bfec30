// Package http exposes the dashboard JSON API plus health, readiness, and
// metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/misua/quake-monitor-web/internal/domain"
)

// SeaLevelService is the monitor surface the server consumes. Status is a
// pure query from the handler's point of view.
type SeaLevelService interface {
	Status(ctx context.Context) domain.SeaLevelSnapshot
	CheckReadiness(ctx context.Context) error
}

// QuakeSource lists recent earthquakes nearest first.
type QuakeSource interface {
	RecentEarthquakes(ctx context.Context, feed string) ([]domain.Earthquake, error)
}

// TideSource produces the upcoming tide outlook.
type TideSource interface {
	TideOutlook(ctx context.Context) (domain.TideOutlook, error)
}

// WeatherSource produces current weather and air quality.
type WeatherSource interface {
	CurrentWeather(ctx context.Context) (domain.CurrentWeather, error)
	CurrentAirQuality(ctx context.Context) (domain.AirQuality, error)
}

// Sources bundles the feed collaborators behind the dashboard endpoints.
type Sources struct {
	SeaLevel SeaLevelService
	Quakes   QuakeSource
	Tides    TideSource
	Weather  WeatherSource
}

// Server exposes the dashboard API over HTTP.
type Server struct {
	httpServer *http.Server
	sources    Sources
	quakeFeed  string
	location   string
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the dashboard routes. quakeFeed names
// the USGS feed to serve and location is the display name of the monitored
// site.
func NewServer(addr string, sources Sources, quakeFeed, location string, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		sources:   sources,
		quakeFeed: quakeFeed,
		location:  location,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/sea-level", s.handleSeaLevel)
	mux.HandleFunc("GET /api/earthquakes", s.handleEarthquakes)
	mux.HandleFunc("GET /api/tides", s.handleTides)
	mux.HandleFunc("GET /api/weather", s.handleWeather)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.sources.SeaLevel.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleSeaLevel(w http.ResponseWriter, r *http.Request) {
	// Status never fails; upstream trouble degrades to stale data or NO_DATA.
	writeJSON(w, http.StatusOK, s.sources.SeaLevel.Status(r.Context()))
}

func (s *Server) handleEarthquakes(w http.ResponseWriter, r *http.Request) {
	quakes, err := s.sources.Quakes.RecentEarthquakes(r.Context(), s.quakeFeed)
	if err != nil {
		s.upstreamError(w, "earthquakes", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"location":    s.location,
		"earthquakes": quakes,
	})
}

func (s *Server) handleTides(w http.ResponseWriter, r *http.Request) {
	outlook, err := s.sources.Tides.TideOutlook(r.Context())
	if err != nil {
		s.upstreamError(w, "tides", err)
		return
	}
	writeJSON(w, http.StatusOK, outlook)
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	weather, err := s.sources.Weather.CurrentWeather(r.Context())
	if err != nil {
		s.upstreamError(w, "weather", err)
		return
	}

	resp := map[string]any{
		"location": s.location,
		"weather":  weather,
	}
	// Air quality is a nice-to-have; the weather block still renders
	// without it.
	if aq, err := s.sources.Weather.CurrentAirQuality(r.Context()); err == nil {
		resp["air_quality"] = aq
	} else {
		s.logger.Warn("air quality fetch failed", "error", err)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) upstreamError(w http.ResponseWriter, source string, err error) {
	s.logger.Warn("upstream fetch failed", "source", source, "error", err)
	writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
