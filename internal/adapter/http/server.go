package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/worksite-map/internal/adapter/mapbox"
	"github.com/couchcryptid/worksite-map/internal/domain"
	"github.com/couchcryptid/worksite-map/internal/geo"
	"github.com/couchcryptid/worksite-map/internal/mapview"
)

// MapService is the map the API drives.
type MapService interface {
	View() mapview.View
	SetView(center geo.LatLng, zoom int) (mapview.View, error)
	Locate(mapURL string) (mapview.View, error)
	Click(ll geo.LatLng) *domain.Worksite
	Hover(ll geo.LatLng) bool
	Frame() []byte
	DisplayedWorkTypes() []string
	SetRenderContext(rc domain.RenderContext)
}

// Readiness is ready when every checker is.
type Readiness []sharedobs.ReadinessChecker

func (r Readiness) CheckReadiness(ctx context.Context) error {
	for _, c := range r {
		if err := c.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Server exposes the map API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	svc        MapService
	tiles      mapbox.TileFetcher
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the map API, /tiles, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, svc MapService, tiles mapbox.TileFetcher, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	if tiles == nil {
		tiles = mapbox.Disabled{}
	}
	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:    svc,
		tiles:  tiles,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/view", s.handleGetView)
	mux.HandleFunc("PUT /api/view", s.handleSetView)
	mux.HandleFunc("POST /api/locate", s.handleLocate)
	mux.HandleFunc("POST /api/click", s.handleClick)
	mux.HandleFunc("POST /api/hover", s.handleHover)
	mux.HandleFunc("GET /api/frame.svg", s.handleFrame)
	mux.HandleFunc("GET /api/work-types", s.handleWorkTypes)
	mux.HandleFunc("PUT /api/context", s.handleSetContext)
	mux.HandleFunc("GET /tiles/{z}/{x}/{y}", s.handleTile)

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
