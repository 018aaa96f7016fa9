package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/worksite-map/internal/adapter/http"
	"github.com/couchcryptid/worksite-map/internal/adapter/headless"
	kafkaadapter "github.com/couchcryptid/worksite-map/internal/adapter/kafka"
	"github.com/couchcryptid/worksite-map/internal/adapter/mapbox"
	"github.com/couchcryptid/worksite-map/internal/config"
	"github.com/couchcryptid/worksite-map/internal/domain"
	"github.com/couchcryptid/worksite-map/internal/geo"
	"github.com/couchcryptid/worksite-map/internal/mapview"
	"github.com/couchcryptid/worksite-map/internal/observability"
	"github.com/couchcryptid/worksite-map/internal/overlay"
	"github.com/couchcryptid/worksite-map/internal/publish"
	"github.com/couchcryptid/worksite-map/internal/store"
	"github.com/couchcryptid/worksite-map/internal/style"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.StoreDriver, cfg.StoreDSN, logger)
	if err != nil {
		logger.Error("failed to open worksite store", "error", err)
		os.Exit(1)
	}

	// Basemap tiles and reverse geocoding (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var (
		geocoder domain.Geocoder
		tiles    mapbox.TileFetcher = mapbox.Disabled{}
		tileURL  string
	)
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxStyle, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		tiles = mapbox.NewCachedTiles(client, cfg.MapboxCacheSize, metrics)
		tileURL = "/tiles/{z}/{x}/{y}"
		metrics.MapboxEnabled.Set(1)
		logger.Info("mapbox enabled", "style", cfg.MapboxStyle, "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox disabled")
	}

	host := headless.New(headless.Options{
		Center:  geo.LatLng{Lat: cfg.MapCenterLat, Lon: cfg.MapCenterLon},
		Zoom:    cfg.MapInitialZoom,
		MaxZoom: cfg.MapMaxZoom,
		Width:   cfg.MapViewportWidth,
		Height:  cfg.MapViewportHeight,
	})
	renderer := headless.NewRenderer(host, headless.RendererOptions{
		DoubleBuffering: cfg.MapDoubleBuffering,
		TileURL:         tileURL,
		Legends:         true,
		Textures:        style.NewTextureCache(256),
	})

	ready := httpadapter.Readiness{st}
	var (
		listeners []overlay.Listener
		writer    *kafkaadapter.Writer
		pub       *publish.Publisher
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		pub = publish.New(writer, logger, metrics, publish.Options{
			BatchSize:     cfg.BatchSize,
			FlushInterval: cfg.BatchFlushInterval,
			QueueSize:     cfg.EventQueueSize,
		})
		listeners = append(listeners, pub)
		ready = append(ready, pub)
	}

	facade, err := mapview.New(ctx, mapview.Dependencies{
		Source:    st,
		Host:      host,
		Renderer:  renderer,
		Geocoder:  geocoder,
		Listeners: listeners,
		Logger:    logger,
		Metrics:   metrics,
	}, mapview.Options{
		AutoCenter: cfg.MapAutoCenter,
		Overlay: overlay.Config{
			Interactive:     cfg.MapInteractive,
			InteractiveZoom: cfg.MapInteractiveZoom,
			AgeOpacity:      cfg.MapAgeOpacity,
		},
	})
	if err != nil {
		logger.Error("failed to build map", "error", err)
		os.Exit(1)
	}
	ready = append(ready, facade)

	srv := httpadapter.NewServer(cfg.HTTPAddr, facade, tiles, ready, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start event publisher.
	publisherDone := make(chan struct{})
	go func() {
		defer close(publisherDone)
		if pub == nil {
			return
		}
		if err := pub.Run(ctx); err != nil {
			logger.Error("event publisher error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	facade.Close()

	select {
	case <-publisherDone:
	case <-shutdownCtx.Done():
		logger.Warn("event publisher did not stop before the shutdown deadline")
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := st.Close(); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("shutdown complete")
}
