package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Worksite store.
	StoreDriver string
	StoreDSN    string

	// Map view and overlay behaviour.
	MapInteractive     bool
	MapInteractiveZoom int
	MapMaxZoom         int
	MapInitialZoom     int
	MapCenterLat       float64
	MapCenterLon       float64
	MapAutoCenter      bool // MAP_CENTER unset: center on the worksite centroid
	MapViewportWidth   int
	MapViewportHeight  int
	MapDoubleBuffering bool
	MapAgeOpacity      bool

	// Mapbox basemap tiles and reverse geocoding.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
	MapboxStyle     string

	// Event publishing.
	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaEventsTopic string
	EventQueueSize   int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	mapboxTimeoutStr := sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s")
	mapboxTimeout, err2 := time.ParseDuration(mapboxTimeoutStr)
	if err2 != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		StoreDriver: sharedcfg.EnvOrDefault("STORE_DRIVER", "sqlite"),
		StoreDSN:    os.Getenv("STORE_DSN"),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parsePositiveInt("MAPBOX_CACHE_SIZE", 1000),
		MapboxStyle:     sharedcfg.EnvOrDefault("MAPBOX_STYLE", "mapbox/streets-v12"),

		KafkaBrokers:     sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaEventsTopic: sharedcfg.EnvOrDefault("KAFKA_EVENTS_TOPIC", "worksite-map-events"),
		EventQueueSize:   parsePositiveInt("EVENT_QUEUE_SIZE", 1024),
	}

	if err := cfg.loadMap(); err != nil {
		return nil, err
	}
	if cfg.KafkaEnabled, err = parseBool("KAFKA_ENABLED", false); err != nil {
		return nil, err
	}

	switch cfg.StoreDriver {
	case "sqlite":
		if cfg.StoreDSN == "" {
			cfg.StoreDSN = "worksites.db"
		}
	case "postgres":
		if cfg.StoreDSN == "" {
			return nil, errors.New("STORE_DSN is required when STORE_DRIVER is postgres")
		}
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q: must be sqlite or postgres", cfg.StoreDriver)
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaEventsTopic == "" {
			return nil, errors.New("KAFKA_EVENTS_TOPIC is required")
		}
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

func (cfg *Config) loadMap() error {
	var err error
	if cfg.MapInteractive, err = parseBool("MAP_INTERACTIVE", true); err != nil {
		return err
	}
	if cfg.MapDoubleBuffering, err = parseBool("MAP_DOUBLE_BUFFERING", false); err != nil {
		return err
	}
	if cfg.MapAgeOpacity, err = parseBool("MAP_AGE_OPACITY", false); err != nil {
		return err
	}
	if cfg.MapMaxZoom, err = parseZoom("MAP_MAX_ZOOM", 18, 22); err != nil {
		return err
	}
	if cfg.MapInteractiveZoom, err = parseZoom("MAP_INTERACTIVE_ZOOM", 12, cfg.MapMaxZoom); err != nil {
		return err
	}
	if cfg.MapInitialZoom, err = parseZoom("MAP_INITIAL_ZOOM", 10, cfg.MapMaxZoom); err != nil {
		return err
	}

	cfg.MapAutoCenter = true
	if s := os.Getenv("MAP_CENTER"); s != "" {
		lat, lon, ok := parsePair(s, ",")
		if !ok || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return fmt.Errorf("invalid MAP_CENTER %q: expected lat,lon", s)
		}
		cfg.MapCenterLat, cfg.MapCenterLon = lat, lon
		cfg.MapAutoCenter = false
	}

	cfg.MapViewportWidth, cfg.MapViewportHeight = 1024, 768
	if s := os.Getenv("MAP_VIEWPORT"); s != "" {
		w, h, ok := parsePair(strings.ToLower(s), "x")
		if !ok || w < 1 || h < 1 || w != float64(int(w)) || h != float64(int(h)) {
			return fmt.Errorf("invalid MAP_VIEWPORT %q: expected WIDTHxHEIGHT", s)
		}
		cfg.MapViewportWidth, cfg.MapViewportHeight = int(w), int(h)
	}
	return nil
}

func parseBool(name string, def bool) (bool, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: must be true or false", name, s)
	}
	return v, nil
}

func parseZoom(name string, def, maxZoom int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		if def > maxZoom {
			return maxZoom, nil
		}
		return def, nil
	}
	z, err := strconv.Atoi(s)
	if err != nil || z < 0 || z > maxZoom {
		return 0, fmt.Errorf("invalid %s %q: must be an integer between 0 and %d", name, s, maxZoom)
	}
	return z, nil
}

func parsePair(s, sep string) (float64, float64, bool) {
	a, b, ok := strings.Cut(s, sep)
	if !ok {
		return 0, 0, false
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
	if err != nil {
		return 0, 0, false
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if err != nil {
		return 0, 0, false
	}
	return x, y, true
}

func parsePositiveInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}
