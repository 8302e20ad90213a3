package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/robfig/cron/v3"
)

// Supported reverse geocoding providers.
const (
	ProviderLocationIQ = "locationiq"
	ProviderMapbox     = "mapbox"
	ProviderGoogle     = "google"
	ProviderNone       = "none"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	RadarImageURL     string
	RadarFetchTimeout time.Duration
	CalibrationFile   string
	RainfallThreshold float64
	ScanSchedule      string

	KafkaBrokers    []string
	KafkaSinkTopic  string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Reverse geocoding configuration.
	GeocoderProvider   string
	LocationIQToken    string
	MapboxToken        string
	GoogleMapsAPIKey   string
	GeocoderTimeout    time.Duration
	GeocoderRateLimit  float64 // requests per second
	GeocoderCacheSize  int
	GeocoderMaxLookups int // 0 means unlimited
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parsePositiveDuration("RADAR_FETCH_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	geocoderTimeout, err := parsePositiveDuration("GEOCODER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	threshold, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("RAINFALL_THRESHOLD", "45"), 64)
	if err != nil || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return nil, errors.New("invalid RAINFALL_THRESHOLD")
	}

	rateLimit, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("GEOCODER_RATE_LIMIT", "2"), 64)
	if err != nil || rateLimit <= 0 {
		return nil, errors.New("invalid GEOCODER_RATE_LIMIT")
	}

	maxLookups, err := strconv.Atoi(sharedcfg.EnvOrDefault("GEOCODER_MAX_LOOKUPS", "500"))
	if err != nil || maxLookups < 0 {
		return nil, errors.New("invalid GEOCODER_MAX_LOOKUPS")
	}

	schedule := sharedcfg.EnvOrDefault("SCAN_SCHEDULE", "*/10 * * * *")
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid SCAN_SCHEDULE: %w", err)
	}

	cfg := &Config{
		RadarImageURL:     sharedcfg.EnvOrDefault("RADAR_IMAGE_URL", "https://mausam.imd.gov.in/Radar/caz_chn.gif"),
		RadarFetchTimeout: fetchTimeout,
		CalibrationFile:   sharedcfg.EnvOrDefault("CALIBRATION_FILE", "filter/filter.txt"),
		RainfallThreshold: threshold,
		ScanSchedule:      schedule,

		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic:  sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "rainfall-reports"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		LocationIQToken:    os.Getenv("LOCATIONIQ_TOKEN"),
		MapboxToken:        os.Getenv("MAPBOX_TOKEN"),
		GoogleMapsAPIKey:   os.Getenv("GOOGLE_MAPS_API_KEY"),
		GeocoderTimeout:    geocoderTimeout,
		GeocoderRateLimit:  rateLimit,
		GeocoderCacheSize:  parseCacheSize(),
		GeocoderMaxLookups: maxLookups,
	}

	// The provider defaults to the first one with credentials.
	cfg.GeocoderProvider = strings.ToLower(sharedcfg.EnvOrDefault("GEOCODER_PROVIDER", cfg.defaultProvider()))

	if cfg.RadarImageURL == "" {
		return nil, errors.New("RADAR_IMAGE_URL is required")
	}
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if err := cfg.validateGeocoder(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// GeocodingEnabled reports whether rainfall coordinates are resolved to places.
func (c *Config) GeocodingEnabled() bool {
	return c.GeocoderProvider != ProviderNone
}

func (c *Config) defaultProvider() string {
	switch {
	case c.LocationIQToken != "":
		return ProviderLocationIQ
	case c.MapboxToken != "":
		return ProviderMapbox
	case c.GoogleMapsAPIKey != "":
		return ProviderGoogle
	default:
		return ProviderNone
	}
}

func (c *Config) validateGeocoder() error {
	switch c.GeocoderProvider {
	case ProviderLocationIQ:
		if c.LocationIQToken == "" {
			return errors.New("GEOCODER_PROVIDER is locationiq but LOCATIONIQ_TOKEN is not set")
		}
	case ProviderMapbox:
		if c.MapboxToken == "" {
			return errors.New("GEOCODER_PROVIDER is mapbox but MAPBOX_TOKEN is not set")
		}
	case ProviderGoogle:
		if c.GoogleMapsAPIKey == "" {
			return errors.New("GEOCODER_PROVIDER is google but GOOGLE_MAPS_API_KEY is not set")
		}
	case ProviderNone:
	default:
		return fmt.Errorf("unknown GEOCODER_PROVIDER %q", c.GeocoderProvider)
	}
	return nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseCacheSize() int {
	if s := os.Getenv("GEOCODER_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
