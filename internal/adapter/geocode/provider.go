package geocode

import (
	"fmt"
	"log/slog"

	"github.com/couchcryptid/radar-rainfall/internal/adapter/googlemaps"
	"github.com/couchcryptid/radar-rainfall/internal/adapter/locationiq"
	"github.com/couchcryptid/radar-rainfall/internal/adapter/mapbox"
	"github.com/couchcryptid/radar-rainfall/internal/config"
	"github.com/couchcryptid/radar-rainfall/internal/domain"
	"github.com/couchcryptid/radar-rainfall/internal/observability"
)

// NewFromConfig builds the decorated geocoder for the configured provider.
// It returns nil when place resolution is disabled.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (domain.Geocoder, error) {
	if !cfg.GeocodingEnabled() {
		metrics.GeocodeEnabled.Set(0)
		logger.Info("reverse geocoding disabled")
		return nil, nil
	}

	var client domain.Geocoder
	switch cfg.GeocoderProvider {
	case config.ProviderLocationIQ:
		client = locationiq.NewClient(cfg.LocationIQToken, cfg.GeocoderTimeout, logger)
	case config.ProviderMapbox:
		client = mapbox.NewClient(cfg.MapboxToken, cfg.GeocoderTimeout, logger)
	case config.ProviderGoogle:
		gc, err := googlemaps.NewClient(cfg.GoogleMapsAPIKey, cfg.GeocoderTimeout, logger)
		if err != nil {
			return nil, err
		}
		client = gc
	default:
		return nil, fmt.Errorf("unknown geocoder provider %q", cfg.GeocoderProvider)
	}

	metrics.GeocodeEnabled.Set(1)
	logger.Info("reverse geocoding enabled",
		"provider", cfg.GeocoderProvider,
		"rate_limit", cfg.GeocoderRateLimit,
		"cache_size", cfg.GeocoderCacheSize,
		"timeout", cfg.GeocoderTimeout,
	)
	return Chain(client, cfg.GeocoderProvider, cfg.GeocoderRateLimit, cfg.GeocoderCacheSize, metrics), nil
}

// Chain wraps a provider client with instrumentation, rate limiting and caching.
func Chain(client domain.Geocoder, provider string, rps float64, cacheSize int, metrics *observability.Metrics) *CachedGeocoder {
	instrumented := NewInstrumentedGeocoder(client, provider, metrics)
	limited := NewRateLimitedGeocoder(instrumented, rps, 1)
	return NewCachedGeocoder(limited, cacheSize, metrics)
}
