package geocode

import (
	"context"
	"time"

	"github.com/couchcryptid/radar-rainfall/internal/domain"
	"github.com/couchcryptid/radar-rainfall/internal/observability"
)

// InstrumentedGeocoder records request outcomes and latency per provider.
type InstrumentedGeocoder struct {
	inner    domain.Geocoder
	provider string
	metrics  *observability.Metrics
}

var _ domain.Geocoder = (*InstrumentedGeocoder)(nil)

// NewInstrumentedGeocoder labels every observation with provider.
func NewInstrumentedGeocoder(inner domain.Geocoder, provider string, metrics *observability.Metrics) *InstrumentedGeocoder {
	return &InstrumentedGeocoder{inner: inner, provider: provider, metrics: metrics}
}

func (g *InstrumentedGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	start := time.Now()
	result, err := g.inner.ReverseGeocode(ctx, lat, lon)
	g.metrics.GeocodeAPIDuration.WithLabelValues(g.provider).Observe(time.Since(start).Seconds())

	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
	case result.FormattedAddress == "":
		outcome = "empty"
	}
	g.metrics.GeocodeRequests.WithLabelValues(g.provider, outcome).Inc()
	return result, err
}
