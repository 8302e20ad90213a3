package geocode

import (
	"context"
	"fmt"

	"github.com/couchcryptid/radar-rainfall/internal/domain"
	"golang.org/x/time/rate"
)

// RateLimitedGeocoder holds every request until the token bucket admits it.
type RateLimitedGeocoder struct {
	inner   domain.Geocoder
	limiter *rate.Limiter
}

var _ domain.Geocoder = (*RateLimitedGeocoder)(nil)

// NewRateLimitedGeocoder allows rps requests per second with the given burst.
func NewRateLimitedGeocoder(inner domain.Geocoder, rps float64, burst int) *RateLimitedGeocoder {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedGeocoder{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (r *RateLimitedGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("rate limit wait: %w", err)
	}
	return r.inner.ReverseGeocode(ctx, lat, lon)
}
