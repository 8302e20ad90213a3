package googlemaps

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/radar-rainfall/internal/domain"
	"googlemaps.github.io/maps"
)

// Client implements domain.Geocoder using the Google Maps Geocoding API.
type Client struct {
	maps   *maps.Client
	logger *slog.Logger
}

// NewClient creates a Google Maps geocoding client. Extra options are applied
// after the API key and HTTP client, which lets tests point it at a fake server.
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger, opts ...maps.ClientOption) (*Client, error) {
	options := append([]maps.ClientOption{
		maps.WithAPIKey(apiKey),
		maps.WithHTTPClient(&http.Client{Timeout: timeout}),
	}, opts...)

	mc, err := maps.NewClient(options...)
	if err != nil {
		return nil, fmt.Errorf("create google maps client: %w", err)
	}
	return &Client{maps: mc, logger: logger}, nil
}

// ReverseGeocode converts coordinates to the best matching address.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	results, err := c.maps.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: lat, Lng: lon},
	})
	if err != nil {
		if strings.Contains(err.Error(), "ZERO_RESULTS") {
			c.logger.Debug("google maps found no address", "lat", lat, "lon", lon)
			return domain.GeocodingResult{}, nil
		}
		return domain.GeocodingResult{}, fmt.Errorf("google reverse geocode: %w", err)
	}
	if len(results) == 0 {
		return domain.GeocodingResult{}, nil
	}

	r := results[0]
	return domain.GeocodingResult{
		Lat:              r.Geometry.Location.Lat,
		Lon:              r.Geometry.Location.Lng,
		FormattedAddress: r.FormattedAddress,
		PlaceName:        locality(r.AddressComponents),
		Confidence:       confidence(r.Geometry.LocationType),
	}, nil
}

// locality returns the most specific named area among the address components.
func locality(components []maps.AddressComponent) string {
	for _, want := range []string{"sublocality", "locality", "administrative_area_level_2"} {
		for _, comp := range components {
			for _, typ := range comp.Types {
				if typ == want {
					return comp.LongName
				}
			}
		}
	}
	return ""
}

func confidence(locationType string) float64 {
	switch locationType {
	case "ROOFTOP":
		return 1
	case "RANGE_INTERPOLATED":
		return 0.8
	case "GEOMETRIC_CENTER":
		return 0.6
	case "APPROXIMATE":
		return 0.4
	default:
		return 0
	}
}
