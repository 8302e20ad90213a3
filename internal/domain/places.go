package domain

import (
	"context"
	"log/slog"
)

// PlaceResolution is the outcome of reverse-geocoding a set of rainfall coordinates.
type PlaceResolution struct {
	Places  []string // unique place names, in first-seen order
	Lookups int      // geocoder calls made
	Failed  int      // calls that returned an error
}

// ResolvePlaces reverse-geocodes coords and returns the distinct place names.
// Coordinates without a place name are dropped. A failed lookup is logged and
// counted but does not stop resolution (graceful degradation); only context
// cancellation does. maxLookups caps the geocoder calls when positive.
// A nil geocoder resolves nothing.
func ResolvePlaces(ctx context.Context, coords []Geo, geocoder Geocoder, maxLookups int, logger *slog.Logger) (PlaceResolution, error) {
	var res PlaceResolution
	if geocoder == nil {
		return res, nil
	}

	seen := make(map[string]struct{})
	for i, c := range coords {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if maxLookups > 0 && i >= maxLookups {
			logger.Warn("lookup limit reached, skipping remaining coordinates",
				"limit", maxLookups,
				"skipped", len(coords)-i,
			)
			break
		}

		res.Lookups++
		result, err := geocoder.ReverseGeocode(ctx, c.Lat, c.Lon)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			logger.Warn("reverse geocoding failed",
				"lat", c.Lat,
				"lon", c.Lon,
				"error", err,
			)
			res.Failed++
			continue
		}
		if result.FormattedAddress == "" {
			continue
		}
		if _, dup := seen[result.FormattedAddress]; dup {
			continue
		}
		seen[result.FormattedAddress] = struct{}{}
		res.Places = append(res.Places, result.FormattedAddress)
	}
	return res, nil
}
