package locationiq

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/radar-rainfall/internal/domain"
)

const defaultBaseURL = "https://us1.locationiq.com/v1"

// Client implements domain.Geocoder using the LocationIQ reverse endpoint.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a LocationIQ geocoding client.
func NewClient(token string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
		logger:  logger,
	}
}

// ReverseGeocode converts coordinates to the nearest address. A coordinate
// LocationIQ cannot resolve (open sea, for instance) yields an empty result.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	params := url.Values{
		"key":    {c.token},
		"lat":    {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":    {strconv.FormatFloat(lon, 'f', -1, 64)},
		"format": {"json"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+params.Encode(), nil)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.logger.Debug("locationiq found no address", "lat", lat, "lon", lon)
		return domain.GeocodingResult{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.GeocodingResult{}, fmt.Errorf("locationiq API error: status %d: %s", resp.StatusCode, body)
	}

	var place response
	if err := json.NewDecoder(resp.Body).Decode(&place); err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("decode response: %w", err)
	}

	result := domain.GeocodingResult{
		Lat:              lat,
		Lon:              lon,
		FormattedAddress: place.DisplayName,
		PlaceName:        place.Address.locality(),
	}
	if v, err := strconv.ParseFloat(place.Lat, 64); err == nil {
		result.Lat = v
	}
	if v, err := strconv.ParseFloat(place.Lon, 64); err == nil {
		result.Lon = v
	}
	if result.FormattedAddress != "" {
		result.Confidence = 1
	}
	return result, nil
}

// LocationIQ API response types. Coordinates arrive as strings.

type response struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Address     address `json:"address"`
}

type address struct {
	Suburb        string `json:"suburb"`
	Neighbourhood string `json:"neighbourhood"`
	Village       string `json:"village"`
	Town          string `json:"town"`
	City          string `json:"city"`
	County        string `json:"county"`
}

// locality picks the most specific populated place name.
func (a address) locality() string {
	for _, name := range []string{a.Suburb, a.Neighbourhood, a.Village, a.Town, a.City, a.County} {
		if name != "" {
			return name
		}
	}
	return ""
}
