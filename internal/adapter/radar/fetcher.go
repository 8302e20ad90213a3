package radar

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	_ "image/png" // register PNG decoder
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
)

// ErrNotIndexed is returned when a decoded frame does not carry palette indices.
var ErrNotIndexed = errors.New("radar frame is not a paletted image")

// Fetcher downloads radar frames over HTTP.
type Fetcher struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher for the given image URL.
func NewFetcher(url string, timeout time.Duration, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// URL returns the image location this fetcher downloads from.
func (f *Fetcher) URL() string {
	return f.url
}

// FetchFrame downloads and decodes the current radar frame.
func (f *Fetcher) FetchFrame(ctx context.Context) (*image.Paletted, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch radar frame: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("radar source error: status %d: %s", resp.StatusCode, body)
	}

	frame, err := Decode(resp.Body)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("radar frame fetched",
		"url", f.url,
		"bounds", frame.Bounds().String(),
		"duration", time.Since(start),
	)
	return frame, nil
}

// Decode reads a GIF or PNG frame and returns its paletted form.
func Decode(r io.Reader) (*image.Paletted, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode radar frame: %w", err)
	}
	frame, ok := img.(*image.Paletted)
	if !ok {
		return nil, fmt.Errorf("%w: %s decoded as %T", ErrNotIndexed, format, img)
	}
	return frame, nil
}

// DecodeFile opens and decodes a frame stored on disk.
func DecodeFile(path string) (*image.Paletted, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open radar frame: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
