package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RainfallReport is the result of one radar scan.
type RainfallReport struct {
	ID            string    `json:"id"`
	Site          string    `json:"site"`
	ImageURL      string    `json:"image_url,omitempty"`
	Threshold     float64   `json:"threshold"`
	PixelCount    int       `json:"pixel_count"`
	Coordinates   []Geo     `json:"coordinates"`
	Places        []string  `json:"places"`
	Lookups       int       `json:"lookups"`
	FailedLookups int       `json:"failed_lookups"`
	LegendCode    *uint8    `json:"legend_code,omitempty"` // dominant palette index of the color scale
	ScannedAt     time.Time `json:"scanned_at"`
}

// ReportID produces a deterministic ID for a scan, so replaying the same
// scan publishes the same key downstream.
func ReportID(site string, scannedAt time.Time, threshold float64) string {
	input := fmt.Sprintf("%s|%s|%g", site, scannedAt.UTC().Format(time.RFC3339), threshold)
	hash := sha256.Sum256([]byte(input))
	return "rain-" + hex.EncodeToString(hash[:8])
}
