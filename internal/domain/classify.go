package domain

import (
	"fmt"
	"image"
	"math"
)

// IndexedImage is a palette-indexed raster. *image.Paletted satisfies it.
type IndexedImage interface {
	Bounds() image.Rectangle
	ColorIndexAt(x, y int) uint8
}

// Classifier selects the pixels of an analysis region that show rainfall
// above a reflectivity threshold, ignoring the static background overlay.
type Classifier struct {
	table      ReflectivityTable
	background *BackgroundModel
	size       image.Point
}

// NewClassifier creates a Classifier for regions of the given size. The
// background model must cover every pixel of that region.
func NewClassifier(table ReflectivityTable, background *BackgroundModel, size image.Point) *Classifier {
	return &Classifier{
		table:      table,
		background: background,
		size:       size,
	}
}

// Classify scans the region anchored at img.Bounds().Min and returns, in
// row-major order, every pixel whose palette index is on the reflectivity
// scale, whose reflectivity is strictly greater than threshold and which
// differs from the background at that position. Pixel coordinates are
// relative to the region.
//
// An uncovered background coordinate aborts the scan; no partial result is
// returned. A NaN threshold is rejected with ErrInvalidThreshold.
func (c *Classifier) Classify(img IndexedImage, threshold float64) ([]image.Point, error) {
	if math.IsNaN(threshold) {
		return nil, ErrInvalidThreshold
	}

	b := img.Bounds()
	if b.Dx() < c.size.X || b.Dy() < c.size.Y {
		return nil, fmt.Errorf("%w: got %dx%d, want at least %dx%d",
			ErrImageBoundsMismatch, b.Dx(), b.Dy(), c.size.X, c.size.Y)
	}

	var pixels []image.Point
	for y := 0; y < c.size.Y; y++ {
		for x := 0; x < c.size.X; x++ {
			code := img.ColorIndexAt(b.Min.X+x, b.Min.Y+y)

			value, ok := c.table.Reflectivity(code)
			if !ok || value <= threshold {
				continue
			}

			expected, err := c.background.ExpectedColorAt(x, y)
			if err != nil {
				return nil, fmt.Errorf("classify: %w", err)
			}
			if code == expected {
				continue
			}

			pixels = append(pixels, image.Pt(x, y))
		}
	}
	return pixels, nil
}
