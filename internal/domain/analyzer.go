package domain

import (
	"fmt"
	"image"
)

// Analyzer bundles the immutable calibration for one radar site and turns
// raw radar frames into rainfall coordinates.
type Analyzer struct {
	site       Site
	classifier *Classifier
}

// NewAnalyzer creates an Analyzer. The background model must cover the
// site's analysis region.
func NewAnalyzer(site Site, table ReflectivityTable, background *BackgroundModel) *Analyzer {
	return &Analyzer{
		site:       site,
		classifier: NewClassifier(table, background, site.AnalysisBox.Size()),
	}
}

// Site returns the calibration the Analyzer was built with.
func (a *Analyzer) Site() Site {
	return a.site
}

// RainfallPixels crops the analysis region out of a raw frame and classifies it.
func (a *Analyzer) RainfallPixels(frame IndexedImage, threshold float64) ([]image.Point, error) {
	region, err := CropAnalysisRegion(frame, a.site.AnalysisBox)
	if err != nil {
		return nil, err
	}
	return a.classifier.Classify(region, threshold)
}

// ComputeRainfallLocations returns one coordinate per rainfall pixel of a raw
// frame. Coordinates are not deduplicated; neighbouring pixels usually
// resolve to the same place and that is left to place resolution.
func (a *Analyzer) ComputeRainfallLocations(frame IndexedImage, threshold float64) ([]Geo, error) {
	pixels, err := a.RainfallPixels(frame, threshold)
	if err != nil {
		return nil, err
	}

	coords := make([]Geo, len(pixels))
	for i, p := range pixels {
		coords[i] = a.site.PixelToGeo(p)
	}
	return coords, nil
}

// croppedImage is a view of a rectangle of another IndexedImage.
type croppedImage struct {
	src  IndexedImage
	rect image.Rectangle
}

func (c croppedImage) Bounds() image.Rectangle     { return c.rect }
func (c croppedImage) ColorIndexAt(x, y int) uint8 { return c.src.ColorIndexAt(x, y) }

// CropAnalysisRegion returns a view of box, given relative to the frame's
// top-left corner. The box must lie inside the frame.
func CropAnalysisRegion(frame IndexedImage, box image.Rectangle) (IndexedImage, error) {
	b := frame.Bounds()
	rect := box.Add(b.Min)
	if rect.Empty() || !rect.In(b) {
		return nil, fmt.Errorf("%w: frame %v does not contain %v", ErrImageBoundsMismatch, b, rect)
	}
	return croppedImage{src: frame, rect: rect}, nil
}

// DominantColor returns the most frequent palette index inside box (relative
// to the frame's top-left corner). The box is scanned column by column and
// ties go to the index seen first. ok is false when box and frame do not
// overlap.
func DominantColor(frame IndexedImage, box image.Rectangle) (code uint8, ok bool) {
	b := frame.Bounds()
	rect := box.Add(b.Min).Intersect(b)
	if rect.Empty() {
		return 0, false
	}

	var counts [256]int
	order := make([]uint8, 0, 16)
	for x := rect.Min.X; x < rect.Max.X; x++ {
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			c := frame.ColorIndexAt(x, y)
			if counts[c] == 0 {
				order = append(order, c)
			}
			counts[c]++
		}
	}

	best := order[0]
	for _, c := range order[1:] {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best, true
}
