package domain

import "image"

// Site describes a radar installation and the geometry of the image it
// publishes. Values are fixed calibration, not runtime configuration.
type Site struct {
	Name   string
	Origin Geo

	// LatPerKm and LonPerKm are the degrees covered by one kilometre north
	// and east of the radar. They are only valid near Origin.
	LatPerKm float64
	LonPerKm float64

	// AnalysisBox is the plotted reflectivity field inside the raw image.
	// One pixel covers one kilometre and the radar sits at its center.
	AnalysisBox image.Rectangle

	// LegendBox is the color scale strip to the right of the field.
	LegendBox image.Rectangle
}

// ChennaiSite returns the calibration of the IMD Doppler radar at Chennai.
func ChennaiSite() Site {
	return Site{
		Name:        "chennai",
		Origin:      Geo{Lat: 13.083911, Lon: 80.289676},
		LatPerKm:    0.008993614533681086,
		LonPerKm:    0.009233610341643583,
		AnalysisBox: image.Rect(0, 200, 500, 700),
		LegendBox:   image.Rect(719, 75, 784, 425),
	}
}

// Center returns the radar's pixel position inside the analysis region.
func (s Site) Center() image.Point {
	return image.Pt(s.AnalysisBox.Dx()/2, s.AnalysisBox.Dy()/2)
}

// PixelToGeo converts a pixel of the analysis region to a coordinate using a
// flat-plane approximation around the radar. Rows grow southward, so the
// vertical offset is inverted.
func (s Site) PixelToGeo(p image.Point) Geo {
	c := s.Center()
	dx := float64(p.X - c.X)
	dy := float64(c.Y - p.Y)
	return Geo{
		Lat: s.Origin.Lat + dy*s.LatPerKm,
		Lon: s.Origin.Lon + dx*s.LonPerKm,
	}
}
