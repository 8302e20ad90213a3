// Package domain classifies India Meteorological Department (IMD) Doppler
// radar reflectivity images and maps heavy-rain pixels to coordinates.
//
// # Data Source
//
// IMD publishes the latest Chennai reflectivity product (CAZ) as a GIF at
// https://mausam.imd.gov.in/Radar/caz_chn.gif, refreshed roughly every ten
// minutes. The GIF is palette-indexed: the reflectivity scale uses a fixed set
// of palette entries, so classification works on palette indexes rather than
// RGB values.
//
// # Image Layout
//
// Raw frame (pixels, origin top-left):
//
//	(0,200)-(500,700)    analysis region: plotted reflectivity field
//	(719,75)-(784,425)   color scale legend
//
// The analysis region is 500×500 with the radar at its center (250, 250).
// One pixel covers one kilometre. Pixel coordinates handed between functions
// in this package are relative to the analysis region.
//
// # Reflectivity Scale
//
// Seventeen palette indexes carry reflectivity, from 20.0 dBZ (index 3) to
// 60.0 dBZ (index 73) in 2.5 dBZ steps. See [DefaultReflectivityTable].
// Heavy rain starts above 45 dBZ ([HeavyRainThreshold]); the threshold test is
// strict, so a pixel at exactly the threshold is not reported.
//
// # Background Calibration
//
// The plotted field carries a static overlay (range rings, coastline, labels)
// drawn with some of the same palette entries as the reflectivity scale. A
// calibration file records the palette index of every analysis pixel on a
// clear-sky frame:
//
//	x y code      e.g. "250 250 215"
//
// A pixel showing its calibrated background index is treated as overlay, not
// rain. Pixels missing from the calibration are an error, never foreground.
// See [LoadBackgroundModel] and [BackgroundFromImage].
//
// # Projection
//
// Pixels are projected onto a flat plane tangent at the radar:
//
//	lat = origin.lat + (250 - y) * latPerKm
//	lon = origin.lon + (x - 250) * lonPerKm
//
// The error grows with distance from the radar but stays small over the
// 250 km plotted range. See [Site.PixelToGeo].
package domain
