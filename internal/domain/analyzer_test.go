package domain

import (
	"image"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	rawFrameWidth  = 800
	rawFrameHeight = 700
)

// clearSkyAnalyzer builds an Analyzer whose background is a frame with no echo.
func clearSkyAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	site := ChennaiSite()
	region, err := CropAnalysisRegion(filledImage(rawFrameWidth, rawFrameHeight, codeNoEcho), site.AnalysisBox)
	require.NoError(t, err)
	return NewAnalyzer(site, DefaultReflectivityTable(), BackgroundFromImage(region))
}

func TestAnalyzer_ComputeRainfallLocations(t *testing.T) {
	a := clearSkyAnalyzer(t)
	site := a.Site()

	frame := filledImage(rawFrameWidth, rawFrameHeight, codeNoEcho)
	// Raw frame coordinates: the analysis region starts at row 200.
	frame.SetColorIndex(250, 450, code50dBZ) // radar position
	frame.SetColorIndex(260, 430, code50dBZ) // 10 km east, 20 km north
	frame.SetColorIndex(100, 300, code20dBZ) // light rain, below threshold
	frame.SetColorIndex(5, 100, code50dBZ)   // above the analysis region

	coords, err := a.ComputeRainfallLocations(frame, HeavyRainThreshold)
	require.NoError(t, err)

	want := []Geo{
		site.PixelToGeo(image.Pt(260, 230)),
		site.Origin,
	}
	if diff := cmp.Diff(want, coords); diff != "" {
		t.Fatalf("coordinates mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzer_RainfallPixels_FrameTooSmall(t *testing.T) {
	a := clearSkyAnalyzer(t)

	_, err := a.RainfallPixels(filledImage(500, 500, code50dBZ), HeavyRainThreshold)
	require.ErrorIs(t, err, ErrImageBoundsMismatch)
}

func TestAnalyzer_PartialCalibration(t *testing.T) {
	bg, err := LoadBackgroundModel(strings.NewReader("250 250 0\n"))
	require.NoError(t, err)
	a := NewAnalyzer(ChennaiSite(), DefaultReflectivityTable(), bg)

	frame := filledImage(rawFrameWidth, rawFrameHeight, codeNoEcho)
	frame.SetColorIndex(250, 450, code50dBZ)
	coords, err := a.ComputeRainfallLocations(frame, HeavyRainThreshold)
	require.NoError(t, err)
	assert.Len(t, coords, 1)

	frame.SetColorIndex(0, 200, code50dBZ)
	_, err = a.ComputeRainfallLocations(frame, HeavyRainThreshold)
	require.ErrorIs(t, err, ErrCoordinateNotCovered)
}

func TestCropAnalysisRegion(t *testing.T) {
	box := ChennaiSite().AnalysisBox

	region, err := CropAnalysisRegion(filledImage(rawFrameWidth, rawFrameHeight, 0), box)
	require.NoError(t, err)
	assert.Equal(t, box, region.Bounds())

	_, err = CropAnalysisRegion(filledImage(rawFrameWidth, 699, 0), box)
	require.ErrorIs(t, err, ErrImageBoundsMismatch)
}

func TestDominantColor(t *testing.T) {
	frame := filledImage(rawFrameWidth, rawFrameHeight, codeNoEcho)
	legend := ChennaiSite().LegendBox
	for y := legend.Min.Y; y < legend.Max.Y; y++ {
		for x := legend.Min.X; x < legend.Min.X+40; x++ {
			frame.SetColorIndex(x, y, codeOverlay)
		}
	}

	code, ok := DominantColor(frame, legend)
	assert.True(t, ok)
	assert.Equal(t, codeOverlay, code)

	_, ok = DominantColor(frame, image.Rect(900, 900, 950, 950))
	assert.False(t, ok)
}

func TestDominantColor_TieGoesToFirstSeenColumnMajor(t *testing.T) {
	// Column 0 holds 50 dBZ, column 1 holds 20 dBZ: two pixels each.
	frame := filledImage(2, 2, code50dBZ)
	frame.SetColorIndex(1, 0, code20dBZ)
	frame.SetColorIndex(1, 1, code20dBZ)

	code, ok := DominantColor(frame, frame.Bounds())
	assert.True(t, ok)
	assert.Equal(t, code50dBZ, code, "higher index wins when seen first")

	// Row 0 holds 20 dBZ, row 1 holds 50 dBZ: column-major order sees 20 dBZ first.
	frame = filledImage(2, 2, code50dBZ)
	frame.SetColorIndex(0, 0, code20dBZ)
	frame.SetColorIndex(1, 0, code20dBZ)

	code, ok = DominantColor(frame, frame.Bounds())
	assert.True(t, ok)
	assert.Equal(t, code20dBZ, code)
}

func TestReportID(t *testing.T) {
	at := time.Date(2024, time.November, 30, 9, 0, 0, 0, time.UTC)

	id := ReportID("chennai", at, 45)
	assert.True(t, strings.HasPrefix(id, "rain-"))
	assert.Len(t, id, len("rain-")+16)
	assert.Equal(t, id, ReportID("chennai", at.In(time.FixedZone("IST", 19800)), 45))
	assert.NotEqual(t, id, ReportID("chennai", at.Add(10*time.Minute), 45))
	assert.NotEqual(t, id, ReportID("chennai", at, 50))
}
