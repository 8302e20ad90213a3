package domain

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// calibrationNumberRe picks the numeric tokens out of a calibration line, so
// "10 20 5", "10,20,5" and "(10, 20): 5" all parse the same. Signs and
// decimals are captured so they can be rejected instead of silently split.
var calibrationNumberRe = regexp.MustCompile(`[-+]?\d+(?:\.\d+)?`)

// BackgroundModel holds the palette index each pixel of the analysis region
// shows on a clear-sky image: range rings, labels and coastline overlays.
// A pixel whose current index equals its background index is not signal.
//
// A BackgroundModel is immutable after construction and safe for concurrent reads.
type BackgroundModel struct {
	codes map[image.Point]uint8
}

// LoadBackgroundModel parses calibration records of the form "x y code", one
// per line. Blank lines are skipped. Any other line that does not hold exactly
// three non-negative integers fails the whole load.
func LoadBackgroundModel(r io.Reader) (*BackgroundModel, error) {
	codes := make(map[image.Point]uint8)

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		p, code, err := parseCalibrationRecord(line)
		if err != nil {
			return nil, fmt.Errorf("calibration line %d: %w", lineNum, err)
		}
		codes[p] = code
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCalibrationIO, err)
	}

	return &BackgroundModel{codes: codes}, nil
}

// LoadBackgroundModelFile opens path and parses it with LoadBackgroundModel.
func LoadBackgroundModelFile(path string) (*BackgroundModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCalibrationIO, err)
	}
	defer f.Close()

	return LoadBackgroundModel(f)
}

func parseCalibrationRecord(line string) (image.Point, uint8, error) {
	tokens := calibrationNumberRe.FindAllString(line, -1)
	if len(tokens) != 3 {
		return image.Point{}, 0, fmt.Errorf("%w: want 3 integers, got %d in %q",
			ErrMalformedCalibrationRecord, len(tokens), line)
	}

	x, errX := parseCoordinate(tokens[0])
	y, errY := parseCoordinate(tokens[1])
	if errX != nil || errY != nil {
		return image.Point{}, 0, fmt.Errorf("%w: invalid coordinate in %q", ErrMalformedCalibrationRecord, line)
	}

	// Palette indexes are bytes; anything larger cannot appear in an image.
	code, err := strconv.ParseUint(tokens[2], 10, 8)
	if err != nil {
		return image.Point{}, 0, fmt.Errorf("%w: invalid color code in %q", ErrMalformedCalibrationRecord, line)
	}

	return image.Pt(x, y), uint8(code), nil
}

func parseCoordinate(s string) (int, error) {
	v, err := strconv.ParseUint(s, 10, 31)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// BackgroundFromImage records every pixel of a clear-sky reference image as
// background. Coordinates are relative to the image's bounds.
func BackgroundFromImage(img IndexedImage) *BackgroundModel {
	b := img.Bounds()
	codes := make(map[image.Point]uint8, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			codes[image.Pt(x-b.Min.X, y-b.Min.Y)] = img.ColorIndexAt(x, y)
		}
	}
	return &BackgroundModel{codes: codes}
}

// ExpectedColorAt returns the background palette index at (x, y).
func (m *BackgroundModel) ExpectedColorAt(x, y int) (uint8, error) {
	code, ok := m.codes[image.Pt(x, y)]
	if !ok {
		return 0, fmt.Errorf("%w: (%d, %d)", ErrCoordinateNotCovered, x, y)
	}
	return code, nil
}

// Len returns the number of calibrated pixels.
func (m *BackgroundModel) Len() int {
	return len(m.codes)
}

// WriteTo writes the model as calibration records in row-major order. The
// output round-trips through LoadBackgroundModel.
func (m *BackgroundModel) WriteTo(w io.Writer) (int64, error) {
	points := make([]image.Point, 0, len(m.codes))
	for p := range m.codes {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Y != points[j].Y {
			return points[i].Y < points[j].Y
		}
		return points[i].X < points[j].X
	})

	bw := bufio.NewWriter(w)
	var total int64
	for _, p := range points {
		n, err := fmt.Fprintf(bw, "%d %d %d\n", p.X, p.Y, m.codes[p])
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, bw.Flush()
}
