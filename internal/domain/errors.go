package domain

import "errors"

// Errors returned by the classification core. Callers match them with
// errors.Is; the returned errors wrap them with the offending line or pixel.
var (
	// ErrMalformedCalibrationRecord means a calibration line did not hold
	// exactly three non-negative integers.
	ErrMalformedCalibrationRecord = errors.New("malformed calibration record")

	// ErrCalibrationIO means the calibration source could not be read.
	ErrCalibrationIO = errors.New("calibration source unreadable")

	// ErrCoordinateNotCovered means the background model has no record for a
	// pixel the classifier needed to check.
	ErrCoordinateNotCovered = errors.New("coordinate not covered by background model")

	// ErrImageBoundsMismatch means the image is smaller than the analysis region.
	ErrImageBoundsMismatch = errors.New("image does not contain the analysis region")

	// ErrInvalidThreshold means the reflectivity threshold is NaN.
	ErrInvalidThreshold = errors.New("invalid reflectivity threshold")
)
