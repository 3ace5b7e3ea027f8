package parser

import "errors"

// Parse-level error taxonomy. Callers classify failures with errors.Is; the
// orchestrator never suppresses these, it propagates them to its boundary.
var (
	// ErrUnsupportedDevice: the file could not be attributed to any known
	// device. Not retryable without a filename or content change.
	ErrUnsupportedDevice = errors.New("unsupported device")

	// ErrFormat: the device was recognized but the export did not contain
	// the required structure. Usually means a new export-format version.
	ErrFormat = errors.New("invalid export format")

	// ErrNoMeasurements: the export parsed but held zero usable readings.
	ErrNoMeasurements = errors.New("no usable measurements")
)
