package service

import "errors"

// Orchestrator-level errors. Together with the parser taxonomy
// (parser.ErrUnsupportedDevice, parser.ErrFormat, parser.ErrNoMeasurements)
// these cover every ProcessFile failure mode.
var (
	// ErrAuthentication: no kiosk session or no patient record behind it.
	// Nothing is parsed or written in this case.
	ErrAuthentication = errors.New("no authenticated patient")

	// ErrPersistence: the store rejected a write after a successful parse.
	// Retryable in principle; this service surfaces it and does not retry.
	ErrPersistence = errors.New("persistence failed")

	// ErrMissingLink: a pulse-oximeter spreadsheet arrived without the
	// accessible file URL the conversion service needs.
	ErrMissingLink = errors.New("missing spreadsheet link")
)
