package service

import (
	"context"
	"errors"
	"fmt"

	"kiosk-data/internal/domain"
	"kiosk-data/internal/parser"
	"kiosk-data/internal/repository"

	"go.uber.org/zap"
)

// converterInterface 转换服务接口（用于测试）
type converterInterface interface {
	FilterSpreadsheet(ctx context.Context, link string) (*ConverterResponse, error)
}

// FileProcessor is the single public entry point of the ingestion pipeline.
// Both the manual upload handler and the background scanner call only this;
// neither touches a parser directly.
type FileProcessor interface {
	// ProcessFile runs detection, parsing, normalization and persistence
	// for one export file. link is the externally accessible file URL,
	// required for pulse-oximeter spreadsheets, ignored otherwise.
	ProcessFile(ctx context.Context, content []byte, filename, link string) error
}

// DataFilterService ties the detector, the per-device parsers, the
// normalizer and the store together. Stateless; safe to share between the
// upload handler and the scanner.
type DataFilterService struct {
	sessions     SessionResolver
	checkups     repository.CheckupsRepository
	measurements repository.MeasurementsRepository
	converter    converterInterface
	logger       *zap.Logger
}

func NewDataFilterService(
	sessions SessionResolver,
	checkups repository.CheckupsRepository,
	measurements repository.MeasurementsRepository,
	converter converterInterface,
	logger *zap.Logger,
) *DataFilterService {
	return &DataFilterService{
		sessions:     sessions,
		checkups:     checkups,
		measurements: measurements,
		converter:    converter,
		logger:       logger,
	}
}

var _ FileProcessor = (*DataFilterService)(nil)

func (s *DataFilterService) ProcessFile(ctx context.Context, content []byte, filename, link string) error {
	// Resolve the patient before touching any parser; an unauthenticated
	// kiosk must not get as far as reading device data.
	patient, err := s.sessions.CurrentPatient(ctx)
	if err != nil {
		return err
	}

	device := parser.Detect(filename, content)
	if device == domain.DeviceUnknown {
		return fmt.Errorf("%w: no device rule matched %q", parser.ErrUnsupportedDevice, filename)
	}

	readings, err := s.parse(ctx, device, content, link)
	if err != nil {
		return err
	}

	checkup, measurements, err := NormalizeReadings(device, patient.ID, readings)
	if err != nil {
		return err
	}

	// Checkup first, then its measurements, as close together as the
	// store allows. A measurement failure here leaves an orphan checkup;
	// that anomaly is surfaced, not repaired (no store transaction is
	// assumed available).
	if err := s.checkups.CreateCheckup(ctx, checkup); err != nil {
		return fmt.Errorf("%w: checkup write: %v", ErrPersistence, err)
	}
	if err := s.measurements.InsertMeasurements(ctx, measurements); err != nil {
		s.logger.Error("Measurement write failed after checkup write; checkup is orphaned",
			zap.String("checkup_id", checkup.ID),
			zap.String("patient_id", patient.ID),
			zap.Error(err),
		)
		return fmt.Errorf("%w: measurement write: %v", ErrPersistence, err)
	}

	s.logger.Info("Processed device export",
		zap.String("filename", filename),
		zap.String("device_type", device.String()),
		zap.String("checkup_id", checkup.ID),
		zap.Int("measurement_count", len(measurements)),
	)
	return nil
}

// parse dispatches to the device parser. Spreadsheet bytes are never decoded
// locally: every pulse-oximeter file goes through the external conversion
// service, keyed by its link.
func (s *DataFilterService) parse(ctx context.Context, device domain.DeviceType, content []byte, link string) ([]parser.Reading, error) {
	switch device {
	case domain.DeviceThermometer:
		return parser.ParseThermometer(string(content))
	case domain.DeviceBloodPressureMonitor:
		return parser.ParseBloodPressure(string(content))
	case domain.DevicePulseOximeter:
		if link == "" {
			return nil, fmt.Errorf("%w: pulse oximeter files require an accessible file URL", ErrMissingLink)
		}
		resp, err := s.converter.FilterSpreadsheet(ctx, link)
		if err != nil {
			if errors.Is(err, ErrMissingLink) {
				return nil, err
			}
			// The converter is the only reader of this format; its
			// failure is indistinguishable from a structural one.
			return nil, fmt.Errorf("%w: conversion service: %v", parser.ErrFormat, err)
		}
		return parser.ParsePulseOximeter(resp.Headers, resp.FilteredRows)
	default:
		return nil, fmt.Errorf("%w: parser for %q not implemented", parser.ErrUnsupportedDevice, device)
	}
}
