package service

import (
	"fmt"
	"time"

	"kiosk-data/internal/domain"
	"kiosk-data/internal/parser"

	"github.com/google/uuid"
)

// checkupReasons stamps the originating device on the checkup for audit and
// history display.
var checkupReasons = map[domain.DeviceType]string{
	domain.DeviceThermometer:          "Temperature measurement from thermometer device",
	domain.DeviceBloodPressureMonitor: "Blood pressure measurement from blood pressure monitor device",
	domain.DevicePulseOximeter:        "Pulse oximeter measurement from pulse oximeter device",
}

// NormalizeReadings maps a parser's device-specific readings onto one fresh
// Checkup plus canonical Measurements. Units come exclusively from the
// domain type→unit table; unit strings in device output are ignored.
func NormalizeReadings(device domain.DeviceType, patientID string, readings []parser.Reading) (*domain.Checkup, []domain.Measurement, error) {
	if len(readings) == 0 {
		return nil, nil, fmt.Errorf("%w: parser produced zero readings", parser.ErrNoMeasurements)
	}

	checkup := &domain.Checkup{
		ID:          uuid.NewString(),
		PatientID:   patientID,
		Reason:      checkupReasons[device],
		CheckupDate: readings[0].RecordedAt,
		CreatedAt:   time.Now().UTC(),
	}

	measurements := make([]domain.Measurement, 0, len(readings)*3)
	for _, r := range readings {
		measurements = append(measurements, readingMeasurements(checkup.ID, patientID, r)...)
	}
	if len(measurements) == 0 {
		return nil, nil, fmt.Errorf("%w: no reading carried a usable value", parser.ErrNoMeasurements)
	}
	return checkup, measurements, nil
}

// readingMeasurements emits one Measurement per populated field. Values
// failing basic numeric sanity are dropped rather than persisted.
func readingMeasurements(checkupID, patientID string, r parser.Reading) []domain.Measurement {
	build := func(t domain.MeasurementType, v float64) domain.Measurement {
		return domain.Measurement{
			CheckupID:  checkupID,
			PatientID:  patientID,
			Type:       t,
			Value:      v,
			Unit:       domain.UnitFor(t),
			RecordedAt: r.RecordedAt,
		}
	}

	out := make([]domain.Measurement, 0, 3)
	if r.Temperature != nil && *r.Temperature > 0 {
		out = append(out, build(domain.MeasurementTemperature, *r.Temperature))
	}
	if r.Systolic != nil && *r.Systolic > 0 {
		out = append(out, build(domain.MeasurementBPSystolic, *r.Systolic))
	}
	if r.Diastolic != nil && *r.Diastolic > 0 {
		out = append(out, build(domain.MeasurementBPDiastolic, *r.Diastolic))
	}
	if r.SpO2 != nil && *r.SpO2 > 0 && *r.SpO2 <= 100 {
		out = append(out, build(domain.MeasurementOxygenSaturation, *r.SpO2))
	}
	if r.Pulse != nil && *r.Pulse > 0 {
		out = append(out, build(domain.MeasurementPulse, *r.Pulse))
	}
	return out
}
