package domain

import "time"

// MeasurementType is the canonical vital-sign classification used in
// vital_measurements.type.
type MeasurementType string

const (
	MeasurementBPSystolic       MeasurementType = "bp_systolic"
	MeasurementBPDiastolic      MeasurementType = "bp_diastolic"
	MeasurementTemperature      MeasurementType = "temperature"
	MeasurementPulse            MeasurementType = "pulse"
	MeasurementOxygenSaturation MeasurementType = "oxygen_saturation"
	MeasurementHeightCm         MeasurementType = "height_cm"
	MeasurementWeightKg         MeasurementType = "weight_kg"
)

// measurementUnits is the single source of truth for units. Unit strings
// found in device exports are never trusted.
var measurementUnits = map[MeasurementType]string{
	MeasurementBPSystolic:       "mmHg",
	MeasurementBPDiastolic:      "mmHg",
	MeasurementTemperature:      "°C",
	MeasurementPulse:            "bpm",
	MeasurementOxygenSaturation: "%",
	MeasurementHeightCm:         "cm",
	MeasurementWeightKg:         "kg",
}

// UnitFor returns the canonical unit for a measurement type, or "" for an
// unknown type.
func UnitFor(t MeasurementType) string { return measurementUnits[t] }

// Measurement 单个生命体征测量值
// One typed numeric vital-sign value tied to a Checkup. Immutable once
// written.
type Measurement struct {
	ID         string          `json:"id,omitempty"`
	CheckupID  string          `json:"checkup_id"` // owning Checkup (UUID)
	PatientID  string          `json:"patient_id"`
	Type       MeasurementType `json:"type"`
	Value      float64         `json:"value"`
	Unit       string          `json:"unit"` // always UnitFor(Type)
	RecordedAt time.Time       `json:"recorded_at"`
}
