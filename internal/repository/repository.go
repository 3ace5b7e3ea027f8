package repository

import (
	"context"

	"kiosk-data/internal/domain"
)

// CheckupsRepository persists and reads checkup records (checkups table).
type CheckupsRepository interface {
	// CreateCheckup inserts a new checkup row. The checkup ID must be set
	// by the caller; CreatedAt is stamped here if zero.
	CreateCheckup(ctx context.Context, checkup *domain.Checkup) error

	// ListCheckups returns a patient's checkups, newest first.
	ListCheckups(ctx context.Context, patientID string, limit int) ([]*domain.Checkup, error)

	// GetLatestCheckup returns the patient's most recent checkup, or nil
	// when the patient has none.
	GetLatestCheckup(ctx context.Context, patientID string) (*domain.Checkup, error)
}

// MeasurementsRepository persists and reads vital measurements
// (vital_measurements table).
type MeasurementsRepository interface {
	// InsertMeasurements writes all measurements in one statement where
	// the store allows, so a partial write window stays as small as
	// possible. Measurements are immutable once written.
	InsertMeasurements(ctx context.Context, measurements []domain.Measurement) error

	// ListByCheckup returns all measurements belonging to one checkup.
	ListByCheckup(ctx context.Context, checkupID string) ([]domain.Measurement, error)

	// ListByPatient returns a patient's measurements, newest first.
	ListByPatient(ctx context.Context, patientID string, limit int) ([]domain.Measurement, error)
}

// PatientsRepository is a read-only lookup into patient_data.
type PatientsRepository interface {
	// GetPatientByEmail returns nil when no patient matches.
	GetPatientByEmail(ctx context.Context, email string) (*domain.Patient, error)

	// GetPatientByID returns nil when no patient matches.
	GetPatientByID(ctx context.Context, id string) (*domain.Patient, error)
}
