//go:build integration
// +build integration

package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"kiosk-data/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testPatientID = "it-patient-001"

func createTestPatient(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO patient_data (id, email, name)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, name = EXCLUDED.name`,
		testPatientID, "it-patient@kiosk.local", "Integration Patient",
	)
	require.NoError(t, err)
}

func cleanupTestPatient(t *testing.T, db *sql.DB) {
	t.Helper()
	_, _ = db.Exec(`DELETE FROM vital_measurements WHERE patient_id = $1`, testPatientID)
	_, _ = db.Exec(`DELETE FROM checkups WHERE patient_id = $1`, testPatientID)
	_, _ = db.Exec(`DELETE FROM patient_data WHERE id = $1`, testPatientID)
}

func TestPostgresCheckups_CreateAndList(t *testing.T) {
	db := getTestDB(t)
	if db == nil {
		return
	}
	defer db.Close()

	createTestPatient(t, db)
	defer cleanupTestPatient(t, db)

	repo := NewPostgresCheckupsRepository(db)
	ctx := context.Background()

	older := &domain.Checkup{
		ID:          uuid.NewString(),
		PatientID:   testPatientID,
		Reason:      "Temperature measurement from thermometer device",
		CheckupDate: time.Date(2024, 1, 4, 8, 0, 0, 0, time.UTC),
	}
	newer := &domain.Checkup{
		ID:          uuid.NewString(),
		PatientID:   testPatientID,
		Reason:      "Blood pressure measurement from blood pressure monitor device",
		CheckupDate: time.Date(2024, 1, 5, 8, 30, 0, 0, time.UTC),
	}
	require.NoError(t, repo.CreateCheckup(ctx, older))
	require.NoError(t, repo.CreateCheckup(ctx, newer))

	checkups, err := repo.ListCheckups(ctx, testPatientID, 10)
	require.NoError(t, err)
	require.Len(t, checkups, 2)
	require.Equal(t, newer.ID, checkups[0].ID, "expected newest first")

	latest, err := repo.GetLatestCheckup(ctx, testPatientID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	require.Equal(t, newer.ID, latest.ID)
}

func TestPostgresMeasurements_InsertAndQuery(t *testing.T) {
	db := getTestDB(t)
	if db == nil {
		return
	}
	defer db.Close()

	createTestPatient(t, db)
	defer cleanupTestPatient(t, db)

	checkupsRepo := NewPostgresCheckupsRepository(db)
	measurementsRepo := NewPostgresMeasurementsRepository(db)
	ctx := context.Background()

	checkup := &domain.Checkup{
		ID:          uuid.NewString(),
		PatientID:   testPatientID,
		Reason:      "Blood pressure measurement from blood pressure monitor device",
		CheckupDate: time.Date(2024, 1, 5, 8, 30, 0, 0, time.UTC),
	}
	require.NoError(t, checkupsRepo.CreateCheckup(ctx, checkup))

	recordedAt := checkup.CheckupDate
	measurements := []domain.Measurement{
		{CheckupID: checkup.ID, PatientID: testPatientID, Type: domain.MeasurementBPSystolic, Value: 124, Unit: domain.UnitFor(domain.MeasurementBPSystolic), RecordedAt: recordedAt},
		{CheckupID: checkup.ID, PatientID: testPatientID, Type: domain.MeasurementBPDiastolic, Value: 82, Unit: domain.UnitFor(domain.MeasurementBPDiastolic), RecordedAt: recordedAt},
		{CheckupID: checkup.ID, PatientID: testPatientID, Type: domain.MeasurementPulse, Value: 72, Unit: domain.UnitFor(domain.MeasurementPulse), RecordedAt: recordedAt},
	}
	require.NoError(t, measurementsRepo.InsertMeasurements(ctx, measurements))

	got, err := measurementsRepo.ListByCheckup(ctx, checkup.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, m := range got {
		require.Equal(t, domain.UnitFor(m.Type), m.Unit)
	}

	byPatient, err := measurementsRepo.ListByPatient(ctx, testPatientID, 10)
	require.NoError(t, err)
	require.Len(t, byPatient, 3)
}

// A checkup with zero measurements is the documented partial-write anomaly.
// The query side must still behave (empty result, no error) so the anomaly
// is detectable.
func TestPostgresMeasurements_OrphanCheckupIsDetectable(t *testing.T) {
	db := getTestDB(t)
	if db == nil {
		return
	}
	defer db.Close()

	createTestPatient(t, db)
	defer cleanupTestPatient(t, db)

	checkupsRepo := NewPostgresCheckupsRepository(db)
	measurementsRepo := NewPostgresMeasurementsRepository(db)
	ctx := context.Background()

	orphan := &domain.Checkup{
		ID:          uuid.NewString(),
		PatientID:   testPatientID,
		Reason:      "Temperature measurement from thermometer device",
		CheckupDate: time.Now().UTC(),
	}
	require.NoError(t, checkupsRepo.CreateCheckup(ctx, orphan))

	got, err := measurementsRepo.ListByCheckup(ctx, orphan.ID)
	require.NoError(t, err)
	require.Empty(t, got)
}
