package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"kiosk-data/internal/domain"
)

// PostgresMeasurementsRepository vital_measurements 表的 Postgres 实现
type PostgresMeasurementsRepository struct {
	db *sql.DB
}

func NewPostgresMeasurementsRepository(db *sql.DB) *PostgresMeasurementsRepository {
	return &PostgresMeasurementsRepository{db: db}
}

var _ MeasurementsRepository = (*PostgresMeasurementsRepository)(nil)

// InsertMeasurements writes all rows with one multi-value INSERT so the
// write is atomic at the statement level. True cross-table atomicity with
// the owning checkup is not assumed available.
func (r *PostgresMeasurementsRepository) InsertMeasurements(ctx context.Context, measurements []domain.Measurement) error {
	if len(measurements) == 0 {
		return fmt.Errorf("at least one measurement is required")
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO vital_measurements (checkup_id, patient_id, type, value, unit, recorded_at) VALUES `)
	args := make([]any, 0, len(measurements)*6)
	for i, m := range measurements {
		if m.CheckupID == "" || m.Type == "" {
			return fmt.Errorf("measurement checkup_id and type are required")
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 6
		fmt.Fprintf(&sb, "($%d::uuid, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6)
		args = append(args, m.CheckupID, m.PatientID, string(m.Type), m.Value, m.Unit, m.RecordedAt)
	}

	if _, err := r.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("failed to insert measurements: %w", err)
	}
	return nil
}

func (r *PostgresMeasurementsRepository) ListByCheckup(ctx context.Context, checkupID string) ([]domain.Measurement, error) {
	if checkupID == "" {
		return nil, fmt.Errorf("checkup_id is required")
	}

	query := `
		SELECT id::text, checkup_id::text, patient_id, type, value, unit, recorded_at
		FROM vital_measurements
		WHERE checkup_id = $1::uuid
		ORDER BY recorded_at DESC, type
	`
	return r.queryMeasurements(ctx, query, checkupID)
}

func (r *PostgresMeasurementsRepository) ListByPatient(ctx context.Context, patientID string, limit int) ([]domain.Measurement, error) {
	if patientID == "" {
		return nil, fmt.Errorf("patient_id is required")
	}
	if limit <= 0 {
		limit = 200
	}

	query := `
		SELECT id::text, checkup_id::text, patient_id, type, value, unit, recorded_at
		FROM vital_measurements
		WHERE patient_id = $1
		ORDER BY recorded_at DESC, type
		LIMIT $2
	`
	return r.queryMeasurements(ctx, query, patientID, limit)
}

func (r *PostgresMeasurementsRepository) queryMeasurements(ctx context.Context, query string, args ...any) ([]domain.Measurement, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query measurements: %w", err)
	}
	defer rows.Close()

	measurements := make([]domain.Measurement, 0)
	for rows.Next() {
		var m domain.Measurement
		var mType string
		if err := rows.Scan(&m.ID, &m.CheckupID, &m.PatientID, &mType, &m.Value, &m.Unit, &m.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		m.Type = domain.MeasurementType(mType)
		measurements = append(measurements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate measurements: %w", err)
	}
	return measurements, nil
}
