package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"kiosk-data/internal/domain"
)

// PostgresCheckupsRepository checkups 表的 Postgres 实现
type PostgresCheckupsRepository struct {
	db *sql.DB
}

func NewPostgresCheckupsRepository(db *sql.DB) *PostgresCheckupsRepository {
	return &PostgresCheckupsRepository{db: db}
}

var _ CheckupsRepository = (*PostgresCheckupsRepository)(nil)

func (r *PostgresCheckupsRepository) CreateCheckup(ctx context.Context, checkup *domain.Checkup) error {
	if checkup == nil || checkup.ID == "" || checkup.PatientID == "" {
		return fmt.Errorf("checkup id and patient_id are required")
	}
	if checkup.CreatedAt.IsZero() {
		checkup.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO checkups (id, patient_id, reason, checkup_date, created_at)
		VALUES ($1::uuid, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		checkup.ID,
		checkup.PatientID,
		checkup.Reason,
		checkup.CheckupDate,
		checkup.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert checkup: %w", err)
	}
	return nil
}

func (r *PostgresCheckupsRepository) ListCheckups(ctx context.Context, patientID string, limit int) ([]*domain.Checkup, error) {
	if patientID == "" {
		return nil, fmt.Errorf("patient_id is required")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id::text, patient_id, COALESCE(reason, '') AS reason, checkup_date, created_at
		FROM checkups
		WHERE patient_id = $1
		ORDER BY checkup_date DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkups: %w", err)
	}
	defer rows.Close()

	checkups := make([]*domain.Checkup, 0)
	for rows.Next() {
		var c domain.Checkup
		if err := rows.Scan(&c.ID, &c.PatientID, &c.Reason, &c.CheckupDate, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan checkup: %w", err)
		}
		checkups = append(checkups, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate checkups: %w", err)
	}
	return checkups, nil
}

func (r *PostgresCheckupsRepository) GetLatestCheckup(ctx context.Context, patientID string) (*domain.Checkup, error) {
	if patientID == "" {
		return nil, fmt.Errorf("patient_id is required")
	}

	query := `
		SELECT id::text, patient_id, COALESCE(reason, '') AS reason, checkup_date, created_at
		FROM checkups
		WHERE patient_id = $1
		ORDER BY checkup_date DESC
		LIMIT 1
	`
	var c domain.Checkup
	err := r.db.QueryRowContext(ctx, query, patientID).Scan(&c.ID, &c.PatientID, &c.Reason, &c.CheckupDate, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest checkup: %w", err)
	}
	return &c, nil
}
