package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"kiosk-data/internal/domain"
)

// PostgresPatientsRepository patient_data 表的只读 Postgres 实现
type PostgresPatientsRepository struct {
	db *sql.DB
}

func NewPostgresPatientsRepository(db *sql.DB) *PostgresPatientsRepository {
	return &PostgresPatientsRepository{db: db}
}

var _ PatientsRepository = (*PostgresPatientsRepository)(nil)

func (r *PostgresPatientsRepository) GetPatientByEmail(ctx context.Context, email string) (*domain.Patient, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	query := `
		SELECT id::text, email, COALESCE(name, '') AS name, created_at
		FROM patient_data
		WHERE lower(email) = $1
		LIMIT 1
	`
	return r.scanPatient(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresPatientsRepository) GetPatientByID(ctx context.Context, id string) (*domain.Patient, error) {
	if id == "" {
		return nil, fmt.Errorf("id is required")
	}

	query := `
		SELECT id::text, email, COALESCE(name, '') AS name, created_at
		FROM patient_data
		WHERE id = $1
		LIMIT 1
	`
	return r.scanPatient(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresPatientsRepository) scanPatient(row *sql.Row) (*domain.Patient, error) {
	var p domain.Patient
	err := row.Scan(&p.ID, &p.Email, &p.Name, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &p, nil
}
