package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"kiosk-data/internal/domain"
)

// Memory repositories back the service when no database is configured and
// double as fakes in unit tests. They are tenant-free: the kiosk serves one
// clinic per deployment.

type MemoryCheckupsRepo struct {
	mu       sync.RWMutex
	checkups map[string]*domain.Checkup

	// FailCreate forces CreateCheckup to fail; used to exercise the
	// persistence error path in tests.
	FailCreate bool
}

func NewMemoryCheckupsRepo() *MemoryCheckupsRepo {
	return &MemoryCheckupsRepo{checkups: map[string]*domain.Checkup{}}
}

var _ CheckupsRepository = (*MemoryCheckupsRepo)(nil)

func (r *MemoryCheckupsRepo) CreateCheckup(_ context.Context, checkup *domain.Checkup) error {
	if checkup == nil || checkup.ID == "" || checkup.PatientID == "" {
		return fmt.Errorf("checkup id and patient_id are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailCreate {
		return fmt.Errorf("checkup insert rejected")
	}
	if checkup.CreatedAt.IsZero() {
		checkup.CreatedAt = time.Now().UTC()
	}
	cp := *checkup
	r.checkups[checkup.ID] = &cp
	return nil
}

func (r *MemoryCheckupsRepo) ListCheckups(_ context.Context, patientID string, limit int) ([]*domain.Checkup, error) {
	if limit <= 0 {
		limit = 50
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Checkup, 0)
	for _, c := range r.checkups {
		if c.PatientID == patientID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckupDate.After(out[j].CheckupDate) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryCheckupsRepo) GetLatestCheckup(ctx context.Context, patientID string) (*domain.Checkup, error) {
	checkups, err := r.ListCheckups(ctx, patientID, 1)
	if err != nil || len(checkups) == 0 {
		return nil, err
	}
	return checkups[0], nil
}

// Count reports how many checkups are stored (test helper).
func (r *MemoryCheckupsRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.checkups)
}

type MemoryMeasurementsRepo struct {
	mu           sync.RWMutex
	measurements []domain.Measurement

	// FailInsert forces InsertMeasurements to fail after the checkup was
	// written; exercises the orphan-checkup anomaly path in tests.
	FailInsert bool
}

func NewMemoryMeasurementsRepo() *MemoryMeasurementsRepo {
	return &MemoryMeasurementsRepo{}
}

var _ MeasurementsRepository = (*MemoryMeasurementsRepo)(nil)

func (r *MemoryMeasurementsRepo) InsertMeasurements(_ context.Context, measurements []domain.Measurement) error {
	if len(measurements) == 0 {
		return fmt.Errorf("at least one measurement is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailInsert {
		return fmt.Errorf("measurement insert rejected")
	}
	r.measurements = append(r.measurements, measurements...)
	return nil
}

func (r *MemoryMeasurementsRepo) ListByCheckup(_ context.Context, checkupID string) ([]domain.Measurement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Measurement, 0)
	for _, m := range r.measurements {
		if m.CheckupID == checkupID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *MemoryMeasurementsRepo) ListByPatient(_ context.Context, patientID string, limit int) ([]domain.Measurement, error) {
	if limit <= 0 {
		limit = 200
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Measurement, 0)
	for _, m := range r.measurements {
		if m.PatientID == patientID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// All returns a copy of every stored measurement (test helper).
func (r *MemoryMeasurementsRepo) All() []domain.Measurement {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Measurement, len(r.measurements))
	copy(out, r.measurements)
	return out
}

type MemoryPatientsRepo struct {
	mu      sync.RWMutex
	byEmail map[string]*domain.Patient
}

func NewMemoryPatientsRepo() *MemoryPatientsRepo {
	return &MemoryPatientsRepo{byEmail: map[string]*domain.Patient{}}
}

var _ PatientsRepository = (*MemoryPatientsRepo)(nil)

// AddPatient seeds a patient (dev bootstrap and tests).
func (r *MemoryPatientsRepo) AddPatient(p domain.Patient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byEmail[p.Email] = &p
}

func (r *MemoryPatientsRepo) GetPatientByEmail(_ context.Context, email string) (*domain.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryPatientsRepo) GetPatientByID(_ context.Context, id string) (*domain.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.byEmail {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}
