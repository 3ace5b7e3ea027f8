package service

import (
	"context"
	"fmt"
	"time"

	"kiosk-data/internal/domain"
	"kiosk-data/internal/repository"
	"kiosk-data/internal/store"
)

// The kiosk is a single-seat terminal: exactly one patient is signed in at a
// time, so the session is one well-known key rather than a token table.
const sessionKey = "kiosk:session:current"

// DefaultSessionTTL bounds how long a kiosk stays signed in unattended.
const DefaultSessionTTL = 30 * time.Minute

// SessionResolver yields the patient behind the current kiosk session.
type SessionResolver interface {
	CurrentPatient(ctx context.Context) (*domain.Patient, error)
}

// SessionService stores the signed-in patient's email in the KV store and
// resolves it against patient_data on demand.
type SessionService struct {
	kv       store.KV
	patients repository.PatientsRepository
	ttl      time.Duration
}

func NewSessionService(kv store.KV, patients repository.PatientsRepository) *SessionService {
	return &SessionService{kv: kv, patients: patients, ttl: DefaultSessionTTL}
}

var _ SessionResolver = (*SessionService)(nil)

// SignIn validates the email against patient_data and opens the session.
func (s *SessionService) SignIn(ctx context.Context, email string) (*domain.Patient, error) {
	patient, err := s.patients.GetPatientByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up patient: %w", err)
	}
	if patient == nil {
		return nil, fmt.Errorf("%w: no patient record for %s", ErrAuthentication, email)
	}
	if err := s.kv.Set(ctx, sessionKey, patient.Email, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return patient, nil
}

// SignOut closes the current session. Signing out an already-signed-out
// kiosk is a no-op.
func (s *SessionService) SignOut(ctx context.Context) error {
	if err := s.kv.Delete(ctx, sessionKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// CurrentPatient resolves the session to a patient record. Both a missing
// session and a dangling email are authentication failures.
func (s *SessionService) CurrentPatient(ctx context.Context) (*domain.Patient, error) {
	email, err := s.kv.Get(ctx, sessionKey)
	if err != nil {
		if err == store.ErrMiss {
			return nil, fmt.Errorf("%w: no active session", ErrAuthentication)
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	patient, err := s.patients.GetPatientByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up patient: %w", err)
	}
	if patient == nil {
		return nil, fmt.Errorf("%w: session email %s has no patient record", ErrAuthentication, email)
	}
	return patient, nil
}
