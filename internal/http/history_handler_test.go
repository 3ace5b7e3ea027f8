package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kiosk-data/internal/domain"
	"kiosk-data/internal/repository"
	"kiosk-data/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSessions struct {
	patient *domain.Patient
	err     error
}

func (s *stubSessions) CurrentPatient(_ context.Context) (*domain.Patient, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.patient, nil
}

func newHistoryFixture(t *testing.T) (*HistoryHandler, *repository.MemoryCheckupsRepo, *repository.MemoryMeasurementsRepo) {
	t.Helper()
	checkups := repository.NewMemoryCheckupsRepo()
	measurements := repository.NewMemoryMeasurementsRepo()
	sessions := &stubSessions{patient: &domain.Patient{ID: "patient-1", Name: "Alice"}}
	return NewHistoryHandler(sessions, checkups, measurements, zap.NewNop()), checkups, measurements
}

func TestListCheckupsOrderedNewestFirst(t *testing.T) {
	h, checkups, _ := newHistoryFixture(t)
	ctx := context.Background()

	older := &domain.Checkup{ID: "c1", PatientID: "patient-1", Reason: "r1",
		CheckupDate: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	newer := &domain.Checkup{ID: "c2", PatientID: "patient-1", Reason: "r2",
		CheckupDate: time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)}
	require.NoError(t, checkups.CreateCheckup(ctx, older))
	require.NoError(t, checkups.CreateCheckup(ctx, newer))

	req := httptest.NewRequest(http.MethodGet, "/data/api/v1/health-data/checkups", nil)
	w := httptest.NewRecorder()
	h.ListCheckups(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var result struct {
		Code   int              `json:"code"`
		Result []map[string]any `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Result, 2)
	assert.Equal(t, "c2", result.Result[0]["id"])
	assert.Equal(t, "c1", result.Result[1]["id"])
}

func TestListMeasurementsForCheckup(t *testing.T) {
	h, _, measurements := newHistoryFixture(t)
	ctx := context.Background()

	recorded := time.Date(2024, 1, 5, 8, 30, 0, 0, time.UTC)
	require.NoError(t, measurements.InsertMeasurements(ctx, []domain.Measurement{
		{CheckupID: "c1", PatientID: "patient-1", Type: domain.MeasurementTemperature, Value: 36.8, Unit: "°C", RecordedAt: recorded},
		{CheckupID: "c2", PatientID: "patient-1", Type: domain.MeasurementPulse, Value: 70, Unit: "bpm", RecordedAt: recorded},
	}))

	req := httptest.NewRequest(http.MethodGet, "/data/api/v1/health-data/checkups/c1/measurements", nil)
	w := httptest.NewRecorder()
	h.ListMeasurements(w, req, "c1")

	require.Equal(t, http.StatusOK, w.Code)
	var result struct {
		Result []map[string]any `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Result, 1)
	assert.Equal(t, "temperature", result.Result[0]["type"])
	assert.Equal(t, "°C", result.Result[0]["unit"])
}

func TestLatestEmptyHistory(t *testing.T) {
	h, _, _ := newHistoryFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/data/api/v1/health-data/latest", nil)
	w := httptest.NewRecorder()
	h.Latest(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var result struct {
		Code   int `json:"code"`
		Result any `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, ResultSuccess, result.Code)
	assert.Nil(t, result.Result)
}

func TestLatestReturnsMeasurements(t *testing.T) {
	h, checkups, measurements := newHistoryFixture(t)
	ctx := context.Background()

	recorded := time.Date(2024, 1, 5, 8, 30, 0, 0, time.UTC)
	require.NoError(t, checkups.CreateCheckup(ctx, &domain.Checkup{
		ID: "c1", PatientID: "patient-1", Reason: "r1", CheckupDate: recorded,
	}))
	require.NoError(t, measurements.InsertMeasurements(ctx, []domain.Measurement{
		{CheckupID: "c1", PatientID: "patient-1", Type: domain.MeasurementBPSystolic, Value: 120, Unit: "mmHg", RecordedAt: recorded},
		{CheckupID: "c1", PatientID: "patient-1", Type: domain.MeasurementBPDiastolic, Value: 80, Unit: "mmHg", RecordedAt: recorded},
	}))

	req := httptest.NewRequest(http.MethodGet, "/data/api/v1/health-data/latest", nil)
	w := httptest.NewRecorder()
	h.Latest(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var result struct {
		Result struct {
			ID           string           `json:"id"`
			Measurements []map[string]any `json:"measurements"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "c1", result.Result.ID)
	assert.Len(t, result.Result.Measurements, 2)
}

func TestHistoryRequiresSession(t *testing.T) {
	checkups := repository.NewMemoryCheckupsRepo()
	measurements := repository.NewMemoryMeasurementsRepo()
	sessions := &stubSessions{err: fmt.Errorf("%w: no active session", service.ErrAuthentication)}
	h := NewHistoryHandler(sessions, checkups, measurements, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/data/api/v1/health-data/checkups", nil)
	w := httptest.NewRecorder()
	h.ListCheckups(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExportExcelProducesWorkbook(t *testing.T) {
	h, _, measurements := newHistoryFixture(t)
	ctx := context.Background()

	require.NoError(t, measurements.InsertMeasurements(ctx, []domain.Measurement{
		{CheckupID: "c1", PatientID: "patient-1", Type: domain.MeasurementTemperature, Value: 36.8, Unit: "°C", RecordedAt: time.Now().UTC()},
	}))

	req := httptest.NewRequest(http.MethodGet, "/data/api/v1/health-data/export", nil)
	w := httptest.NewRecorder()
	h.ExportExcel(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	// xlsx files are zip archives
	body := w.Body.Bytes()
	require.Greater(t, len(body), 4)
	assert.Equal(t, []byte{0x50, 0x4B, 0x03, 0x04}, body[:4])
}
