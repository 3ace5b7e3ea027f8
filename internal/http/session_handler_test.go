package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"kiosk-data/internal/domain"
	"kiosk-data/internal/repository"
	"kiosk-data/internal/service"
	"kiosk-data/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSessionHandler() *SessionHandler {
	patients := repository.NewMemoryPatientsRepo()
	patients.AddPatient(domain.Patient{ID: "patient-1", Email: "alice@example.com", Name: "Alice"})
	sessions := service.NewSessionService(store.NewMemoryKV(), patients)
	return NewSessionHandler(sessions, zap.NewNop())
}

func postJSON(t *testing.T, h http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestSessionLoginLogoutFlow(t *testing.T) {
	h := newSessionHandler()

	// login
	w := postJSON(t, h, "/auth/api/v1/login", map[string]any{"email": "alice@example.com"})
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		Code   int `json:"code"`
		Result struct {
			PatientID string `json:"patientId"`
			Email     string `json:"email"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, ResultSuccess, result.Code)
	assert.Equal(t, "patient-1", result.Result.PatientID)

	// current
	req := httptest.NewRequest(http.MethodGet, "/auth/api/v1/current", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// logout
	w = postJSON(t, h, "/auth/api/v1/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// current after logout
	req = httptest.NewRequest(http.MethodGet, "/auth/api/v1/current", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionLoginUnknownEmail(t *testing.T) {
	h := newSessionHandler()
	w := postJSON(t, h, "/auth/api/v1/login", map[string]any{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionLoginMissingEmail(t *testing.T) {
	h := newSessionHandler()
	w := postJSON(t, h, "/auth/api/v1/login", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandlerRouting(t *testing.T) {
	h := newSessionHandler()
	tests := []struct {
		name     string
		method   string
		path     string
		wantCode int
	}{
		{"GET login (wrong method)", http.MethodGet, "/auth/api/v1/login", http.StatusMethodNotAllowed},
		{"GET logout (wrong method)", http.MethodGet, "/auth/api/v1/logout", http.StatusMethodNotAllowed},
		{"POST current (wrong method)", http.MethodPost, "/auth/api/v1/current", http.StatusMethodNotAllowed},
		{"unknown path", http.MethodGet, "/auth/api/v1/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}
