package httpapi

import (
	"errors"
	"net/http"

	"kiosk-data/internal/service"

	"go.uber.org/zap"
)

// SessionHandler kiosk 会话 Handler（单座终端，一次只有一个病人登录）
type SessionHandler struct {
	sessions *service.SessionService
	logger   *zap.Logger
}

func NewSessionHandler(sessions *service.SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// ServeHTTP 路由分发
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/auth/api/v1/login":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Login(w, r)
	case "/auth/api/v1/logout":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Logout(w, r)
	case "/auth/api/v1/current":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Current(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// Login 病人邮箱登录
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload struct {
		Email string `json:"email"`
	}
	if err := readBodyJSON(r, 1<<20, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	if payload.Email == "" {
		writeJSON(w, http.StatusBadRequest, Fail("email is required"))
		return
	}

	patient, err := h.sessions.SignIn(ctx, payload.Email)
	if err != nil {
		h.logger.Error("Login failed", zap.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrAuthentication) {
			status = http.StatusUnauthorized
		}
		writeJSON(w, status, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"patientId": patient.ID,
		"name":      patient.Name,
		"email":     patient.Email,
	}))
}

// Logout 登出（幂等）
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SignOut(r.Context()); err != nil {
		h.logger.Error("Logout failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"status": "signed_out"}))
}

// Current 返回当前登录的病人
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	patient, err := h.sessions.CurrentPatient(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrAuthentication) {
			writeJSON(w, http.StatusUnauthorized, Fail(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"patientId": patient.ID,
		"name":      patient.Name,
		"email":     patient.Email,
	}))
}
