package httpapi

import (
	"context"
	"net/http"

	"kiosk-data/internal/service"

	"go.uber.org/zap"
)

// ScannerHandler 后台扫描控制 Handler（start/stop/status）
//
// baseCtx is the process context: the polling loop must outlive the request
// that started it.
type ScannerHandler struct {
	scanner *service.Scanner
	baseCtx context.Context
	logger  *zap.Logger
}

func NewScannerHandler(baseCtx context.Context, scanner *service.Scanner, logger *zap.Logger) *ScannerHandler {
	return &ScannerHandler{
		scanner: scanner,
		baseCtx: baseCtx,
		logger:  logger,
	}
}

// ServeHTTP 路由分发
func (h *ScannerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/data/api/v1/scanner/start":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Start(w, r)
	case "/data/api/v1/scanner/stop":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Stop(w, r)
	case "/data/api/v1/scanner/status":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Status(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// Start 启动扫描循环；已在运行时为幂等
func (h *ScannerHandler) Start(w http.ResponseWriter, _ *http.Request) {
	started := h.scanner.Start(h.baseCtx)
	if !started {
		writeJSON(w, http.StatusOK, Ok(map[string]any{"status": "already_running"}))
		return
	}
	h.logger.Info("Scanner started via API")
	writeJSON(w, http.StatusOK, Ok(map[string]any{"status": "started"}))
}

// Stop 停止扫描循环
func (h *ScannerHandler) Stop(w http.ResponseWriter, _ *http.Request) {
	h.scanner.Stop()
	h.logger.Info("Scanner stopped via API")
	writeJSON(w, http.StatusOK, Ok(map[string]any{"status": "stopped"}))
}

// Status 查询扫描状态
func (h *ScannerHandler) Status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"running": h.scanner.Running(),
	}))
}
