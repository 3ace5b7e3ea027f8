package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口（用于 pprof 等）
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterHealthDataRoutes 注册健康数据上传与历史查询路由
func (r *Router) RegisterHealthDataRoutes(h *HealthDataHandler, hist *HistoryHandler) {
	// upload
	r.Handle("/data/api/v1/health-data", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Upload(w, req)
	})

	// history
	r.Handle("/data/api/v1/health-data/checkups", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		hist.ListCheckups(w, req)
	})

	// checkups/{id}/measurements
	r.Handle("/data/api/v1/health-data/checkups/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		rest := strings.TrimPrefix(req.URL.Path, "/data/api/v1/health-data/checkups/")
		id, ok := strings.CutSuffix(rest, "/measurements")
		if !ok || id == "" || strings.Contains(id, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		hist.ListMeasurements(w, req, id)
	})

	r.Handle("/data/api/v1/health-data/latest", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		hist.Latest(w, req)
	})

	r.Handle("/data/api/v1/health-data/export", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		hist.ExportExcel(w, req)
	})
}

// RegisterSessionRoutes 注册 kiosk 会话路由
func (r *Router) RegisterSessionRoutes(h *SessionHandler) {
	r.Handle("/auth/api/v1/login", h.ServeHTTP)
	r.Handle("/auth/api/v1/logout", h.ServeHTTP)
	r.Handle("/auth/api/v1/current", h.ServeHTTP)
}

// RegisterScannerRoutes 注册后台扫描控制路由
func (r *Router) RegisterScannerRoutes(h *ScannerHandler) {
	r.Handle("/data/api/v1/scanner/start", h.ServeHTTP)
	r.Handle("/data/api/v1/scanner/stop", h.ServeHTTP)
	r.Handle("/data/api/v1/scanner/status", h.ServeHTTP)
}
