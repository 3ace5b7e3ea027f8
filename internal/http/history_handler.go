package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"kiosk-data/internal/repository"
	"kiosk-data/internal/service"

	"go.uber.org/zap"
)

// HistoryHandler 病人历史数据查询 Handler（checkup 列表、单次测量、最近一次）
type HistoryHandler struct {
	sessions     service.SessionResolver
	checkups     repository.CheckupsRepository
	measurements repository.MeasurementsRepository
	logger       *zap.Logger
}

func NewHistoryHandler(
	sessions service.SessionResolver,
	checkups repository.CheckupsRepository,
	measurements repository.MeasurementsRepository,
	logger *zap.Logger,
) *HistoryHandler {
	return &HistoryHandler{
		sessions:     sessions,
		checkups:     checkups,
		measurements: measurements,
		logger:       logger,
	}
}

// ListCheckups 返回当前病人的 checkup 列表（新→旧）
func (h *HistoryHandler) ListCheckups(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	patient, err := h.sessions.CurrentPatient(ctx)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	limit := parseInt(r.URL.Query().Get("limit"), 50)
	checkups, err := h.checkups.ListCheckups(ctx, patient.ID, limit)
	if err != nil {
		h.logger.Error("ListCheckups failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
		return
	}

	items := make([]map[string]any, 0, len(checkups))
	for _, c := range checkups {
		items = append(items, map[string]any{
			"id":          c.ID,
			"reason":      c.Reason,
			"checkupDate": c.CheckupDate.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, Ok(items))
}

// ListMeasurements 返回一次 checkup 的全部测量值
func (h *HistoryHandler) ListMeasurements(w http.ResponseWriter, r *http.Request, checkupID string) {
	ctx := r.Context()

	if _, err := h.sessions.CurrentPatient(ctx); err != nil {
		writeAuthError(w, err)
		return
	}

	measurements, err := h.measurements.ListByCheckup(ctx, checkupID)
	if err != nil {
		h.logger.Error("ListMeasurements failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
		return
	}

	items := make([]map[string]any, 0, len(measurements))
	for _, m := range measurements {
		items = append(items, map[string]any{
			"type":       string(m.Type),
			"value":      m.Value,
			"unit":       m.Unit,
			"recordedAt": m.RecordedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, Ok(items))
}

// Latest 返回当前病人最近一次 checkup 及其测量值
func (h *HistoryHandler) Latest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	patient, err := h.sessions.CurrentPatient(ctx)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	checkup, err := h.checkups.GetLatestCheckup(ctx, patient.ID)
	if err != nil {
		h.logger.Error("Latest failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
		return
	}
	if checkup == nil {
		writeJSON(w, http.StatusOK, Ok[any](nil))
		return
	}

	measurements, err := h.measurements.ListByCheckup(ctx, checkup.ID)
	if err != nil {
		h.logger.Error("Latest failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
		return
	}

	items := make([]map[string]any, 0, len(measurements))
	for _, m := range measurements {
		items = append(items, map[string]any{
			"type":       string(m.Type),
			"value":      m.Value,
			"unit":       m.Unit,
			"recordedAt": m.RecordedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"id":           checkup.ID,
		"reason":       checkup.Reason,
		"checkupDate":  checkup.CheckupDate.Format(time.RFC3339),
		"measurements": items,
	}))
}

// ExportExcel 导出当前病人的测量历史为 Excel 文件
func (h *HistoryHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	patient, err := h.sessions.CurrentPatient(ctx)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	limit := parseInt(r.URL.Query().Get("limit"), 500)
	measurements, err := h.measurements.ListByPatient(ctx, patient.ID, limit)
	if err != nil {
		h.logger.Error("ExportExcel failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
		return
	}

	data, err := GenerateMeasurementExport(patient.Name, measurements)
	if err != nil {
		h.logger.Error("ExportExcel failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
		return
	}

	filename := fmt.Sprintf("measurements_%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeAuthError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrAuthentication) {
		writeJSON(w, http.StatusUnauthorized, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusInternalServerError, Fail(err.Error()))
}
