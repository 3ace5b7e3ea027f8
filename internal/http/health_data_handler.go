package httpapi

import (
	"errors"
	"io"
	"net/http"

	"kiosk-data/internal/parser"
	"kiosk-data/internal/service"

	"go.uber.org/zap"
)

// maxUploadBytes bounds a single device export upload. The largest known
// export (a full HealthManagerPro history) is well under a megabyte.
const maxUploadBytes = 8 << 20

// HealthDataHandler 健康数据上传 Handler
type HealthDataHandler struct {
	processor service.FileProcessor
	logger    *zap.Logger
}

func NewHealthDataHandler(processor service.FileProcessor, logger *zap.Logger) *HealthDataHandler {
	return &HealthDataHandler{
		processor: processor,
		logger:    logger,
	}
}

// Upload 处理手动上传的设备导出文件
//
// multipart form fields:
//   - file: the export file (required)
//   - link: externally accessible file URL (pulse-oximeter spreadsheets)
func (h *HealthDataHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("file field is required"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("failed to read uploaded file"))
		return
	}
	link := r.FormValue("link")

	if err := h.processor.ProcessFile(ctx, content, header.Filename, link); err != nil {
		h.logger.Error("Upload processing failed",
			zap.String("filename", header.Filename),
			zap.Error(err),
		)
		writeJSON(w, statusForProcessError(err), Fail(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"filename": header.Filename,
		"status":   "processed",
	}))
}

// statusForProcessError maps the pipeline's error taxonomy onto HTTP status
// codes for the upload endpoint.
func statusForProcessError(err error) int {
	switch {
	case errors.Is(err, service.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, parser.ErrUnsupportedDevice):
		return http.StatusUnprocessableEntity
	case errors.Is(err, parser.ErrFormat),
		errors.Is(err, parser.ErrNoMeasurements),
		errors.Is(err, service.ErrMissingLink):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrPersistence):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
