package admin

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	platformmetrics "citadel/internal/platform/metrics"
	"citadel/internal/platform/middleware"
	"citadel/pkg/platform/httputil"
)

// Handler exposes the admin endpoints behind a shared-token check.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	metrics    *platformmetrics.Metrics
	adminToken string
}

func NewHandler(service *Service, logger *slog.Logger, metrics *platformmetrics.Metrics, adminToken string) *Handler {
	return &Handler{
		logger:     logger,
		service:    service,
		metrics:    metrics,
		adminToken: adminToken,
	}
}

// Register mounts the admin routes onto the given router.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(middleware.Latency(h.metrics))
	router.Use(middleware.RequireAdminToken(h.adminToken, h.logger))

	router.Get("/progress", h.handleProgress)
	router.Get("/backup", h.handleBackup)

	r.Mount("/admin", router)
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Progress(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "progress report failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) handleBackup(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Backup(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "backup failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	filename := "backup_" + doc.ExportedAt.Format("20060102T150405Z") + ".json"
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	httputil.WriteJSON(w, http.StatusOK, doc)
}
