package review

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mssola/useragent"

	platformmetrics "citadel/internal/platform/metrics"
	"citadel/internal/platform/middleware"
	"citadel/internal/sample"
	"citadel/internal/verdict"
	dErrors "citadel/pkg/domain-errors"
	"citadel/pkg/platform/httputil"
)

// Handler exposes the review workflow over HTTP.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	metrics   *platformmetrics.Metrics
	validator middleware.JWTValidator
}

func NewHandler(service *Service, logger *slog.Logger, metrics *platformmetrics.Metrics, validator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		metrics:   metrics,
		validator: validator,
	}
}

// Register mounts the review routes onto the given router.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Metadata)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.Latency(h.metrics))

	router.Post("/login", h.handleLogin)

	router.Group(func(authed chi.Router) {
		authed.Use(middleware.RequireAuth(h.validator, h.logger))
		authed.Get("/current", h.handleCurrent)
		authed.Post("/verdict", h.handleSaveVerdict)
		authed.Post("/skip", h.handleSkip)
		authed.Post("/prev", h.handlePrev)
		authed.Post("/jump", h.handleJump)
		authed.Post("/next-unreviewed", h.handleJumpUnreviewed)
		authed.Get("/verdicts", h.handleListVerdicts)
		authed.Get("/export", h.handleExport)
		authed.Post("/import", h.handleImport)
		authed.Post("/logout", h.handleLogout)
	})

	r.Mount("/review", router)
}

type loginRequest struct {
	Name     string                  `json:"name"`
	Verdicts *verdict.ExportDocument `json:"verdicts,omitempty"`
}

type storageInfo struct {
	Durable bool   `json:"durable"`
	Notice  string `json:"notice,omitempty"`
}

type loginResponse struct {
	Token          string      `json:"token"`
	Reviewer       string      `json:"reviewer"`
	Total          int         `json:"total"`
	Position       int         `json:"position"`
	ResumeReviewID int         `json:"resume_review_id,omitempty"`
	Imported       int         `json:"imported,omitempty"`
	Storage        storageInfo `json:"storage"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.service.Login(ctx, req.Name, req.Verdicts)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	if rawUA := middleware.GetUserAgent(ctx); rawUA != "" {
		ua := useragent.New(rawUA)
		browser, version := ua.Browser()
		h.logger.InfoContext(ctx, "login device",
			"reviewer", result.Reviewer,
			"browser", browser,
			"browser_version", version,
			"os", ua.OS(),
			"mobile", ua.Mobile(),
			"client_ip", middleware.GetClientIP(ctx),
		)
	}

	httputil.WriteJSON(w, http.StatusOK, loginResponse{
		Token:          result.Token,
		Reviewer:       result.Reviewer,
		Total:          result.Total,
		Position:       result.Position,
		ResumeReviewID: result.ResumeReviewID,
		Imported:       result.Imported,
		Storage:        storageInfo{Durable: result.Durable, Notice: result.Notice},
	})
}

type currentResponse struct {
	Record         sample.Record    `json:"record"`
	Links          sample.Links     `json:"links"`
	Entry          *verdict.Entry   `json:"entry,omitempty"`
	Position       int              `json:"position"`
	Total          int              `json:"total"`
	Progress       verdict.Progress `json:"progress"`
	NextUnreviewed int              `json:"next_unreviewed,omitempty"`
}

func (h *Handler) writeView(w http.ResponseWriter, view *CurrentView) {
	httputil.WriteJSON(w, http.StatusOK, currentResponse{
		Record:         view.Record,
		Links:          view.Links,
		Entry:          view.Entry,
		Position:       view.Position,
		Total:          view.Total,
		Progress:       view.Progress,
		NextUnreviewed: view.NextUnreviewed,
	})
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Current(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.writeView(w, view)
}

type saveVerdictRequest struct {
	Verdict string `json:"verdict"`
	Notes   string `json:"notes"`
}

func (h *Handler) handleSaveVerdict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req saveVerdictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	view, err := h.service.SaveVerdict(ctx, middleware.GetSessionID(ctx), req.Verdict, req.Notes)
	if err != nil {
		h.logger.WarnContext(ctx, "save verdict failed",
			"request_id", middleware.GetRequestID(ctx),
			"reviewer", middleware.GetReviewer(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	h.writeView(w, view)
}

func (h *Handler) handleSkip(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, h.service.Skip)
}

func (h *Handler) handlePrev(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, h.service.Prev)
}

func (h *Handler) handleJumpUnreviewed(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, h.service.JumpToUnreviewed)
}

func (h *Handler) navigate(w http.ResponseWriter, r *http.Request, move func(ctx context.Context, sessionID string) (*CurrentView, error)) {
	view, err := move(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.writeView(w, view)
}

type jumpRequest struct {
	Target int `json:"target"`
}

func (h *Handler) handleJump(w http.ResponseWriter, r *http.Request) {
	var req jumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	view, err := h.service.JumpTo(r.Context(), middleware.GetSessionID(r.Context()), req.Target)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.writeView(w, view)
}

type verdictListResponse struct {
	Total    int             `json:"total"`
	Reviewed int             `json:"reviewed"`
	Verdicts []verdict.Entry `json:"verdicts"`
}

func (h *Handler) handleListVerdicts(w http.ResponseWriter, r *http.Request) {
	entries, total, err := h.service.Verdicts(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, verdictListResponse{
		Total:    total,
		Reviewed: len(entries),
		Verdicts: entries,
	})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doc, err := h.service.Export(ctx, middleware.GetSessionID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "verdicts_"+doc.Reviewer+".json"))
	httputil.WriteJSON(w, http.StatusOK, doc)
}

type importResponse struct {
	Imported int `json:"imported"`
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var doc verdict.ExportDocument
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid import document"))
		return
	}

	imported, err := h.service.Import(ctx, middleware.GetSessionID(ctx), doc)
	if err != nil {
		h.logger.WarnContext(ctx, "import rejected",
			"request_id", middleware.GetRequestID(ctx),
			"reviewer", middleware.GetReviewer(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, importResponse{Imported: imported})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.Logout(ctx, middleware.GetSessionID(ctx)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
