package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"govdash/internal/dataset/models"
	"govdash/internal/i18n"
	"govdash/pkg/domain"
	dErrors "govdash/pkg/domain-errors"
	"govdash/pkg/platform/httputil"
	"govdash/pkg/requestcontext"
)

// Service defines the interface for upload console operations.
type Service interface {
	StartUpload(ctx context.Context, req models.StartUploadRequest) (*models.Upload, error)
	Upload(ctx context.Context, id string) (*models.Upload, error)
	Console(ctx context.Context, lang i18n.Lang) *models.Console
	Reset(ctx context.Context, caller domain.Principal) (string, error)
	MaxBytes() int64
}

// Handler serves the data supervisor's upload console.
type Handler struct {
	logger   *slog.Logger
	datasets Service
	throttle func(http.Handler) http.Handler
}

// New creates a new dataset Handler.
func New(datasets Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:   logger,
		datasets: datasets,
		throttle: func(next http.Handler) http.Handler { return next },
	}
}

// WithThrottle limits upload starts with mw.
func (h *Handler) WithThrottle(mw func(http.Handler) http.Handler) *Handler {
	if mw != nil {
		h.throttle = mw
	}
	return h
}

// Register registers the dataset routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/datasets", h.HandleConsole)
	r.With(h.throttle).Post("/api/datasets/uploads", h.HandleUpload)
	r.Get("/api/datasets/uploads/{uploadID}", h.HandleUploadStatus)
	r.Post("/api/datasets/reset", h.HandleReset)
}

func (h *Handler) HandleConsole(w http.ResponseWriter, r *http.Request) {
	lang := i18n.Negotiate(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
	httputil.WriteJSON(w, http.StatusOK, h.datasets.Console(r.Context(), lang))
}

// HandleUpload accepts multipart form data with a "file" part and a
// "dataset_type" field. The upload continues after the response; poll
// HandleUploadStatus for progress.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	limit := h.datasets.MaxBytes()

	// Room for the form fields and multipart framing around the file.
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "file exceeds the upload size limit"))
			return
		}
		h.logger.WarnContext(ctx, "invalid upload form",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "expected multipart form data"))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "file is required"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		h.logger.WarnContext(ctx, "failed to read upload",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "could not read file"))
		return
	}

	up, err := h.datasets.StartUpload(ctx, models.StartUploadRequest{
		FileName: header.Filename,
		Type:     r.FormValue("dataset_type"),
		Content:  content,
		Uploader: requestcontext.Principal(ctx),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "upload rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Location", "/api/datasets/uploads/"+up.ID)
	httputil.WriteJSON(w, http.StatusAccepted, up)
}

func (h *Handler) HandleUploadStatus(w http.ResponseWriter, r *http.Request) {
	up, err := h.datasets.Upload(r.Context(), chi.URLParam(r, "uploadID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, up)
}

func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status, err := h.datasets.Reset(ctx, requestcontext.Principal(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "dataset reset failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": status})
}
