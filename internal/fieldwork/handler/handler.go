package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"govdash/internal/fieldwork/models"
	"govdash/pkg/domain"
	dErrors "govdash/pkg/domain-errors"
	"govdash/pkg/platform/httputil"
	"govdash/pkg/requestcontext"
)

// Service defines the interface for checklist operations.
type Service interface {
	Checklist(ctx context.Context, caller domain.Principal) (*models.Checklist, error)
	Complete(ctx context.Context, caller domain.Principal, taskID int) (*models.CompleteResult, error)
}

type Handler struct {
	logger *slog.Logger
	tasks  Service
}

func New(tasks Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, tasks: tasks}
}

// Register registers the checklist routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/tasks", h.HandleList)
	r.Post("/api/tasks/{taskID}/complete", h.HandleComplete)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.tasks.Checklist(ctx, requestcontext.Principal(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "failed to load checklist",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	taskID, err := strconv.Atoi(chi.URLParam(r, "taskID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "task id must be an integer"))
		return
	}

	res, err := h.tasks.Complete(ctx, requestcontext.Principal(ctx), taskID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to complete task",
			"request_id", requestID,
			"task_id", taskID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}
