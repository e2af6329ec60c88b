package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"govdash/internal/dashboard"
	mapHandler "govdash/internal/mapview/handler"
	"govdash/pkg/platform/httputil"
	"govdash/pkg/requestcontext"
)

type Service interface {
	Build(ctx context.Context, req dashboard.Request) (dashboard.View, error)
}

type Handler struct {
	logger *slog.Logger
	views  Service
}

func New(views Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, views: views}
}

// Register registers the dashboard route. It expects RequireAuth before it.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/dashboard", h.HandleDashboard)
}

func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	layer, err := mapHandler.Layer(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	view, err := h.views.Build(ctx, dashboard.Request{
		Caller: requestcontext.Principal(ctx),
		Lang:   mapHandler.Lang(r),
		Layer:  layer,
		Device: requestcontext.Device(ctx),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "failed to build dashboard",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dashboard.Envelope{Role: view.Role(), View: view})
}
