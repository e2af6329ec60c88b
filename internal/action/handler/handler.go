package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"govdash/internal/action/models"
	"govdash/internal/region"
	dErrors "govdash/pkg/domain-errors"
	"govdash/pkg/platform/httputil"
	"govdash/pkg/requestcontext"
)

// Service defines the interface for action operations.
type Service interface {
	Initiate(ctx context.Context, req models.InitiateRequest) (*models.GovernanceAction, bool, error)
	List(ctx context.Context) ([]*models.GovernanceAction, error)
	UpdateStatus(ctx context.Context, id string, next models.Status) (*models.GovernanceAction, error)
}

// RegionLookup resolves a region id against the current map snapshot.
type RegionLookup interface {
	RegionByID(ctx context.Context, regionID string) (region.Data, error)
}

// Handler handles governance action endpoints. Routes expect RequireAuth and
// a policymaker role check to run before them.
type Handler struct {
	logger  *slog.Logger
	actions Service
	regions RegionLookup
}

// New creates a new action Handler.
func New(actions Service, regions RegionLookup, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		actions: actions,
		regions: regions,
	}
}

// Register registers the action routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/regions/{regionID}/actions", h.HandleInitiate)
	r.Get("/api/actions", h.HandleList)
	r.Patch("/api/actions/{actionID}/status", h.HandleUpdateStatus)
}

type initiateResponse struct {
	Action  *models.GovernanceAction `json:"action"`
	Created bool                     `json:"created"`
}

// HandleInitiate records an action for the region. 201 when a new action is
// created, 200 when the region already has one.
func (h *Handler) HandleInitiate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	regionID := chi.URLParam(r, "regionID")

	data, err := h.regions.RegionByID(ctx, regionID)
	if err != nil {
		h.logger.WarnContext(ctx, "region lookup failed",
			"request_id", requestID,
			"region_id", regionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	action, created, err := h.actions.Initiate(ctx, models.InitiateRequest{
		Region:    data,
		Initiator: requestcontext.Principal(ctx),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "failed to initiate action",
			"request_id", requestID,
			"region_id", regionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httputil.WriteJSON(w, status, initiateResponse{Action: action, Created: created})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.actions.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list actions",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if list == nil {
		list = []*models.GovernanceAction{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"actions": list})
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.UpdateStatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	next, err := models.ParseStatus(req.Status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	action, err := h.actions.UpdateStatus(ctx, chi.URLParam(r, "actionID"), next)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.WarnContext(ctx, "failed to update action status",
				"request_id", requestID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, action)
}
