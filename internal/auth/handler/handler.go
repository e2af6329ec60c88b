package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"govdash/internal/auth/models"
	"govdash/pkg/platform/httputil"
	authmw "govdash/pkg/platform/middleware/auth"
	"govdash/pkg/requestcontext"
)

// Service defines the interface for session operations.
type Service interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.Session, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
}

// Handler serves sign-in and sign-out. Login is public; the other routes
// run behind requireAuth.
type Handler struct {
	logger      *slog.Logger
	sessions    Service
	requireAuth func(http.Handler) http.Handler
	throttle    func(http.Handler) http.Handler
}

func New(sessions Service, requireAuth func(http.Handler) http.Handler, logger *slog.Logger) *Handler {
	return &Handler{
		logger:      logger,
		sessions:    sessions,
		requireAuth: requireAuth,
		throttle:    passThrough,
	}
}

// WithThrottle limits login attempts with mw.
func (h *Handler) WithThrottle(mw func(http.Handler) http.Handler) *Handler {
	if mw != nil {
		h.throttle = mw
	}
	return h
}

func passThrough(next http.Handler) http.Handler { return next }

// Register registers the session routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.With(h.throttle).Post("/api/session", h.HandleLogin)
	r.With(h.requireAuth).Get("/api/session", h.HandleWhoAmI)
	r.With(h.requireAuth).Delete("/api/session", h.HandleLogout)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sess, err := h.sessions.Login(ctx, *req)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"request_id", requestID,
			"user_id", req.UserID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sess)
}

type whoAmIResponse struct {
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HandleWhoAmI echoes the identity carried by the caller's token.
func (h *Handler) HandleWhoAmI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := requestcontext.Principal(ctx)
	httputil.WriteJSON(w, http.StatusOK, whoAmIResponse{
		UserID:    p.UserID,
		Role:      p.Role.String(),
		ExpiresAt: authmw.GetTokenExpiry(ctx),
	})
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if err := h.sessions.Logout(ctx, authmw.GetTokenID(ctx), authmw.GetTokenExpiry(ctx)); err != nil {
		h.logger.WarnContext(ctx, "logout failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "user signed out",
		"request_id", requestID,
		"user_id", requestcontext.Principal(ctx).UserID,
	)
	w.WriteHeader(http.StatusNoContent)
}
