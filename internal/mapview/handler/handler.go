package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"govdash/internal/choropleth"
	"govdash/internal/i18n"
	"govdash/internal/mapview"
	"govdash/pkg/platform/httputil"
	"govdash/pkg/requestcontext"
)

// Service defines the interface for map view operations.
type Service interface {
	Render(ctx context.Context, req mapview.RenderRequest) *mapview.View
	Insight(ctx context.Context, regionID string, layer choropleth.Layer, lang i18n.Lang) (*mapview.Insight, error)
	Analytics(ctx context.Context, layer choropleth.Layer, lang i18n.Lang) (*mapview.Analytics, error)
}

// Handler serves the policymaker map, legend, insight panel and charts.
type Handler struct {
	logger  *slog.Logger
	mapview Service
	catalog *i18n.Catalog
}

// New creates a new map view Handler.
func New(svc Service, catalog *i18n.Catalog, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, mapview: svc, catalog: catalog}
}

// Register registers the map routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/map", h.HandleMap)
	r.Get("/api/map/legend", h.HandleLegend)
	r.Get("/api/map/legend.png", h.HandleLegendPNG)
	r.Get("/api/regions/{regionID}", h.HandleInsight)
	r.Get("/api/analytics", h.HandleAnalytics)
}

// Layer reads ?layer=, defaulting to enrolment.
func Layer(r *http.Request) (choropleth.Layer, error) {
	return choropleth.ParseLayer(r.URL.Query().Get("layer"))
}

// Lang reads ?lang=, falling back to Accept-Language.
func Lang(r *http.Request) i18n.Lang {
	return i18n.Negotiate(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
}

func (h *Handler) HandleMap(w http.ResponseWriter, r *http.Request) {
	layer, err := Layer(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	view := h.mapview.Render(r.Context(), mapview.RenderRequest{
		Layer:    layer,
		Selected: r.URL.Query().Get("selected"),
		Lang:     Lang(r),
	})
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) legend(r *http.Request) (choropleth.Legend, error) {
	layer, err := Layer(r)
	if err != nil {
		return choropleth.Legend{}, err
	}
	t := h.catalog.Translator(Lang(r))
	return choropleth.LegendFor(layer).Localize(choropleth.Labeller(t)), nil
}

func (h *Handler) HandleLegend(w http.ResponseWriter, r *http.Request) {
	lg, err := h.legend(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, lg)
}

// HandleLegendPNG draws the legend. Non-Latin labels render as placeholder
// glyphs in the bitmap font, so the image is meant for English exports.
func (h *Handler) HandleLegendPNG(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lg, err := h.legend(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	png, err := choropleth.RenderLegendPNG(lg)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to render legend",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *Handler) HandleInsight(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	layer, err := Layer(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ins, err := h.mapview.Insight(ctx, chi.URLParam(r, "regionID"), layer, Lang(r))
	if err != nil {
		h.logger.WarnContext(ctx, "insight unavailable",
			"request_id", requestcontext.RequestID(ctx),
			"region_id", chi.URLParam(r, "regionID"),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ins)
}

func (h *Handler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	layer, err := Layer(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	a, err := h.mapview.Analytics(ctx, layer, Lang(r))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, a)
}
