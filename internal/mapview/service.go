// Package mapview runs the render pass: every topology feature is resolved
// against the latest metric bundle and classified for the selected layer.
// Nothing here is cached; each call recomputes from the current snapshot.
package mapview

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	actionModels "govdash/internal/action/models"
	"govdash/internal/backend"
	"govdash/internal/choropleth"
	"govdash/internal/i18n"
	"govdash/internal/mapview/metrics"
	"govdash/internal/region"
	"govdash/internal/snapshot"
	"govdash/internal/topology"
	dErrors "govdash/pkg/domain-errors"
	"govdash/pkg/requestcontext"
)

// NoticeTopologyLoading is shown while the boundary document has not loaded.
const NoticeTopologyLoading = "notice_topology_loading"

type TopologySource interface {
	Get(ctx context.Context) (*topology.Topology, error)
}

type SnapshotSource interface {
	Current() *snapshot.Snapshot
}

// ActionLookup returns nil, nil when the region has no action.
type ActionLookup interface {
	LatestForRegion(ctx context.Context, regionID string) (*actionModels.GovernanceAction, error)
}

type AnalyticsSource interface {
	Analytics(ctx context.Context, layer string) (*backend.Analytics, error)
}

type Service struct {
	topology  TopologySource
	snapshots SnapshotSource
	actions   ActionLookup
	analytics AnalyticsSource
	resolver  *region.Resolver
	catalog   *i18n.Catalog
	logger    *slog.Logger
	metrics   *metrics.Metrics

	mu            sync.RWMutex
	lastAnalytics map[choropleth.Layer]*backend.Analytics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithCatalog(c *i18n.Catalog) Option {
	return func(s *Service) {
		s.catalog = c
	}
}

func WithResolver(r *region.Resolver) Option {
	return func(s *Service) {
		s.resolver = r
	}
}

// WithActions enables the existing-action lookup on the insight panel.
func WithActions(a ActionLookup) Option {
	return func(s *Service) {
		s.actions = a
	}
}

// WithAnalytics enables the analytics endpoint.
func WithAnalytics(a AnalyticsSource) Option {
	return func(s *Service) {
		s.analytics = a
	}
}

func New(topo TopologySource, snapshots SnapshotSource, opts ...Option) *Service {
	s := &Service{
		topology:      topo,
		snapshots:     snapshots,
		resolver:      region.Default,
		catalog:       i18n.Default(),
		logger:        slog.Default(),
		lastAnalytics: make(map[choropleth.Layer]*backend.Analytics),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// resolved is one feature after resolution, before classification.
type resolved struct {
	feature topology.Feature
	data    region.Data
}

// resolveAll returns nil topology while the boundary document is unavailable.
func (s *Service) resolveAll(ctx context.Context) (*topology.Topology, *snapshot.Snapshot, []resolved) {
	snap := s.snapshots.Current()
	topo, err := s.topology.Get(ctx)
	if err != nil {
		return nil, snap, nil
	}
	out := make([]resolved, 0, topo.Len())
	for _, f := range topo.Features {
		res := s.resolver.Resolve(f.RawName, snap.Bundle)
		s.metrics.ObserveResolution(string(res.Strategy), res.Aliased)
		out = append(out, resolved{feature: f, data: res.Data})
	}
	return topo, snap, out
}

// Render builds the map view for a layer. It never fails: a missing topology
// yields a loading view and backend outages surface as notices.
func (s *Service) Render(ctx context.Context, req RenderRequest) *View {
	start := time.Now()
	defer s.metrics.ObserveRender(start)

	t := s.catalog.Translator(req.Lang)
	topo, snap, regions := s.resolveAll(ctx)

	view := &View{
		Layer:   req.Layer,
		Lang:    req.Lang,
		Loading: topo == nil,
		Seq:     snap.Seq,
		Regions: make([]RegionView, 0, len(regions)),
		Legend:  choropleth.LegendFor(req.Layer).Localize(choropleth.Labeller(t)),
		Notices: localizeNotices(snap.Notices, t),
	}
	if !snap.PolledAt.IsZero() {
		polled := snap.PolledAt
		view.PolledAt = &polled
	}
	if view.Loading {
		view.Notices = append(view.Notices, LocalizedNotice{Key: NoticeTopologyLoading, Message: t(NoticeTopologyLoading)})
		return view
	}

	selected := false
	for _, r := range regions {
		value := choropleth.MetricFor(req.Layer, r.data)
		bucket := choropleth.Classify(req.Layer, value)
		rv := RegionView{
			Data:         r.data,
			FeatureIndex: r.feature.Index,
			RawName:      r.feature.RawName,
			DisplayName:  region.DisplayName(r.data.Name),
			Value:        value,
			Bucket:       bucket,
			Color:        choropleth.ColorOf(bucket),
		}
		if !selected && req.Selected != "" && r.data.ID == req.Selected {
			rv.Selected = true
			selected = true
		}
		if b := r.feature.Bound; b != nil {
			rv.Bound = &[4]float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}
		}
		view.Regions = append(view.Regions, rv)
	}
	return view
}

// RegionByID returns the first feature in topology order whose resolved id
// matches. Ids are three-letter prefixes and may collide.
func (s *Service) RegionByID(ctx context.Context, regionID string) (region.Data, error) {
	id := strings.ToUpper(strings.TrimSpace(regionID))
	if id == "" {
		return region.Data{}, dErrors.New(dErrors.CodeValidation, "region id is required")
	}
	topo, _, regions := s.resolveAll(ctx)
	if topo == nil {
		return region.Data{}, dErrors.New(dErrors.CodeUnavailable, "map boundaries are still loading")
	}
	for _, r := range regions {
		if r.data.ID == id {
			return r.data, nil
		}
	}
	return region.Data{}, dErrors.New(dErrors.CodeNotFound, "region not found")
}

// Insight builds the side panel for a region on the given layer.
func (s *Service) Insight(ctx context.Context, regionID string, layer choropleth.Layer, lang i18n.Lang) (*Insight, error) {
	data, err := s.RegionByID(ctx, regionID)
	if err != nil {
		return nil, err
	}
	t := s.catalog.Translator(lang)
	value := choropleth.MetricFor(layer, data)
	bucket := choropleth.Classify(layer, value)

	ins := &Insight{
		Region:         data,
		DisplayName:    region.DisplayName(data.Name),
		Layer:          layer,
		Bucket:         bucket,
		Color:          choropleth.ColorOf(bucket),
		Population:     FormatCount(data.EnrolmentRate),
		ContextMetric:  text("panel_metric_"+string(layer), t),
		Narrative:      text(narrativeKey(layer, data), t),
		Alerts:         make([]Text, 0, len(data.Alerts)),
		Recommendation: text(data.Recommendation, t),
	}
	switch layer {
	case choropleth.LayerUpdates:
		ins.ContextValue = FormatCount(data.UpdateActivity)
	case choropleth.LayerMigration:
		ins.ContextValue = FormatCount(math.Abs(data.MigrationIndex))
	case choropleth.LayerLifecycle:
		ins.ContextValue = FormatCount(data.LifecyclePending)
	default:
		ins.ContextValue = t(bucket.LabelKey())
	}
	for _, a := range data.Alerts {
		ins.Alerts = append(ins.Alerts, text(a, t))
	}
	if snap := s.snapshots.Current(); !snap.PolledAt.IsZero() {
		asOf := snap.PolledAt
		ins.DataAsOf = &asOf
	}

	if s.actions != nil {
		existing, err := s.actions.LatestForRegion(ctx, data.ID)
		if err != nil {
			s.logger.WarnContext(ctx, "action lookup failed",
				"region_id", data.ID,
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		} else if existing != nil {
			ins.Action = existing
			ins.ActionRef = actionRef(existing.ID)
		}
	}
	return ins, nil
}

// narrativeKey picks the panel narrative for the layer.
func narrativeKey(layer choropleth.Layer, d region.Data) string {
	switch layer {
	case choropleth.LayerMigration:
		if d.MigrationIndex > 0 {
			return "insight_mig_influx"
		}
		return "insight_mig_outflow"
	case choropleth.LayerLifecycle:
		if d.LifecyclePending > 50000 {
			return "insight_life_lag"
		}
		return "insight_life_stable"
	default:
		if d.UpdateActivity > 5000 {
			return "insight_activity_high"
		}
		return "insight_activity_mod"
	}
}

// actionRef is the first eight characters after the id's first dash.
func actionRef(id string) string {
	_, rest, ok := strings.Cut(id, "-")
	if !ok || rest == "" {
		return "REF"
	}
	if len(rest) > 8 {
		rest = rest[:8]
	}
	return rest
}

// Analytics fetches the layer's charts. When the backend fails the last
// successful response for the layer is served with a notice; with nothing
// cached the charts are empty. A missing forecast is computed locally.
func (s *Service) Analytics(ctx context.Context, layer choropleth.Layer, lang i18n.Lang) (*Analytics, error) {
	if s.analytics == nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "analytics are not configured")
	}
	t := s.catalog.Translator(lang)
	out := &Analytics{
		Layer:             layer,
		Color:             ChartColor(layer),
		TrendTitle:        text("chart_trend", t),
		DistributionTitle: text("chart_dist_"+string(layer), t),
		Notices:           []LocalizedNotice{},
	}

	live, err := s.analytics.Analytics(ctx, string(layer))
	source := "live"
	if err == nil {
		s.mu.Lock()
		s.lastAnalytics[layer] = live
		s.mu.Unlock()
	} else {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		s.logger.WarnContext(ctx, "analytics fetch failed",
			"layer", string(layer),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		s.mu.RLock()
		live = s.lastAnalytics[layer]
		s.mu.RUnlock()
		source = "cached"
		if live == nil {
			live = &backend.Analytics{}
			source = "empty"
		}
		out.Stale = true
		out.Notices = append(out.Notices, LocalizedNotice{
			Key:     snapshot.NoticeBackendUnavailable,
			Message: t(snapshot.NoticeBackendUnavailable),
		})
	}
	s.metrics.IncrementAnalytics(source)

	out.Trend = live.Trend
	if out.Trend == nil {
		out.Trend = []backend.TrendPoint{}
	}
	out.Distribution = live.AgeDistribution
	if out.Distribution == nil {
		out.Distribution = []backend.DistributionBucket{}
	}
	if live.Forecast != nil {
		out.Forecast = *live.Forecast
	} else {
		out.Forecast = PredictNextMonth(out.Trend)
		out.ForecastLocal = true
	}
	return out, nil
}

func text(key string, t func(string) string) Text {
	return Text{Key: key, Text: t(key)}
}

func localizeNotices(notices []snapshot.Notice, t func(string) string) []LocalizedNotice {
	out := make([]LocalizedNotice, 0, len(notices))
	for _, n := range notices {
		out = append(out, LocalizedNotice{Resource: n.Resource, Key: n.Key, Message: t(n.Key)})
	}
	return out
}
