package dashboard

import (
	"context"
	"log/slog"

	"govdash/internal/choropleth"
	datasetModels "govdash/internal/dataset/models"
	fieldModels "govdash/internal/fieldwork/models"
	"govdash/internal/i18n"
	"govdash/internal/mapview"
	"govdash/pkg/domain"
	dErrors "govdash/pkg/domain-errors"
	"govdash/pkg/requestcontext"
)

// MapRenderer draws the policymaker map.
type MapRenderer interface {
	Render(ctx context.Context, req mapview.RenderRequest) *mapview.View
}

// Checklists loads a field worker's tasks.
type Checklists interface {
	Checklist(ctx context.Context, caller domain.Principal) (*fieldModels.Checklist, error)
}

// Consoles builds the supervisor upload console.
type Consoles interface {
	Console(ctx context.Context, lang i18n.Lang) *datasetModels.Console
}

// Request carries what Build needs from the incoming call.
type Request struct {
	Caller domain.Principal
	Lang   i18n.Lang
	Layer  choropleth.Layer
	Device requestcontext.DeviceClass
}

type Service struct {
	maps    MapRenderer
	tasks   Checklists
	console Consoles
	catalog *i18n.Catalog
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithCatalog(c *i18n.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

func New(maps MapRenderer, tasks Checklists, console Consoles, opts ...Option) *Service {
	s := &Service{
		maps:    maps,
		tasks:   tasks,
		console: console,
		catalog: i18n.Default(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build returns the caller's role view.
func (s *Service) Build(ctx context.Context, req Request) (View, error) {
	if req.Caller.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	header := s.header(req)

	switch req.Caller.Role {
	case domain.RolePolicymaker:
		return s.policymaker(ctx, req, header), nil
	case domain.RoleFieldWorker:
		list, err := s.tasks.Checklist(ctx, req.Caller)
		if err != nil {
			return nil, err
		}
		return FieldWorkerView{
			Header:    header,
			Welcome:   s.catalog.T(req.Lang, "fw_welcome"),
			Checklist: list,
		}, nil
	case domain.RoleDataSupervisor:
		return DataSupervisorView{
			Header:  header,
			Title:   s.catalog.T(req.Lang, "dm_portal_title"),
			Console: s.console.Console(ctx, req.Lang),
		}, nil
	}

	s.logger.WarnContext(ctx, "dashboard requested for unsupported role",
		"role", req.Caller.Role.String(),
		"user_id", req.Caller.UserID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil, dErrors.New(dErrors.CodeForbidden, "no dashboard for role")
}

func (s *Service) header(req Request) Header {
	langs := make([]Language, len(i18n.Supported))
	for i, l := range i18n.Supported {
		langs[i] = Language{Code: l, Selected: l == req.Lang}
	}
	return Header{
		Title:     s.catalog.T(req.Lang, "app_title"),
		Subtitle:  s.catalog.T(req.Lang, "app_subtitle"),
		UserID:    req.Caller.UserID,
		Role:      req.Caller.Role.String(),
		RoleLabel: s.catalog.T(req.Lang, req.Caller.Role.LabelKey()),
		Lang:      req.Lang,
		Languages: langs,
		Layout:    LayoutFor(req.Device),
		Status:    s.catalog.T(req.Lang, "sys_op"),
	}
}

func (s *Service) policymaker(ctx context.Context, req Request, header Header) PolicymakerView {
	m := s.maps.Render(ctx, mapview.RenderRequest{Layer: req.Layer, Lang: req.Lang})
	v := PolicymakerView{
		Header:  header,
		Title:   s.catalog.T(req.Lang, "dash_title"),
		Layer:   req.Layer,
		Layers:  choropleth.Layers,
		Map:     m,
		Summary: summarize(m),
		Notices: m.Notices,
	}
	if header.Layout == LayoutCompact {
		v.Map = nil
	}
	return v
}

// summarize counts regions per legend bucket, in legend order.
func summarize(m *mapview.View) []BucketSummary {
	counts := make(map[choropleth.Bucket]int, len(m.Legend.Entries))
	for _, r := range m.Regions {
		counts[r.Bucket]++
	}
	out := make([]BucketSummary, len(m.Legend.Entries))
	for i, e := range m.Legend.Entries {
		out[i] = BucketSummary{Bucket: e.Bucket, Label: e.Label, Color: e.Color, Regions: counts[e.Bucket]}
	}
	return out
}
