// Package dashboard assembles the landing view for the signed-in role. Each
// role has its own view type; Build is the single place that dispatches on
// role.
package dashboard

import (
	"govdash/internal/choropleth"
	datasetModels "govdash/internal/dataset/models"
	fieldModels "govdash/internal/fieldwork/models"
	"govdash/internal/i18n"
	"govdash/internal/mapview"
	"govdash/pkg/domain"
	"govdash/pkg/requestcontext"
)

// Layout is the presentation density the client should use.
type Layout string

const (
	LayoutStandard Layout = "standard"
	LayoutCompact  Layout = "compact"
)

// LayoutFor picks compact for phones.
func LayoutFor(d requestcontext.DeviceClass) Layout {
	if d == requestcontext.DeviceMobile {
		return LayoutCompact
	}
	return LayoutStandard
}

// View is implemented only by the role views in this package.
type View interface {
	Role() domain.Role
	isView()
}

// Language is one entry of the language selector.
type Language struct {
	Code     i18n.Lang `json:"code"`
	Selected bool      `json:"selected"`
}

// Header is shared by every role view.
type Header struct {
	Title     string     `json:"title"`
	Subtitle  string     `json:"subtitle"`
	UserID    string     `json:"userId"`
	Role      string     `json:"role"`
	RoleLabel string     `json:"roleLabel"`
	Lang      i18n.Lang  `json:"lang"`
	Languages []Language `json:"languages"`
	Layout    Layout     `json:"layout"`
	Status    string     `json:"status"`
}

// BucketSummary counts the regions that fall into one legend bucket.
type BucketSummary struct {
	Bucket  choropleth.Bucket `json:"bucket"`
	Label   string            `json:"label"`
	Color   choropleth.Color  `json:"color"`
	Regions int               `json:"regions"`
}

// PolicymakerView is the map-driven analytics landing page. The compact
// layout omits the per-region map and keeps the bucket summary.
type PolicymakerView struct {
	Header  Header                    `json:"header"`
	Title   string                    `json:"title"`
	Layer   choropleth.Layer          `json:"layer"`
	Layers  []choropleth.Layer        `json:"layers"`
	Map     *mapview.View             `json:"map,omitempty"`
	Summary []BucketSummary           `json:"summary"`
	Notices []mapview.LocalizedNotice `json:"notices"`
}

// FieldWorkerView is the task checklist.
type FieldWorkerView struct {
	Header    Header                 `json:"header"`
	Welcome   string                 `json:"welcome"`
	Checklist *fieldModels.Checklist `json:"checklist"`
}

// DataSupervisorView is the upload and audit console.
type DataSupervisorView struct {
	Header  Header                 `json:"header"`
	Title   string                 `json:"title"`
	Console *datasetModels.Console `json:"console"`
}

func (PolicymakerView) Role() domain.Role    { return domain.RolePolicymaker }
func (FieldWorkerView) Role() domain.Role    { return domain.RoleFieldWorker }
func (DataSupervisorView) Role() domain.Role { return domain.RoleDataSupervisor }

func (PolicymakerView) isView()    {}
func (FieldWorkerView) isView()    {}
func (DataSupervisorView) isView() {}

// Envelope tags a view with its role for JSON clients.
type Envelope struct {
	Role domain.Role `json:"role"`
	View View        `json:"view"`
}
