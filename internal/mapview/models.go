package mapview

import (
	"time"

	actionModels "govdash/internal/action/models"
	"govdash/internal/backend"
	"govdash/internal/choropleth"
	"govdash/internal/i18n"
	"govdash/internal/region"
	"govdash/internal/snapshot"
)

// RenderRequest selects what the map shows.
type RenderRequest struct {
	Layer choropleth.Layer
	// Selected is a region id; the first feature in topology order with that
	// id is marked selected.
	Selected string
	Lang     i18n.Lang
}

// RegionView is one feature after resolution and classification.
type RegionView struct {
	region.Data
	// FeatureIndex is the feature's position in the topology document.
	FeatureIndex int               `json:"featureIndex"`
	RawName      string            `json:"rawName"`
	DisplayName  string            `json:"displayName"`
	Value        float64           `json:"value"`
	Bucket       choropleth.Bucket `json:"bucket"`
	Color        choropleth.Color  `json:"color"`
	Selected     bool              `json:"selected"`
	// Bound is [minLon, minLat, maxLon, maxLat] when geometry was decoded.
	Bound *[4]float64 `json:"bound,omitempty"`
}

// LocalizedNotice is a snapshot notice with its text in the view language.
type LocalizedNotice struct {
	Resource snapshot.Resource `json:"resource,omitempty"`
	Key      string            `json:"key"`
	Message  string            `json:"message"`
}

// View is the JSON map surface. Loading is true while the topology has not
// loaded; Regions is then empty but never nil.
type View struct {
	Layer    choropleth.Layer  `json:"layer"`
	Lang     i18n.Lang         `json:"lang"`
	Loading  bool              `json:"loading"`
	Seq      uint64            `json:"seq"`
	PolledAt *time.Time        `json:"polledAt,omitempty"`
	Regions  []RegionView      `json:"regions"`
	Legend   choropleth.Legend `json:"legend"`
	Notices  []LocalizedNotice `json:"notices"`
}

// Text pairs a localisation key with its resolved text.
type Text struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Insight is the side panel for one region.
type Insight struct {
	Region         region.Data                    `json:"region"`
	DisplayName    string                         `json:"displayName"`
	Layer          choropleth.Layer               `json:"layer"`
	Bucket         choropleth.Bucket              `json:"bucket"`
	Color          choropleth.Color               `json:"color"`
	Population     string                         `json:"population"`
	ContextMetric  Text                           `json:"contextMetricLabel"`
	ContextValue   string                         `json:"contextMetricValue"`
	Narrative      Text                           `json:"narrative"`
	Alerts         []Text                         `json:"alerts"`
	Recommendation Text                           `json:"recommendation"`
	DataAsOf       *time.Time                     `json:"dataAsOf,omitempty"`
	Action         *actionModels.GovernanceAction `json:"action,omitempty"`
	// ActionRef is the short reference shown next to an existing action.
	ActionRef string `json:"actionRef,omitempty"`
}

// Analytics is the chart payload for one layer.
type Analytics struct {
	Layer             choropleth.Layer             `json:"layer"`
	Trend             []backend.TrendPoint         `json:"trend"`
	Distribution      []backend.DistributionBucket `json:"distribution"`
	Forecast          float64                      `json:"forecast"`
	ForecastLocal     bool                         `json:"forecastLocal"`
	Color             string                       `json:"color"`
	TrendTitle        Text                         `json:"trendTitle"`
	DistributionTitle Text                         `json:"distributionTitle"`
	// Stale is true when the backend failed and a cached copy is served.
	Stale   bool              `json:"stale"`
	Notices []LocalizedNotice `json:"notices"`
}
