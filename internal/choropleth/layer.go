// Package choropleth turns region metrics into discrete colour buckets for the
// map. Classification is a pure function of (layer, value); the palette is a
// fixed, total lookup from bucket to colour.
package choropleth

import (
	"strings"

	"govdash/internal/region"
	dErrors "govdash/pkg/domain-errors"
)

// Layer is one of the selectable metric dimensions.
type Layer string

const (
	LayerEnrolment Layer = "enrolment"
	LayerUpdates   Layer = "updates"
	LayerMigration Layer = "migration"
	LayerLifecycle Layer = "lifecycle"
)

// Layers lists every layer in display order.
var Layers = []Layer{LayerEnrolment, LayerUpdates, LayerMigration, LayerLifecycle}

// ParseLayer validates a layer name from a query string. An empty value
// selects the enrolment layer.
func ParseLayer(s string) (Layer, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LayerEnrolment, nil
	}
	for _, l := range Layers {
		if Layer(s) == l {
			return l, nil
		}
	}
	return "", dErrors.New(dErrors.CodeValidation, "unknown layer: "+s)
}

func (l Layer) String() string {
	return string(l)
}

// LabelKey is the localisation key for the layer's selector label.
func (l Layer) LabelKey() string {
	return "layer_" + string(l)
}

// MetricFor selects the value a layer visualises.
func MetricFor(l Layer, d region.Data) float64 {
	switch l {
	case LayerEnrolment:
		return d.EnrolmentRate
	case LayerUpdates:
		return d.UpdateActivity
	case LayerMigration:
		return d.MigrationIndex
	case LayerLifecycle:
		return d.LifecyclePending
	}
	return 0
}
