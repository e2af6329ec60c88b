// Package topology loads the administrative boundary document once and
// exposes its features' names and properties. Geometry is decoded for
// GeoJSON input (orb) so bounds are available; TopoJSON arcs are left to the
// renderer.
package topology

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// nameProperties are tried in order; boundary datasets disagree on the key.
var nameProperties = []string{"name", "st_nm", "ST_NM"}

// FallbackName is used when a feature carries none of nameProperties.
const FallbackName = "Unknown"

// Feature is one boundary shape's metadata.
type Feature struct {
	// Index is the feature's position in document order.
	Index      int
	RawName    string
	Properties map[string]any
	// Bound is nil when geometry was not decoded.
	Bound *orb.Bound
}

// Topology is an immutable, ordered list of features.
type Topology struct {
	Format   string
	Features []Feature
}

// Len is nil-safe.
func (t *Topology) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Features)
}

// RawName extracts the display name from feature properties: the first
// non-empty string among name, st_nm and ST_NM, else FallbackName.
func RawName(props map[string]any) string {
	for _, key := range nameProperties {
		if v, ok := props[key].(string); ok && v != "" {
			return v
		}
	}
	return FallbackName
}

// Decode parses a GeoJSON FeatureCollection, a single GeoJSON Feature, or a
// TopoJSON Topology.
func Decode(data []byte) (*Topology, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse topology: %w", err)
	}

	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parse geojson: %w", err)
		}
		return fromGeoJSON(fc.Features), nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("parse geojson feature: %w", err)
		}
		return fromGeoJSON([]*geojson.Feature{f}), nil
	case "Topology":
		return decodeTopoJSON(data)
	default:
		return nil, fmt.Errorf("unsupported topology type %q", head.Type)
	}
}

func fromGeoJSON(features []*geojson.Feature) *Topology {
	t := &Topology{Format: "geojson", Features: make([]Feature, 0, len(features))}
	for i, f := range features {
		props := map[string]any(f.Properties)
		if props == nil {
			props = map[string]any{}
		}
		var bound *orb.Bound
		if f.Geometry != nil {
			b := f.Geometry.Bound()
			bound = &b
		}
		t.Features = append(t.Features, Feature{
			Index:      i,
			RawName:    RawName(props),
			Properties: props,
			Bound:      bound,
		})
	}
	return t
}

type topoJSON struct {
	Objects map[string]struct {
		Geometries []struct {
			ID         any            `json:"id"`
			Properties map[string]any `json:"properties"`
		} `json:"geometries"`
	} `json:"objects"`
}

// decodeTopoJSON reads geometry properties from every object. Objects are
// visited in name order so feature order is stable across loads.
func decodeTopoJSON(data []byte) (*Topology, error) {
	var doc topoJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse topojson: %w", err)
	}

	names := make([]string, 0, len(doc.Objects))
	for name := range doc.Objects {
		names = append(names, name)
	}
	sort.Strings(names)

	t := &Topology{Format: "topojson"}
	for _, name := range names {
		for _, g := range doc.Objects[name].Geometries {
			props := g.Properties
			if props == nil {
				props = map[string]any{}
			}
			t.Features = append(t.Features, Feature{
				Index:      len(t.Features),
				RawName:    RawName(props),
				Properties: props,
			})
		}
	}
	return t, nil
}
