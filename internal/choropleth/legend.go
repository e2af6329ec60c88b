package choropleth

import (
	"fmt"
)

// LegendEntry describes one bucket as shown in the map key.
type LegendEntry struct {
	Bucket Bucket `json:"bucket"`
	Color  Color  `json:"color"`
	// Above is the strict lower bound of the bucket; nil for floor buckets.
	Above    *float64 `json:"above,omitempty"`
	LabelKey string   `json:"labelKey"`
	Label    string   `json:"label"`
}

// Legend is the ordered key for one layer, most intense bucket first.
type Legend struct {
	Layer    Layer         `json:"layer"`
	TitleKey string        `json:"titleKey"`
	Title    string        `json:"title"`
	Entries  []LegendEntry `json:"entries"`
}

// Labeller resolves a localisation key. Implementations fall back to the key.
type Labeller func(key string) string

// LegendFor builds the legend for a layer. Labels are left empty; call
// Localize to fill them.
func LegendFor(l Layer) Legend {
	legend := Legend{Layer: l, TitleKey: l.LabelKey()}
	switch l {
	case LayerEnrolment:
		legend.Entries = ladderEntries(enrolmentLadder)
		legend.Entries = append(legend.Entries, entry(BucketNoData, nil))
	case LayerUpdates, LayerMigration:
		legend.Entries = ladderEntries(activityLadder)
	default:
		legend.Entries = []LegendEntry{entry(BucketNeutral, nil)}
	}
	return legend
}

// Localize returns a copy of the legend with titles and labels resolved.
func (lg Legend) Localize(t Labeller) Legend {
	if t == nil {
		t = func(key string) string { return key }
	}
	out := lg
	out.Title = t(lg.TitleKey)
	out.Entries = make([]LegendEntry, len(lg.Entries))
	for i, e := range lg.Entries {
		e.Label = t(e.LabelKey)
		if e.Above != nil {
			e.Label = fmt.Sprintf("%s (> %s)", e.Label, formatBound(*e.Above))
		}
		out.Entries[i] = e
	}
	return out
}

func ladderEntries(l ladder) []LegendEntry {
	entries := make([]LegendEntry, 0, len(l.rungs)+1)
	for _, r := range l.rungs {
		above := r.above
		entries = append(entries, entry(r.bucket, &above))
	}
	return append(entries, entry(l.floor, nil))
}

func entry(b Bucket, above *float64) LegendEntry {
	return LegendEntry{
		Bucket:   b,
		Color:    ColorOf(b),
		Above:    above,
		LabelKey: b.LabelKey(),
	}
}

func formatBound(v float64) string {
	switch {
	case v >= 1000 && int64(v)%1000 == 0:
		return fmt.Sprintf("%dk", int64(v)/1000)
	default:
		return fmt.Sprintf("%g", v)
	}
}
