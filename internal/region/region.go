// Package region reconciles map topology place names with the backend's
// canonical region keys and produces the per-region snapshot the dashboard
// renders.
//
// Two vocabularies meet here: cartographic boundary names ("NCT of Delhi",
// "Jammu & Kashmir") and the statistical keys the backend aggregates under
// ("delhi", "jammu_and_kashmir"). Resolution is total: a name that cannot be
// reconciled yields a zeroed Data, never an error.
package region

// Alert and recommendation tokens. They double as localisation keys and as a
// human-readable fallback when no translation exists.
const (
	AlertGeneral          = "alert_gen"
	RecommendationGeneral = "rec_gen"

	// UnknownName is the display name used when the topology supplies none.
	UnknownName = "Unknown"

	// updateAlertThreshold raises AlertGeneral when a region's update volume
	// exceeds it.
	updateAlertThreshold = 50000
)

// Data is one administrative region's current snapshot. It is a derived view,
// recomputed on every render pass from the immutable topology feature and the
// latest metric bundle.
//
// ID is the first three characters of Name, uppercased. It is not unique: two
// names sharing a prefix collide. Treat it as a low-cardinality key only.
type Data struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	EnrolmentRate    float64  `json:"enrolmentRate"`
	UpdateActivity   float64  `json:"updateActivity"`
	MigrationIndex   float64  `json:"migrationIndex"`
	LifecyclePending float64  `json:"lifecyclePending"`
	Alerts           []string `json:"alerts"`
	Recommendation   string   `json:"recommendation"`
}

// MetricRecord is the backend's per-region metric set. Every field is optional
// on the wire and decodes to zero when absent or null.
type MetricRecord struct {
	Enrolment float64 `json:"enrolment"`
	Updates   float64 `json:"updates"`
	Migration float64 `json:"migration"`
	Lifecycle float64 `json:"lifecycle"`
}
