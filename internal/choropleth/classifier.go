package choropleth

// Bucket is a discrete intensity class derived from a metric value.
type Bucket string

const (
	BucketNoData Bucket = "no_data"

	BucketEnrolmentMinimal   Bucket = "enrolment_minimal"
	BucketEnrolmentLow       Bucket = "enrolment_low"
	BucketEnrolmentModerate  Bucket = "enrolment_moderate"
	BucketEnrolmentGood      Bucket = "enrolment_good"
	BucketEnrolmentHigh      Bucket = "enrolment_high"
	BucketEnrolmentVeryHigh  Bucket = "enrolment_very_high"
	BucketEnrolmentSaturated Bucket = "enrolment_saturated"

	BucketActivityLow      Bucket = "activity_low"
	BucketActivityModerate Bucket = "activity_moderate"
	BucketActivityHigh     Bucket = "activity_high"
	BucketActivityIntense  Bucket = "activity_intense"

	// BucketNeutral is used for every lifecycle value: no ladder has been
	// defined for that layer yet.
	BucketNeutral Bucket = "neutral"
)

// LabelKey is the localisation key for the bucket's legend label.
func (b Bucket) LabelKey() string {
	return "bucket_" + string(b)
}

// rung pairs a strict lower bound with the bucket a value above it lands in.
type rung struct {
	above  float64
	bucket Bucket
}

// ladder is ordered from the highest threshold down; floor catches the rest.
type ladder struct {
	rungs []rung
	floor Bucket
}

func (l ladder) classify(value float64) Bucket {
	for _, r := range l.rungs {
		if value > r.above {
			return r.bucket
		}
	}
	return l.floor
}

var (
	enrolmentLadder = ladder{
		rungs: []rung{
			{200000, BucketEnrolmentSaturated},
			{100000, BucketEnrolmentVeryHigh},
			{50000, BucketEnrolmentHigh},
			{25000, BucketEnrolmentGood},
			{10000, BucketEnrolmentModerate},
			{1000, BucketEnrolmentLow},
		},
		floor: BucketEnrolmentMinimal,
	}

	activityLadder = ladder{
		rungs: []rung{
			{5000, BucketActivityIntense},
			{1000, BucketActivityHigh},
			{500, BucketActivityModerate},
		},
		floor: BucketActivityLow,
	}
)

// Classify maps a layer's metric value to its bucket. Thresholds are strict:
// a value exactly on a boundary falls into the lower bucket.
func Classify(l Layer, value float64) Bucket {
	switch l {
	case LayerEnrolment:
		// Zero means the backend has nothing for the region yet.
		if value == 0 {
			return BucketNoData
		}
		return enrolmentLadder.classify(value)
	case LayerUpdates, LayerMigration:
		return activityLadder.classify(value)
	default:
		return BucketNeutral
	}
}

// severity orders buckets within their ladder; higher is more intense.
var severity = map[Bucket]int{
	BucketNoData:             0,
	BucketEnrolmentMinimal:   1,
	BucketEnrolmentLow:       2,
	BucketEnrolmentModerate:  3,
	BucketEnrolmentGood:      4,
	BucketEnrolmentHigh:      5,
	BucketEnrolmentVeryHigh:  6,
	BucketEnrolmentSaturated: 7,
	BucketActivityLow:        1,
	BucketActivityModerate:   2,
	BucketActivityHigh:       3,
	BucketActivityIntense:    4,
	BucketNeutral:            0,
}

// Severity returns the bucket's rank within its ladder. It is monotonic in the
// metric for non-negative values only: a negative enrolment figure lands on
// the minimal rung, above the no-data rank that zero gets.
func Severity(b Bucket) int {
	return severity[b]
}
