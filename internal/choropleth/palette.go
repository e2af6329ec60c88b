package choropleth

import "strconv"

// Color is a CSS hex colour.
type Color string

// palette is total over every Bucket constant.
var palette = map[Bucket]Color{
	BucketNoData:             "#e0e0e0",
	BucketEnrolmentMinimal:   "#ffcc80",
	BucketEnrolmentLow:       "#ff9800",
	BucketEnrolmentModerate:  "#ffeb3b",
	BucketEnrolmentGood:      "#8bc34a",
	BucketEnrolmentHigh:      "#4caf50",
	BucketEnrolmentVeryHigh:  "#2e7d32",
	BucketEnrolmentSaturated: "#138808",
	BucketActivityLow:        "#bbdefb",
	BucketActivityModerate:   "#64b5f6",
	BucketActivityHigh:       "#1976d2",
	BucketActivityIntense:    "#0d47a1",
	BucketNeutral:            "#333333",
}

// ColorOf returns the colour for a bucket. Unknown buckets get the neutral
// colour.
func ColorOf(b Bucket) Color {
	if c, ok := palette[b]; ok {
		return c
	}
	return palette[BucketNeutral]
}

// Fill classifies value for the layer and returns its colour; this is the
// colour function the map surface calls per region.
func Fill(l Layer, value float64) Color {
	return ColorOf(Classify(l, value))
}

// RGBA parses the hex colour into components. Malformed input yields opaque
// black.
func (c Color) RGBA() (r, g, b, a uint8) {
	s := string(c)
	if len(s) != 7 || s[0] != '#' {
		return 0, 0, 0, 255
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, 255
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), 255
}
