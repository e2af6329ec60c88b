package mapview

import (
	"math"
	"strconv"

	"govdash/internal/backend"
	"govdash/internal/choropleth"
)

// FormatCount abbreviates large counts for display: 1.2M, 3.4k.
func FormatCount(v float64) string {
	switch {
	case v >= 1_000_000:
		return strconv.FormatFloat(v/1_000_000, 'f', 1, 64) + "M"
	case v >= 1_000:
		return strconv.FormatFloat(v/1_000, 'f', 1, 64) + "k"
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}

// FormatAxis formats a chart axis tick. Thousands drop the decimal.
func FormatAxis(v float64) string {
	switch {
	case v == 0:
		return "0"
	case v >= 1_000_000:
		return strconv.FormatFloat(v/1_000_000, 'f', 1, 64) + "M"
	case v >= 1_000:
		return strconv.FormatFloat(v/1_000, 'f', 0, 64) + "k"
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}

// PredictNextMonth fits a least-squares line over the trend (x = position)
// and evaluates it one step past the end, truncated and floored at zero.
// Fewer than two points predict zero.
func PredictNextMonth(trend []backend.TrendPoint) float64 {
	n := len(trend)
	if n < 2 {
		return 0
	}
	var meanX, meanY float64
	for i, p := range trend {
		meanX += float64(i)
		meanY += p.Value
	}
	meanX /= float64(n)
	meanY /= float64(n)

	var num, den float64
	for i, p := range trend {
		dx := float64(i) - meanX
		num += dx * (p.Value - meanY)
		den += dx * dx
	}
	if den == 0 {
		return trend[n-1].Value
	}
	slope := num / den
	intercept := meanY - slope*meanX
	return math.Max(0, math.Trunc(slope*float64(n)+intercept))
}

var chartColors = map[choropleth.Layer]string{
	choropleth.LayerUpdates:   "#0d47a1",
	choropleth.LayerMigration: "#f59e0b",
	choropleth.LayerLifecycle: "#ef4444",
}

// ChartColor is the accent colour for a layer's analytics charts.
func ChartColor(l choropleth.Layer) string {
	if c, ok := chartColors[l]; ok {
		return c
	}
	return "#10b981"
}
