package region

import (
	"strings"
)

// Strategy names the lookup that produced a match.
type Strategy string

const (
	StrategyDirect    Strategy = "direct"
	StrategySeparator Strategy = "separator"
	StrategySubstring Strategy = "substring"
	StrategyNone      Strategy = "none"
)

// Resolution is Resolve's result plus the trail that led to it.
type Resolution struct {
	Data Data
	// Canonical is the name after normalisation and alias substitution.
	Canonical  string
	Aliased    bool
	Strategy   Strategy
	MatchedKey string
}

// Matched reports whether a metric record was found.
func (r Resolution) Matched() bool {
	return r.Strategy != StrategyNone
}

// Resolver reconciles topology names with bundle keys using an alias table.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	aliases AliasTable
}

// NewResolver returns a resolver over the given alias table. A nil table
// disables alias substitution.
func NewResolver(aliases AliasTable) *Resolver {
	return &Resolver{aliases: aliases}
}

// Default resolves against the IndiaStates alias table.
var Default = NewResolver(IndiaStates)

// Resolve maps a raw topology name to a region snapshot using Default.
func Resolve(rawName string, bundle *Bundle) Data {
	return Default.Resolve(rawName, bundle).Data
}

// ResolveDetailed is Resolve with the lookup trail attached.
func ResolveDetailed(rawName string, bundle *Bundle) Resolution {
	return Default.Resolve(rawName, bundle)
}

// Resolve maps a raw topology name to a region snapshot.
//
// Lookup order, first hit wins:
//  1. the canonical name as a key
//  2. the canonical name with whitespace runs joined by "_"
//  3. the first key, in bundle order, that contains the canonical name or is
//     contained by it, ignoring separators on both sides
//
// Step 3 is deliberately permissive and order-dependent.
func (r *Resolver) Resolve(rawName string, bundle *Bundle) Resolution {
	display := rawName
	if strings.TrimSpace(display) == "" {
		display = UnknownName
	}

	canonical := Normalize(display)
	aliased := false
	if target, ok := r.aliases.Canonical(canonical); ok {
		canonical = target
		aliased = true
	}

	res := Resolution{Canonical: canonical, Aliased: aliased, Strategy: StrategyNone}
	if key, rec, strategy, ok := lookup(canonical, bundle); ok {
		res.Strategy = strategy
		res.MatchedKey = key
		res.Data = fromRecord(display, rec)
		return res
	}
	res.Data = zeroed(display)
	return res
}

func lookup(canonical string, bundle *Bundle) (string, MetricRecord, Strategy, bool) {
	if bundle.Len() == 0 {
		return "", MetricRecord{}, StrategyNone, false
	}
	if rec, ok := bundle.Lookup(canonical); ok {
		return canonical, rec, StrategyDirect, true
	}
	separated := separatorForm(canonical)
	if rec, ok := bundle.Lookup(separated); ok {
		return separated, rec, StrategySeparator, true
	}

	needle := compactForm(canonical)
	if needle == "" {
		return "", MetricRecord{}, StrategyNone, false
	}
	for _, key := range bundle.keys {
		hay := compactForm(key)
		if hay == "" {
			continue
		}
		if strings.Contains(hay, needle) || strings.Contains(needle, hay) {
			return key, bundle.records[key], StrategySubstring, true
		}
	}
	return "", MetricRecord{}, StrategyNone, false
}

func fromRecord(display string, rec MetricRecord) Data {
	alerts := []string{}
	if rec.Updates > updateAlertThreshold {
		alerts = append(alerts, AlertGeneral)
	}
	return Data{
		ID:               ShortID(display),
		Name:             display,
		EnrolmentRate:    rec.Enrolment,
		UpdateActivity:   rec.Updates,
		MigrationIndex:   rec.Migration,
		LifecyclePending: rec.Lifecycle,
		Alerts:           alerts,
		Recommendation:   RecommendationGeneral,
	}
}

func zeroed(display string) Data {
	return Data{
		ID:             ShortID(display),
		Name:           display,
		Alerts:         []string{},
		Recommendation: RecommendationGeneral,
	}
}
