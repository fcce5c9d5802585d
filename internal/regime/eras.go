package regime

import (
	"time"

	"macpulse/internal/mac"
)

// Era identifies a structural monetary regime. Boundaries follow the
// conventional breaks in the international monetary system, not market
// cycles.
type Era string

const (
	EraGoldStandard    Era = "gold_standard"    // pre-1914 classical gold standard
	EraInterwar        Era = "interwar"         // 1914-1945, broken parities
	EraBrettonWoods    Era = "bretton_woods"    // 1945-1971, pegged but adjustable
	EraGreatInflation  Era = "great_inflation"  // 1971-1985, early fiat
	EraGreatModeration Era = "great_moderation" // 1985-2008
	EraPostGFC         Era = "post_gfc"         // 2008-2015, zero lower bound
	EraModern          Era = "modern"           // 2015 onward
)

var eraBoundaries = []struct {
	start time.Time
	era   Era
}{
	{time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC), EraModern},
	{time.Date(2008, 9, 1, 0, 0, 0, 0, time.UTC), EraPostGFC},
	{time.Date(1985, 1, 1, 0, 0, 0, 0, time.UTC), EraGreatModeration},
	{time.Date(1971, 8, 15, 0, 0, 0, 0, time.UTC), EraGreatInflation},
	{time.Date(1945, 7, 1, 0, 0, 0, 0, time.UTC), EraBrettonWoods},
	{time.Date(1914, 7, 28, 0, 0, 0, 0, time.UTC), EraInterwar},
}

// EraOf returns the structural era a date falls in
func EraOf(t time.Time) Era {
	for _, b := range eraBoundaries {
		if !t.Before(b.start) {
			return b.era
		}
	}
	return EraGoldStandard
}

// policyCaps holds the era-dependent ceiling on the policy pillar. Under
// metallic standards and pegged regimes the monetary authority could not
// freely cut rates or expand its balance sheet, so the policy pillar can
// never score as if those tools existed.
var policyCaps = map[Era]float64{
	EraGoldStandard:   0.5,
	EraInterwar:       0.55,
	EraBrettonWoods:   0.7,
	EraGreatInflation: 0.75,
}

// PolicyCap returns the era's structural cap on the policy pillar, if any
func PolicyCap(era Era) (float64, bool) {
	cap, ok := policyCaps[era]
	return cap, ok
}

// baselines holds era-keyed typical levels for indicators whose raw scale
// drifted across regimes. Values are long-run era medians from the
// historical calibration set.
var baselines = map[Era]map[string]float64{
	EraGoldStandard: {
		"sovereign_spread":     1.2,
		"policy_rate_headroom": 1.0,
	},
	EraInterwar: {
		"sovereign_spread":     2.5,
		"policy_rate_headroom": 1.5,
	},
	EraBrettonWoods: {
		"sovereign_spread":     0.8,
		"policy_rate_headroom": 2.5,
	},
	EraGreatInflation: {
		"sovereign_spread":     1.5,
		"policy_rate_headroom": 6.0,
	},
	EraGreatModeration: {
		"sovereign_spread":     1.0,
		"policy_rate_headroom": 4.0,
	},
	EraPostGFC: {
		"sovereign_spread":     1.8,
		"policy_rate_headroom": 0.5,
	},
	EraModern: {
		"sovereign_spread":     1.5,
		"policy_rate_headroom": 1.5,
	},
}

// Baseline returns the era-typical level for an indicator, when tabled
func Baseline(era Era, indicator string) (float64, bool) {
	if m, ok := baselines[era]; ok {
		v, ok := m[indicator]
		return v, ok
	}
	return 0, false
}

// EraCaps adapts the policy-cap table into the aggregator's override-rule
// chain. It implements mac.OverrideProvider.
type EraCaps struct{}

// RulesFor returns the era-dependent cap rules for a pillar at a point in
// time. Only the policy pillar carries structural caps today; the rule list
// keeps the chain extensible and auditable.
func (EraCaps) RulesFor(pillar string, asOf time.Time) []mac.OverrideRule {
	if pillar != "policy" {
		return nil
	}

	era := EraOf(asOf)
	cap, ok := PolicyCap(era)
	if !ok {
		return nil
	}

	return []mac.OverrideRule{{
		Reason: "era_policy_cap_" + string(era),
		Cap:    cap,
		Applies: func(mac.PillarResult) bool {
			return true
		},
	}}
}
