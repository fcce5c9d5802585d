package mac

import (
	"time"
)

// AggregationMethod identifies how a pillar composite was produced
type AggregationMethod string

const (
	// MethodWeightedAvg blends constituent scores with per-indicator weights
	MethodWeightedAvg AggregationMethod = "weighted_avg"
	// MethodMin takes the worst constituent when dispersion is high
	MethodMin AggregationMethod = "min"
	// MethodForced marks a composite clamped by a critical-indicator breach
	MethodForced AggregationMethod = "forced"
)

// Calibrated constants. DispersionThreshold and ForcedBreachCap were chosen
// empirically against the historical backtest library; they carry no
// derivation beyond that.
const (
	// DispersionThreshold is the max-min spread above which a pillar is
	// considered constraint-bound and aggregated with MethodMin
	DispersionThreshold = 0.35

	// ForcedBreachCap is the ceiling applied to a pillar composite once one
	// of its critical indicators has individually breached
	ForcedBreachCap = 0.18

	// BreachFloor is the score below which a pillar (or the composite) is
	// considered breached
	BreachFloor = 0.2

	// NeutralScore substitutes for a missing indicator observation
	NeutralScore = 0.5

	// InteractionPenaltyRate scales the multi-breach interaction penalty
	InteractionPenaltyRate = 0.05
)

// IndicatorObservation is a single raw indicator reading. Observations are
// ephemeral; they exist only for the duration of one calculation.
type IndicatorObservation struct {
	Name     string    `json:"name"`
	Value    float64   `json:"value"`
	Observed time.Time `json:"observed,omitempty"`
}

// Band is a closed interval used by range (double-sided) indicators
type Band struct {
	Low  float64 `json:"low" yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

// Contains reports whether v lies inside the band
func (b Band) Contains(v float64) bool {
	return v >= b.Low && v <= b.High
}

// Mid returns the band midpoint
func (b Band) Mid() float64 {
	return (b.Low + b.High) / 2
}

// ThresholdSpec holds the scoring boundaries for one indicator. Specs are
// loaded once at startup, validated, and treated as immutable thereafter.
//
// For single-sided indicators Ample/Thin/Breach must be monotonic in the
// configured direction: ample < thin < breach when LowerIsBetter, the
// reverse otherwise. For ranged indicators the bands must nest,
// BreachBand containing ThinBand containing AmpleBand.
type ThresholdSpec struct {
	Indicator     string  `json:"indicator" yaml:"indicator"`
	Ample         float64 `json:"ample,omitempty" yaml:"ample"`
	Thin          float64 `json:"thin,omitempty" yaml:"thin"`
	Breach        float64 `json:"breach,omitempty" yaml:"breach"`
	LowerIsBetter bool    `json:"lower_is_better" yaml:"lower_is_better"`

	// Ranged indicators score against a central comfort band instead of a
	// one-directional threshold ladder
	Ranged     bool `json:"ranged,omitempty" yaml:"ranged"`
	AmpleBand  Band `json:"ample_band,omitempty" yaml:"ample_band"`
	ThinBand   Band `json:"thin_band,omitempty" yaml:"thin_band"`
	BreachBand Band `json:"breach_band,omitempty" yaml:"breach_band"`

	// Critical indicators force the whole pillar to ForcedBreachCap once
	// they individually breach
	Critical bool `json:"critical,omitempty" yaml:"critical"`

	// Weight within the pillar composite; zero means equal weighting
	Weight float64 `json:"weight,omitempty" yaml:"weight"`
}

// IndicatorScore is the scored form of one observation
type IndicatorScore struct {
	Indicator string  `json:"indicator"`
	Raw       float64 `json:"raw"`
	Score     float64 `json:"score"`
	Critical  bool    `json:"critical,omitempty"`
	// Missing marks a neutral-fallback score used when no observation was
	// supplied for the indicator
	Missing bool `json:"missing,omitempty"`
}

// PillarSpec binds a named pillar to its constituent indicator thresholds
type PillarSpec struct {
	Name       string          `json:"name" yaml:"name"`
	Weight     float64         `json:"weight,omitempty" yaml:"weight"`
	Indicators []ThresholdSpec `json:"indicators" yaml:"indicators"`
}

// ThresholdSet is the full process-wide threshold table, one PillarSpec per
// pillar. Loaded once, immutable, safe to share across concurrent calls.
type ThresholdSet struct {
	Pillars []PillarSpec `json:"pillars" yaml:"pillars"`
}

// PillarNames returns the configured pillar names in declaration order
func (ts ThresholdSet) PillarNames() []string {
	names := make([]string, len(ts.Pillars))
	for i, p := range ts.Pillars {
		names[i] = p.Name
	}
	return names
}

// PillarResult is the aggregated outcome for one pillar
type PillarResult struct {
	Pillar         string            `json:"pillar"`
	Score          float64           `json:"score"`
	Method         AggregationMethod `json:"method"`
	Constituents   []IndicatorScore  `json:"constituents"`
	CriticalBreach bool              `json:"critical_breach"`
	// LowConfidence is set when any constituent fell back to the neutral
	// score because its observation was missing
	LowConfidence bool `json:"low_confidence"`
	// Overrides lists the reasons of every override rule that clamped the
	// composite, in application order
	Overrides []string `json:"overrides,omitempty"`
}

// MACResult is the composite outcome of one calculation.
//
// Multiplier is nil exactly when RegimeBreak is true: past the breach floor
// the transform refuses to extrapolate a point estimate.
type MACResult struct {
	MACScore           float64            `json:"mac_score"`
	AdjustedScore      *float64           `json:"adjusted_score,omitempty"`
	PillarScores       map[string]float64 `json:"pillar_scores"`
	BreachFlags        []string           `json:"breach_flags"`
	InteractionPenalty float64            `json:"interaction_penalty"`
	RegimeBreak        bool               `json:"regime_break"`
	Multiplier         *float64           `json:"multiplier,omitempty"`
	// AdjustmentCausedBreach records that an external modifier, not the raw
	// pillar data, pushed the score across the breach boundary
	AdjustmentCausedBreach bool           `json:"adjustment_caused_breach,omitempty"`
	Pillars                []PillarResult `json:"pillars,omitempty"`
	LowConfidence          bool           `json:"low_confidence,omitempty"`
	AsOf                   time.Time      `json:"as_of,omitempty"`
}

// EffectiveScore returns the adjusted score when an external modifier has
// been applied, the raw MAC score otherwise
func (r MACResult) EffectiveScore() float64 {
	if r.AdjustedScore != nil {
		return *r.AdjustedScore
	}
	return r.MACScore
}

// OverrideRule is one entry of the ordered post-aggregation override chain.
// Rules are evaluated in order; a rule whose predicate matches clamps the
// pillar composite to Cap and records Reason for auditability.
type OverrideRule struct {
	Reason string
	Cap    float64
	// Forces marks the pillar method as MethodForced when the rule applies
	Forces  bool
	Applies func(PillarResult) bool
}
