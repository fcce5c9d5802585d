package backtest

import (
	"time"
)

// MACRange is the inclusive composite range a scenario is expected to land in
type MACRange struct {
	Low  float64 `json:"low" yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

// Contains reports whether a score falls inside the range
func (r MACRange) Contains(score float64) bool {
	return score >= r.Low && score <= r.High
}

// Scenario is one immutable historical fixture: the indicator snapshot as
// reconstructed for the event date, and what the pipeline is expected to say
// about it
type Scenario struct {
	Name       string             `json:"name" yaml:"name"`
	Date       time.Time          `json:"date" yaml:"date"`
	Indicators map[string]float64 `json:"indicators" yaml:"indicators"`

	ExpectedMACRange MACRange `json:"expected_mac_range" yaml:"expected_mac_range"`
	ExpectedBreaches []string `json:"expected_breaches" yaml:"expected_breaches"`

	// HedgeHeld records whether the reference hedge instrument held
	// through the period; a positioning-pillar breach predicts it failing
	HedgeHeld bool `json:"hedge_held" yaml:"hedge_held"`
}

// Library is a versioned, in-memory scenario table
type Library struct {
	Version   string     `json:"version" yaml:"version"`
	Scenarios []Scenario `json:"scenarios" yaml:"scenarios"`
}

// Result scores one scenario on the three validation axes
type Result struct {
	Scenario string  `json:"scenario"`
	Date     string  `json:"date"`
	MACScore float64 `json:"mac_score"`

	MACInRange             bool `json:"mac_in_range"`
	BreachesMatch          bool `json:"breaches_match"`
	HedgePredictionCorrect bool `json:"hedge_prediction_correct"`
	Passed                 bool `json:"passed"`

	BreachFlags []string `json:"breach_flags"`
	RegimeBreak bool     `json:"regime_break"`
}

// Summary aggregates per-axis accuracy over a library run
type Summary struct {
	LibraryVersion    string    `json:"library_version"`
	Scenarios         int       `json:"scenarios"`
	MACAccuracy       float64   `json:"mac_accuracy"`
	BreachAccuracy    float64   `json:"breach_accuracy"`
	HedgeAccuracy     float64   `json:"hedge_accuracy"`
	OverallPassRate   float64   `json:"overall_pass_rate"`
	CalibrationFactor float64   `json:"calibration_factor"`
	RanAt             time.Time `json:"ran_at"`
	Results           []Result  `json:"results"`
}
