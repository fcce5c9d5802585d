package mac

import (
	"math"
)

// MultiplierParams shape the MAC-to-multiplier transform
type MultiplierParams struct {
	Alpha float64 `json:"alpha" yaml:"alpha"`
	Beta  float64 `json:"beta" yaml:"beta"`
}

// DefaultMultiplierParams returns the calibrated transform defaults
func DefaultMultiplierParams() MultiplierParams {
	return MultiplierParams{Alpha: 2.0, Beta: 1.5}
}

// IsValid checks the transform parameters
func (p MultiplierParams) IsValid() bool {
	return p.Alpha > 0 && p.Beta >= 1
}

// Multiplier converts a MAC score into a shock-transmission multiplier:
//
//	multiplier = 1 + alpha * (1 - mac)^beta
//
// The transform is monotonically decreasing in mac and convex for beta > 1:
// mild buffer depletion amplifies shocks mildly, depletion near the breach
// floor escalates sharply. It is defined only for mac >= BreachFloor; the
// engine never calls it past a regime break, where no point estimate is
// produced at all.
func Multiplier(mac float64, p MultiplierParams) float64 {
	mac = clamp01(mac)
	return 1 + p.Alpha*math.Pow(1-mac, p.Beta)
}
