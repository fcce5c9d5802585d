package mac

// ScoreSimple maps a raw indicator value onto [0,1] with a three-segment
// piecewise-linear interpolation against single-sided thresholds:
//
//	inside the ample zone            -> 1.0
//	ample..thin (thin zone)          -> linear 1.0 -> 0.5
//	thin..breach (breach zone)       -> linear 0.5 -> 0.0
//	beyond breach                    -> 0.0
//
// With lowerIsBetter the thresholds must satisfy ample < thin < breach;
// without it the ordering reverses. Monotonic ordering is a caller
// obligation and is not validated here; configured specs are checked once
// at load time instead.
func ScoreSimple(value, ample, thin, breach float64, lowerIsBetter bool) float64 {
	if !lowerIsBetter {
		// Mirror onto a rising stress axis so one interpolation covers
		// both directions
		value, ample, thin, breach = -value, -ample, -thin, -breach
	}

	switch {
	case value <= ample:
		return 1.0
	case value >= breach:
		return 0.0
	case value <= thin:
		return 1.0 - 0.5*(value-ample)/(thin-ample)
	default:
		return 0.5 - 0.5*(value-thin)/(breach-thin)
	}
}

// ScoreRange scores an indicator against a central comfort band, falling off
// symmetrically on both sides. It is used where both too-tight and too-wide
// readings signal stress (term spreads, cross-currency bases).
//
// The bands must nest: breach contains thin contains ample. Inside the ample
// band the score is 1.0; between the ample and thin edges it decays linearly
// to 0.5, between the thin and breach edges to 0.0, and it is clamped at 0
// beyond the breach band. Ordering is a caller obligation, as with
// ScoreSimple.
func ScoreRange(value float64, ample, thin, breach Band) float64 {
	if ample.Contains(value) {
		return 1.0
	}
	if value < ample.Low {
		// Low side: smaller values are worse, so the ladder descends
		return ScoreSimple(value, ample.Low, thin.Low, breach.Low, false)
	}
	// High side: larger values are worse
	return ScoreSimple(value, ample.High, thin.High, breach.High, true)
}

// ScoreIndicator scores one observation against its threshold spec,
// dispatching on the spec's single-sided or ranged form
func ScoreIndicator(obs IndicatorObservation, spec ThresholdSpec) IndicatorScore {
	var score float64
	if spec.Ranged {
		score = ScoreRange(obs.Value, spec.AmpleBand, spec.ThinBand, spec.BreachBand)
	} else {
		score = ScoreSimple(obs.Value, spec.Ample, spec.Thin, spec.Breach, spec.LowerIsBetter)
	}

	return IndicatorScore{
		Indicator: spec.Indicator,
		Raw:       obs.Value,
		Score:     score,
		Critical:  spec.Critical,
	}
}

// NeutralIndicatorScore builds the fallback score used when an indicator
// observation is missing: the pillar proceeds at the neutral midpoint with a
// low-confidence marker instead of aborting the calculation
func NeutralIndicatorScore(spec ThresholdSpec) IndicatorScore {
	return IndicatorScore{
		Indicator: spec.Indicator,
		Score:     NeutralScore,
		Critical:  spec.Critical,
		Missing:   true,
	}
}
