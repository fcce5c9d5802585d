package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	apperrors "macpulse/internal/errors"
	"macpulse/internal/mac"
)

// LoadThresholds reads a threshold table from a YAML file and validates it.
// An invalid table is a fatal startup error: the engine must never score
// against thresholds whose ordering rules do not hold.
func LoadThresholds(path string) (mac.ThresholdSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return mac.ThresholdSet{}, apperrors.NewConfigError("read threshold table", err)
	}

	var set mac.ThresholdSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return mac.ThresholdSet{}, apperrors.NewParsingError("parse threshold table", err)
	}

	if err := ValidateThresholds(set); err != nil {
		return mac.ThresholdSet{}, apperrors.NewConfigError("invalid threshold table", err)
	}

	return set, nil
}

// ValidateThresholds enforces the structural rules on a threshold table:
// monotonic ordering of single-sided ladders, band nesting for ranged
// indicators, unique names, non-negative weights.
func ValidateThresholds(set mac.ThresholdSet) error {
	if len(set.Pillars) == 0 {
		return fmt.Errorf("threshold table has no pillars")
	}

	pillarNames := make(map[string]bool, len(set.Pillars))
	indicatorNames := make(map[string]bool)

	for _, pillar := range set.Pillars {
		if pillar.Name == "" {
			return fmt.Errorf("pillar without a name")
		}
		if pillarNames[pillar.Name] {
			return fmt.Errorf("duplicate pillar %q", pillar.Name)
		}
		pillarNames[pillar.Name] = true

		if pillar.Weight < 0 {
			return fmt.Errorf("pillar %q: negative weight %v", pillar.Name, pillar.Weight)
		}
		if len(pillar.Indicators) == 0 {
			return fmt.Errorf("pillar %q has no indicators", pillar.Name)
		}

		for _, spec := range pillar.Indicators {
			if spec.Indicator == "" {
				return fmt.Errorf("pillar %q: indicator without a name", pillar.Name)
			}
			if indicatorNames[spec.Indicator] {
				return fmt.Errorf("duplicate indicator %q", spec.Indicator)
			}
			indicatorNames[spec.Indicator] = true

			if spec.Weight < 0 {
				return fmt.Errorf("indicator %q: negative weight %v", spec.Indicator, spec.Weight)
			}

			if err := validateSpec(spec); err != nil {
				return fmt.Errorf("indicator %q: %w", spec.Indicator, err)
			}
		}
	}

	return nil
}

func validateSpec(spec mac.ThresholdSpec) error {
	if spec.Ranged {
		return validateBands(spec)
	}

	if spec.LowerIsBetter {
		if !(spec.Ample < spec.Thin && spec.Thin < spec.Breach) {
			return fmt.Errorf("thresholds not increasing: ample=%v thin=%v breach=%v", spec.Ample, spec.Thin, spec.Breach)
		}
		return nil
	}

	if !(spec.Ample > spec.Thin && spec.Thin > spec.Breach) {
		return fmt.Errorf("thresholds not decreasing: ample=%v thin=%v breach=%v", spec.Ample, spec.Thin, spec.Breach)
	}
	return nil
}

func validateBands(spec mac.ThresholdSpec) error {
	for _, b := range []struct {
		name string
		band mac.Band
	}{
		{"ample_band", spec.AmpleBand},
		{"thin_band", spec.ThinBand},
		{"breach_band", spec.BreachBand},
	} {
		if b.band.Low >= b.band.High {
			return fmt.Errorf("%s inverted: low=%v high=%v", b.name, b.band.Low, b.band.High)
		}
	}

	if spec.ThinBand.Low > spec.AmpleBand.Low || spec.ThinBand.High < spec.AmpleBand.High {
		return fmt.Errorf("thin_band does not contain ample_band")
	}
	if spec.BreachBand.Low > spec.ThinBand.Low || spec.BreachBand.High < spec.ThinBand.High {
		return fmt.Errorf("breach_band does not contain thin_band")
	}

	return nil
}
