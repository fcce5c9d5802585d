package backtest

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v2"
)

// BuiltinLibraryVersion identifies the embedded fixture set. Bump it
// whenever a fixture's snapshot or expectations change.
const BuiltinLibraryVersion = "2024.2"

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// BuiltinLibrary returns the embedded historical crisis library. Indicator
// snapshots for pre-1990 events are reconstructions from the historical
// calibration set; sparse eras deliberately omit indicators that cannot be
// reconstructed, exercising the neutral-fallback path.
func BuiltinLibrary() Library {
	return Library{
		Version: BuiltinLibraryVersion,
		Scenarios: []Scenario{
			{
				Name: "panic_of_1907",
				Date: date(1907, 10, 22),
				Indicators: map[string]float64{
					"ted_spread":           1.2,
					"margin_debt_yoy":      0.3,
					"realized_vol_30d":     45,
					"policy_rate_headroom": 1.0,
					"em_sovereign_spread":  5.5,
					"cape_percentile":      0.4,
				},
				ExpectedMACRange: MACRange{Low: 0.15, High: 0.35},
				ExpectedBreaches: []string{"liquidity", "volatility"},
				HedgeHeld:        true,
			},
			{
				Name: "crash_of_1929",
				Date: date(1929, 10, 29),
				Indicators: map[string]float64{
					"ted_spread":           0.9,
					"cape_percentile":      0.96,
					"equity_risk_premium":  1.0,
					"margin_debt_yoy":      0.5,
					"realized_vol_30d":     38,
					"policy_rate_headroom": 2.0,
					"em_sovereign_spread":  4.0,
				},
				ExpectedMACRange: MACRange{Low: 0.05, High: 0.2},
				ExpectedBreaches: []string{"liquidity", "positioning", "valuation"},
				HedgeHeld:        false,
			},
			{
				Name: "black_monday_1987",
				Date: date(1987, 10, 19),
				Indicators: map[string]float64{
					"ted_spread":                 0.55,
					"bid_ask_spread_bps":         20,
					"cp_treasury_spread":         0.5,
					"cape_percentile":            0.85,
					"equity_risk_premium":        2.5,
					"term_premium":               1.5,
					"net_speculative_percentile": 0.9,
					"margin_debt_yoy":            0.2,
					"fund_leverage_ratio":        2.0,
					"vix_level":                  90,
					"realized_vol_30d":           80,
					"policy_rate_headroom":       6.5,
					"cb_balance_sheet_gdp":       0.05,
					"fiscal_space_index":         0.55,
					"cross_asset_correlation":    0.7,
					"em_sovereign_spread":        3.5,
					"fx_swap_basis_bps":          -30,
				},
				ExpectedMACRange: MACRange{Low: 0.3, High: 0.5},
				ExpectedBreaches: []string{"volatility"},
				HedgeHeld:        true,
			},
			{
				Name: "asian_crisis_1997",
				Date: date(1997, 10, 27),
				Indicators: map[string]float64{
					"ted_spread":                 0.45,
					"bid_ask_spread_bps":         8,
					"cp_treasury_spread":         0.3,
					"cape_percentile":            0.75,
					"equity_risk_premium":        3.0,
					"term_premium":               2.0,
					"net_speculative_percentile": 0.7,
					"margin_debt_yoy":            0.12,
					"fund_leverage_ratio":        1.8,
					"vix_level":                  28,
					"move_index":                 90,
					"realized_vol_30d":           22,
					"policy_rate_headroom":       5.5,
					"cb_balance_sheet_gdp":       0.06,
					"fiscal_space_index":         0.65,
					"cross_asset_correlation":    0.5,
					"em_sovereign_spread":        8.5,
					"fx_swap_basis_bps":          20,
				},
				ExpectedMACRange: MACRange{Low: 0.6, High: 0.8},
				ExpectedBreaches: []string{"contagion"},
				HedgeHeld:        true,
			},
			{
				Name: "ltcm_1998",
				Date: date(1998, 9, 23),
				Indicators: map[string]float64{
					"ted_spread":                 0.85,
					"bid_ask_spread_bps":         18,
					"cp_treasury_spread":         0.9,
					"cape_percentile":            0.82,
					"equity_risk_premium":        2.8,
					"term_premium":               1.8,
					"net_speculative_percentile": 0.88,
					"margin_debt_yoy":            0.18,
					"fund_leverage_ratio":        4.2,
					"vix_level":                  44,
					"move_index":                 130,
					"realized_vol_30d":           35,
					"policy_rate_headroom":       4.75,
					"cb_balance_sheet_gdp":       0.05,
					"fiscal_space_index":         0.6,
					"cross_asset_correlation":    0.65,
					"em_sovereign_spread":        7.0,
					"fx_swap_basis_bps":          -45,
				},
				ExpectedMACRange: MACRange{Low: 0.25, High: 0.4},
				ExpectedBreaches: []string{"liquidity", "positioning"},
				HedgeHeld:        false,
			},
			{
				Name: "dotcom_2000",
				Date: date(2000, 3, 24),
				Indicators: map[string]float64{
					"ted_spread":                 0.4,
					"bid_ask_spread_bps":         6,
					"cp_treasury_spread":         0.35,
					"cape_percentile":            0.99,
					"equity_risk_premium":        0.8,
					"term_premium":               2.8,
					"net_speculative_percentile": 0.8,
					"margin_debt_yoy":            0.35,
					"fund_leverage_ratio":        2.2,
					"vix_level":                  27,
					"move_index":                 100,
					"realized_vol_30d":           24,
					"policy_rate_headroom":       6.0,
					"cb_balance_sheet_gdp":       0.05,
					"fiscal_space_index":         0.65,
					"cross_asset_correlation":    0.4,
					"em_sovereign_spread":        3.8,
					"fx_swap_basis_bps":          10,
				},
				ExpectedMACRange: MACRange{Low: 0.55, High: 0.7},
				ExpectedBreaches: []string{"valuation"},
				HedgeHeld:        true,
			},
			{
				Name: "gfc_2008",
				Date: date(2008, 10, 10),
				Indicators: map[string]float64{
					"ted_spread":                 4.6,
					"bid_ask_spread_bps":         45,
					"cp_treasury_spread":         2.5,
					"cape_percentile":            0.6,
					"equity_risk_premium":        4.5,
					"term_premium":               3.0,
					"net_speculative_percentile": 0.95,
					"margin_debt_yoy":            -0.1,
					"fund_leverage_ratio":        3.5,
					"vix_level":                  70,
					"move_index":                 200,
					"realized_vol_30d":           60,
					"policy_rate_headroom":       1.5,
					"cb_balance_sheet_gdp":       0.15,
					"fiscal_space_index":         0.45,
					"cross_asset_correlation":    0.9,
					"em_sovereign_spread":        9.0,
					"fx_swap_basis_bps":          -70,
				},
				ExpectedMACRange: MACRange{Low: 0.0, High: 0.1},
				ExpectedBreaches: []string{"contagion", "liquidity", "positioning", "volatility"},
				HedgeHeld:        false,
			},
			{
				Name: "euro_crisis_2011",
				Date: date(2011, 11, 25),
				Indicators: map[string]float64{
					"ted_spread":                 0.5,
					"bid_ask_spread_bps":         12,
					"cp_treasury_spread":         0.6,
					"cape_percentile":            0.65,
					"equity_risk_premium":        5.0,
					"term_premium":               2.2,
					"net_speculative_percentile": 0.65,
					"margin_debt_yoy":            0.08,
					"fund_leverage_ratio":        1.9,
					"vix_level":                  42,
					"move_index":                 110,
					"realized_vol_30d":           32,
					"policy_rate_headroom":       0.25,
					"cb_balance_sheet_gdp":       0.2,
					"fiscal_space_index":         0.3,
					"cross_asset_correlation":    0.75,
					"em_sovereign_spread":        7.5,
					"fx_swap_basis_bps":          -50,
				},
				ExpectedMACRange: MACRange{Low: 0.45, High: 0.6},
				ExpectedBreaches: []string{"policy"},
				HedgeHeld:        true,
			},
			{
				Name: "covid_2020",
				Date: date(2020, 3, 20),
				Indicators: map[string]float64{
					"ted_spread":                 1.4,
					"bid_ask_spread_bps":         35,
					"cp_treasury_spread":         1.8,
					"cape_percentile":            0.55,
					"equity_risk_premium":        3.5,
					"term_premium":               1.0,
					"net_speculative_percentile": 0.99,
					"margin_debt_yoy":            0.05,
					"fund_leverage_ratio":        3.9,
					"vix_level":                  82,
					"move_index":                 164,
					"realized_vol_30d":           70,
					"policy_rate_headroom":       1.0,
					"cb_balance_sheet_gdp":       0.19,
					"fiscal_space_index":         0.5,
					"cross_asset_correlation":    0.8,
					"em_sovereign_spread":        6.5,
					"fx_swap_basis_bps":          -55,
				},
				ExpectedMACRange: MACRange{Low: 0.0, High: 0.15},
				ExpectedBreaches: []string{"liquidity", "positioning", "volatility"},
				HedgeHeld:        false,
			},
			{
				Name: "gilt_crisis_2022",
				Date: date(2022, 9, 28),
				Indicators: map[string]float64{
					"ted_spread":                 0.35,
					"bid_ask_spread_bps":         25,
					"cp_treasury_spread":         0.55,
					"cape_percentile":            0.7,
					"equity_risk_premium":        3.2,
					"term_premium":               3.2,
					"net_speculative_percentile": 0.7,
					"margin_debt_yoy":            0.02,
					"fund_leverage_ratio":        4.5,
					"vix_level":                  32,
					"move_index":                 170,
					"realized_vol_30d":           28,
					"policy_rate_headroom":       2.25,
					"cb_balance_sheet_gdp":       0.35,
					"fiscal_space_index":         0.25,
					"cross_asset_correlation":    0.55,
					"em_sovereign_spread":        5.5,
					"fx_swap_basis_bps":          -35,
				},
				ExpectedMACRange: MACRange{Low: 0.15, High: 0.3},
				ExpectedBreaches: []string{"positioning", "volatility"},
				HedgeHeld:        false,
			},
		},
	}
}

// libraryFile mirrors Library for YAML decoding, with dates as strings
type libraryFile struct {
	Version   string `yaml:"version"`
	Scenarios []struct {
		Name             string             `yaml:"name"`
		Date             string             `yaml:"date"`
		Indicators       map[string]float64 `yaml:"indicators"`
		ExpectedMACRange MACRange           `yaml:"expected_mac_range"`
		ExpectedBreaches []string           `yaml:"expected_breaches"`
		HedgeHeld        bool               `yaml:"hedge_held"`
	} `yaml:"scenarios"`
}

// LoadLibrary reads a scenario library from a YAML file. Dates use
// 2006-01-02 form.
func LoadLibrary(path string) (Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Library{}, fmt.Errorf("read scenario library: %w", err)
	}

	var file libraryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Library{}, fmt.Errorf("parse scenario library: %w", err)
	}

	lib := Library{Version: file.Version}
	for _, s := range file.Scenarios {
		if s.Name == "" {
			return Library{}, fmt.Errorf("scenario without a name in %s", path)
		}
		d, err := time.Parse("2006-01-02", s.Date)
		if err != nil {
			return Library{}, fmt.Errorf("scenario %q: parse date: %w", s.Name, err)
		}
		if s.ExpectedMACRange.Low > s.ExpectedMACRange.High {
			return Library{}, fmt.Errorf("scenario %q: inverted expected mac range", s.Name)
		}

		breaches := append([]string(nil), s.ExpectedBreaches...)
		sort.Strings(breaches)

		lib.Scenarios = append(lib.Scenarios, Scenario{
			Name:             s.Name,
			Date:             d,
			Indicators:       s.Indicators,
			ExpectedMACRange: s.ExpectedMACRange,
			ExpectedBreaches: breaches,
			HedgeHeld:        s.HedgeHeld,
		})
	}

	return lib, nil
}
