package mac

// DefaultThresholds returns the built-in six-pillar threshold table. The
// boundaries were calibrated against the historical crisis library; the
// config package can replace any of them from a YAML threshold file at
// startup.
//
// Direction conventions: spread, volatility and percentile indicators stress
// upward (LowerIsBetter), headroom and premium indicators stress downward.
func DefaultThresholds() ThresholdSet {
	return ThresholdSet{
		Pillars: []PillarSpec{
			{
				Name: "liquidity",
				Indicators: []ThresholdSpec{
					{Indicator: "ted_spread", Ample: 0.3, Thin: 0.6, Breach: 1.0, LowerIsBetter: true, Critical: true},
					{Indicator: "bid_ask_spread_bps", Ample: 5, Thin: 15, Breach: 40, LowerIsBetter: true},
					{Indicator: "cp_treasury_spread", Ample: 0.25, Thin: 0.75, Breach: 1.5, LowerIsBetter: true},
				},
			},
			{
				Name: "valuation",
				Indicators: []ThresholdSpec{
					{Indicator: "cape_percentile", Ample: 0.5, Thin: 0.8, Breach: 0.95, LowerIsBetter: true},
					{Indicator: "equity_risk_premium", Ample: 4.0, Thin: 2.0, Breach: 0.5},
					{
						Indicator:  "term_premium",
						Ranged:     true,
						AmpleBand:  Band{Low: 0.5, High: 2.5},
						ThinBand:   Band{Low: -0.5, High: 3.5},
						BreachBand: Band{Low: -1.5, High: 4.5},
					},
				},
			},
			{
				Name: "positioning",
				Indicators: []ThresholdSpec{
					{Indicator: "net_speculative_percentile", Ample: 0.6, Thin: 0.85, Breach: 0.97, LowerIsBetter: true, Critical: true},
					{Indicator: "margin_debt_yoy", Ample: 0.1, Thin: 0.25, Breach: 0.45, LowerIsBetter: true},
					{Indicator: "fund_leverage_ratio", Ample: 1.5, Thin: 2.5, Breach: 4.0, LowerIsBetter: true},
				},
			},
			{
				Name: "volatility",
				Indicators: []ThresholdSpec{
					{Indicator: "vix_level", Ample: 20, Thin: 35, Breach: 55, LowerIsBetter: true, Critical: true},
					{Indicator: "move_index", Ample: 80, Thin: 120, Breach: 180, LowerIsBetter: true},
					{Indicator: "realized_vol_30d", Ample: 15, Thin: 30, Breach: 50, LowerIsBetter: true},
				},
			},
			{
				Name: "policy",
				Indicators: []ThresholdSpec{
					{Indicator: "policy_rate_headroom", Ample: 3.0, Thin: 1.5, Breach: 0.25},
					{Indicator: "cb_balance_sheet_gdp", Ample: 0.2, Thin: 0.4, Breach: 0.6, LowerIsBetter: true},
					{Indicator: "fiscal_space_index", Ample: 0.6, Thin: 0.35, Breach: 0.1},
				},
			},
			{
				Name: "contagion",
				Indicators: []ThresholdSpec{
					{Indicator: "cross_asset_correlation", Ample: 0.35, Thin: 0.6, Breach: 0.85, LowerIsBetter: true},
					{Indicator: "em_sovereign_spread", Ample: 3.0, Thin: 5.0, Breach: 8.0, LowerIsBetter: true},
					{
						Indicator:  "fx_swap_basis_bps",
						Ranged:     true,
						AmpleBand:  Band{Low: -15, High: 15},
						ThinBand:   Band{Low: -40, High: 40},
						BreachBand: Band{Low: -80, High: 80},
					},
				},
			},
		},
	}
}
