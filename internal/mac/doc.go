// Package mac implements the Market Absorption Capacity (MAC) engine.
//
// MAC is a composite score in [0,1] estimating how much shock a financial
// system can absorb before its buffers are exhausted. The engine turns a map
// of independently observed stress indicators into that score in four stages:
//
//  1. Indicator scoring: each raw observation is mapped onto [0,1] with a
//     piecewise-linear interpolation against per-indicator ample/thin/breach
//     thresholds (ScoreSimple for single-sided indicators, ScoreRange for
//     indicators with a central comfort band).
//
//  2. Pillar aggregation: indicator scores belonging to one risk pillar
//     (liquidity, valuation, positioning, volatility, policy, contagion) are
//     combined into a pillar composite. The aggregation method is selected by
//     score dispersion: a widely dispersed pillar is constraint-bound and
//     takes the minimum, otherwise a weighted average is used. Forced-breach
//     and era-cap overrides run as an ordered rule chain after aggregation.
//
//  3. Composite: pillar composites are blended into the MAC score. Pillars
//     below the breach floor are flagged; two or more simultaneous breaches
//     trigger a non-linear interaction penalty, because correlated
//     multi-pillar crises are worse than a naive average suggests.
//
//  4. Multiplier: the MAC score is transformed into a shock-transmission
//     multiplier, 1 + alpha*(1-mac)^beta. Below the breach floor the system
//     declares a regime break and refuses to extrapolate a multiplier.
//
// Everything in this package is a pure, synchronous function of its inputs.
// Threshold tables are loaded once at startup, validated, and shared
// read-only; the Calculator is safe for concurrent use.
package mac
