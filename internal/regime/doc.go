// Package regime provides historical regime normalization for the MAC
// engine: rolling z-scores that make raw indicator readings comparable
// across structurally different eras, era-keyed baseline tables, and the
// policy-cap override rules that encode structurally limited policy tools in
// earlier monetary regimes.
package regime
