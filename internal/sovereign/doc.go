// Package sovereign supplies a single-indicator substitute for the full
// multi-pillar MAC model in eras and regions where only a sovereign bond
// spread over an era-appropriate risk-free benchmark is observable.
//
// The mapping MAC = a - b*SS + c*SS^2 is fitted by ordinary least squares
// over an overlap period where both the spread and the full-pillar MAC
// exist. Estimates carry an 80% confidence interval and are tagged
// aggregate-only: no pillar decomposition is recoverable from one proxy.
package sovereign
