// Package backtest validates the MAC methodology against a library of
// historical crisis fixtures. Each fixture pins an indicator snapshot to the
// composite range, breach set and hedge outcome the pipeline is expected to
// reproduce; the calibrator runs the full chain over the library and scores
// three independent axes per scenario (composite in range, breach set
// equality, hedge prediction).
package backtest
