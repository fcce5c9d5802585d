// Package app wires the MAC service together: configuration, logging,
// metrics, the scoring calculator, the service layer, and the chi router.
// It owns the HTTP server lifecycle from startup through graceful shutdown.
package app
