// Package config provides centralized configuration management for the
// macpulse services. It handles loading configuration from multiple sources,
// validation, and a type-safe API for the rest of the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration files (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern MACPULSE_* for namespacing:
//
//	MACPULSE_SERVER_PORT=8080
//	MACPULSE_LOGGING_LEVEL=info
//	MACPULSE_ENGINE_THRESHOLDS_FILE=configs/thresholds.yaml
//	MACPULSE_ENGINE_CALIBRATION_FACTOR=1.0
//
// # Threshold Tables
//
// The scoring threshold table is loaded separately through LoadThresholds,
// which enforces the monotonic-ordering and band-nesting rules at startup.
// A malformed table is a fatal configuration error; the engine never runs
// against partially valid thresholds.
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
