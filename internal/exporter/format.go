package exporter

import (
	"fmt"
	"strings"
)

// formatScore formats a score or accuracy value for CSV output with 4 decimal
// places, enough to distinguish composite scores near the breach floor
func formatScore(f float64) string {
	return fmt.Sprintf("%.4f", f)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// formatFlags joins breach flags into a single CSV cell
func formatFlags(flags []string) string {
	return strings.Join(flags, "|")
}
