package exporter

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"macpulse/internal/backtest"
)

func sampleSummary() backtest.Summary {
	return backtest.Summary{
		LibraryVersion:    "test.1",
		Scenarios:         2,
		MACAccuracy:       1.0,
		BreachAccuracy:    0.5,
		HedgeAccuracy:     1.0,
		OverallPassRate:   0.5,
		CalibrationFactor: 1.0,
		RanAt:             time.Date(2024, 6, 28, 12, 0, 0, 0, time.UTC),
		Results: []backtest.Result{
			{
				Scenario: "covid_2020", Date: "2020-03-20", MACScore: 0.0678,
				MACInRange: true, BreachesMatch: true, HedgePredictionCorrect: true,
				Passed: true, BreachFlags: []string{"liquidity", "positioning", "volatility"},
				RegimeBreak: true,
			},
			{
				Scenario: "dotcom_2000", Date: "2000-03-24", MACScore: 0.62,
				MACInRange: true, BreachesMatch: false, HedgePredictionCorrect: true,
				Passed: false, BreachFlags: []string{"valuation"},
			},
		},
	}
}

func TestExportSummaryCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "backtest.csv")
	exp := NewReportExporter(slog.Default())

	require.NoError(t, exp.ExportSummaryCSV(sampleSummary(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Strip the UTF-8 BOM before parsing
	content := strings.TrimPrefix(string(data), "\xef\xbb\xbf")
	rows, err := csv.NewReader(strings.NewReader(content)).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, resultHeaders, rows[0])
	assert.Equal(t, "covid_2020", rows[1][0])
	assert.Equal(t, "0.0678", rows[1][2])
	assert.Equal(t, "liquidity|positioning|volatility", rows[1][7])
	assert.Equal(t, "false", rows[2][6])
}

func TestExportSummaryXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "backtest.xlsx")
	exp := NewReportExporter(slog.Default())

	require.NoError(t, exp.ExportSummaryXLSX(sampleSummary(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	version, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "test.1", version)

	name, err := f.GetCellValue("Scenarios", "A2")
	require.NoError(t, err)
	assert.Equal(t, "covid_2020", name)

	flags, err := f.GetCellValue("Scenarios", "H3")
	require.NoError(t, err)
	assert.Equal(t, "valuation", flags)
}

func TestWriteSimpleCSVCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.csv")
	w := NewCSVWriter(slog.Default())

	require.NoError(t, w.WriteSimpleCSV(path, []string{"x"}, [][]string{{"1"}}))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestAppendToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w := NewCSVWriter(slog.Default())

	require.NoError(t, w.WriteSimpleCSV(path, []string{"x"}, [][]string{{"1"}}))
	require.NoError(t, w.AppendToCSV(path, [][]string{{"2"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := strings.TrimPrefix(string(data), "\xef\xbb\xbf")
	rows, err := csv.NewReader(strings.NewReader(content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2", rows[2][0])
}
