package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"macpulse/internal/backtest"
	apperrors "macpulse/internal/errors"
)

// resultHeaders is the column layout shared by the CSV export and the
// Scenarios sheet of the XLSX workbook
var resultHeaders = []string{
	"Scenario", "Date", "MACScore", "MACInRange", "BreachesMatch",
	"HedgePredictionCorrect", "Passed", "BreachFlags", "RegimeBreak",
}

// ReportExporter renders backtest summaries as CSV files or XLSX workbooks
type ReportExporter struct {
	csv    *CSVWriter
	logger *slog.Logger
}

// NewReportExporter creates a new backtest report exporter
func NewReportExporter(logger *slog.Logger) *ReportExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportExporter{
		csv:    NewCSVWriter(logger),
		logger: logger,
	}
}

// ExportSummaryCSV writes one row per scenario plus the library metadata in
// the file header rows
func (e *ReportExporter) ExportSummaryCSV(summary backtest.Summary, filePath string) error {
	records := make([][]string, 0, len(summary.Results))
	for _, res := range summary.Results {
		records = append(records, resultRecord(res))
	}

	if err := e.csv.WriteSimpleCSV(filePath, resultHeaders, records); err != nil {
		return apperrors.NewStorageError("export backtest CSV", err)
	}

	e.logger.Info("backtest CSV exported",
		slog.String("file_path", filePath),
		slog.String("library_version", summary.LibraryVersion),
		slog.Int("scenarios", summary.Scenarios))

	return nil
}

// ExportSummaryXLSX writes a two-sheet workbook: Summary with the per-axis
// accuracy numbers, Scenarios with one row per fixture
func (e *ReportExporter) ExportSummaryXLSX(summary backtest.Summary, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return apperrors.NewStorageError("create report directory", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Summary"
	f.SetSheetName(f.GetSheetName(0), summarySheet)

	summaryRows := [][]interface{}{
		{"Library Version", summary.LibraryVersion},
		{"Scenarios", summary.Scenarios},
		{"MAC Accuracy", summary.MACAccuracy},
		{"Breach Accuracy", summary.BreachAccuracy},
		{"Hedge Accuracy", summary.HedgeAccuracy},
		{"Overall Pass Rate", summary.OverallPassRate},
		{"Calibration Factor", summary.CalibrationFactor},
		{"Ran At", summary.RanAt.Format("2006-01-02 15:04:05")},
	}
	for i, row := range summaryRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("summary sheet coordinates: %w", err)
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}

	const scenarioSheet = "Scenarios"
	if _, err := f.NewSheet(scenarioSheet); err != nil {
		return fmt.Errorf("create scenario sheet: %w", err)
	}

	header := make([]interface{}, len(resultHeaders))
	for i, h := range resultHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(scenarioSheet, "A1", &header); err != nil {
		return fmt.Errorf("write scenario header: %w", err)
	}

	for i, res := range summary.Results {
		row := []interface{}{
			res.Scenario, res.Date, res.MACScore, res.MACInRange,
			res.BreachesMatch, res.HedgePredictionCorrect, res.Passed,
			formatFlags(res.BreachFlags), res.RegimeBreak,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("scenario sheet coordinates: %w", err)
		}
		if err := f.SetSheetRow(scenarioSheet, cell, &row); err != nil {
			return fmt.Errorf("write scenario row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(filePath); err != nil {
		return apperrors.NewStorageError("save workbook", err)
	}

	e.logger.Info("backtest workbook exported",
		slog.String("file_path", filePath),
		slog.String("library_version", summary.LibraryVersion),
		slog.Int("scenarios", summary.Scenarios))

	return nil
}

func resultRecord(res backtest.Result) []string {
	return []string{
		res.Scenario,
		res.Date,
		formatScore(res.MACScore),
		formatBool(res.MACInRange),
		formatBool(res.BreachesMatch),
		formatBool(res.HedgePredictionCorrect),
		formatBool(res.Passed),
		formatFlags(res.BreachFlags),
		formatBool(res.RegimeBreak),
	}
}
