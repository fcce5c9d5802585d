// Package exporter provides report export functionality for backtest runs.
//
// This package contains two main components:
//
// CSVWriter: Core CSV writing functionality with support for headers, streaming,
// and UTF-8 BOM for Excel compatibility.
//
// ReportExporter: Renders a backtest summary as a per-scenario CSV file or as
// an XLSX workbook with separate summary and scenario sheets.
//
// Example usage:
//
//	reports := exporter.NewReportExporter(slog.Default())
//
//	// Export a backtest summary
//	err := reports.ExportSummaryCSV(summary, "reports/backtest.csv")
//	err = reports.ExportSummaryXLSX(summary, "reports/backtest.xlsx")
package exporter
