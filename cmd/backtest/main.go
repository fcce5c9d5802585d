package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"macpulse/internal/backtest"
	"macpulse/internal/config"
	"macpulse/internal/exporter"
	"macpulse/internal/mac"
	"macpulse/internal/regime"
)

func main() {
	libraryPath := flag.String("library", "", "scenario library YAML file (defaults to the builtin crisis library)")
	thresholdsPath := flag.String("thresholds", "", "threshold table YAML file (defaults to the builtin table)")
	factor := flag.Float64("factor", 1.0, "calibration factor applied to the composite before the range check")
	outputDir := flag.String("out", "reports", "output directory for the backtest report")
	format := flag.String("format", "csv", "report format: csv, xlsx, or both")
	noEraCaps := flag.Bool("no-era-caps", false, "disable historical era policy caps")
	flag.Parse()

	logger := slog.Default()

	thresholds := mac.DefaultThresholds()
	if *thresholdsPath != "" {
		loaded, err := config.LoadThresholds(*thresholdsPath)
		if err != nil {
			logger.Error("Failed to load threshold table", "error", err, "path", *thresholdsPath)
			os.Exit(1)
		}
		thresholds = loaded
	}

	library := backtest.BuiltinLibrary()
	if *libraryPath != "" {
		loaded, err := backtest.LoadLibrary(*libraryPath)
		if err != nil {
			logger.Error("Failed to load scenario library", "error", err, "path", *libraryPath)
			os.Exit(1)
		}
		library = loaded
	}
	logger.Info("Loaded scenario library",
		"version", library.Version,
		"scenarios", len(library.Scenarios))

	var overrides mac.OverrideProvider
	if !*noEraCaps {
		overrides = regime.EraCaps{}
	}

	calibrator := backtest.NewCalibrator(mac.NewCalculator(thresholds, overrides, logger), logger)
	if err := calibrator.SetCalibrationFactor(*factor); err != nil {
		logger.Error("Invalid calibration factor", "error", err)
		os.Exit(1)
	}

	summary := calibrator.Run(context.Background(), library)

	fmt.Printf("Library:            %s (%d scenarios)\n", summary.LibraryVersion, summary.Scenarios)
	fmt.Printf("MAC accuracy:       %.1f%%\n", summary.MACAccuracy*100)
	fmt.Printf("Breach accuracy:    %.1f%%\n", summary.BreachAccuracy*100)
	fmt.Printf("Hedge accuracy:     %.1f%%\n", summary.HedgeAccuracy*100)
	fmt.Printf("Overall pass rate:  %.1f%%\n", summary.OverallPassRate*100)

	reports := exporter.NewReportExporter(logger)

	if *format == "csv" || *format == "both" {
		path := filepath.Join(*outputDir, "backtest.csv")
		if err := reports.ExportSummaryCSV(summary, path); err != nil {
			logger.Error("Failed to export CSV report", "error", err)
			os.Exit(1)
		}
		fmt.Printf("CSV report:         %s\n", path)
	}
	if *format == "xlsx" || *format == "both" {
		path := filepath.Join(*outputDir, "backtest.xlsx")
		if err := reports.ExportSummaryXLSX(summary, path); err != nil {
			logger.Error("Failed to export XLSX report", "error", err)
			os.Exit(1)
		}
		fmt.Printf("XLSX report:        %s\n", path)
	}

	if summary.OverallPassRate < 1.0 {
		os.Exit(2)
	}
}
