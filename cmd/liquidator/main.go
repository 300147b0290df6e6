package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/FACorreiaa/liquidation-engine/internal/domain/export"
	"github.com/FACorreiaa/liquidation-engine/internal/domain/extract"
	"github.com/FACorreiaa/liquidation-engine/internal/domain/liquidation"
	"github.com/FACorreiaa/liquidation-engine/internal/domain/pdftable"
	"github.com/FACorreiaa/liquidation-engine/pkg/archive"
	"github.com/FACorreiaa/liquidation-engine/pkg/config"
	"github.com/FACorreiaa/liquidation-engine/pkg/money"
)

const (
	exitOK         = 0
	exitMalformed  = 1
	exitDiscrepant = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		inputPath   = flag.String("input", "", "path to the liquidation PDF (required)")
		strategy    = flag.String("strategy", "", "table detection strategy: text or lines")
		configPath  = flag.String("config", "", "optional YAML extraction config")
		exportFmt   = flag.String("export", "", "export format: excel, csv or html")
		exportPath  = flag.String("out", "", "export output path")
		strictTotal = flag.Bool("strict", false, "treat document-level total mismatches as discrepancies too")
	)
	flag.Parse()

	appCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return exitMalformed
	}

	logger := newLogger(appCfg.Logging.Level)
	logger = logger.With(slog.String("run_id", uuid.NewString()))
	slog.SetDefault(logger)

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: liquidator -input document.pdf [-strategy text|lines] [-config extract.yaml] [-export excel|csv|html -out report.xlsx]")
		return exitMalformed
	}
	if *strategy == "" {
		*strategy = appCfg.Input.Strategy
	}
	if *configPath == "" {
		*configPath = appCfg.Input.ExtractConfig
	}
	if *exportFmt == "" {
		*exportFmt = appCfg.Export.Format
	}
	if *exportPath == "" {
		*exportPath = appCfg.Export.Path
	}

	extractCfg := extract.DefaultConfig()
	if *configPath != "" {
		extractCfg, err = extract.LoadConfig(*configPath)
		if err != nil {
			logger.Error("failed to load extraction config", slog.Any("error", err))
			return exitMalformed
		}
	}

	detector, err := pdftable.NewDetector(pdftable.Strategy(*strategy), logger)
	if err != nil {
		logger.Error("invalid strategy", slog.Any("error", err))
		return exitMalformed
	}

	pages, err := detector.DetectFile(*inputPath)
	if err != nil {
		if errors.Is(err, pdftable.ErrNoTables) {
			logger.Error("document is malformed", slog.String("input", *inputPath))
		} else {
			logger.Error("failed to read document", slog.Any("error", err))
		}
		return exitMalformed
	}

	extractor := extract.NewExtractor(extractCfg, logger)
	doc, err := extractor.ExtractDocument(pages)
	if err != nil {
		logger.Error("extraction failed", slog.Any("error", err))
		return exitMalformed
	}

	validator := liquidation.NewValidator(extractCfg.Tolerance)
	totalErrs := validator.ValidateTotals(doc)
	results := validator.ValidateExerciseSummaries(doc)

	printReport(doc, totalErrs, results)

	if *exportFmt != "" {
		if *exportPath == "" {
			logger.Error("export format given without -out path")
			return exitMalformed
		}
		if err := export.WriteFile(doc, *exportFmt, *exportPath); err != nil {
			logger.Error("export failed", slog.Any("error", err))
			return exitMalformed
		}
		logger.Info("report exported",
			slog.String("format", *exportFmt),
			slog.String("path", *exportPath))

		if appCfg.Export.ArchiveDir != "" {
			if err := archiveReport(appCfg.Export.ArchiveDir, doc, *exportFmt, *exportPath, logger); err != nil {
				logger.Warn("failed to archive report", slog.Any("error", err))
			}
		}
	}

	discrepant := false
	for _, res := range results {
		if !res.IsValid {
			discrepant = true
			break
		}
	}
	if *strictTotal && len(totalErrs) > 0 {
		discrepant = true
	}
	if discrepant {
		return exitDiscrepant
	}
	return exitOK
}

func archiveReport(dir string, doc *liquidation.Document, format, path string, logger *slog.Logger) error {
	a, err := archive.New(dir)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := a.Store(context.Background(), archive.ReportInfo{
		Entidad:           doc.Header.Entidad,
		CodigoEntidad:     doc.Header.CodigoEntidad,
		NumeroLiquidacion: doc.Header.NumeroLiquidacion,
		Format:            format,
	}, f)
	if err != nil {
		return err
	}
	logger.Info("report archived",
		slog.String("id", info.ID.String()),
		slog.String("entidad", info.CodigoEntidad))
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func printReport(doc *liquidation.Document, totalErrs []string, results map[int]liquidation.ExerciseValidationResult) {
	h := doc.Header
	if h.Entidad != "" {
		fmt.Printf("Entidad: %s (%s)\n", h.Entidad, h.CodigoEntidad)
	}
	if h.NumeroLiquidacion != "" {
		fmt.Printf("Liquidación nº %s\n", h.NumeroLiquidacion)
	}
	fmt.Printf("Registros: %d  Ejercicios: %d  Filas descartadas: %d\n",
		doc.TotalRecords(), len(doc.Years()), doc.DroppedRows)

	years := make([]int, 0, len(results))
	for y := range results {
		years = append(years, y)
	}
	sort.Ints(years)

	for _, y := range years {
		res := results[y]
		mark := "OK"
		if !res.IsValid {
			mark = "DISCREPANCIA"
		}
		fmt.Printf("  %d [%s] cargo=%s pendiente=%s (%s)\n",
			y, mark, money.DisplayEUR(res.CalcCargo), money.DisplayEUR(res.CalcPendiente), res.Status)
		for _, e := range res.Errors {
			fmt.Printf("    - %s\n", e)
		}
	}

	if doc.Totals.Declared {
		if len(totalErrs) == 0 {
			fmt.Printf("Total general: %s conciliado\n", money.DisplayEUR(doc.Totals.Cargo))
		} else {
			fmt.Println("Total general: discrepancias")
			for _, e := range totalErrs {
				fmt.Printf("  - %s\n", e)
			}
		}
	}

	for _, w := range doc.Warnings {
		fmt.Printf("aviso [%s]: %s\n", w.Code, w.Message)
	}
}
