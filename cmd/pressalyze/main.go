// Press sensor log analyzer CLI.
// This application ingests time-stamped extrusion press CSV logs, cleans
// and partitions them into operational days, ISO weeks or profile/date
// groups, computes descriptive statistics and outlier flags, and writes
// per-group artifacts for report rendering.
//
// The tool runs an interactive loop: it prompts for a CSV path, analyzes
// the file, reports the outcome, and asks whether to process another. A
// single file's failure is reported and the loop continues; only 'q' ends
// the process.
//
// Usage:
//
//	pressalyze [-output DIR] [-policy operational-day|iso-week|profile-date]
//	           [-detector zscore|iforest] [-config FILE] [-log-level LEVEL]
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pressline/go-press-analytics/internal/analyzer"
	"github.com/pressline/go-press-analytics/internal/config"
	apperrors "github.com/pressline/go-press-analytics/internal/errors"
	"github.com/pressline/go-press-analytics/internal/logger"
	"github.com/pressline/go-press-analytics/internal/metrics"
)

const (
	appName = "pressalyze"
	version = "1.0.0"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to JSON configuration file")
		outputDir  = flag.String("output", "", "output directory for analysis artifacts")
		policy     = flag.String("policy", "", "partition policy: operational-day, iso-week, profile-date")
		detector   = flag.String("detector", "", "outlier detector: zscore, iforest")
		logLevel   = flag.String("log-level", "", "log level: debug, info, warn, error")
		showVer    = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVer {
		fmt.Printf("%s %s\n", appName, version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if *outputDir != "" {
		cfg.Export.OutputDir = *outputDir
	}
	if *policy != "" {
		cfg.Partition.Policy = *policy
	}
	if *detector != "" {
		cfg.Outliers.Detector = *detector
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	logManager, err := logger.NewManager(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logging: %v\n", err)
		os.Exit(2)
	}
	defer logManager.Close()

	registry := metrics.NewRegistry()
	a := analyzer.New(cfg, logManager.Component("analyzer"), registry)
	runLoop(a, bufio.NewScanner(os.Stdin))

	snap := registry.Snapshot()
	logManager.Component("session").Info("session finished",
		slog.Duration("uptime", snap.Uptime),
		slog.Int64("rows_loaded", snap.Counters["rows_loaded"]),
		slog.Int64("rows_invalid", snap.Counters["rows_invalid"]),
		slog.Int64("groups_analyzed", snap.Counters["groups_analyzed"]))
	fmt.Println("Analysis complete. Goodbye!")
}

// runLoop drives the interactive session. It never exits because of a
// file's failure; only the quit sentinel ends it.
func runLoop(a *analyzer.Analyzer, in *bufio.Scanner) {
	for {
		path, ok := prompt(in, "Please enter the full path of the CSV file you want to analyze (or 'q' to quit): ")
		if !ok || strings.EqualFold(path, "q") {
			return
		}
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			fmt.Printf("Error: File '%s' does not exist. Please try again.\n", path)
			continue
		}
		if !strings.HasSuffix(strings.ToLower(path), ".csv") {
			fmt.Println("Error: Please select a CSV file.")
			continue
		}

		req := a.RequestFromConfig(path)
		if window, ok := promptWindow(in); ok {
			req.Window = window
		}

		analyzeFile(a, req)

		answer, ok := prompt(in, "Do you want to analyze another file? (y/n): ")
		if !ok || !strings.EqualFold(answer, "y") {
			return
		}
	}
}

// promptWindow optionally narrows the analysis to a custom date range.
func promptWindow(in *bufio.Scanner) (*analyzer.TimeWindow, bool) {
	answer, ok := prompt(in, "Analyze the whole file or a custom date range? (whole/range): ")
	if !ok || !strings.EqualFold(answer, "range") {
		return nil, false
	}

	from, ok := promptDate(in, "Enter start date (YYYY-MM-DD): ")
	if !ok {
		return nil, false
	}
	to, ok := promptDate(in, "Enter end date (YYYY-MM-DD): ")
	if !ok {
		return nil, false
	}
	// Include the whole end day.
	return &analyzer.TimeWindow{From: from, To: to.AddDate(0, 0, 1).Add(-time.Nanosecond)}, true
}

func promptDate(in *bufio.Scanner, label string) (time.Time, bool) {
	raw, ok := prompt(in, label)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		fmt.Println("Invalid date format. Please use YYYY-MM-DD.")
		return time.Time{}, false
	}
	return t, true
}

// analyzeFile runs one analysis and reports its outcome. Every error class
// is handled here; none of them propagates out of the loop.
func analyzeFile(a *analyzer.Analyzer, req analyzer.Request) {
	result, err := a.Run(context.Background(), req)
	if err != nil {
		switch apperrors.ClassOf(err) {
		case apperrors.ClassNotFound:
			fmt.Printf("Error: File '%s' does not exist. Please try again.\n", req.Path)
		case apperrors.ClassFormat:
			fmt.Printf("Error: File format is incorrect: %v\n", err)
		case apperrors.ClassEmptyResult:
			fmt.Println("No data found in the specified range.")
		default:
			fmt.Printf("An error occurred while analyzing the file: %v\n", err)
		}
		return
	}

	fmt.Printf("Analysis complete: %d rows in %d groups (policy %s, detector %s).\n",
		result.Rows, len(result.Groups), result.Policy, result.Detector)
	if len(result.InvalidRows) > 0 {
		fmt.Printf("Note: %d rows with unparseable timestamps were set aside.\n", len(result.InvalidRows))
	}
	for _, g := range result.Groups {
		flagged := 0
		for _, points := range g.Outliers {
			flagged += len(points)
		}
		fmt.Printf("  %s: %d records, %d outliers flagged\n", g.Key, g.Records, flagged)
	}
	if len(result.Artifacts) > 0 {
		fmt.Printf("Artifacts written under: %s\n", req.OutputDir)
	}
}

func prompt(in *bufio.Scanner, label string) (string, bool) {
	fmt.Print(label)
	if !in.Scan() {
		return "", false
	}
	return strings.TrimSpace(in.Text()), true
}
