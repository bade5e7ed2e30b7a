// Package analyzer orchestrates one file's analysis end to end: load,
// clean, optional time windowing, partitioning, per-group statistics and
// outlier detection, and artifact export. Run is a pure function of its
// request; the interactive shell is a thin wrapper calling it in a loop, so
// one file's failure never terminates the process.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pressline/go-press-analytics/internal/cleaner"
	"github.com/pressline/go-press-analytics/internal/config"
	apperrors "github.com/pressline/go-press-analytics/internal/errors"
	"github.com/pressline/go-press-analytics/internal/exporter"
	"github.com/pressline/go-press-analytics/internal/loader"
	"github.com/pressline/go-press-analytics/internal/metrics"
	"github.com/pressline/go-press-analytics/internal/models"
	"github.com/pressline/go-press-analytics/internal/outliers"
	"github.com/pressline/go-press-analytics/internal/partition"
	"github.com/pressline/go-press-analytics/internal/stats"
)

const component = "analyzer"

// TimeWindow restricts analysis to an inclusive timestamp range.
type TimeWindow struct {
	From time.Time
	To   time.Time
}

// Request describes one file analysis.
type Request struct {
	Path      string
	OutputDir string
	Policy    partition.Policy
	Window    *TimeWindow

	Load  loader.Options
	Clean cleaner.Options

	// Detector selects the outlier strategy: "zscore" or "iforest".
	Detector        string
	ZScoreThreshold float64
	Contamination   float64
	Seed            int64

	ExcludeColumns []string
	WriteKeyNotes  bool
}

// GroupResult holds the analysis outputs for one partition group.
type GroupResult struct {
	Key          string                    `json:"key"`
	Records      int                       `json:"records"`
	Summary      models.SummaryTable       `json:"summary"`
	Correlations *models.CorrelationMatrix `json:"correlations"`
	Outliers     models.OutlierMap         `json:"outliers"`
}

// Result is the outcome of one analysis run. It is the contract consumed
// by the report renderer.
type Result struct {
	RunID       string              `json:"run_id"`
	SourcePath  string              `json:"source_path"`
	Detector    string              `json:"detector"`
	Policy      string              `json:"policy"`
	Rows        int                 `json:"rows"`
	InvalidRows []models.InvalidRow `json:"invalid_rows,omitempty"`
	Groups      []GroupResult       `json:"groups"`
	Artifacts   []string            `json:"artifacts,omitempty"`
	StartedAt   time.Time           `json:"started_at"`
	Duration    time.Duration       `json:"duration"`
}

// Analyzer runs the batch pipeline.
type Analyzer struct {
	cfg     *config.AppConfig
	logger  *slog.Logger
	metrics *metrics.Registry
}

// New creates an analyzer. A nil logger falls back to slog.Default; a nil
// registry gets a private one.
func New(cfg *config.AppConfig, logger *slog.Logger, registry *metrics.Registry) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = metrics.NewRegistry()
	}
	return &Analyzer{cfg: cfg, logger: logger, metrics: registry}
}

// RequestFromConfig builds a request for one input file from the loaded
// configuration.
func (a *Analyzer) RequestFromConfig(path string) Request {
	cfg := a.cfg
	return Request{
		Path:      path,
		OutputDir: cfg.Export.OutputDir,
		Policy:    partition.Policy(cfg.Partition.Policy),
		Load: loader.Options{
			TimestampColumns: cfg.Loader.TimestampColumns,
			Layout:           cfg.Loader.TimestampLayout,
			DetectFormats:    cfg.Loader.DetectFormats,
			Schema:           models.DefaultExtrusionSchema(),
			RetryAttempts:    cfg.Loader.RetryAttempts,
			Logger:           a.logger,
		},
		Clean: cleaner.Options{
			Coerce:      cfg.Cleaner.Coerce,
			Interpolate: cfg.Cleaner.Interpolate,
			Smooth:      cfg.Cleaner.Smooth,
			Window:      cfg.Cleaner.SmoothingWindow,
		},
		Detector:        cfg.Outliers.Detector,
		ZScoreThreshold: cfg.Outliers.ZScoreThreshold,
		Contamination:   cfg.Outliers.Contamination,
		Seed:            cfg.Outliers.Seed,
		ExcludeColumns:  cfg.Export.ExcludeColumns,
		WriteKeyNotes:   cfg.Export.WriteKeyNotes,
	}
}

// Run analyzes one file and writes its artifacts. All failures come back
// classified; callers are expected to report them and continue their loop.
func (a *Analyzer) Run(ctx context.Context, req Request) (*Result, error) {
	started := time.Now()
	result := &Result{
		RunID:      uuid.New().String(),
		SourcePath: req.Path,
		Policy:     string(req.Policy),
		StartedAt:  started,
	}
	log := a.logger.With(
		slog.String("run_id", result.RunID),
		slog.String("path", req.Path))

	ds, err := loader.Load(ctx, req.Path, req.Load)
	if err != nil {
		return nil, err
	}
	a.metrics.Inc("rows_loaded", int64(ds.Len()))
	a.metrics.Inc("rows_invalid", int64(len(ds.Invalid)))

	if len(ds.Invalid) > 0 {
		// Surfaced, not fatal: the rows are excluded from grouping and
		// land in the summary artifact for diagnostics.
		log.Warn("rows with unparseable timestamps set aside",
			slog.Int("count", len(ds.Invalid)))
	}
	result.InvalidRows = ds.Invalid

	clean := cleaner.Clean(ds, req.Clean)

	if req.Window != nil {
		clean = partition.Window(clean, req.Window.From, req.Window.To)
		if clean.Len() == 0 {
			return nil, apperrors.Newf(apperrors.ClassEmptyResult, component, "window",
				"no records between %s and %s",
				req.Window.From.Format("2006-01-02"), req.Window.To.Format("2006-01-02"))
		}
	}
	result.Rows = clean.Len()

	groups, skipped, err := partition.Split(clean, req.Policy)
	if err != nil {
		return nil, err
	}
	if len(skipped) > 0 {
		log.Warn("records without usable timestamps skipped from grouping",
			slog.Int("count", len(skipped)))
	}
	if len(groups) == 0 {
		return nil, apperrors.Newf(apperrors.ClassEmptyResult, component, "split",
			"partitioning produced no groups")
	}

	detector, err := a.detector(req)
	if err != nil {
		return nil, err
	}
	result.Detector = detector.Name()

	for _, group := range groups {
		result.Groups = append(result.Groups, GroupResult{
			Key:          group.Key.String(),
			Records:      group.Data.Len(),
			Summary:      stats.Summarize(group.Data),
			Correlations: stats.Correlate(group.Data),
			Outliers:     detector.Detect(group.Data),
		})
	}
	a.metrics.Inc("groups_analyzed", int64(len(groups)))

	if req.OutputDir != "" {
		paths, err := exporter.WriteGroups(groups, req.OutputDir, exporter.Options{
			ExcludeColumns: req.ExcludeColumns,
			Logger:         a.logger,
		})
		if err != nil {
			return nil, err
		}
		result.Artifacts = append(result.Artifacts, paths...)

		if req.WriteKeyNotes {
			notesPath, err := exporter.WriteKeyNotes(groups, req.OutputDir)
			if err != nil {
				return nil, err
			}
			result.Artifacts = append(result.Artifacts, notesPath)
		}

		summaryPath, err := exporter.WriteJSON(result, req.OutputDir,
			fmt.Sprintf("analysis_%s.json", result.RunID))
		if err != nil {
			return nil, err
		}
		result.Artifacts = append(result.Artifacts, summaryPath)
	}

	result.Duration = time.Since(started)
	a.metrics.Observe("run_duration", result.Duration)
	log.Info("analysis complete",
		slog.Int("rows", result.Rows),
		slog.Int("groups", len(result.Groups)),
		slog.Duration("duration", result.Duration))
	return result, nil
}

func (a *Analyzer) detector(req Request) (outliers.Detector, error) {
	switch req.Detector {
	case "", "zscore":
		return outliers.NewZScoreDetector(req.ZScoreThreshold), nil
	case "iforest":
		return outliers.NewIsolationForestDetector(req.Contamination, req.Seed), nil
	default:
		return nil, apperrors.Newf(apperrors.ClassInternal, component, "detector",
			"unknown outlier detector %q", req.Detector)
	}
}
