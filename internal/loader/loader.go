// Package loader parses delimited sensor log files into time-indexed
// datasets. It establishes the channel schema from the header row, coerces
// the designated timestamp column to a temporal type, and sets rows with
// unparseable timestamps aside as diagnostics instead of dropping them into
// the ordered sequence.
package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	apperrors "github.com/pressline/go-press-analytics/internal/errors"
	"github.com/pressline/go-press-analytics/internal/models"
)

const component = "loader"

// Timestamp layouts tried in sequence when multi-format detection is
// enabled. Day-first forms come first because that is what the press
// historian emits.
var detectLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/06 15:04:05",
	"02/01/06 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Options controls how a file is parsed.
type Options struct {
	// TimestampColumns are the header names accepted as the timestamp
	// column, checked in order. Defaults to timestamp, Timestamp, Date.
	TimestampColumns []string
	// Layout is the declared Go time layout for the timestamp column.
	// The caller is expected to declare the format it knows the file
	// uses; DetectFormats is the explicit opt-in fallback.
	Layout string
	// DetectFormats enables trying the known historian formats in
	// sequence for each cell. Ignored when Layout parses the cell.
	DetectFormats bool
	// ProfileColumn is the header name of the categorical profile
	// column. Defaults to PROFILE.
	ProfileColumn string
	// Schema describes the expected channels. When empty the schema is
	// derived from the header with every non-timestamp column assumed
	// numeric until coercion decides otherwise.
	Schema models.Schema
	// RetryAttempts is the number of additional read attempts for
	// transient I/O failures. The press logs live on network-synced
	// shares where a first read can fail spuriously.
	RetryAttempts int
	// Logger receives per-file diagnostics. Nil disables logging.
	Logger *slog.Logger
}

func (o *Options) withDefaults() Options {
	out := *o
	if len(out.TimestampColumns) == 0 {
		out.TimestampColumns = []string{"timestamp", "Timestamp", "Date"}
	}
	if out.ProfileColumn == "" {
		out.ProfileColumn = "PROFILE"
	}
	if out.Logger == nil {
		out.Logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}
	return out
}

// Load reads the CSV file at path into a Dataset. Records are returned
// sorted by timestamp ascending; rows whose timestamp fails every accepted
// format are collected into the dataset's Invalid list. The returned error
// is classified: missing files are ClassNotFound, a missing timestamp
// column or broken structure is ClassFormat.
func Load(ctx context.Context, path string, opts Options) (*models.Dataset, error) {
	opts = opts.withDefaults()

	if opts.Layout == "" && !opts.DetectFormats {
		return nil, apperrors.Newf(apperrors.ClassFormat, component, "load",
			"no timestamp layout declared and format detection not enabled")
	}

	data, err := readFile(ctx, path, opts.RetryAttempts)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.New(apperrors.ClassFormat, component, "load",
			fmt.Errorf("failed to read header row: %w", err))
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	tsIdx := -1
	for _, candidate := range opts.TimestampColumns {
		for i, col := range header {
			if col == candidate {
				tsIdx = i
				break
			}
		}
		if tsIdx >= 0 {
			break
		}
	}
	if tsIdx < 0 {
		return nil, apperrors.Newf(apperrors.ClassFormat, component, "load",
			"timestamp column not found in header (accepted: %s)",
			strings.Join(opts.TimestampColumns, ", "))
	}

	profileIdx := -1
	for i, col := range header {
		if col == opts.ProfileColumn {
			profileIdx = i
			break
		}
	}

	ds := &models.Dataset{
		Schema:  opts.Schema,
		Columns: header,
	}

	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			ds.Invalid = append(ds.Invalid, models.InvalidRow{
				Line:   line,
				Reason: fmt.Sprintf("malformed row: %v", err),
			})
			continue
		}
		if len(row) <= tsIdx {
			ds.Invalid = append(ds.Invalid, models.InvalidRow{
				Line:   line,
				Raw:    row,
				Reason: "row shorter than timestamp column",
			})
			continue
		}

		ts, ok := parseTimestamp(strings.TrimSpace(row[tsIdx]), opts)
		if !ok {
			ds.Invalid = append(ds.Invalid, models.InvalidRow{
				Line:   line,
				Raw:    row,
				Reason: fmt.Sprintf("unparseable timestamp %q", row[tsIdx]),
			})
			continue
		}

		rec := models.Record{
			Timestamp: ts,
			Values:    make(map[string]float64),
			Raw:       row,
			Line:      line,
		}
		if profileIdx >= 0 && profileIdx < len(row) {
			rec.Profile = strings.TrimSpace(row[profileIdx])
		}
		ds.Records = append(ds.Records, rec)
	}

	// Stable sort keeps source order for identical timestamps.
	sort.SliceStable(ds.Records, func(i, j int) bool {
		return ds.Records[i].Timestamp.Before(ds.Records[j].Timestamp)
	})

	opts.Logger.Info("file loaded",
		slog.String("path", path),
		slog.Int("records", len(ds.Records)),
		slog.Int("invalid_rows", len(ds.Invalid)))

	return ds, nil
}

// parseTimestamp parses one timestamp cell using the declared layout first,
// then the known historian formats when detection is enabled.
func parseTimestamp(cell string, opts Options) (time.Time, bool) {
	if cell == "" {
		return time.Time{}, false
	}
	if opts.Layout != "" {
		if t, err := time.Parse(opts.Layout, cell); err == nil {
			return t, true
		}
	}
	if opts.DetectFormats {
		for _, layout := range detectLayouts {
			if t, err := time.Parse(layout, cell); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// readFile reads the whole file, retrying transient I/O failures with
// exponential backoff. A missing file is never retried.
func readFile(ctx context.Context, path string, attempts int) ([]byte, error) {
	var data []byte

	operation := func() error {
		var err error
		data, err = os.ReadFile(path)
		if err == nil {
			return nil
		}
		if os.IsNotExist(err) {
			return backoff.Permanent(apperrors.New(apperrors.ClassNotFound, component, "read",
				fmt.Errorf("input file does not exist: %w", err)))
		}
		return apperrors.New(apperrors.ClassIO, component, "read",
			fmt.Errorf("failed to read %s: %w", path, err))
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(attempts)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return data, nil
}
