// Package exporter writes per-group artifacts for the downstream report
// renderer: one directory per partition group with the group's records as
// CSV, an optional key-notes file, and a JSON analysis summary. Each group
// is fully materialized in memory first and written in one
// open-write-close cycle; no file handles are held across groups.
package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/pressline/go-press-analytics/internal/errors"
	"github.com/pressline/go-press-analytics/internal/models"
)

const component = "exporter"

// Options controls artifact output.
type Options struct {
	// ExcludeColumns are bookkeeping columns dropped from exported group
	// files (e.g. DATE_ID). The derived partition key never appears in
	// the output either; it exists only in directory and file names.
	ExcludeColumns []string
	// Logger receives per-file diagnostics. Nil disables logging.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// WriteGroups writes one CSV file per group under outDir. The directory and
// file names derive from the sanitized group key. Returns the written file
// paths in group order.
func WriteGroups(groups []models.Group, outDir string, opts Options) ([]string, error) {
	paths := make([]string, 0, len(groups))
	for _, group := range groups {
		path, err := writeGroup(group, outDir, opts)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
		opts.logger().Info("group written",
			slog.String("group", group.Key.String()),
			slog.Int("records", group.Data.Len()),
			slog.String("path", path))
	}
	return paths, nil
}

func writeGroup(group models.Group, outDir string, opts Options) (string, error) {
	name := group.Key.Sanitized()
	dir := filepath.Join(outDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", apperrors.New(apperrors.ClassIO, component, "write_group",
			fmt.Errorf("failed to create group directory %s: %w", dir, err))
	}

	excluded := make(map[string]bool, len(opts.ExcludeColumns))
	for _, col := range opts.ExcludeColumns {
		excluded[col] = true
	}

	ds := group.Data
	keep := make([]int, 0, len(ds.Columns))
	header := make([]string, 0, len(ds.Columns))
	for i, col := range ds.Columns {
		if excluded[col] {
			continue
		}
		keep = append(keep, i)
		header = append(header, col)
	}

	path := filepath.Join(dir, name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", apperrors.New(apperrors.ClassIO, component, "write_group",
			fmt.Errorf("failed to create group file %s: %w", path, err))
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", apperrors.New(apperrors.ClassIO, component, "write_group",
			fmt.Errorf("failed to write header: %w", err))
	}
	row := make([]string, len(keep))
	for _, rec := range ds.Records {
		for i, colIdx := range keep {
			if colIdx < len(rec.Raw) {
				row[i] = rec.Raw[colIdx]
			} else {
				row[i] = ""
			}
		}
		if err := w.Write(row); err != nil {
			return "", apperrors.New(apperrors.ClassIO, component, "write_group",
				fmt.Errorf("failed to write record: %w", err))
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", apperrors.New(apperrors.ClassIO, component, "write_group",
			fmt.Errorf("failed to flush group file %s: %w", path, err))
	}
	return path, nil
}

// WriteKeyNotes writes a per-group record count summary next to the group
// directories, one line per group.
func WriteKeyNotes(groups []models.Group, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", apperrors.New(apperrors.ClassIO, component, "write_key_notes",
			fmt.Errorf("failed to create output directory: %w", err))
	}
	path := filepath.Join(outDir, fmt.Sprintf("key_notes_%s.txt", time.Now().Format("2006-01-02")))

	f, err := os.Create(path)
	if err != nil {
		return "", apperrors.New(apperrors.ClassIO, component, "write_key_notes",
			fmt.Errorf("failed to create key notes file: %w", err))
	}
	defer f.Close()

	for _, group := range groups {
		if _, err := fmt.Fprintf(f, "Group: %s, Number of records: %d\n",
			group.Key.String(), group.Data.Len()); err != nil {
			return "", apperrors.New(apperrors.ClassIO, component, "write_key_notes",
				fmt.Errorf("failed to write key notes: %w", err))
		}
	}
	return path, nil
}

// WriteJSON marshals v with indentation into name under outDir. Used for
// the analysis summary artifact the report renderer consumes.
func WriteJSON(v any, outDir, name string) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", apperrors.New(apperrors.ClassIO, component, "write_json",
			fmt.Errorf("failed to create output directory: %w", err))
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", apperrors.New(apperrors.ClassInternal, component, "write_json",
			fmt.Errorf("failed to marshal artifact: %w", err))
	}
	path := filepath.Join(outDir, models.SanitizeName(name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", apperrors.New(apperrors.ClassIO, component, "write_json",
			fmt.Errorf("failed to write artifact %s: %w", path, err))
	}
	return path, nil
}
