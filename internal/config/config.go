// Package config provides centralized configuration for the analytics
// pipeline. Configuration is loaded in priority order: defaults, then an
// optional JSON file, then environment variable overrides, and validated
// before use.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// AppConfig is the complete application configuration.
type AppConfig struct {
	AppName string `json:"app_name" env:"APP_NAME"`
	Version string `json:"version" env:"VERSION"`

	Loader    LoaderConfig    `json:"loader"`
	Cleaner   CleanerConfig   `json:"cleaner"`
	Partition PartitionConfig `json:"partition"`
	Outliers  OutlierConfig   `json:"outliers"`
	Export    ExportConfig    `json:"export"`
	Logging   LoggingConfig   `json:"logging"`
}

// LoaderConfig configures CSV ingestion.
type LoaderConfig struct {
	TimestampColumns []string `json:"timestamp_columns" env:"TIMESTAMP_COLUMNS"` // Header names accepted as the timestamp column
	TimestampLayout  string   `json:"timestamp_layout" env:"TIMESTAMP_LAYOUT"`   // Declared Go time layout; empty requires DetectFormats
	DetectFormats    bool     `json:"detect_formats" env:"DETECT_FORMATS"`       // Opt-in multi-format timestamp detection
	RetryAttempts    int      `json:"retry_attempts" env:"LOADER_RETRY_ATTEMPTS"` // Read retries for transient I/O failures
}

// CleanerConfig configures the data cleaning steps. Each step is
// independently toggleable.
type CleanerConfig struct {
	Coerce          bool `json:"coerce" env:"CLEAN_COERCE"`           // Numeric type coercion
	Interpolate     bool `json:"interpolate" env:"CLEAN_INTERPOLATE"` // Linear gap filling
	Smooth          bool `json:"smooth" env:"CLEAN_SMOOTH"`           // Centered moving average
	SmoothingWindow int  `json:"smoothing_window" env:"SMOOTHING_WINDOW"`
}

// PartitionConfig configures time partitioning.
type PartitionConfig struct {
	Policy string `json:"policy" env:"PARTITION_POLICY"` // "operational-day", "iso-week", "profile-date"
}

// OutlierConfig configures outlier detection. Detector is "zscore" or
// "iforest"; the seed is fixed so repeated runs flag the same readings.
type OutlierConfig struct {
	Detector        string  `json:"detector" env:"OUTLIER_DETECTOR"`
	ZScoreThreshold float64 `json:"zscore_threshold" env:"ZSCORE_THRESHOLD"`
	Contamination   float64 `json:"contamination" env:"CONTAMINATION"`
	Seed            int64   `json:"seed" env:"OUTLIER_SEED"`
}

// ExportConfig configures per-group artifact output.
type ExportConfig struct {
	OutputDir      string   `json:"output_dir" env:"OUTPUT_DIR"`
	ExcludeColumns []string `json:"exclude_columns"` // Bookkeeping columns dropped from exported files
	WriteKeyNotes  bool     `json:"write_key_notes" env:"WRITE_KEY_NOTES"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level      string `json:"level" env:"LOG_LEVEL"`   // debug, info, warn, error
	Format     string `json:"format" env:"LOG_FORMAT"` // json, text
	Output     string `json:"output" env:"LOG_OUTPUT"` // stdout, stderr, file
	FilePath   string `json:"file_path" env:"LOG_FILE_PATH"`
	MaxSize    int    `json:"max_size" env:"LOG_MAX_SIZE"` // MB per rotated file
	MaxBackups int    `json:"max_backups" env:"LOG_MAX_BACKUPS"`
	MaxAge     int    `json:"max_age" env:"LOG_MAX_AGE"` // days
	Compress   bool   `json:"compress" env:"LOG_COMPRESS"`
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		AppName: "pressalyze",
		Version: "1.0.0",
		Loader: LoaderConfig{
			TimestampColumns: []string{"timestamp", "Timestamp", "Date"},
			DetectFormats:    true,
			RetryAttempts:    3,
		},
		Cleaner: CleanerConfig{
			Coerce:          true,
			Interpolate:     true,
			Smooth:          false,
			SmoothingWindow: 5,
		},
		Partition: PartitionConfig{
			Policy: "operational-day",
		},
		Outliers: OutlierConfig{
			Detector:        "zscore",
			ZScoreThreshold: 3.0,
			Contamination:   0.01,
			Seed:            42,
		},
		Export: ExportConfig{
			OutputDir:      "analysis_output",
			ExcludeColumns: []string{"DATE_ID", "DEAD_CYCLE_TIME"},
			WriteKeyNotes:  true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stderr",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		},
	}
}

// Load builds the configuration from defaults, an optional JSON file and
// environment overrides, then validates it. An empty path skips file
// loading; a path that does not exist is not an error.
func Load(path string) (*AppConfig, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func loadFromFile(cfg *AppConfig, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func loadFromEnv(cfg *AppConfig) {
	if val := os.Getenv("APP_NAME"); val != "" {
		cfg.AppName = val
	}
	if val := os.Getenv("TIMESTAMP_LAYOUT"); val != "" {
		cfg.Loader.TimestampLayout = val
	}
	if val := os.Getenv("DETECT_FORMATS"); val != "" {
		cfg.Loader.DetectFormats = val == "true"
	}
	if val := os.Getenv("SMOOTHING_WINDOW"); val != "" {
		if window, err := strconv.Atoi(val); err == nil {
			cfg.Cleaner.SmoothingWindow = window
		}
	}
	if val := os.Getenv("PARTITION_POLICY"); val != "" {
		cfg.Partition.Policy = val
	}
	if val := os.Getenv("OUTLIER_DETECTOR"); val != "" {
		cfg.Outliers.Detector = val
	}
	if val := os.Getenv("ZSCORE_THRESHOLD"); val != "" {
		if threshold, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Outliers.ZScoreThreshold = threshold
		}
	}
	if val := os.Getenv("CONTAMINATION"); val != "" {
		if rate, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Outliers.Contamination = rate
		}
	}
	if val := os.Getenv("OUTLIER_SEED"); val != "" {
		if seed, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Outliers.Seed = seed
		}
	}
	if val := os.Getenv("OUTPUT_DIR"); val != "" {
		cfg.Export.OutputDir = val
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
	if val := os.Getenv("LOG_OUTPUT"); val != "" {
		cfg.Logging.Output = val
	}
	if val := os.Getenv("LOG_FILE_PATH"); val != "" {
		cfg.Logging.FilePath = val
	}
}

// Validate checks the configuration for inconsistent or out-of-range values.
func (c *AppConfig) Validate() error {
	if len(c.Loader.TimestampColumns) == 0 {
		return fmt.Errorf("loader: at least one timestamp column candidate is required")
	}
	if c.Loader.TimestampLayout == "" && !c.Loader.DetectFormats {
		return fmt.Errorf("loader: a timestamp layout must be declared unless format detection is enabled")
	}
	if c.Loader.RetryAttempts < 0 {
		return fmt.Errorf("loader: retry attempts cannot be negative")
	}
	if c.Cleaner.SmoothingWindow < 1 {
		return fmt.Errorf("cleaner: smoothing window must be at least 1, got %d", c.Cleaner.SmoothingWindow)
	}
	switch c.Partition.Policy {
	case "operational-day", "iso-week", "profile-date":
	default:
		return fmt.Errorf("partition: unknown policy %q", c.Partition.Policy)
	}
	switch c.Outliers.Detector {
	case "zscore", "iforest":
	default:
		return fmt.Errorf("outliers: unknown detector %q", c.Outliers.Detector)
	}
	if c.Outliers.ZScoreThreshold <= 0 {
		return fmt.Errorf("outliers: z-score threshold must be positive, got %v", c.Outliers.ZScoreThreshold)
	}
	if c.Outliers.Contamination <= 0 || c.Outliers.Contamination >= 0.5 {
		return fmt.Errorf("outliers: contamination must be in (0, 0.5), got %v", c.Outliers.Contamination)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging: unknown level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging: unknown format %q", c.Logging.Format)
	}
	if c.Logging.Output == "file" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging: file output requires a file path")
	}
	return nil
}
