package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "operational-day", cfg.Partition.Policy)
	assert.Equal(t, "zscore", cfg.Outliers.Detector)
	assert.Equal(t, 3.0, cfg.Outliers.ZScoreThreshold)
	assert.Equal(t, 0.01, cfg.Outliers.Contamination)
	assert.Equal(t, int64(42), cfg.Outliers.Seed)
	assert.Equal(t, 5, cfg.Cleaner.SmoothingWindow)
	assert.Contains(t, cfg.Loader.TimestampColumns, "Date")
	assert.Contains(t, cfg.Export.ExcludeColumns, "DATE_ID")
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"partition": {"policy": "iso-week"},
		"outliers": {"detector": "iforest", "zscore_threshold": 2.5, "contamination": 0.02, "seed": 7},
		"cleaner": {"coerce": true, "interpolate": true, "smooth": true, "smoothing_window": 9}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "iso-week", cfg.Partition.Policy)
	assert.Equal(t, "iforest", cfg.Outliers.Detector)
	assert.Equal(t, 0.02, cfg.Outliers.Contamination)
	assert.Equal(t, 9, cfg.Cleaner.SmoothingWindow)
	// Untouched sections keep their defaults.
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Partition.Policy, cfg.Partition.Policy)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PARTITION_POLICY", "profile-date")
	t.Setenv("ZSCORE_THRESHOLD", "2.0")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "profile-date", cfg.Partition.Policy)
	assert.Equal(t, 2.0, cfg.Outliers.ZScoreThreshold)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{
			name:   "unknown_policy",
			mutate: func(c *AppConfig) { c.Partition.Policy = "hourly" },
		},
		{
			name:   "unknown_detector",
			mutate: func(c *AppConfig) { c.Outliers.Detector = "dbscan" },
		},
		{
			name:   "negative_threshold",
			mutate: func(c *AppConfig) { c.Outliers.ZScoreThreshold = -1 },
		},
		{
			name:   "contamination_out_of_range",
			mutate: func(c *AppConfig) { c.Outliers.Contamination = 0.9 },
		},
		{
			name:   "zero_smoothing_window",
			mutate: func(c *AppConfig) { c.Cleaner.SmoothingWindow = 0 },
		},
		{
			name:   "no_timestamp_candidates",
			mutate: func(c *AppConfig) { c.Loader.TimestampColumns = nil },
		},
		{
			name: "no_layout_no_detection",
			mutate: func(c *AppConfig) {
				c.Loader.TimestampLayout = ""
				c.Loader.DetectFormats = false
			},
		},
		{
			name: "file_output_without_path",
			mutate: func(c *AppConfig) {
				c.Logging.Output = "file"
				c.Logging.FilePath = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
