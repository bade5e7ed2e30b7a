package exporter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressline/go-press-analytics/internal/models"
)

func testGroup(t *testing.T) models.Group {
	t.Helper()
	ts := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	ds := &models.Dataset{
		Columns: []string{"Timestamp", "BILLET_TEMP", "DATE_ID", "PROFILE"},
		Records: []models.Record{
			{Timestamp: ts, Raw: []string{"2024-01-01 08:00", "480.5", "20240101", "PUA/40"}},
			{Timestamp: ts.Add(time.Hour), Raw: []string{"2024-01-01 09:00", "495.0", "20240101", "PUA/40"}},
		},
	}
	return models.Group{
		Key:  models.OperationalDayKey{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		Data: ds,
	}
}

func TestWriteGroups_OneDirectoryPerGroup(t *testing.T) {
	outDir := t.TempDir()
	group := testGroup(t)

	paths, err := WriteGroups([]models.Group{group}, outDir, Options{})
	require.NoError(t, err)
	require.Len(t, paths, 1)

	expected := filepath.Join(outDir, "2024-01-01", "2024-01-01.csv")
	assert.Equal(t, expected, paths[0])

	f, err := os.Open(expected)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Timestamp", "BILLET_TEMP", "DATE_ID", "PROFILE"}, rows[0])
	assert.Equal(t, "480.5", rows[1][1])
}

func TestWriteGroups_ExcludesBookkeepingColumns(t *testing.T) {
	outDir := t.TempDir()
	group := testGroup(t)

	paths, err := WriteGroups([]models.Group{group}, outDir, Options{
		ExcludeColumns: []string{"DATE_ID"},
	})
	require.NoError(t, err)

	f, err := os.Open(paths[0])
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"Timestamp", "BILLET_TEMP", "PROFILE"}, rows[0])
	for _, row := range rows[1:] {
		assert.Len(t, row, 3)
		assert.NotContains(t, row, "20240101")
	}
}

func TestWriteGroups_SanitizesKeyInPath(t *testing.T) {
	outDir := t.TempDir()
	group := testGroup(t)
	group.Key = models.ProfileDateKey{
		Profile: "PUA/40",
		Date:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	paths, err := WriteGroups([]models.Group{group}, outDir, Options{})
	require.NoError(t, err)
	require.Len(t, paths, 1)

	assert.False(t, strings.Contains(filepath.Base(paths[0]), "/"))
	assert.Contains(t, paths[0], "PUA_40_2024-01-01")
}

func TestWriteKeyNotes(t *testing.T) {
	outDir := t.TempDir()
	group := testGroup(t)

	path, err := WriteKeyNotes([]models.Group{group}, outDir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Group: 2024-01-01, Number of records: 2")
}

func TestWriteJSON(t *testing.T) {
	outDir := t.TempDir()

	path, err := WriteJSON(map[string]int{"rows": 42}, outDir, "analysis_run.json")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"rows": 42`)
}
