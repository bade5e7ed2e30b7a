package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "alphanumeric_unchanged",
			input:    "P7-profile_2024.01",
			expected: "P7-profile_2024.01",
		},
		{
			name:     "slashes_replaced",
			input:    "PUA/40x20",
			expected: "PUA_40x20",
		},
		{
			name:     "spaces_and_colons_replaced",
			input:    "profile A: test",
			expected: "profile_A__test",
		},
		{
			name:     "empty_string",
			input:    "",
			expected: "",
		},
		{
			name:     "unicode_replaced",
			input:    "tempé",
			expected: "temp_",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeName(tt.input))
		})
	}
}

func TestOperationalDayKey_Span(t *testing.T) {
	key := OperationalDayKey{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	start, end := key.Span()
	assert.Equal(t, time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 1, 2, 7, 0, 0, 0, time.UTC), end)
	assert.Equal(t, "2024-01-01", key.String())
}

func TestISOWeekKey_String(t *testing.T) {
	assert.Equal(t, "2024-W05", ISOWeekKey{Year: 2024, Week: 5}.String())
	assert.Equal(t, "2023-W52", ISOWeekKey{Year: 2023, Week: 52}.String())
}

func TestProfileDateKey_Sanitized(t *testing.T) {
	key := ProfileDateKey{
		Profile: "PUA/40",
		Date:    time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, "PUA/40_2024-03-15", key.String())
	assert.Equal(t, "PUA_40_2024-03-15", key.Sanitized())
}

func TestDataset_Series(t *testing.T) {
	ds := &Dataset{
		Columns: []string{"Timestamp", "BILLET_TEMP"},
		Records: []Record{
			{Timestamp: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), Values: map[string]float64{"BILLET_TEMP": 480}},
			{Timestamp: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), Values: map[string]float64{}},
			{Timestamp: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), Values: map[string]float64{"BILLET_TEMP": 510}},
		},
	}

	values, times := ds.Series("BILLET_TEMP")
	assert.Equal(t, []float64{480, 510}, values)
	assert.Len(t, times, 2)
	assert.Equal(t, 8, times[0].Hour())
	assert.Equal(t, 10, times[1].Hour())
}

func TestDataset_CloneIsDeep(t *testing.T) {
	ds := &Dataset{
		Columns: []string{"Timestamp", "RAM_SPEED"},
		Records: []Record{
			{Timestamp: time.Now(), Values: map[string]float64{"RAM_SPEED": 5.5}, Raw: []string{"x", "5.5"}},
		},
	}

	clone := ds.Clone()
	clone.Records[0].Values["RAM_SPEED"] = 9.9
	clone.Records[0].Raw[1] = "9.9"

	assert.Equal(t, 5.5, ds.Records[0].Values["RAM_SPEED"])
	assert.Equal(t, "5.5", ds.Records[0].Raw[1])
}
