package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressline/go-press-analytics/internal/models"
)

func datasetFrom(columns map[string][]float64) *models.Dataset {
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	n := 0
	for _, vs := range columns {
		if len(vs) > n {
			n = len(vs)
		}
	}
	ds := &models.Dataset{Columns: []string{"Timestamp"}}
	for name := range columns {
		ds.Columns = append(ds.Columns, name)
	}
	for i := 0; i < n; i++ {
		rec := models.Record{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Values:    make(map[string]float64),
		}
		for name, vs := range columns {
			if i < len(vs) {
				rec.Values[name] = vs[i]
			}
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds
}

func TestSummarize_BasicStatistics(t *testing.T) {
	ds := datasetFrom(map[string][]float64{
		"BILLET_TEMP": {10, 20, 30, 40, 50},
	})

	table := Summarize(ds)
	summary, ok := table["BILLET_TEMP"]
	require.True(t, ok)
	require.True(t, summary.Available)

	assert.Equal(t, 5, summary.Count)
	assert.InDelta(t, 30, summary.Mean, 1e-9)
	assert.InDelta(t, 10, summary.Min, 1e-9)
	assert.InDelta(t, 50, summary.Max, 1e-9)
	assert.InDelta(t, 40, summary.Range, 1e-9)
	assert.InDelta(t, 30, summary.P50, 1e-9)
	// Sample standard deviation of 10..50 step 10.
	assert.InDelta(t, 15.8113883, summary.Std, 1e-6)
}

func TestSummarize_EmptyChannelReportedUnavailable(t *testing.T) {
	ds := datasetFrom(map[string][]float64{"RAM_SPEED": {1, 2, 3}})
	ds.Schema = models.Schema{Channels: []models.ChannelSpec{
		{Name: "RAM_SPEED", Kind: models.ChannelNumeric},
		{Name: "BILLET_TEMP", Kind: models.ChannelNumeric},
	}}

	table := Summarize(ds)

	billet, ok := table["BILLET_TEMP"]
	require.True(t, ok, "declared channel with no data must still get an entry")
	assert.False(t, billet.Available)
	assert.True(t, table["RAM_SPEED"].Available)
}

func TestSummarize_SingleValue(t *testing.T) {
	ds := datasetFrom(map[string][]float64{"EXT_TIME": {42}})

	summary := Summarize(ds)["EXT_TIME"]
	require.True(t, summary.Available)
	assert.Equal(t, 1, summary.Count)
	assert.InDelta(t, 42, summary.Mean, 1e-9)
	assert.Zero(t, summary.Std)
	assert.Zero(t, summary.Range)
}

func TestCorrelate_SymmetricUnitDiagonal(t *testing.T) {
	ds := datasetFrom(map[string][]float64{
		"BILLET_TEMP":       {10, 20, 30, 40},
		"PROFILE_EXIT_TEMP": {12, 19, 33, 41},
		"RAM_SPEED":         {5, 4, 3, 2},
	})

	m := Correlate(ds)
	require.Len(t, m.Channels, 3)

	for i := range m.Channels {
		assert.True(t, m.Defined[i][i])
		assert.Equal(t, 1.0, m.Values[i][i])
		for j := range m.Channels {
			assert.Equal(t, m.Values[i][j], m.Values[j][i], "matrix must be symmetric")
			assert.Equal(t, m.Defined[i][j], m.Defined[j][i])
			if m.Defined[i][j] {
				assert.GreaterOrEqual(t, m.Values[i][j], -1.0)
				assert.LessOrEqual(t, m.Values[i][j], 1.0)
			}
		}
	}
}

func TestCorrelate_PerfectCorrelation(t *testing.T) {
	ds := datasetFrom(map[string][]float64{
		"A": {1, 2, 3, 4},
		"B": {2, 4, 6, 8},
		"C": {4, 3, 2, 1},
	})

	m := Correlate(ds)

	ab, ok := m.At("A", "B")
	require.True(t, ok)
	assert.InDelta(t, 1.0, ab, 1e-9)

	ac, ok := m.At("A", "C")
	require.True(t, ok)
	assert.InDelta(t, -1.0, ac, 1e-9)
}

func TestCorrelate_ZeroVarianceUndefined(t *testing.T) {
	ds := datasetFrom(map[string][]float64{
		"CONSTANT": {7, 7, 7, 7},
		"MOVING":   {1, 2, 3, 4},
	})

	m := Correlate(ds)

	_, ok := m.At("CONSTANT", "MOVING")
	assert.False(t, ok, "zero variance pair must be undefined, not NaN")

	// The diagonal stays defined even for a constant channel.
	cc, ok := m.At("CONSTANT", "CONSTANT")
	require.True(t, ok)
	assert.Equal(t, 1.0, cc)
}

func TestCorrelate_PairwiseCompleteObservations(t *testing.T) {
	// Channel B misses the last two rows; the A/B coefficient must use
	// only the complete observations instead of failing.
	ds := datasetFrom(map[string][]float64{
		"A": {1, 2, 3, 4, 5, 6},
		"B": {2, 4, 6, 8},
	})

	m := Correlate(ds)
	ab, ok := m.At("A", "B")
	require.True(t, ok)
	assert.InDelta(t, 1.0, ab, 1e-9)
}
