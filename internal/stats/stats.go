// Package stats computes descriptive statistics and pairwise correlations
// over the numeric channels of a dataset. A channel with zero valid values
// gets an explicit "not available" entry; NaN never leaks into downstream
// formatting.
package stats

import (
	"math"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/pressline/go-press-analytics/internal/models"
)

// Summarize computes count, mean, sample standard deviation, min, max,
// quartiles and range for every numeric channel of the dataset. Channels
// declared numeric in the schema but empty in the data are reported as
// unavailable rather than omitted.
func Summarize(ds *models.Dataset) models.SummaryTable {
	table := make(models.SummaryTable)

	channels := ds.NumericChannels()
	// Declared numeric channels with no data still get an entry.
	for _, name := range ds.Schema.NumericChannels() {
		if _, present := table[name]; !present && !contains(channels, name) {
			table[name] = models.ChannelSummary{Available: false}
		}
	}

	for _, name := range channels {
		values, _ := ds.Series(name)
		table[name] = summarizeChannel(values)
	}
	return table
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func summarizeChannel(values []float64) models.ChannelSummary {
	if len(values) == 0 {
		return models.ChannelSummary{Available: false}
	}

	data := mstats.Float64Data(values)
	mean, _ := mstats.Mean(data)
	min, _ := mstats.Min(data)
	max, _ := mstats.Max(data)
	p25 := percentileOr(data, 25, min)
	p50, err := mstats.Median(data)
	if err != nil {
		p50 = mean
	}
	p75 := percentileOr(data, 75, max)

	// Sample standard deviation needs at least two observations.
	var std float64
	if len(values) >= 2 {
		std, _ = mstats.StandardDeviationSample(data)
	}

	return models.ChannelSummary{
		Count:     len(values),
		Mean:      mean,
		Std:       std,
		Min:       min,
		Max:       max,
		P25:       p25,
		P50:       p50,
		P75:       p75,
		Range:     max - min,
		Available: true,
	}
}

func percentileOr(data mstats.Float64Data, percent, fallback float64) float64 {
	v, err := mstats.Percentile(data, percent)
	if err != nil || math.IsNaN(v) {
		return fallback
	}
	return v
}

// Correlate computes the full pairwise Pearson correlation matrix over the
// numeric channels of the dataset. Only records where both channels carry a
// value contribute to a pair. The diagonal is 1.0 by construction and the
// matrix is symmetric; pairs with fewer than two complete observations or a
// zero-variance side are marked undefined instead of carrying NaN.
func Correlate(ds *models.Dataset) *models.CorrelationMatrix {
	channels := ds.NumericChannels()
	n := len(channels)

	m := &models.CorrelationMatrix{
		Channels: channels,
		Values:   make([][]float64, n),
		Defined:  make([][]bool, n),
	}
	for i := range m.Values {
		m.Values[i] = make([]float64, n)
		m.Defined[i] = make([]bool, n)
	}

	for i := 0; i < n; i++ {
		m.Values[i][i] = 1.0
		m.Defined[i][i] = true
		for j := i + 1; j < n; j++ {
			r, ok := pearson(ds, channels[i], channels[j])
			m.Values[i][j], m.Values[j][i] = r, r
			m.Defined[i][j], m.Defined[j][i] = ok, ok
		}
	}
	return m
}

// pearson computes the correlation between two channels over their complete
// observations.
func pearson(ds *models.Dataset, a, b string) (float64, bool) {
	var xs, ys []float64
	for _, rec := range ds.Records {
		av, aok := rec.Values[a]
		bv, bok := rec.Values[b]
		if aok && bok {
			xs = append(xs, av)
			ys = append(ys, bv)
		}
	}
	if len(xs) < 2 {
		return 0, false
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	// Guard against floating point drift outside [-1, 1].
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r, true
}
