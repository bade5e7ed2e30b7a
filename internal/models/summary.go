package models

import "time"

// ChannelSummary holds the descriptive statistics for one channel.
// Available is false when the channel had zero valid values; in that case
// every numeric field is zero and must be rendered as "N/A" downstream
// rather than formatted as a number. Std is the sample standard deviation
// and is only meaningful when Count >= 2.
type ChannelSummary struct {
	Count     int     `json:"count"`
	Mean      float64 `json:"mean"`
	Std       float64 `json:"std"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	P25       float64 `json:"p25"`
	P50       float64 `json:"p50"`
	P75       float64 `json:"p75"`
	Range     float64 `json:"range"`
	Available bool    `json:"available"`
}

// SummaryTable maps channel name to its descriptive statistics. Every
// numeric channel of the source dataset has an entry, including channels
// with no valid values.
type SummaryTable map[string]ChannelSummary

// CorrelationMatrix is a symmetric pairwise Pearson correlation matrix over
// the numeric channels of a dataset. Values[i][j] is the coefficient between
// Channels[i] and Channels[j]; Defined[i][j] is false when the pair had
// fewer than two complete observations or a zero-variance side, in which
// case the value is 0 and must not be formatted as a coefficient.
type CorrelationMatrix struct {
	Channels []string    `json:"channels"`
	Values   [][]float64 `json:"values"`
	Defined  [][]bool    `json:"defined"`
}

// At returns the coefficient for the named channel pair and whether it is
// defined. Unknown channel names report an undefined entry.
func (m *CorrelationMatrix) At(a, b string) (float64, bool) {
	ai, bi := -1, -1
	for i, c := range m.Channels {
		if c == a {
			ai = i
		}
		if c == b {
			bi = i
		}
	}
	if ai < 0 || bi < 0 {
		return 0, false
	}
	if !m.Defined[ai][bi] {
		return 0, false
	}
	return m.Values[ai][bi], true
}

// OutlierPoint is one flagged anomalous reading: the original timestamp and
// the value that was flagged.
type OutlierPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// OutlierMap maps channel name to the flagged readings on that channel,
// ordered by original timestamp ascending. A channel that was examined but
// produced no flags maps to an empty slice, not a missing key.
type OutlierMap map[string][]OutlierPoint
