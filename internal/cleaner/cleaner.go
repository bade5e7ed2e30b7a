// Package cleaner prepares a loaded dataset for analysis: numeric type
// coercion, linear interpolation of missing values, and optional rolling
// mean smoothing. Every step preserves row count, row order and timestamps;
// each returns a new dataset and leaves its input untouched.
package cleaner

import (
	"math"
	"strconv"
	"strings"

	"github.com/pressline/go-press-analytics/internal/models"
)

// Options toggles the individual cleaning steps.
type Options struct {
	// Coerce attempts numeric parsing on every column that is not the
	// timestamp. Columns where no cell parses stay categorical; the
	// failed coercion is a no-op, never an error.
	Coerce bool
	// Interpolate fills missing numeric values by linear interpolation
	// between the nearest valid neighbors in timestamp order. Leading
	// and trailing gaps take the nearest available value; there is no
	// extrapolation beyond the data's own range.
	Interpolate bool
	// Smooth applies a centered moving average to all numeric channels.
	Smooth bool
	// Window is the smoothing window in samples (default 5). The window
	// shrinks near the boundaries (minimum 1) so no samples are dropped.
	Window int
}

// DefaultOptions returns the cleaning configuration used by the standard
// pipeline: coercion and interpolation on, smoothing off.
func DefaultOptions() Options {
	return Options{Coerce: true, Interpolate: true, Smooth: false, Window: 5}
}

// Clean applies the enabled steps in order (coerce, interpolate, smooth)
// and returns a new dataset with the same row count and schema.
func Clean(ds *models.Dataset, opts Options) *models.Dataset {
	out := ds.Clone()
	if opts.Coerce {
		coerce(out)
	}
	if opts.Interpolate {
		interpolate(out)
	}
	if opts.Smooth {
		window := opts.Window
		if window < 1 {
			window = 5
		}
		smooth(out, window)
	}
	return out
}

// coerce fills Record.Values from the raw cells. A column is treated as
// numeric when at least one of its cells parses as a float; unparseable
// cells within a numeric column become missing values. Columns where no
// cell parses are left categorical.
func coerce(ds *models.Dataset) {
	for colIdx, name := range ds.Columns {
		if ds.Schema.IsNumeric(name) {
			coerceColumn(ds, colIdx, name)
			continue
		}
		if c, declared := ds.Schema.Channel(name); declared && c.Kind == models.ChannelCategorical {
			continue
		}
		// Undeclared column: infer from the cells.
		if columnHasNumeric(ds, colIdx) {
			coerceColumn(ds, colIdx, name)
		}
	}
}

func columnHasNumeric(ds *models.Dataset, colIdx int) bool {
	for _, rec := range ds.Records {
		if colIdx >= len(rec.Raw) {
			continue
		}
		if _, ok := parseNumeric(strings.TrimSpace(rec.Raw[colIdx])); ok {
			return true
		}
	}
	return false
}

func coerceColumn(ds *models.Dataset, colIdx int, name string) {
	for i := range ds.Records {
		rec := &ds.Records[i]
		if colIdx >= len(rec.Raw) {
			continue
		}
		cell := strings.TrimSpace(rec.Raw[colIdx])
		if cell == "" {
			continue
		}
		if v, ok := parseNumeric(cell); ok {
			rec.Values[name] = v
		}
	}
}

// parseNumeric parses a cell as a finite float. strconv accepts the textual
// forms "NaN" and "Inf", but a sensor log cell carrying them is a missing
// reading, not a value; storing them would poison every downstream mean.
func parseNumeric(cell string) (float64, bool) {
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// interpolate linearly fills gaps on every channel that carries at least
// one value. Interior gaps are interpolated positionally between the
// nearest valid neighbors; boundary gaps copy the nearest valid value.
// Running it on gap-free data changes nothing.
func interpolate(ds *models.Dataset) {
	n := len(ds.Records)
	if n == 0 {
		return
	}
	for _, channel := range ds.NumericChannels() {
		// Indexes of records that carry a value on this channel.
		valid := make([]int, 0, n)
		for i := range ds.Records {
			if _, ok := ds.Records[i].Values[channel]; ok {
				valid = append(valid, i)
			}
		}
		if len(valid) == 0 || len(valid) == n {
			continue
		}

		// Leading and trailing gaps take the nearest available value.
		first, last := valid[0], valid[len(valid)-1]
		for i := 0; i < first; i++ {
			ds.Records[i].Values[channel] = ds.Records[first].Values[channel]
		}
		for i := last + 1; i < n; i++ {
			ds.Records[i].Values[channel] = ds.Records[last].Values[channel]
		}

		// Interior gaps interpolate between surrounding valid samples.
		for vi := 0; vi+1 < len(valid); vi++ {
			lo, hi := valid[vi], valid[vi+1]
			if hi == lo+1 {
				continue
			}
			loVal := ds.Records[lo].Values[channel]
			hiVal := ds.Records[hi].Values[channel]
			span := float64(hi - lo)
			for i := lo + 1; i < hi; i++ {
				frac := float64(i-lo) / span
				ds.Records[i].Values[channel] = loVal + (hiVal-loVal)*frac
			}
		}
	}
}

// smooth replaces every numeric value with the centered moving average over
// the given window. Near the boundaries the window shrinks to whatever
// samples exist so the output length equals the input length.
func smooth(ds *models.Dataset, window int) {
	n := len(ds.Records)
	if n == 0 {
		return
	}
	half := window / 2
	for _, channel := range ds.NumericChannels() {
		smoothed := make(map[int]float64, n)
		for i := range ds.Records {
			lo := i - half
			if lo < 0 {
				lo = 0
			}
			hi := i + half
			if window%2 == 0 {
				// Even windows lean left, matching a centered
				// rolling window over discrete samples.
				hi = i + half - 1
			}
			if hi > n-1 {
				hi = n - 1
			}
			var sum float64
			var count int
			for j := lo; j <= hi; j++ {
				if v, ok := ds.Records[j].Values[channel]; ok {
					sum += v
					count++
				}
			}
			if count > 0 {
				smoothed[i] = sum / float64(count)
			}
		}
		for i, v := range smoothed {
			ds.Records[i].Values[channel] = v
		}
	}
}
