package outliers

import (
	"math"

	"github.com/pressline/go-press-analytics/internal/models"
)

// DefaultZScoreThreshold is the |z| cutoff above which a reading is flagged.
const DefaultZScoreThreshold = 3.0

// minVariance guards the z-score division: channels whose population
// standard deviation falls below this are treated as constant and produce
// no flags instead of dividing by zero.
const minVariance = 1e-12

// ZScoreDetector flags readings whose absolute z-score exceeds Threshold.
// Z-scores use the population standard deviation over the channel's valid
// values.
type ZScoreDetector struct {
	Threshold float64
}

// NewZScoreDetector creates a z-score detector. A non-positive threshold
// falls back to the default of 3.0.
func NewZScoreDetector(threshold float64) *ZScoreDetector {
	if threshold <= 0 {
		threshold = DefaultZScoreThreshold
	}
	return &ZScoreDetector{Threshold: threshold}
}

// Name implements Detector.
func (d *ZScoreDetector) Name() string { return "zscore" }

// Detect implements Detector.
func (d *ZScoreDetector) Detect(ds *models.Dataset) models.OutlierMap {
	out := make(models.OutlierMap)
	for _, channel := range ds.NumericChannels() {
		values, times := ds.Series(channel)
		flagged := make([]models.OutlierPoint, 0)

		mean, std := meanStdPopulation(values)
		if std >= minVariance {
			for i, v := range values {
				if math.Abs((v-mean)/std) > d.Threshold {
					flagged = append(flagged, models.OutlierPoint{
						Timestamp: times[i],
						Value:     v,
					})
				}
			}
		}
		out[channel] = flagged
	}
	return out
}

func meanStdPopulation(values []float64) (mean, std float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= n

	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return mean, math.Sqrt(sumSq / n)
}
