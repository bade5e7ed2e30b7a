// Package outliers flags anomalous sensor readings per channel. Two
// interchangeable strategies share one output shape: a simple z-score
// threshold and a per-channel isolation forest with a fixed contamination
// rate. Either way the result maps every examined channel to its flagged
// readings in original timestamp order; a channel with no flags maps to an
// empty slice.
package outliers

import (
	"github.com/pressline/go-press-analytics/internal/models"
)

// Detector is one outlier detection strategy over a dataset.
type Detector interface {
	// Name identifies the strategy for logs and result artifacts.
	Name() string
	// Detect examines every numeric channel independently and returns
	// the flagged readings per channel.
	Detect(ds *models.Dataset) models.OutlierMap
}
