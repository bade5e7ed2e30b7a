package outliers

import (
	"math"
	"math/rand"
	"sort"

	"github.com/pressline/go-press-analytics/internal/models"
)

// Isolation forest defaults. The seed is fixed so repeated runs over the
// same file flag the same readings.
const (
	DefaultContamination = 0.01
	DefaultSeed          = 42
	defaultTreeCount     = 100
	defaultSampleSize    = 256
)

// IsolationForestDetector fits a single-feature isolation forest per
// channel and flags the contamination fraction with the highest anomaly
// scores.
type IsolationForestDetector struct {
	Contamination float64
	Seed          int64
	Trees         int
	SampleSize    int
}

// NewIsolationForestDetector creates an isolation forest detector with the
// given contamination rate and seed. Non-positive arguments fall back to
// the defaults (1% contamination, seed 42).
func NewIsolationForestDetector(contamination float64, seed int64) *IsolationForestDetector {
	if contamination <= 0 {
		contamination = DefaultContamination
	}
	if seed <= 0 {
		seed = DefaultSeed
	}
	return &IsolationForestDetector{
		Contamination: contamination,
		Seed:          seed,
		Trees:         defaultTreeCount,
		SampleSize:    defaultSampleSize,
	}
}

// Name implements Detector.
func (d *IsolationForestDetector) Name() string { return "iforest" }

// Detect implements Detector. Each channel gets its own forest seeded from
// the detector's fixed seed, so results are deterministic across runs.
func (d *IsolationForestDetector) Detect(ds *models.Dataset) models.OutlierMap {
	out := make(models.OutlierMap)
	for _, channel := range ds.NumericChannels() {
		values, times := ds.Series(channel)
		flagged := make([]models.OutlierPoint, 0)

		k := int(d.Contamination * float64(len(values)))
		if k > 0 && len(values) >= 2 {
			scores := d.score(values)
			for _, idx := range topIndexes(scores, k) {
				flagged = append(flagged, models.OutlierPoint{
					Timestamp: times[idx],
					Value:     values[idx],
				})
			}
			sort.SliceStable(flagged, func(i, j int) bool {
				return flagged[i].Timestamp.Before(flagged[j].Timestamp)
			})
		}
		out[channel] = flagged
	}
	return out
}

// score builds the forest over a subsample of values and returns each
// value's anomaly score in [0, 1].
func (d *IsolationForestDetector) score(values []float64) []float64 {
	rng := rand.New(rand.NewSource(d.Seed))

	trees := d.Trees
	if trees <= 0 {
		trees = defaultTreeCount
	}
	sampleSize := d.SampleSize
	if sampleSize <= 0 {
		sampleSize = defaultSampleSize
	}
	if sampleSize > len(values) {
		sampleSize = len(values)
	}
	maxDepth := int(math.Ceil(math.Log2(float64(sampleSize))))

	forest := make([]*isoNode, trees)
	for t := 0; t < trees; t++ {
		sample := make([]float64, sampleSize)
		for i := range sample {
			sample[i] = values[rng.Intn(len(values))]
		}
		forest[t] = buildTree(sample, 0, maxDepth, rng)
	}

	norm := avgPathLength(sampleSize)
	scores := make([]float64, len(values))
	for i, v := range values {
		var sum float64
		for _, root := range forest {
			sum += pathLength(root, v, 0)
		}
		mean := sum / float64(trees)
		scores[i] = math.Pow(2, -mean/norm)
	}
	return scores
}

// isoNode is one node of an isolation tree over a single feature.
type isoNode struct {
	split       float64
	left, right *isoNode
	size        int
}

func buildTree(sample []float64, depth, maxDepth int, rng *rand.Rand) *isoNode {
	if len(sample) <= 1 || depth >= maxDepth {
		return &isoNode{size: len(sample)}
	}
	min, max := sample[0], sample[0]
	for _, v := range sample[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min == max {
		return &isoNode{size: len(sample)}
	}

	split := min + rng.Float64()*(max-min)
	var left, right []float64
	for _, v := range sample {
		if v < split {
			left = append(left, v)
		} else {
			right = append(right, v)
		}
	}
	return &isoNode{
		split: split,
		left:  buildTree(left, depth+1, maxDepth, rng),
		right: buildTree(right, depth+1, maxDepth, rng),
		size:  len(sample),
	}
}

func pathLength(node *isoNode, v float64, depth int) float64 {
	if node.left == nil {
		return float64(depth) + avgPathLength(node.size)
	}
	if v < node.split {
		return pathLength(node.left, v, depth+1)
	}
	return pathLength(node.right, v, depth+1)
}

// avgPathLength is c(n), the average path length of an unsuccessful BST
// search over n points, used to normalize isolation depths.
func avgPathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	fn := float64(n)
	return 2*(math.Log(fn-1)+0.5772156649) - 2*(fn-1)/fn
}

// topIndexes returns the indexes of the k highest scores, ties broken by
// original position for determinism.
func topIndexes(scores []float64, k int) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})
	if k > len(idx) {
		k = len(idx)
	}
	top := append([]int(nil), idx[:k]...)
	sort.Ints(top)
	return top
}
