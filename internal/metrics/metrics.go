// Package metrics provides lightweight in-process counters and gauges for
// the batch analytics pipeline. There is no metrics server: the counters
// feed run results and structured logs, and a snapshot can be read at any
// point for diagnostics.
package metrics

import (
	"sync"
	"time"
)

// Registry collects named counters and run durations.
type Registry struct {
	mu        sync.RWMutex
	counters  map[string]int64
	durations map[string][]time.Duration
	startTime time.Time
}

// NewRegistry creates an empty metrics registry.
func NewRegistry() *Registry {
	return &Registry{
		counters:  make(map[string]int64),
		durations: make(map[string][]time.Duration),
		startTime: time.Now(),
	}
}

// Inc adds delta to the named counter.
func (r *Registry) Inc(name string, delta int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[name] += delta
}

// Observe records one duration sample for the named operation.
func (r *Registry) Observe(name string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.durations[name] = append(r.durations[name], d)
}

// Counter returns the current value of the named counter.
func (r *Registry) Counter(name string) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counters[name]
}

// Snapshot is a point-in-time copy of all collected metrics.
type Snapshot struct {
	Uptime    time.Duration            `json:"uptime"`
	Counters  map[string]int64         `json:"counters"`
	Durations map[string]DurationStats `json:"durations"`
}

// DurationStats summarizes the duration samples for one operation.
type DurationStats struct {
	Count int           `json:"count"`
	Total time.Duration `json:"total"`
	Mean  time.Duration `json:"mean"`
	Max   time.Duration `json:"max"`
}

// Snapshot returns a copy of the current metric values.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := Snapshot{
		Uptime:    time.Since(r.startTime),
		Counters:  make(map[string]int64, len(r.counters)),
		Durations: make(map[string]DurationStats, len(r.durations)),
	}
	for k, v := range r.counters {
		snap.Counters[k] = v
	}
	for k, samples := range r.durations {
		if len(samples) == 0 {
			continue
		}
		var total, max time.Duration
		for _, d := range samples {
			total += d
			if d > max {
				max = d
			}
		}
		snap.Durations[k] = DurationStats{
			Count: len(samples),
			Total: total,
			Mean:  total / time.Duration(len(samples)),
			Max:   max,
		}
	}
	return snap
}
