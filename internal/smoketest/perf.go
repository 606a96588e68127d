package smoketest

import (
	"time"

	"gestctl/internal/gestagent"
)

// DefaultProbeCount and DefaultProbeThreshold match the capture-screen probe.
const (
	DefaultProbeCount     = 5
	DefaultProbeThreshold = 2 * time.Second
)

// PerformanceProbe repeats one request sequentially and judges the mean
// latency. Calls never overlap: the probe measures single-client latency.
type PerformanceProbe struct {
	Request gestagent.Request
	// Count defaults to DefaultProbeCount
	Count int
	// Threshold is the exclusive upper bound on the mean, defaults to
	// DefaultProbeThreshold
	Threshold time.Duration
}

func (p PerformanceProbe) count() int {
	if p.Count <= 0 {
		return DefaultProbeCount
	}
	return p.Count
}

func (p PerformanceProbe) threshold() time.Duration {
	if p.Threshold <= 0 {
		return DefaultProbeThreshold
	}
	return p.Threshold
}

// PerformanceSample holds the elapsed times of a repeated request.
type PerformanceSample []time.Duration

// PerfStats summarises a sample in milliseconds.
type PerfStats struct {
	Count       int     `json:"count"`
	MeanMs      float64 `json:"mean_ms"`
	MinMs       float64 `json:"min_ms"`
	MaxMs       float64 `json:"max_ms"`
	ThresholdMs float64 `json:"threshold_ms"`
	Passed      bool    `json:"passed"`
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Stats computes mean, min and max. An empty sample never passes.
func (s PerformanceSample) Stats(threshold time.Duration) PerfStats {
	stats := PerfStats{Count: len(s), ThresholdMs: millis(threshold)}
	if len(s) == 0 {
		return stats
	}

	var total time.Duration
	minD, maxD := s[0], s[0]
	for _, d := range s {
		total += d
		if d < minD {
			minD = d
		}
		if d > maxD {
			maxD = d
		}
	}

	stats.MeanMs = millis(total) / float64(len(s))
	stats.MinMs = millis(minD)
	stats.MaxMs = millis(maxD)
	stats.Passed = stats.MeanMs < stats.ThresholdMs
	return stats
}
