package build

import (
	"sync"
	"time"
)

// MetricsSnapshot is a point-in-time copy of BuildMetrics.
type MetricsSnapshot struct {
	TotalPages      int64
	SuccessfulPages int64
	FailedPages     int64
	AverageDuration time.Duration
	TotalDuration   time.Duration
}

// BuildMetrics tracks page build performance across builds.
type BuildMetrics struct {
	MetricsSnapshot
	mutex sync.RWMutex
}

// NewBuildMetrics creates a new build metrics tracker
func NewBuildMetrics() *BuildMetrics {
	return &BuildMetrics{}
}

// RecordPage records one page build.
func (bm *BuildMetrics) RecordPage(duration time.Duration, err error) {
	bm.mutex.Lock()
	defer bm.mutex.Unlock()

	bm.TotalPages++
	bm.TotalDuration += duration

	if err != nil {
		bm.FailedPages++
	} else {
		bm.SuccessfulPages++
	}

	bm.AverageDuration = bm.TotalDuration / time.Duration(bm.TotalPages)
}

// GetSnapshot returns a snapshot of current metrics
func (bm *BuildMetrics) GetSnapshot() MetricsSnapshot {
	bm.mutex.RLock()
	defer bm.mutex.RUnlock()
	return bm.MetricsSnapshot
}

// Reset resets all metrics
func (bm *BuildMetrics) Reset() {
	bm.mutex.Lock()
	defer bm.mutex.Unlock()

	bm.MetricsSnapshot = MetricsSnapshot{}
}

// GetSuccessRate returns the success rate as a percentage
func (bm *BuildMetrics) GetSuccessRate() float64 {
	bm.mutex.RLock()
	defer bm.mutex.RUnlock()

	if bm.TotalPages == 0 {
		return 0.0
	}

	return float64(bm.SuccessfulPages) / float64(bm.TotalPages) * 100.0
}
