package catalog

import (
	"log/slog"
	"sync"
	"time"
)

// ProgressTracker counts completed items and reports every interval.
type ProgressTracker struct {
	logger         *slog.Logger
	notify         ProgressFunc
	total          int
	current        int
	reportInterval int
	lastReported   int
	startTime      time.Time
	mu             sync.Mutex
}

// NewProgressTracker creates a new progress tracker.
// total: total number of items to process
// reportInterval: report progress every N items
func NewProgressTracker(logger *slog.Logger, notify ProgressFunc, total, reportInterval int) *ProgressTracker {
	if reportInterval <= 0 {
		reportInterval = DefaultReportInterval
	}
	return &ProgressTracker{
		logger:         logger,
		notify:         notify,
		total:          total,
		reportInterval: reportInterval,
		startTime:      time.Now(),
	}
}

// Increment increases the current progress by the specified amount.
func (p *ProgressTracker) Increment(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current += delta
	if p.current > p.total {
		p.current = p.total
	}

	// Report if we've crossed a report interval
	if p.current-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = p.current
	}
}

// Finish reports the final count if it was not just reported.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != p.lastReported {
		p.report()
		p.lastReported = p.current
	}
}

// Current returns the number of items counted so far.
func (p *ProgressTracker) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Elapsed returns the time elapsed since the tracker was created.
func (p *ProgressTracker) Elapsed() time.Duration {
	return time.Since(p.startTime)
}

// report must be called with lock held.
func (p *ProgressTracker) report() {
	elapsed := time.Since(p.startTime)
	rate := 0.0
	if elapsed > 0 {
		rate = float64(p.current) / elapsed.Seconds()
	}
	p.logger.Info("vectorize progress", "done", p.current, "total", p.total,
		"rate", float32(rate))
	if p.notify != nil {
		p.notify(p.current, p.total)
	}
}
