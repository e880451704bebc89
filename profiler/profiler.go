// Package profiler - Operation timing for the recognition pipeline.
package profiler

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// TimeTracker tracks timing statistics for one named operation.
type TimeTracker struct {
	Name      string
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
	LastTime  time.Duration
}

// Mean returns the average duration, zero when nothing was recorded.
func (t TimeTracker) Mean() time.Duration {
	if t.Count == 0 {
		return 0
	}
	return t.TotalTime / time.Duration(t.Count)
}

// Profiler accumulates per-operation timings. It is safe for concurrent use.
type Profiler struct {
	mu             sync.RWMutex
	operationTimes map[string]*TimeTracker
	order          []string
}

// New creates an empty profiler.
func New() *Profiler {
	return &Profiler{
		operationTimes: make(map[string]*TimeTracker),
	}
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track
//
// Returns:
// - A function to call when the operation completes. It returns the measured duration.
func (p *Profiler) StartOperation(name string) func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		d := time.Since(start)
		p.Record(name, d)
		return d
	}
}

// Record adds a completed operation duration.
func (p *Profiler) Record(name string, duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tracker, exists := p.operationTimes[name]
	if !exists {
		tracker = &TimeTracker{
			Name:    name,
			MinTime: duration,
			MaxTime: duration,
		}
		p.operationTimes[name] = tracker
		p.order = append(p.order, name)
	}

	tracker.TotalTime += duration
	tracker.LastTime = duration
	tracker.Count++

	if duration < tracker.MinTime {
		tracker.MinTime = duration
	}
	if duration > tracker.MaxTime {
		tracker.MaxTime = duration
	}
}

// Stats returns a snapshot of every tracker in first-recorded order.
func (p *Profiler) Stats() []TimeTracker {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]TimeTracker, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, *p.operationTimes[name])
	}
	return out
}

// Get returns the tracker for name.
func (p *Profiler) Get(name string) (TimeTracker, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	t, ok := p.operationTimes[name]
	if !ok {
		return TimeTracker{}, false
	}
	return *t, true
}

// Reset clears all recorded timings.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.operationTimes = make(map[string]*TimeTracker)
	p.order = nil
}

// Report writes a timing table sorted by total time, slowest first.
func (p *Profiler) Report(w io.Writer) {
	stats := p.Stats()
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalTime > stats[j].TotalTime
	})

	fmt.Fprintf(w, "%-12s %8s %12s %12s %12s\n", "OPERATION", "COUNT", "MEAN", "MIN", "MAX")
	for _, s := range stats {
		fmt.Fprintf(w, "%-12s %8d %12s %12s %12s\n",
			s.Name, s.Count, s.Mean().Round(time.Microsecond),
			s.MinTime.Round(time.Microsecond), s.MaxTime.Round(time.Microsecond))
	}
}
