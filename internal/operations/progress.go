package operations

import (
	"sync"
	"time"

	"etenderexport/internal/fetch"
)

// Progress is a point-in-time view of a download run
type Progress struct {
	Done    int
	Total   int
	Failed  int
	Bytes   int64
	Percent float64
	// Last is the file name of the most recently finished download
	Last string
}

// ProgressTracker counts finished downloads as the dispatcher reports them.
// Record may be called from several goroutines.
type ProgressTracker struct {
	mu      sync.Mutex
	total   int
	done    int
	failed  int
	bytes   int64
	last    string
	started time.Time
	clock   func() time.Time
}

// NewProgressTracker starts tracking total downloads. A nil clock uses
// time.Now.
func NewProgressTracker(total int, clock func() time.Time) *ProgressTracker {
	if clock == nil {
		clock = time.Now
	}
	return &ProgressTracker{total: total, started: clock(), clock: clock}
}

// Record counts one finished download and returns how many have finished
func (p *ProgressTracker) Record(res fetch.Result) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	if res.OK() {
		p.bytes += res.Bytes
	} else {
		p.failed++
	}
	p.last = res.Task.Filename
	return p.done
}

// Snapshot returns the current counts
func (p *ProgressTracker) Snapshot() Progress {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Progress{
		Done:   p.done,
		Total:  p.total,
		Failed: p.failed,
		Bytes:  p.bytes,
		Last:   p.last,
	}
	if p.total > 0 {
		s.Percent = float64(p.done) / float64(p.total) * 100
	}
	return s
}

// Milestone reports whether done is the first count to reach a new multiple
// of every percent, or the final download.
func (p *ProgressTracker) Milestone(done, every int) bool {
	if p.total <= 0 || every <= 0 {
		return false
	}
	if done >= p.total {
		return true
	}
	band := func(n int) int { return n * 100 / p.total / every }
	return band(done) > band(done-1)
}

// ETA extrapolates the time left from the average pace so far. It is zero
// before the first download finishes and after the last.
func (p *ProgressTracker) ETA() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done == 0 || p.done >= p.total {
		return 0
	}
	perFile := p.clock().Sub(p.started) / time.Duration(p.done)
	return (perFile * time.Duration(p.total-p.done)).Round(time.Second)
}

// Complete reports whether every planned download has finished
func (p *ProgressTracker) Complete() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done >= p.total
}
