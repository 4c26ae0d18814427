package fetch

import (
	"time"

	apperrors "etenderexport/internal/errors"
	"etenderexport/internal/tasks"
)

// Result is the outcome of one download task.
type Result struct {
	Task       tasks.DownloadTask
	Path       string
	Bytes      int64
	StatusCode int
	Status     string
	Err        error
	Duration   time.Duration
}

// OK reports whether the file was stored
func (r Result) OK() bool {
	return r.Err == nil
}

// Report aggregates every Result of a Dispatch, in task order.
type Report struct {
	Results   []Result
	Succeeded int
	Failed    int
	Bytes     int64
	Duration  time.Duration
}

func newReport(results []Result, duration time.Duration) *Report {
	r := &Report{Results: results, Duration: duration}
	for _, res := range results {
		if res.OK() {
			r.Succeeded++
			r.Bytes += res.Bytes
		} else {
			r.Failed++
		}
	}
	return r
}

// Failures returns the failed results in task order
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}

// ByStatus counts results per status label
func (r *Report) ByStatus() map[string]int {
	out := make(map[string]int)
	for _, res := range r.Results {
		out[res.Status]++
	}
	return out
}

// Err joins every download failure, or returns nil when all succeeded.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return apperrors.Join(errs...)
}
