package operations

import (
	"sync"
	"time"

	"etenderexport/internal/combiner"
	"etenderexport/internal/fetch"
	"etenderexport/internal/tasks"
)

// RunStatus represents the overall run status
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// RunState is the state of one export run. The status fields are safe for
// concurrent use; the step outputs below them are written by one step at a
// time and read by the steps that follow.
type RunState struct {
	mu sync.RWMutex

	ID      string
	TraceID string
	Status  RunStatus
	Started time.Time
	Ended   time.Time
	Err     error

	steps map[string]*StepState
	order []string

	// Now is the instant the task list is planned against.
	Now time.Time

	// Step outputs
	Tasks          []tasks.DownloadTask
	Downloads      *fetch.Report
	ExportDateTime string
	Table          *combiner.Table
	CombinedPath   string
}

// NewRunState creates a pending run planned against now
func NewRunState(id string, now time.Time) *RunState {
	return &RunState{
		ID:     id,
		Status: RunStatusPending,
		Now:    now,
		steps:  make(map[string]*StepState),
	}
}

// Start marks the run as running
func (r *RunState) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = RunStatusRunning
	r.Started = time.Now()
}

// Complete marks the run as completed
func (r *RunState) Complete() { r.finish(RunStatusCompleted, nil) }

// Fail marks the run as failed with err
func (r *RunState) Fail(err error) { r.finish(RunStatusFailed, err) }

// Cancel marks the run as stopped by an interrupt
func (r *RunState) Cancel(err error) { r.finish(RunStatusCancelled, err) }

func (r *RunState) finish(status RunStatus, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Ended = time.Now()
	r.Status = status
	r.Err = err
}

// GetStatus returns the current run status
func (r *RunState) GetStatus() RunStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.Status
}

// AddStep registers a step state, keeping registration order
func (r *RunState) AddStep(state *StepState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.steps[state.ID]; !exists {
		r.order = append(r.order, state.ID)
	}
	r.steps[state.ID] = state
}

// ensureStep returns the registered state for a step, registering a new
// one when the step runs outside a pipeline.
func (r *RunState) ensureStep(id, name string) *StepState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.steps[id]; ok {
		return s
	}
	s := NewStepState(id, name)
	r.steps[id] = s
	r.order = append(r.order, id)
	return s
}

// GetStep returns the state of a specific Step
func (r *RunState) GetStep(stepID string) *StepState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.steps[stepID]
}

// StepStates returns the step states in execution order
func (r *RunState) StepStates() []*StepState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*StepState, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.steps[id])
	}
	return out
}

// Duration returns how long the run took, or has taken so far
func (r *RunState) Duration() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	switch {
	case r.Started.IsZero():
		return 0
	case r.Ended.IsZero():
		return time.Since(r.Started)
	default:
		return r.Ended.Sub(r.Started)
	}
}

// HasFailures returns true if any Step has failed
func (r *RunState) HasFailures() bool {
	for _, s := range r.StepStates() {
		if s.GetStatus() == StepStatusFailed {
			return true
		}
	}
	return false
}
