package operations

import (
	"context"
	"sync"
	"time"
)

// Step represents a single step of an export run
type Step interface {
	// ID returns the unique identifier for this Step
	ID() string

	// Name returns the human-readable name for this Step
	Name() string

	// Execute runs the Step against the shared run state
	Execute(ctx context.Context, state *RunState) error
}

// StepStatus represents the current status of a Step
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState records what happened to one step of a run. Started and Ended
// stay zero until the step starts or finishes.
type StepState struct {
	mu       sync.RWMutex
	ID       string
	Name     string
	Status   StepStatus
	Started  time.Time
	Ended    time.Time
	Progress float64
	Message  string
	Err      error
	metadata map[string]any
}

// NewStepState creates a pending step state
func NewStepState(id, name string) *StepState {
	return &StepState{
		ID:       id,
		Name:     name,
		Status:   StepStatusPending,
		metadata: make(map[string]any),
	}
}

// Start marks the step active
func (s *StepState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Started = time.Now()
	s.Status = StepStatusActive
	s.Progress = 0
}

// Complete marks the step completed at 100%
func (s *StepState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finish(StepStatusCompleted)
	s.Progress = 100
}

// Fail marks the step failed with err
func (s *StepState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finish(StepStatusFailed)
	s.Err = err
}

// Skip marks a step that never ran
func (s *StepState) Skip(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finish(StepStatusSkipped)
	s.Message = reason
}

// finish must be called with mu held
func (s *StepState) finish(status StepStatus) {
	s.Ended = time.Now()
	s.Status = status
}

// UpdateProgress sets the percentage done and a short status line
func (s *StepState) UpdateProgress(percent float64, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Progress = percent
	s.Message = message
}

// SetMetadata records an outcome value such as a row count
func (s *StepState) SetMetadata(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata[key] = value
}

func (s *StepState) GetMetadata(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.metadata[key]
	return v, ok
}

func (s *StepState) GetStatus() StepStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// Duration is zero for a step that never started and keeps growing while the
// step is active.
func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case s.Started.IsZero():
		return 0
	case s.Ended.IsZero():
		return time.Since(s.Started)
	default:
		return s.Ended.Sub(s.Started)
	}
}

// BaseStep supplies ID and Name for the concrete steps
type BaseStep struct {
	id   string
	name string
}

func NewBaseStep(id, name string) BaseStep {
	return BaseStep{id: id, name: name}
}

func (b BaseStep) ID() string   { return b.id }
func (b BaseStep) Name() string { return b.name }
