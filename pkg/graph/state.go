package graph

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

// EmitState represents the emission state of a declaration
type EmitState string

const (
	// EmitStatePending indicates the declaration is waiting for dependencies
	EmitStatePending EmitState = "Pending"

	// EmitStateEmitting indicates the declaration is being emitted
	EmitStateEmitting EmitState = "Emitting"

	// EmitStateDone indicates the declaration was emitted
	EmitStateDone EmitState = "Done"

	// EmitStateError indicates the emitter failed for the declaration
	EmitStateError EmitState = "Error"

	// EmitStateBlocked indicates a dependency failed, so the declaration was skipped
	EmitStateBlocked EmitState = "Blocked"
)

// EmitStatus contains the emission status of a single declaration
type EmitStatus struct {
	// State is the current state of the declaration
	State EmitState

	// Error contains the error message if State is EmitStateError, or the
	// failed dependency if State is EmitStateBlocked
	Error string

	// StartTime is when emission started
	StartTime *time.Time

	// DoneTime is when emission finished successfully
	DoneTime *time.Time
}

// ExecutionState tracks the emission state of every declaration
type ExecutionState struct {
	mu sync.RWMutex

	// states maps declaration name to its current status
	states map[string]*EmitStatus

	// names keeps the emission order for stable listings
	names []string

	startTime time.Time
	endTime   *time.Time
}

// NewExecutionState creates a state tracker with every name pending
func NewExecutionState(names []string) *ExecutionState {
	states := make(map[string]*EmitStatus, len(names))
	for _, name := range names {
		states[name] = &EmitStatus{State: EmitStatePending}
	}

	return &ExecutionState{
		states:    states,
		names:     slices.Clone(names),
		startTime: time.Now(),
	}
}

// GetState returns the current state of a declaration
func (es *ExecutionState) GetState(name string) (EmitState, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()

	status, found := es.states[name]
	if !found {
		return "", fmt.Errorf("declaration %s not found", name)
	}
	return status.State, nil
}

// GetStatus returns a copy of the full status of a declaration
func (es *ExecutionState) GetStatus(name string) (*EmitStatus, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()

	status, found := es.states[name]
	if !found {
		return nil, fmt.Errorf("declaration %s not found", name)
	}

	statusCopy := *status
	return &statusCopy, nil
}

// SetState updates the state of a declaration with validation
func (es *ExecutionState) SetState(name string, newState EmitState) error {
	es.mu.Lock()
	defer es.mu.Unlock()

	status, found := es.states[name]
	if !found {
		return fmt.Errorf("declaration %s not found", name)
	}

	if err := validateStateTransition(status.State, newState); err != nil {
		return fmt.Errorf("invalid state transition for declaration %s: %w", name, err)
	}

	status.State = newState

	now := time.Now()
	switch newState {
	case EmitStateEmitting:
		status.StartTime = &now
	case EmitStateDone:
		status.DoneTime = &now
	}

	return nil
}

// SetError moves a declaration to the error state
func (es *ExecutionState) SetError(name string, err error) error {
	return es.setTerminal(name, EmitStateError, err.Error())
}

// SetBlocked moves a pending declaration to the blocked state
func (es *ExecutionState) SetBlocked(name, failedDependency string) error {
	return es.setTerminal(name, EmitStateBlocked, "dependency "+failedDependency+" failed")
}

func (es *ExecutionState) setTerminal(name string, state EmitState, msg string) error {
	es.mu.Lock()
	defer es.mu.Unlock()

	status, found := es.states[name]
	if !found {
		return fmt.Errorf("declaration %s not found", name)
	}

	if err := validateStateTransition(status.State, state); err != nil {
		return fmt.Errorf("invalid state transition for declaration %s: %w", name, err)
	}

	status.State = state
	status.Error = msg
	return nil
}

// GetNamesInState returns the declarations in a given state, in emission order
func (es *ExecutionState) GetNamesInState(state EmitState) []string {
	es.mu.RLock()
	defer es.mu.RUnlock()

	var names []string
	for _, name := range es.names {
		if es.states[name].State == state {
			names = append(names, name)
		}
	}
	return names
}

// IsComplete returns true if every declaration is in a terminal state
func (es *ExecutionState) IsComplete() bool {
	es.mu.RLock()
	defer es.mu.RUnlock()

	for _, status := range es.states {
		if !status.State.terminal() {
			return false
		}
	}
	return true
}

// HasErrors returns true if any declaration failed or was blocked
func (es *ExecutionState) HasErrors() bool {
	es.mu.RLock()
	defer es.mu.RUnlock()

	for _, status := range es.states {
		if status.State == EmitStateError || status.State == EmitStateBlocked {
			return true
		}
	}
	return false
}

// GetSummary returns a summary of execution state
func (es *ExecutionState) GetSummary() ExecutionSummary {
	es.mu.RLock()
	defer es.mu.RUnlock()

	summary := ExecutionSummary{
		Total:     len(es.states),
		StartTime: es.startTime,
		EndTime:   es.endTime,
	}

	for _, status := range es.states {
		switch status.State {
		case EmitStatePending:
			summary.Pending++
		case EmitStateEmitting:
			summary.Emitting++
		case EmitStateDone:
			summary.Done++
		case EmitStateError:
			summary.Error++
		case EmitStateBlocked:
			summary.Blocked++
		}
	}

	return summary
}

// MarkComplete records the end of execution
func (es *ExecutionState) MarkComplete() {
	es.mu.Lock()
	defer es.mu.Unlock()

	now := time.Now()
	es.endTime = &now
}

// ExecutionSummary provides a summary of execution state
type ExecutionSummary struct {
	Total     int
	Pending   int
	Emitting  int
	Done      int
	Error     int
	Blocked   int
	StartTime time.Time
	EndTime   *time.Time
}

func (s EmitState) terminal() bool {
	return s == EmitStateDone || s == EmitStateError || s == EmitStateBlocked
}

// validateStateTransition checks if a state transition is valid
func validateStateTransition(from, to EmitState) error {
	validTransitions := map[EmitState][]EmitState{
		EmitStatePending: {
			EmitStateEmitting,
			EmitStateBlocked,
		},
		EmitStateEmitting: {
			EmitStateDone,
			EmitStateError,
		},
		EmitStateDone:    {},
		EmitStateError:   {},
		EmitStateBlocked: {},
	}

	allowed, found := validTransitions[from]
	if !found {
		return fmt.Errorf("unknown state: %s", from)
	}

	if slices.Contains(allowed, to) {
		return nil
	}

	return fmt.Errorf("cannot transition from %s to %s", from, to)
}
