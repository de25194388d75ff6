package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/sourcegraph/conc/pool"

	"github.com/chazu/bindgraph/pkg/metrics"
)

// Emitter is the interface for emitting a single declaration
type Emitter interface {
	// Emit produces the output for decl. It is only called after every
	// resolved dependency of decl was emitted successfully.
	Emit(ctx context.Context, decl Declaration) error
}

// EmitterFunc adapts a function to the Emitter interface
type EmitterFunc func(ctx context.Context, decl Declaration) error

// Emit calls f(ctx, decl)
func (f EmitterFunc) Emit(ctx context.Context, decl Declaration) error {
	return f(ctx, decl)
}

// ExecutorConfig contains configuration for the wave executor
type ExecutorConfig struct {
	// MaxConcurrency is the maximum number of declarations emitted concurrently
	// Default: 10
	MaxConcurrency int
}

// DefaultExecutorConfig returns the default executor configuration
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		MaxConcurrency: 10,
	}
}

// Executor emits an Ordering wave by wave with bounded parallelism
type Executor struct {
	config  ExecutorConfig
	emitter Emitter
}

// NewExecutor creates a new executor
func NewExecutor(emitter Emitter, config ExecutorConfig) *Executor {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = DefaultExecutorConfig().MaxConcurrency
	}
	return &Executor{
		config:  config,
		emitter: emitter,
	}
}

// Execute emits every declaration of the ordering. Declarations of a wave run
// in parallel; a failed declaration blocks everything that depends on it while
// independent declarations still run. The returned state is valid even when
// an error is returned.
func (e *Executor) Execute(ctx context.Context, ordering *Ordering) (*ExecutionState, error) {
	if ordering == nil {
		return nil, fmt.Errorf("ordering cannot be nil")
	}

	logger := logr.FromContextOrDiscard(ctx)
	state := NewExecutionState(ordering.Names())

	for i, wave := range ordering.Waves() {
		select {
		case <-ctx.Done():
			return state, ctx.Err()
		default:
		}

		ready := e.blockFailedDependents(ordering, state, wave)
		logger.V(1).Info("emitting wave", "wave", i, "size", len(ready), "blocked", len(wave)-len(ready))

		e.emitWave(ctx, ordering, state, ready)
	}

	state.MarkComplete()
	return state, nil
}

// blockFailedDependents marks declarations whose dependencies did not finish
// as blocked and returns the rest
func (e *Executor) blockFailedDependents(ordering *Ordering, state *ExecutionState, wave []string) []string {
	ready := make([]string, 0, len(wave))
	for _, name := range wave {
		deps, _ := ordering.Dependencies(name)

		failed := ""
		for _, dep := range deps {
			if depState, _ := state.GetState(dep); depState != EmitStateDone {
				failed = dep
				break
			}
		}

		if failed != "" {
			_ = state.SetBlocked(name, failed)
			continue
		}
		ready = append(ready, name)
	}
	return ready
}

// emitWave emits a batch of independent declarations in parallel using conc
func (e *Executor) emitWave(ctx context.Context, ordering *Ordering, state *ExecutionState, names []string) {
	p := pool.New().WithMaxGoroutines(e.config.MaxConcurrency).WithErrors()

	for _, name := range names {
		name := name
		p.Go(func() error {
			return e.emitDeclaration(ctx, ordering, state, name)
		})
	}

	// Errors are already recorded in state; keep going with independent
	// declarations.
	_ = p.Wait()
}

// emitDeclaration emits a single declaration and records the outcome
func (e *Executor) emitDeclaration(ctx context.Context, ordering *Ordering, state *ExecutionState, name string) error {
	decl, found := ordering.Declaration(name)
	if !found {
		return fmt.Errorf("declaration %s not found", name)
	}

	if err := state.SetState(name, EmitStateEmitting); err != nil {
		return err
	}

	start := time.Now()
	if err := e.emitter.Emit(ctx, decl); err != nil {
		metrics.RecordEmit(metrics.ResultError, time.Since(start).Seconds())
		_ = state.SetError(name, fmt.Errorf("failed to emit: %w", err))
		return err
	}
	metrics.RecordEmit(metrics.ResultSuccess, time.Since(start).Seconds())

	return state.SetState(name, EmitStateDone)
}
