package graph

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// mockEmitter is a mock implementation of Emitter for testing
type mockEmitter struct {
	mu          sync.Mutex
	emitted     []string
	failDecls   map[string]error
	emitDelay   time.Duration
	inFlight    int
	maxInFlight int
}

func newMockEmitter() *mockEmitter {
	return &mockEmitter{
		emitted:   make([]string, 0),
		failDecls: make(map[string]error),
	}
}

func (m *mockEmitter) Emit(ctx context.Context, decl Declaration) error {
	m.mu.Lock()
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	m.mu.Unlock()

	if m.emitDelay > 0 {
		time.Sleep(m.emitDelay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight--

	if err, shouldFail := m.failDecls[decl.Name]; shouldFail {
		return err
	}

	m.emitted = append(m.emitted, decl.Name)
	return nil
}

func (m *mockEmitter) getEmitted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.emitted))
	copy(result, m.emitted)
	return result
}

func mustOrder(t *testing.T, decls []Declaration) *Ordering {
	t.Helper()
	ordering, err := Order(context.Background(), decls)
	if err != nil {
		t.Fatalf("Order() failed: %v", err)
	}
	return ordering
}

func TestExecutor_SimpleLinear(t *testing.T) {
	ordering := mustOrder(t, []Declaration{
		{Name: "c", DependsOn: []string{"b"}},
		{Name: "b", DependsOn: []string{"a"}},
		{Name: "a"},
	})

	emitter := newMockEmitter()
	executor := NewExecutor(emitter, DefaultExecutorConfig())

	state, err := executor.Execute(context.Background(), ordering)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	emitted := emitter.getEmitted()
	want := []string{"a", "b", "c"}
	for i, name := range want {
		if i >= len(emitted) || emitted[i] != name {
			t.Fatalf("emitted = %v, want %v", emitted, want)
		}
	}

	if !state.IsComplete() {
		t.Error("Execution should be complete")
	}
	if state.HasErrors() {
		t.Error("Execution should not have errors")
	}
	if summary := state.GetSummary(); summary.Done != 3 || summary.EndTime == nil {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestExecutor_ParallelWave(t *testing.T) {
	ordering := mustOrder(t, []Declaration{
		{Name: "root"},
		{Name: "a", DependsOn: []string{"root"}},
		{Name: "b", DependsOn: []string{"root"}},
		{Name: "c", DependsOn: []string{"root"}},
		{Name: "d", DependsOn: []string{"root"}},
	})

	emitter := newMockEmitter()
	emitter.emitDelay = 20 * time.Millisecond
	executor := NewExecutor(emitter, ExecutorConfig{MaxConcurrency: 2})

	if _, err := executor.Execute(context.Background(), ordering); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	emitted := emitter.getEmitted()
	if len(emitted) != 5 || emitted[0] != "root" {
		t.Errorf("emitted = %v", emitted)
	}
	if emitter.maxInFlight > 2 {
		t.Errorf("max concurrency exceeded: %d", emitter.maxInFlight)
	}
}

func TestExecutor_FailureBlocksDependents(t *testing.T) {
	ordering := mustOrder(t, []Declaration{
		{Name: "base"},
		{Name: "derived", DependsOn: []string{"base"}},
		{Name: "grandchild", DependsOn: []string{"derived"}},
		{Name: "independent"},
	})

	emitter := newMockEmitter()
	emitter.failDecls["base"] = errors.New("boom")
	executor := NewExecutor(emitter, DefaultExecutorConfig())

	state, err := executor.Execute(context.Background(), ordering)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	expected := map[string]EmitState{
		"base":        EmitStateError,
		"derived":     EmitStateBlocked,
		"grandchild":  EmitStateBlocked,
		"independent": EmitStateDone,
	}
	for name, want := range expected {
		got, _ := state.GetState(name)
		if got != want {
			t.Errorf("%s state = %s, want %s", name, got, want)
		}
	}

	status, _ := state.GetStatus("derived")
	if status.Error != "dependency base failed" {
		t.Errorf("derived error = %q", status.Error)
	}
	status, _ = state.GetStatus("base")
	if status.Error != "failed to emit: boom" {
		t.Errorf("base error = %q", status.Error)
	}

	if !state.HasErrors() {
		t.Error("expected errors")
	}
	if !state.IsComplete() {
		t.Error("Execution should be complete")
	}
}

func TestExecutor_ContextCancelled(t *testing.T) {
	ordering := mustOrder(t, []Declaration{
		{Name: "a"},
		{Name: "b", DependsOn: []string{"a"}},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	emitter := newMockEmitter()
	state, err := NewExecutor(emitter, DefaultExecutorConfig()).Execute(ctx, ordering)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(emitter.getEmitted()) != 0 {
		t.Errorf("nothing should be emitted, got %v", emitter.getEmitted())
	}
	if got := state.GetNamesInState(EmitStatePending); len(got) != 2 {
		t.Errorf("pending = %v", got)
	}
}

func TestExecutor_NilOrdering(t *testing.T) {
	if _, err := NewExecutor(newMockEmitter(), DefaultExecutorConfig()).Execute(context.Background(), nil); err == nil {
		t.Error("expected error for nil ordering")
	}
}

func TestEmitterFunc(t *testing.T) {
	var got string
	fn := EmitterFunc(func(_ context.Context, decl Declaration) error {
		got = decl.Name
		return nil
	})

	ordering := mustOrder(t, []Declaration{{Name: "only"}})
	if _, err := NewExecutor(fn, ExecutorConfig{}).Execute(context.Background(), ordering); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if got != "only" {
		t.Errorf("emitted %q", got)
	}
}
