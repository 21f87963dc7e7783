package graph

import "context"

// Engine owns one validated Graph plus the collaborators (NodeExecutor,
// Callbacks, Emitter, Metrics, TaskRegistry) it was constructed with. A
// single Engine can drive many sequential executions of its Graph; it does
// not allow concurrent ExecuteWorkflow calls to interleave state (each call
// gets its own ExecutionState), but the Graph itself is read-only after
// BuildGraph so concurrent calls are safe as far as the graph is concerned.
type Engine struct {
	graph *Graph
	cfg   engineConfig
}

// New validates cfg into a Graph and applies opts, returning a ready-to-run
// Engine. Validation errors (*ValidationError) are returned synchronously;
// no execution ever begins for a malformed workflow.
func New(cfg Config, opts ...Option) (*Engine, error) {
	g, err := BuildGraph(cfg)
	if err != nil {
		return nil, err
	}

	ec := defaultEngineConfig()
	for _, opt := range opts {
		if err := opt(&ec); err != nil {
			return nil, err
		}
	}

	return &Engine{graph: g, cfg: ec}, nil
}

// Registry returns the TaskRegistry this Engine registers its executions
// with, so a caller can cancel by execution id from another goroutine.
func (e *Engine) Registry() *TaskRegistry {
	return e.cfg.registry
}

// Graph returns the validated, read-only Graph this Engine was built from.
func (e *Engine) Graph() *Graph {
	return e.graph
}

// ExecuteWorkflow runs the graph to completion (or cancellation), seeding
// every START node and driving successors via the event-driven Dispatcher.
// It blocks until the execution reaches a terminal state.
func (e *Engine) ExecuteWorkflow(ctx context.Context, executionID string) ExecutionSummary {
	execCtx, cancel := context.WithCancel(ctx)
	e.cfg.registry.Register(executionID, cancel)
	defer e.cfg.registry.Unregister(executionID)
	defer cancel()

	d := &dispatcher{
		graph:       e.graph,
		executor:    e.cfg.executor,
		callbacks:   e.cfg.callbacks,
		emitter:     e.cfg.emitter,
		metrics:     e.cfg.metrics,
		nodeTimeout: e.cfg.nodeTimeout,
	}

	return d.run(execCtx, executionID)
}
