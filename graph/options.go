package graph

import (
	"fmt"
	"time"

	"github.com/wflow/treeflow-go/graph/emit"
)

// engineConfig holds the pluggable collaborators an Engine is built with.
// Assembled via the functional-options pattern below, mirroring the
// teacher's graph/options.go idiom.
type engineConfig struct {
	executor    NodeExecutor
	callbacks   Callbacks
	emitter     emit.Emitter
	metrics     *Metrics
	registry    *TaskRegistry
	nodeTimeout time.Duration
}

func defaultEngineConfig() engineConfig {
	return engineConfig{
		executor:  NewDefaultExecutor(nil, "", ""),
		callbacks: NoopCallbacks{},
		emitter:   emit.NewNullEmitter(),
		registry:  NewTaskRegistry(),
	}
}

// Option configures an Engine at construction time.
type Option func(*engineConfig) error

// WithExecutor overrides the default NodeExecutor, a DefaultExecutor with no
// ChatModel that always takes its deterministic fallback path.
func WithExecutor(e NodeExecutor) Option {
	return func(c *engineConfig) error {
		if e == nil {
			return fmt.Errorf("graph: WithExecutor requires a non-nil NodeExecutor")
		}
		c.executor = e
		return nil
	}
}

// WithCallbacks registers the caller's execution-lifecycle callbacks.
func WithCallbacks(cb Callbacks) Option {
	return func(c *engineConfig) error {
		if cb == nil {
			return fmt.Errorf("graph: WithCallbacks requires a non-nil Callbacks")
		}
		c.callbacks = cb
		return nil
	}
}

// WithEmitter overrides the default NullEmitter for observability events.
func WithEmitter(e emit.Emitter) Option {
	return func(c *engineConfig) error {
		if e == nil {
			return fmt.Errorf("graph: WithEmitter requires a non-nil Emitter")
		}
		c.emitter = e
		return nil
	}
}

// WithMetrics attaches a Prometheus Metrics instance.
func WithMetrics(m *Metrics) Option {
	return func(c *engineConfig) error {
		c.metrics = m
		return nil
	}
}

// WithTaskRegistry overrides the default, per-Engine TaskRegistry with a
// shared, process-wide one.
func WithTaskRegistry(r *TaskRegistry) Option {
	return func(c *engineConfig) error {
		if r == nil {
			return fmt.Errorf("graph: WithTaskRegistry requires a non-nil TaskRegistry")
		}
		c.registry = r
		return nil
	}
}

// WithNodeTimeout bounds every node invocation with a per-call context
// timeout. Zero (the default) means unlimited; the engine itself imposes no
// timeout unless this option is set.
func WithNodeTimeout(d time.Duration) Option {
	return func(c *engineConfig) error {
		c.nodeTimeout = d
		return nil
	}
}
