package emit

import "context"

// MultiEmitter fans a single Dispatcher event out to several Emitters, e.g.
// a LogEmitter for a human-readable trail alongside a BufferedEmitter kept
// around for a post-execution history dump. Emit/EmitBatch/Flush are called
// on every target regardless of earlier targets' outcome.
type MultiEmitter struct {
	targets []Emitter
}

// NewMultiEmitter fans out to targets in the given order.
func NewMultiEmitter(targets ...Emitter) *MultiEmitter {
	return &MultiEmitter{targets: targets}
}

func (m *MultiEmitter) Emit(event Event) {
	for _, t := range m.targets {
		t.Emit(event)
	}
}

func (m *MultiEmitter) EmitBatch(ctx context.Context, events []Event) error {
	var firstErr error
	for _, t := range m.targets {
		if err := t.EmitBatch(ctx, events); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *MultiEmitter) Flush(ctx context.Context) error {
	var firstErr error
	for _, t := range m.targets {
		if err := t.Flush(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
