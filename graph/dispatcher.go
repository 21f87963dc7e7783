package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/wflow/treeflow-go/graph/emit"
)

// dispatcher is the event-driven scheduler that walks a Graph to terminal
// state. It is the sole mutator of its ExecutionState; every node task
// publishes its result only through the completion channel the dispatcher
// owns.
type dispatcher struct {
	graph       *Graph
	executor    NodeExecutor
	callbacks   Callbacks
	emitter     emit.Emitter
	metrics     *Metrics
	nodeTimeout time.Duration
}

type completion struct {
	nodeID string
	output Output
	err    error
}

// run drives the graph to termination and returns the final summary. ctx
// must already carry the per-execution cancellation derived by the caller
// (the Engine registers its CancelFunc with the TaskRegistry before calling
// run).
func (d *dispatcher) run(ctx context.Context, executionID string) (summary ExecutionSummary) {
	st := NewExecutionState(executionID, d.graph)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			d.emit(st, "", "engine_error", map[string]any{"error": err.Error()})
			summary = summarize(st, (&EngineError{ExecutionID: executionID, Cause: err}).Error())
			d.safeOnExecutionFinished(executionID, summary)
		}
	}()

	d.safeOnExecutionStart(d.graph.ID(), executionID)
	d.emit(st, "", "execution_start", nil)

	running := make(map[string]struct{})
	completions := make(chan completion, len(st.NodeStatus)+1)

	dispatchNode := func(nodeID string) {
		node, _ := d.graph.Node(nodeID)
		input := assembleInput(d.graph, st, nodeID)
		st.NodeStatus[nodeID] = StatusRunning
		running[nodeID] = struct{}{}
		d.metrics.nodeStarted()
		d.emit(st, nodeID, "node_start", nil)

		go func() {
			nodeCtx := ctx
			var cancelNode context.CancelFunc
			if d.nodeTimeout > 0 {
				nodeCtx, cancelNode = context.WithTimeout(ctx, d.nodeTimeout)
				defer cancelNode()
			}

			started := time.Now()
			out, err := d.safeExecute(nodeCtx, node, input)
			d.metrics.nodeFinished(node.Type, terminalStatus(err), time.Since(started))

			select {
			case completions <- completion{nodeID: nodeID, output: out, err: err}:
			case <-ctx.Done():
				// Execution already finished (or was abandoned); the
				// dispatcher has stopped reading from the channel.
			}
		}()
	}

	var tryTrigger func(nodeID string)
	tryTrigger = func(nodeID string) {
		for _, e := range d.graph.Outgoing(nodeID) {
			v := e.To
			if isTerminalOrRunning(st, running, v) {
				continue
			}

			preds := d.graph.Predecessors(v)
			allAccounted := true
			allCompleted := true
			for p := range preds {
				switch st.NodeStatus[p] {
				case StatusCompleted:
					// contributes toward allCompleted
				case StatusFailed, StatusSkipped, StatusCancelled:
					allCompleted = false
				default:
					allAccounted = false
					allCompleted = false
				}
			}
			if !allAccounted {
				continue // another predecessor will retry this edge later
			}
			if !allCompleted {
				markSkipped(d, st, v)
				tryTrigger(v)
				continue
			}

			if !anyIncomingConditionTrue(d.graph, st, v) {
				markSkipped(d, st, v)
				tryTrigger(v)
				continue
			}

			dispatchNode(v)
		}
	}

	for _, id := range d.graph.StartNodes() {
		dispatchNode(id)
	}

	for len(running) > 0 {
		select {
		case <-ctx.Done():
			for id := range running {
				st.NodeStatus[id] = StatusCancelled
				d.metrics.nodeCancelled()
				d.emit(st, id, "node_cancelled", nil)
			}
			st.EndTime = time.Now()
			cancelErr := &CancelledError{ExecutionID: executionID}
			summary = summarize(st, cancelErr.Error())
			d.emit(st, "", "execution_finished", map[string]any{"status": ExecutionCancelled})
			d.safeOnExecutionFinished(executionID, summary)
			return summary

		case c := <-completions:
			delete(running, c.nodeID)
			if c.err != nil {
				st.NodeStatus[c.nodeID] = StatusFailed
				st.NodeResults[c.nodeID] = Text("ERROR: " + c.err.Error())
				d.emit(st, c.nodeID, "node_failed", map[string]any{"error": c.err.Error()})
				d.safeOnNodeFailed(executionID, c.nodeID, c.err)
			} else {
				st.NodeStatus[c.nodeID] = StatusCompleted
				st.NodeResults[c.nodeID] = c.output
				d.emit(st, c.nodeID, "node_completed", map[string]any{"result": c.output.String()})
				d.safeOnNodeCompleted(executionID, c.nodeID, c.output)
			}
			tryTrigger(c.nodeID)
		}
	}

	st.EndTime = time.Now()
	summary = summarize(st, "")
	d.emit(st, "", "execution_finished", map[string]any{"status": ExecutionCompleted})
	d.safeOnExecutionFinished(executionID, summary)
	return summary
}

func isTerminalOrRunning(st *ExecutionState, running map[string]struct{}, nodeID string) bool {
	if _, ok := running[nodeID]; ok {
		return true
	}
	switch st.NodeStatus[nodeID] {
	case StatusCompleted, StatusFailed, StatusSkipped, StatusCancelled:
		return true
	default:
		return false
	}
}

func markSkipped(d *dispatcher, st *ExecutionState, nodeID string) {
	if st.NodeStatus[nodeID] == StatusSkipped {
		return
	}
	st.NodeStatus[nodeID] = StatusSkipped
	d.metrics.nodeSkipped()
	d.emit(st, nodeID, "node_skipped", nil)
}

// anyIncomingConditionTrue implements the per-edge condition rule: v is
// dispatched when at least one incoming edge has its predecessor completed
// and its condition (absent or evaluated) true.
func anyIncomingConditionTrue(g *Graph, st *ExecutionState, nodeID string) bool {
	for _, e := range g.Incoming(nodeID) {
		if st.NodeStatus[e.From] != StatusCompleted {
			continue
		}
		if Evaluate(e.Condition, st.NodeResults[e.From]) {
			return true
		}
	}
	return false
}

func terminalStatus(err error) NodeStatus {
	if err != nil {
		return StatusFailed
	}
	return StatusCompleted
}

// safeExecute invokes the executor, recovering a panic into an error so one
// misbehaving node never takes down the dispatcher goroutine.
func (d *dispatcher) safeExecute(ctx context.Context, node Node, input Input) (out Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &NodeExecutionError{NodeID: node.ID, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()
	out, err = d.executor.Execute(ctx, node, input)
	if err != nil {
		err = &NodeExecutionError{NodeID: node.ID, Cause: err}
	}
	return out, err
}

func (d *dispatcher) emit(st *ExecutionState, nodeID, msg string, meta map[string]any) {
	st.log(msg, meta)
	if d.emitter == nil {
		return
	}
	d.emitter.Emit(emit.Event{RunID: st.ExecutionID, NodeID: nodeID, Msg: msg, Meta: meta})
}

// The safeOn* helpers guard every Callbacks invocation: a panicking or
// otherwise misbehaving callback is logged and swallowed, never affecting
// execution (§7 Callback errors).
func (d *dispatcher) safeOnExecutionStart(workflowID, executionID string) {
	defer d.recoverCallback("OnExecutionStart")
	if d.callbacks != nil {
		d.callbacks.OnExecutionStart(workflowID, executionID)
	}
}

func (d *dispatcher) safeOnNodeCompleted(executionID, nodeID string, result Output) {
	defer d.recoverCallback("OnNodeCompleted")
	if d.callbacks != nil {
		d.callbacks.OnNodeCompleted(executionID, nodeID, result)
	}
}

func (d *dispatcher) safeOnNodeFailed(executionID, nodeID string, err error) {
	defer d.recoverCallback("OnNodeFailed")
	if d.callbacks != nil {
		d.callbacks.OnNodeFailed(executionID, nodeID, err)
	}
}

func (d *dispatcher) safeOnExecutionFinished(executionID string, summary ExecutionSummary) {
	defer d.recoverCallback("OnExecutionFinished")
	if d.callbacks != nil {
		d.callbacks.OnExecutionFinished(executionID, summary)
	}
}

func (d *dispatcher) recoverCallback(name string) {
	if r := recover(); r != nil {
		if d.emitter != nil {
			d.emitter.Emit(emit.Event{Msg: "callback_panic", Meta: map[string]any{"callback": name, "error": fmt.Sprintf("%v", r)}})
		}
	}
}
