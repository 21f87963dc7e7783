package graph

import "strings"

// assembleInput builds the Input for a node about to be dispatched, per the
// Dispatcher's input assembly rules: the prompt is included verbatim when
// requested, and previous_output collects the stringified outputs of all
// completed direct predecessors, deduplicated and in first-seen edge order.
func assembleInput(g *Graph, st *ExecutionState, nodeID string) Input {
	node, _ := g.Node(nodeID)
	var in Input

	if node.InputConfig.IncludePrompt {
		in.Prompt = node.Prompt
		in.HasPrompt = true
	}

	if node.InputConfig.IncludePreviousOutput {
		names, outputs := completedPredecessorOutputs(g, st, nodeID)
		switch len(outputs) {
		case 0:
			// no completed predecessors (e.g. a START node): absent.
		case 1:
			in.PreviousOutput = outputs[0]
			in.HasPreviousOutput = true
		default:
			parts := make([]string, len(outputs))
			for i, out := range outputs {
				parts[i] = "[" + names[i] + "]: " + out
			}
			in.PreviousOutput = strings.Join(parts, " | ")
			in.HasPreviousOutput = true
		}
	}

	return in
}

// completedPredecessorOutputs walks nodeID's incoming edges in declaration
// order and returns the display name and stringified output of each
// predecessor that has completed, deduplicated and preserving first-seen
// order.
func completedPredecessorOutputs(g *Graph, st *ExecutionState, nodeID string) (names []string, outputs []string) {
	seen := make(map[string]struct{})
	for _, e := range g.Incoming(nodeID) {
		if _, dup := seen[e.From]; dup {
			continue
		}
		if st.NodeStatus[e.From] != StatusCompleted {
			continue
		}
		seen[e.From] = struct{}{}
		predNode, _ := g.Node(e.From)
		names = append(names, predNode.Name)
		outputs = append(outputs, st.NodeResults[e.From].String())
	}
	return names, outputs
}
