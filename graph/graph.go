// Package graph implements the tree workflow execution engine: graph
// construction and validation, condition evaluation, the event-driven
// dispatcher, the default LLM-backed node executor, and the task registry
// that lets an out-of-band caller cancel an in-flight execution.
package graph

import "fmt"

// Graph is the immutable, validated in-memory representation of a workflow.
// It is built once by BuildGraph and is exclusively owned by one Engine
// instance for the lifetime of an execution.
type Graph struct {
	id          string
	name        string
	nodes       map[string]Node
	outgoing    map[string][]Edge
	incoming    map[string][]Edge
	predecessors map[string]map[string]struct{}
	startNodes  []string
}

// ID returns the workflow id this graph was built from.
func (g *Graph) ID() string { return g.id }

// Name returns the workflow name this graph was built from.
func (g *Graph) Name() string { return g.name }

// Node returns the node registered under id. Total after a successful build.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Outgoing returns the edges leaving a node, in declaration order.
func (g *Graph) Outgoing(id string) []Edge {
	return g.outgoing[id]
}

// Incoming returns the edges arriving at a node, in declaration order. Used
// by the dispatcher to evaluate per-edge conditions against each
// predecessor's own output.
func (g *Graph) Incoming(id string) []Edge {
	return g.incoming[id]
}

// Predecessors returns the set of node ids with an edge pointing at id.
func (g *Graph) Predecessors(id string) map[string]struct{} {
	return g.predecessors[id]
}

// StartNodes returns the ids of all nodes with Type == NodeStart, in no
// particular order.
func (g *Graph) StartNodes() []string {
	return g.startNodes
}

// NodeIDs returns every node id known to the graph, in no particular order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	return ids
}

// BuildGraph validates a workflow configuration and constructs its Graph.
// Validation failures are returned as *ValidationError with Kind one of
// NoStartNode, UnknownEndpoint, or CycleDetected.
func BuildGraph(cfg Config) (*Graph, error) {
	g := &Graph{
		id:           cfg.WorkflowID,
		name:         cfg.WorkflowName,
		nodes:        make(map[string]Node, len(cfg.Nodes)),
		outgoing:     make(map[string][]Edge),
		incoming:     make(map[string][]Edge),
		predecessors: make(map[string]map[string]struct{}),
	}

	for id, n := range cfg.Nodes {
		node := n
		node.ID = id
		g.nodes[id] = node
	}

	for _, n := range g.nodes {
		if n.Type == NodeStart {
			g.startNodes = append(g.startNodes, n.ID)
		}
	}
	if len(g.startNodes) == 0 {
		return nil, &ValidationError{Kind: NoStartNode, Detail: "no node has node_type = START"}
	}

	for _, e := range cfg.Edges {
		if _, ok := g.nodes[e.From]; !ok {
			return nil, &ValidationError{Kind: UnknownEndpoint, Detail: fmt.Sprintf("edge references unknown from_node %q", e.From)}
		}
		if _, ok := g.nodes[e.To]; !ok {
			return nil, &ValidationError{Kind: UnknownEndpoint, Detail: fmt.Sprintf("edge references unknown to_node %q", e.To)}
		}
		g.outgoing[e.From] = append(g.outgoing[e.From], e)
		g.incoming[e.To] = append(g.incoming[e.To], e)
		if g.predecessors[e.To] == nil {
			g.predecessors[e.To] = make(map[string]struct{})
		}
		g.predecessors[e.To][e.From] = struct{}{}
	}

	if err := detectCycle(g); err != nil {
		return nil, err
	}

	return g, nil
}

// color states for the three-color DFS cycle detector.
type color int

const (
	white color = iota
	gray
	black
)

func detectCycle(g *Graph) error {
	colors := make(map[string]color, len(g.nodes))
	for id := range g.nodes {
		colors[id] = white
	}

	var visit func(id string) error
	visit = func(id string) error {
		colors[id] = gray
		for _, e := range g.outgoing[id] {
			switch colors[e.To] {
			case gray:
				return &ValidationError{Kind: CycleDetected, Detail: fmt.Sprintf("back edge %s -> %s", id, e.To)}
			case white:
				if err := visit(e.To); err != nil {
					return err
				}
			}
		}
		colors[id] = black
		return nil
	}

	for id := range g.nodes {
		if colors[id] == white {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}
