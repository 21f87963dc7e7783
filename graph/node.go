package graph

// NodeType classifies a node's position in the workflow.
type NodeType string

const (
	// NodeStart marks an entry point. At least one must exist in a
	// well-formed workflow; it executes without input.
	NodeStart NodeType = "START"

	// NodeIntermediate marks an ordinary processing node.
	NodeIntermediate NodeType = "INTERMEDIATE"

	// NodeLeaf marks a terminal node. A workflow may have many.
	NodeLeaf NodeType = "LEAF"
)

// InputConfig controls what a node receives as input when it is dispatched.
type InputConfig struct {
	IncludePrompt          bool `json:"include_prompt"`
	IncludePreviousOutput  bool `json:"include_previous_output"`
}

// Node is a unit of work in the workflow graph: one LLM invocation in the
// default case.
type Node struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Prompt      string      `json:"prompt"`
	Type        NodeType    `json:"node_type"`
	InputConfig InputConfig `json:"input_config"`
}
