package graph

// Config is the JSON-decodable workflow configuration handed to BuildGraph.
type Config struct {
	WorkflowID  string                 `json:"workflow_id"`
	WorkflowName string                `json:"workflow_name"`
	Description string                 `json:"description"`
	Version     string                 `json:"version"`
	Type        string                 `json:"type"`
	Nodes       map[string]Node        `json:"nodes"`
	Edges       []Edge                 `json:"edges"`
}
