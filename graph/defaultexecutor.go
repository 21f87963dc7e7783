package graph

import (
	"context"
	"fmt"

	"github.com/wflow/treeflow-go/graph/model"
)

// startMarker is the constant output a START node's default execution
// returns without invoking an LLM.
const startMarker = "workflow started"

// Truncation lengths for the deterministic fallback path, carried over from
// the original implementation's fallback text processing.
const (
	leafFallbackTruncate  = 200
	otherFallbackTruncate = 150
)

// DefaultExecutor is the engine's reference NodeExecutor: it builds a
// two-message prompt (system message with workflow/node metadata, human
// message with the assembled input), invokes a model.ChatModel, and falls
// back to a deterministic text summarization when the model call fails so a
// single transient provider error never aborts the whole graph.
type DefaultExecutor struct {
	chat         model.ChatModel
	workflowID   string
	workflowName string
}

// NewDefaultExecutor builds a DefaultExecutor bound to chat (may be nil, in
// which case every non-START node always takes the fallback path) and the
// workflow identity used in the system prompt.
func NewDefaultExecutor(chat model.ChatModel, workflowID, workflowName string) *DefaultExecutor {
	return &DefaultExecutor{chat: chat, workflowID: workflowID, workflowName: workflowName}
}

func (e *DefaultExecutor) Execute(ctx context.Context, node Node, input Input) (Output, error) {
	if node.Type == NodeStart {
		return Text(fmt.Sprintf("%s - %s", startMarker, e.workflowName)), nil
	}

	if e.chat == nil {
		return Text(e.fallback(node, input)), nil
	}

	messages := e.buildMessages(node, input)
	out, err := e.chat.Chat(ctx, messages, nil)
	if err != nil {
		return Text(e.fallback(node, input)), nil
	}
	return Text(out.Text), nil
}

func (e *DefaultExecutor) buildMessages(node Node, input Input) []model.Message {
	system := fmt.Sprintf(
		"You are a workflow processing assistant.\n\nWorkflow: %s (id: %s)\nNode type: %s\n\nTask description: %s\n\nProcess the input and produce a high-quality result.",
		e.workflowName, e.workflowID, node.Type, node.Description,
	)
	if node.Type == NodeLeaf {
		system += "\nThis is a leaf node; produce the final result."
	}

	human := fmt.Sprintf("Node: %s\n\n%s", node.Name, e.assembledText(input))

	return []model.Message{
		{Role: model.RoleSystem, Content: system},
		{Role: model.RoleUser, Content: human},
	}
}

func (e *DefaultExecutor) assembledText(input Input) string {
	var parts []string
	if input.HasPrompt {
		parts = append(parts, "PROMPT: "+input.Prompt)
	}
	if input.HasPreviousOutput {
		parts = append(parts, "PREV: "+input.PreviousOutput)
	}
	joined := ""
	for i, p := range parts {
		if i > 0 {
			joined += "\n"
		}
		joined += p
	}
	return joined
}

// fallback deterministically summarizes the node's input when the LLM call
// fails or no model is configured, labeling it by node type and truncating
// to the original implementation's lengths.
func (e *DefaultExecutor) fallback(node Node, input Input) string {
	full := e.assembledText(input)

	switch node.Type {
	case NodeLeaf:
		return fmt.Sprintf("FINAL[%s]: %s", node.Name, truncate(full, leafFallbackTruncate))
	default:
		return fmt.Sprintf("PROCESSED[%s]: %s", node.Name, truncate(full, otherFallbackTruncate))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
