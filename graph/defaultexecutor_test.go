package graph

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wflow/treeflow-go/graph/model"
)

func TestDefaultExecutor_StartShortCircuits(t *testing.T) {
	mock := &model.MockChatModel{Responses: []model.ChatOut{{Text: "should not be used"}}}
	e := NewDefaultExecutor(mock, "wf", "My Workflow")
	out, err := e.Execute(context.Background(), Node{ID: "s", Type: NodeStart}, Input{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "My Workflow") {
		t.Fatalf("expected constant marker to mention workflow name, got %q", out.String())
	}
	if mock.CallCount() != 0 {
		t.Fatalf("expected START to short-circuit without calling the model, got %d calls", mock.CallCount())
	}
}

func TestDefaultExecutor_CallsModelForNonStart(t *testing.T) {
	mock := &model.MockChatModel{Responses: []model.ChatOut{{Text: "model says hi"}}}
	e := NewDefaultExecutor(mock, "wf", "wf-name")
	out, err := e.Execute(context.Background(), Node{ID: "m", Type: NodeIntermediate}, Input{Prompt: "do it", HasPrompt: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "model says hi" {
		t.Fatalf("expected model output, got %q", out.String())
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected exactly one model call, got %d", mock.CallCount())
	}
}

func TestDefaultExecutor_FallsBackOnModelError(t *testing.T) {
	mock := &model.MockChatModel{Err: errors.New("provider down")}
	e := NewDefaultExecutor(mock, "wf", "wf-name")
	out, err := e.Execute(context.Background(), Node{ID: "l", Name: "leaf-node", Type: NodeLeaf}, Input{Prompt: "summarize", HasPrompt: true})
	if err != nil {
		t.Fatalf("expected fallback to absorb the error, got %v", err)
	}
	if !strings.HasPrefix(out.String(), "FINAL[leaf-node]:") {
		t.Fatalf("expected FINAL[...] fallback label for a leaf node, got %q", out.String())
	}
}

func TestDefaultExecutor_FallbackTruncatesByNodeType(t *testing.T) {
	e := NewDefaultExecutor(nil, "wf", "wf-name")
	longPrompt := strings.Repeat("x", 500)

	leafOut, _ := e.Execute(context.Background(), Node{ID: "l", Name: "l", Type: NodeLeaf}, Input{Prompt: longPrompt, HasPrompt: true})
	if !strings.HasSuffix(leafOut.String(), "...") {
		t.Fatalf("expected leaf fallback to be truncated, got len %d", len(leafOut.String()))
	}

	midOut, _ := e.Execute(context.Background(), Node{ID: "m", Name: "m", Type: NodeIntermediate}, Input{Prompt: longPrompt, HasPrompt: true})
	if !strings.HasPrefix(midOut.String(), "PROCESSED[m]:") {
		t.Fatalf("expected PROCESSED[...] label for intermediate node, got %q", midOut.String())
	}
}
