// Command treeflow-run loads a workflow configuration from a JSON file and
// executes it once, wiring together a graph.Engine with a chat-model-backed
// NodeExecutor, a recorder.Recorder for persistence, and structured logging.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/wflow/treeflow-go/graph"
	"github.com/wflow/treeflow-go/graph/emit"
	"github.com/wflow/treeflow-go/graph/model"
	"github.com/wflow/treeflow-go/graph/model/anthropic"
	"github.com/wflow/treeflow-go/graph/model/google"
	"github.com/wflow/treeflow-go/graph/model/openai"
	"github.com/wflow/treeflow-go/graph/recorder"
)

func main() {
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(logHandler))

	configPath := flag.String("config", "", "path to a workflow configuration JSON file")
	dbPath := flag.String("db", "treeflow.db", "SQLite path for the execution recorder")
	tracing := flag.Bool("otel", false, "emit OpenTelemetry spans (stdout exporter) instead of JSON logs")
	historyFile := flag.String("history-file", "", "if set, dump this execution's full event history to the given JSON file")
	flag.Parse()

	if *configPath == "" {
		slog.Error("missing required -config flag")
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load workflow config", "error", err)
		os.Exit(1)
	}

	rec, err := recorder.NewSQLiteRecorder(*dbPath)
	if err != nil {
		slog.Error("failed to open recorder", "error", err)
		os.Exit(1)
	}
	defer rec.Close()

	chat := resolveChatModel()
	executor := graph.NewDefaultExecutor(chat, cfg.WorkflowID, cfg.WorkflowName)

	emitter, history, shutdownTracing, err := resolveEmitter(*tracing, *historyFile)
	if err != nil {
		slog.Error("failed to set up observability", "error", err)
		os.Exit(1)
	}
	defer shutdownTracing()

	engine, err := graph.New(cfg,
		graph.WithExecutor(executor),
		graph.WithCallbacks(rec),
		graph.WithEmitter(emitter),
		graph.WithNodeTimeout(2*time.Minute),
	)
	if err != nil {
		slog.Error("failed to build workflow graph", "error", err)
		os.Exit(1)
	}

	executionID := uuid.NewString()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		if engine.Registry().Cancel(executionID) {
			slog.Info("cancellation requested", "execution_id", executionID)
		}
	}()

	summary := engine.ExecuteWorkflow(ctx, executionID)
	slog.Info("execution finished",
		"execution_id", executionID,
		"is_complete", summary.IsComplete(),
		"is_failed", summary.IsFailed(),
		"completed", summary.CompletedCount,
		"failed", summary.FailedCount,
		"skipped", summary.SkippedCount,
		"cancelled", summary.CancelledCount,
	)

	if history != nil {
		if err := dumpHistory(*historyFile, history.GetHistory(executionID)); err != nil {
			slog.Error("failed to write history file", "error", err, "path", *historyFile)
		}
	}
}

// resolveEmitter builds the Emitter(s) requested on the command line. When
// both -otel and -history-file are set, events fan out to both via
// emit.MultiEmitter. The returned history is non-nil only when -history-file
// was set, for the caller to dump after the run finishes.
func resolveEmitter(tracing bool, historyFile string) (emitter emit.Emitter, history *emit.BufferedEmitter, shutdown func(), err error) {
	shutdown = func() {}

	var targets []emit.Emitter
	if tracing {
		exporter, exportErr := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if exportErr != nil {
			return nil, nil, shutdown, exportErr
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
		otel.SetTracerProvider(tp)
		shutdown = func() { _ = tp.Shutdown(context.Background()) }
		targets = append(targets, emit.NewOTelEmitter(otel.Tracer("treeflow-run")))
	} else {
		targets = append(targets, emit.NewLogEmitter(os.Stdout, true))
	}

	if historyFile != "" {
		history = emit.NewBufferedEmitter()
		targets = append(targets, history)
	}

	if len(targets) == 1 {
		return targets[0], history, shutdown, nil
	}
	return emit.NewMultiEmitter(targets...), history, shutdown, nil
}

func dumpHistory(path string, events []emit.Event) error {
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func loadConfig(path string) (graph.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return graph.Config{}, err
	}
	var cfg graph.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return graph.Config{}, err
	}
	return cfg, nil
}

// resolveChatModel picks whichever provider has credentials in the
// environment, falling back to nil (the default executor's deterministic
// fallback path) when none are configured.
func resolveChatModel() model.ChatModel {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return anthropic.NewChatModel(key, "")
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return openai.NewChatModel(key, "")
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		return google.NewChatModel(key, "")
	}
	slog.Info("no LLM provider credentials found; default executor will use its deterministic fallback")
	return nil
}
