package graph

import (
	"context"
	"log"
	"sync"
)

// TaskRegistry is process-wide mutable state mapping an execution id to the
// cancel handle for its in-flight Dispatcher run, so an out-of-band caller
// can cancel an execution it doesn't otherwise hold a reference to.
//
// Grounded on the background task manager pattern: Register is idempotent
// per id (a double-register logs a warning and returns rather than erroring)
// and entries are removed automatically once an execution reaches a
// terminal state.
type TaskRegistry struct {
	mu      sync.Mutex
	entries map[string]context.CancelFunc
}

// NewTaskRegistry creates an empty registry.
func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{entries: make(map[string]context.CancelFunc)}
}

// Register associates an execution id with its cancel handle. Re-registering
// an id that is already live logs a warning and leaves the existing entry in
// place.
func (r *TaskRegistry) Register(execID string, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[execID]; exists {
		log.Printf("task registry: execution %q already registered, ignoring duplicate", execID)
		return
	}
	r.entries[execID] = cancel
}

// Unregister removes an execution's entry. Called automatically (deferred)
// by Engine.ExecuteWorkflow when an execution reaches a terminal state; safe
// to call for an id that isn't present.
func (r *TaskRegistry) Unregister(execID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, execID)
}

// IsRunning reports whether execID has a live entry.
func (r *TaskRegistry) IsRunning(execID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[execID]
	return ok
}

// Cancel signals the cancel handle registered for execID, if any, and
// reports whether a live entry existed. Idempotent: cancelling an id that
// isn't registered (already terminal, or never started) is a no-op that
// returns false.
func (r *TaskRegistry) Cancel(execID string) bool {
	r.mu.Lock()
	cancel, ok := r.entries[execID]
	r.mu.Unlock()
	if !ok {
		return false
	}
	cancel()
	return true
}
