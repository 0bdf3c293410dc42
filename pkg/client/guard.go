package client

import (
	"fmt"
	"sync"
)

// ErrOperationInProgress is returned when a named operation is already
// running. The second attempt is rejected outright, never queued.
type ErrOperationInProgress struct {
	// Operation is the rejected operation name.
	Operation string
}

// Error implements the error interface.
func (e *ErrOperationInProgress) Error() string {
	return fmt.Sprintf("operation %q is already running", e.Operation)
}

// OperationGuard enforces that at most one instance of a named
// high-level operation (e.g. "ask ai", "improve code") runs at a time.
type OperationGuard struct {
	mu     sync.Mutex
	active map[string]bool
}

// NewOperationGuard creates an empty guard.
func NewOperationGuard() *OperationGuard {
	return &OperationGuard{active: make(map[string]bool)}
}

// Begin marks the operation as running. It fails with
// *ErrOperationInProgress when the same name is already active.
// A successful Begin must be paired with End.
func (g *OperationGuard) Begin(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active[name] {
		return &ErrOperationInProgress{Operation: name}
	}
	g.active[name] = true
	return nil
}

// End marks the operation as finished. Ending an inactive operation is
// a no-op.
func (g *OperationGuard) End(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, name)
}

// Do runs fn under the guard, returning *ErrOperationInProgress when
// the operation is already active.
func (g *OperationGuard) Do(name string, fn func() error) error {
	if err := g.Begin(name); err != nil {
		return err
	}
	defer g.End(name)
	return fn()
}
