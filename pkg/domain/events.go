package domain

import "context"

// AdvanceEvent is the input the edge router matches against edge conditions.
type AdvanceEvent string

const (
	// AdvanceDefault is raised when presented content is acknowledged.
	AdvanceDefault AdvanceEvent = "default"
	// AdvancePass is raised when a response validated as correct.
	AdvancePass AdvanceEvent = "validation_pass"
	// AdvanceFail is raised when a response validated as incorrect.
	AdvanceFail AdvanceEvent = "validation_fail"
	// AdvanceJump is session navigation (rewind/re-entry); it never routes
	// through edges.
	AdvanceJump AdvanceEvent = "jump"
)

// LifecycleHooks defines callbacks for engine observability.
// All fields are optional; nil hooks are skipped.
type LifecycleHooks struct {
	// OnNodeEnter fires after a node has been fully entered (content
	// rendered, history snapshotted).
	OnNodeEnter func(ctx context.Context, sessionID string, node *Node)

	// OnEvaluationResolved fires when a validation outcome is accepted
	// (stale results never fire it).
	OnEvaluationResolved func(ctx context.Context, sessionID, nodeID string, outcome ValidationOutcome)

	// OnSessionComplete fires when the session reaches the sink state.
	OnSessionComplete func(ctx context.Context, sessionID string)
}
