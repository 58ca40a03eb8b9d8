package domain

// Phase defines the current mode of the session state machine.
type Phase string

const (
	// PhaseIdle is the state before the session has entered any node.
	PhaseIdle Phase = "idle"
	// PhasePresenting means the current node's content is being rendered.
	// The session stays here while transmission data has not loaded.
	PhasePresenting Phase = "presenting"
	// PhaseAwaitingInput waits for the trainee's radio call.
	PhaseAwaitingInput Phase = "awaiting_user_input"
	// PhaseAwaitingAck waits for an explicit "continue" after presented
	// content. The engine never silently auto-advances.
	PhaseAwaitingAck Phase = "awaiting_acknowledgement"
	// PhaseEvaluating waits for the validation collaborator's outcome.
	PhaseEvaluating Phase = "evaluating"
	// PhaseShowingResult waits for the trainee to choose continue or retry.
	PhaseShowingResult Phase = "showing_result"
	// PhaseComplete is the sink state. No further input is accepted.
	PhaseComplete Phase = "complete"
)

// EvalTicket correlates an in-flight validation call with the session state
// that issued it. A result bearing a ticket that no longer matches the
// session's pending ticket is stale and must be discarded.
type EvalTicket struct {
	NodeID string `json:"node_id"`
	Seq    uint64 `json:"seq"`
}

// ValidationOutcome is the collaborator's judgment of a trainee response.
// The engine treats everything but IsCorrect as opaque display data.
type ValidationOutcome struct {
	Score     float64 `json:"score"`
	IsCorrect bool    `json:"is_correct"`
	Feedback  string  `json:"feedback,omitempty"`
}

// ValidationRequest is what the host passes to the validation collaborator.
type ValidationRequest struct {
	SessionID string            `json:"session_id"`
	Ticket    EvalTicket        `json:"ticket"`
	Submitted string            `json:"submitted"`
	Expected  string            `json:"expected"`
	Bindings  map[string]string `json:"bindings,omitempty"`
}

// Session is one trainee's live traversal state over a graph.
// It is mutated exclusively by the navigation surface; adapters treat it as
// an opaque value to persist and restore.
type Session struct {
	// ID identifies the session for persistence and locking.
	ID string `json:"id"`

	// GraphID records which scenario this session runs.
	GraphID string `json:"graph_id,omitempty"`

	// CurrentNodeID is the node presented to the trainee, empty before entry.
	CurrentNodeID string `json:"current_node_id"`

	Phase Phase `json:"phase"`

	// Transcript is everything said so far, in order.
	Transcript Transcript `json:"transcript"`

	// Visited lists node ids that have been fully entered, in first-visit
	// order. Drives the rewind affordances in the presentation layer.
	Visited []string `json:"visited"`

	// HistoryByNode maps node id to the transcript snapshot taken when the
	// node was entered. Rewinding restores the snapshot verbatim.
	HistoryByNode map[string]Transcript `json:"history_by_node"`

	// Pending is the ticket of the in-flight validation call, if any.
	Pending *EvalTicket `json:"pending,omitempty"`

	// EvalSeq is the monotonically increasing sequence used to tag
	// validation requests. Never reset, even on rewind.
	EvalSeq uint64 `json:"eval_seq"`

	// LastOutcome holds the outcome shown in PhaseShowingResult.
	LastOutcome *ValidationOutcome `json:"last_outcome,omitempty"`
}

// NewSession creates an idle session for a graph.
func NewSession(id, graphID string) *Session {
	return &Session{
		ID:            id,
		GraphID:       graphID,
		Phase:         PhaseIdle,
		HistoryByNode: make(map[string]Transcript),
	}
}

// HasVisited reports whether the node has been fully entered at least once.
func (s *Session) HasVisited(nodeID string) bool {
	for _, id := range s.Visited {
		if id == nodeID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe for independent mutation.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	next := *s
	next.Transcript = s.Transcript.Clone()
	next.Visited = append([]string(nil), s.Visited...)
	next.HistoryByNode = make(map[string]Transcript, len(s.HistoryByNode))
	for k, v := range s.HistoryByNode {
		next.HistoryByNode[k] = v.Clone()
	}
	if s.Pending != nil {
		p := *s.Pending
		next.Pending = &p
	}
	if s.LastOutcome != nil {
		o := *s.LastOutcome
		next.LastOutcome = &o
	}
	return &next
}
