package runtime

import (
	"context"
	"fmt"

	"github.com/airband-io/airband/pkg/domain"
)

// Enter moves the session to a node the trainee is allowed to visit:
// the current node (re-entry/refresh) or any previously visited node
// (rewind). Rewinding restores the transcript snapshot taken when the node
// was first entered, clears any pending evaluation, and resets result
// residue, so continuing behaves exactly like a fresh first visit.
func (e *Engine) Enter(ctx context.Context, s *domain.Session, nodeID string) (*domain.Session, *domain.View, error) {
	if _, ok := e.graph.Node(nodeID); !ok {
		return s, nil, &domain.UnknownNodeError{ID: nodeID}
	}
	if nodeID != s.CurrentNodeID && !s.HasVisited(nodeID) {
		return s, nil, fmt.Errorf("cannot enter node %q: %w", nodeID, domain.ErrNodeNotVisited)
	}

	next := s.Clone()
	if snap, ok := next.HistoryByNode[nodeID]; ok {
		next.Transcript = snap.Clone()
	}
	next.Pending = nil
	next.LastOutcome = nil

	view, err := e.enterNode(ctx, next, nodeID)
	if err != nil {
		return s, nil, err
	}
	return next, view, nil
}

// Acknowledge advances past presented content. Only legal while the session
// awaits an explicit continue.
func (e *Engine) Acknowledge(ctx context.Context, s *domain.Session) (*domain.Session, *domain.View, error) {
	if s.Phase == domain.PhaseComplete {
		return s, nil, domain.ErrSessionComplete
	}
	if s.Phase != domain.PhaseAwaitingAck {
		return s, nil, &domain.InvalidTransitionError{Phase: s.Phase, Action: "acknowledge"}
	}

	next := s.Clone()
	view, err := e.advance(ctx, next, domain.AdvanceDefault)
	if err != nil {
		return s, nil, err
	}
	return next, view, nil
}

// SubmitResponse records the trainee's radio call and issues a validation
// ticket. The returned request is what the host passes to the scoring
// collaborator; the outcome comes back through ResolveEvaluation.
//
// If the expected transmission's data has not loaded the session is left
// untouched and domain.ErrTransmissionNotLoaded is returned.
func (e *Engine) SubmitResponse(ctx context.Context, s *domain.Session, text string) (*domain.Session, *domain.View, *domain.ValidationRequest, error) {
	if s.Phase == domain.PhaseComplete {
		return s, nil, nil, domain.ErrSessionComplete
	}
	if s.Phase != domain.PhaseAwaitingInput {
		return s, nil, nil, &domain.InvalidTransitionError{Phase: s.Phase, Action: "submit_response"}
	}

	node, ok := e.graph.Node(s.CurrentNodeID)
	if !ok {
		return s, nil, nil, &domain.UnknownNodeError{ID: s.CurrentNodeID}
	}
	content, ok := node.Content.(domain.UserResponseContent)
	if !ok {
		return s, nil, nil, &domain.StructuralError{NodeID: node.ID, Detail: "awaiting input on a non-response node"}
	}

	bindings := Resolve(e.graph.GlobalVariables, content.Variables)

	tx, err := e.source.Transmission(ctx, content.ExpectedTransmissionID)
	if err != nil {
		return s, nil, nil, fmt.Errorf("load expected transmission %q: %w", content.ExpectedTransmissionID, err)
	}
	expected := RenderBlocks(tx.Blocks, bindings)

	next := s.Clone()
	e.say(next, speakerLabel(domain.RolePilot), domain.RolePilot, text)
	next.EvalSeq++
	ticket := domain.EvalTicket{NodeID: node.ID, Seq: next.EvalSeq}
	next.Pending = &ticket
	next.Phase = domain.PhaseEvaluating

	req := &domain.ValidationRequest{
		SessionID: next.ID,
		Ticket:    ticket,
		Submitted: text,
		Expected:  expected,
		Bindings:  bindings,
	}
	e.logger.Debug("evaluation dispatched", "session", next.ID, "node", node.ID, "seq", ticket.Seq)
	return next, e.buildView(next, node, expectedPrompt(content, bindings)), req, nil
}

// ResolveEvaluation accepts a validation outcome. A result whose ticket no
// longer matches the session's pending evaluation is stale: the session is
// returned unmodified and domain.ErrStaleResult reported so hosts can log
// the discard. Stale results are never surfaced to the trainee.
func (e *Engine) ResolveEvaluation(ctx context.Context, s *domain.Session, ticket domain.EvalTicket, outcome domain.ValidationOutcome) (*domain.Session, *domain.View, error) {
	if s.Phase != domain.PhaseEvaluating || s.Pending == nil || *s.Pending != ticket {
		e.logger.Debug("stale validation result discarded",
			"session", s.ID, "ticket_node", ticket.NodeID, "ticket_seq", ticket.Seq)
		return s, nil, domain.ErrStaleResult
	}

	next := s.Clone()
	next.Pending = nil
	next.LastOutcome = &outcome
	next.Phase = domain.PhaseShowingResult

	if e.hooks.OnEvaluationResolved != nil {
		e.hooks.OnEvaluationResolved(ctx, next.ID, next.CurrentNodeID, outcome)
	}

	node, _ := e.graph.Node(next.CurrentNodeID)
	return next, e.buildView(next, node, ""), nil
}

// Retry abandons the current attempt and waits for a new response on the
// same node. The prompt is not re-rendered and no transcript entries are
// duplicated; the failed attempt remains on the record.
func (e *Engine) Retry(ctx context.Context, s *domain.Session) (*domain.Session, *domain.View, error) {
	switch s.Phase {
	case domain.PhaseShowingResult, domain.PhaseEvaluating:
	case domain.PhaseComplete:
		return s, nil, domain.ErrSessionComplete
	default:
		return s, nil, &domain.InvalidTransitionError{Phase: s.Phase, Action: "retry"}
	}

	next := s.Clone()
	next.Pending = nil
	next.LastOutcome = nil
	next.Phase = domain.PhaseAwaitingInput

	node, _ := e.graph.Node(next.CurrentNodeID)
	return next, e.buildView(next, node, ""), nil
}

// ContinueAfterResult routes past a shown validation result using the
// pass or fail edge selected by the outcome.
func (e *Engine) ContinueAfterResult(ctx context.Context, s *domain.Session) (*domain.Session, *domain.View, error) {
	if s.Phase == domain.PhaseComplete {
		return s, nil, domain.ErrSessionComplete
	}
	if s.Phase != domain.PhaseShowingResult || s.LastOutcome == nil {
		return s, nil, &domain.InvalidTransitionError{Phase: s.Phase, Action: "continue"}
	}

	event := domain.AdvanceFail
	if s.LastOutcome.IsCorrect {
		event = domain.AdvancePass
	}

	next := s.Clone()
	next.LastOutcome = nil
	view, err := e.advance(ctx, next, event)
	if err != nil {
		return s, nil, err
	}
	return next, view, nil
}

// advance routes from the current node and either enters the next node or
// completes the session. No matching edge is the normal terminal condition.
func (e *Engine) advance(ctx context.Context, s *domain.Session, event domain.AdvanceEvent) (*domain.View, error) {
	nextID, ok := Route(e.graph, s.CurrentNodeID, event)
	if !ok {
		s.Phase = domain.PhaseComplete
		s.Pending = nil
		s.LastOutcome = nil
		e.logger.Debug("session complete", "session", s.ID, "node", s.CurrentNodeID, "event", event)
		if e.hooks.OnSessionComplete != nil {
			e.hooks.OnSessionComplete(ctx, s.ID)
		}
		node, _ := e.graph.Node(s.CurrentNodeID)
		return e.buildView(s, node, ""), nil
	}
	return e.enterNode(ctx, s, nextID)
}

func expectedPrompt(c domain.UserResponseContent, b Bindings) string {
	if c.Prompt == "" {
		return ""
	}
	return Substitute(c.Prompt, b)
}
