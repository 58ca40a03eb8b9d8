package runtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/airband-io/airband/pkg/adapters/memory"
	"github.com/airband-io/airband/pkg/domain"
)

// trainingGraph is a small pattern-work scenario: situation, tower
// clearance, trainee readback with pass/fail branching, debrief.
func trainingGraph() *domain.Graph {
	return &domain.Graph{
		ID:              "pattern-work",
		GlobalVariables: map[string]string{"callsign": "N123AB"},
		Nodes: []domain.Node{
			{ID: "start", Type: domain.NodeSituation, Content: domain.SituationContent{
				Text: "You are on final for runway 27.",
			}},
			{ID: "clearance", Type: domain.NodeTransmission, Content: domain.TransmissionContent{
				TransmissionID: "tower-clearance",
			}},
			{ID: "readback", Type: domain.NodeUserResponse, Content: domain.UserResponseContent{
				ExpectedTransmissionID: "pilot-readback",
				Prompt:                 "Read back the clearance, {{callsign}}.",
			}},
			{ID: "debrief", Type: domain.NodeEvent, Content: domain.EventContent{
				Text: "Tower logs the readback.",
			}},
		},
		Edges: []domain.Edge{
			{From: "start", To: "clearance", Condition: domain.Condition{Type: domain.ConditionDefault}},
			{From: "clearance", To: "readback", Condition: domain.Condition{Type: domain.ConditionDefault}},
			{From: "readback", To: "debrief", Condition: domain.Condition{Type: domain.ConditionValidationPass}},
			{From: "readback", To: "clearance", Condition: domain.Condition{Type: domain.ConditionValidationFail}},
		},
	}
}

func trainingSource() *memory.TransmissionSource {
	return memory.NewTransmissionSource(
		domain.Transmission{ID: "tower-clearance", Role: domain.RoleATC, Blocks: []domain.Block{
			{Order: 1, Text: "{{callsign}}"},
			{Order: 2, Text: "cleared to land runway 27"},
		}},
		domain.Transmission{ID: "pilot-readback", Role: domain.RolePilot, Blocks: []domain.Block{
			{Order: 1, Text: "Cleared to land runway 27"},
			{Order: 2, Text: "{{callsign}}"},
		}},
	)
}

func newTestEngine(t *testing.T, g *domain.Graph, src *memory.TransmissionSource) *Engine {
	t.Helper()
	clock := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	return NewEngine(g, src, WithClock(func() time.Time { return clock }))
}

func TestStartEntersEntryNode(t *testing.T) {
	e := newTestEngine(t, trainingGraph(), trainingSource())

	s, view, err := e.Start(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if s.CurrentNodeID != "start" {
		t.Errorf("current node = %q, want start", s.CurrentNodeID)
	}
	if s.Phase != domain.PhaseAwaitingAck {
		t.Errorf("phase = %q, want awaiting acknowledgement", s.Phase)
	}
	// Situations are displayed, not spoken.
	if len(s.Transcript) != 0 {
		t.Errorf("transcript has %d entries, want 0", len(s.Transcript))
	}
	if len(s.Visited) != 1 || s.Visited[0] != "start" {
		t.Errorf("visited = %v, want [start]", s.Visited)
	}
	if _, ok := s.HistoryByNode["start"]; !ok {
		t.Error("entry snapshot missing for start")
	}
	if view.Text != "You are on final for runway 27." {
		t.Errorf("view text = %q", view.Text)
	}
}

func TestWalkthroughPassPath(t *testing.T) {
	e := newTestEngine(t, trainingGraph(), trainingSource())
	ctx := context.Background()

	s, _, err := e.Start(ctx, "s1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Acknowledge the situation; the tower transmission is spoken.
	s, view, err := e.Acknowledge(ctx, s)
	if err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	if s.CurrentNodeID != "clearance" {
		t.Fatalf("current node = %q, want clearance", s.CurrentNodeID)
	}
	wantCall := "N123AB, cleared to land runway 27"
	if view.Text != wantCall {
		t.Errorf("rendered transmission = %q, want %q", view.Text, wantCall)
	}
	if len(s.Transcript) != 1 || s.Transcript[0].Role != domain.RoleATC {
		t.Fatalf("transcript = %+v, want one ATC entry", s.Transcript)
	}

	// Acknowledge the transmission; the readback prompt appears.
	s, view, err = e.Acknowledge(ctx, s)
	if err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	if s.Phase != domain.PhaseAwaitingInput {
		t.Fatalf("phase = %q, want awaiting input", s.Phase)
	}
	if view.Text != "Read back the clearance, N123AB." {
		t.Errorf("prompt = %q", view.Text)
	}

	// Submit the readback.
	s, _, req, err := e.SubmitResponse(ctx, s, "Cleared to land runway 27, N123AB")
	if err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}
	if s.Phase != domain.PhaseEvaluating {
		t.Fatalf("phase = %q, want evaluating", s.Phase)
	}
	if req.Expected != "Cleared to land runway 27, N123AB" {
		t.Errorf("expected rendering = %q", req.Expected)
	}
	if req.Ticket.NodeID != "readback" || req.Ticket.Seq != 1 {
		t.Errorf("ticket = %+v", req.Ticket)
	}
	last := s.Transcript[len(s.Transcript)-1]
	if last.Role != domain.RolePilot || last.Text != "Cleared to land runway 27, N123AB" {
		t.Errorf("pilot entry = %+v", last)
	}

	// Resolve as correct.
	s, view, err = e.ResolveEvaluation(ctx, s, req.Ticket, domain.ValidationOutcome{Score: 1, IsCorrect: true})
	if err != nil {
		t.Fatalf("ResolveEvaluation: %v", err)
	}
	if s.Phase != domain.PhaseShowingResult {
		t.Fatalf("phase = %q, want showing result", s.Phase)
	}
	if view.Outcome == nil || !view.Outcome.IsCorrect {
		t.Fatalf("view outcome = %+v", view.Outcome)
	}

	// Continue along the pass edge.
	s, _, err = e.ContinueAfterResult(ctx, s)
	if err != nil {
		t.Fatalf("ContinueAfterResult: %v", err)
	}
	if s.CurrentNodeID != "debrief" {
		t.Fatalf("current node = %q, want debrief", s.CurrentNodeID)
	}

	// The debrief has no outgoing edges: acknowledging it completes the
	// session. That is the normal terminal condition.
	s, view, err = e.Acknowledge(ctx, s)
	if err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	if s.Phase != domain.PhaseComplete {
		t.Fatalf("phase = %q, want complete", s.Phase)
	}
	if !view.Complete {
		t.Error("view should report completion")
	}

	// The sink state accepts nothing further.
	if _, _, err := e.Acknowledge(ctx, s); !errors.Is(err, domain.ErrSessionComplete) {
		t.Errorf("acknowledge after complete = %v, want ErrSessionComplete", err)
	}
}

func TestFailRouteReturnsToClearance(t *testing.T) {
	e := newTestEngine(t, trainingGraph(), trainingSource())
	ctx := context.Background()

	s := walkToReadback(t, e)

	s, _, req, err := e.SubmitResponse(ctx, s, "say again")
	if err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}
	s, _, err = e.ResolveEvaluation(ctx, s, req.Ticket, domain.ValidationOutcome{Score: 0.2, IsCorrect: false})
	if err != nil {
		t.Fatalf("ResolveEvaluation: %v", err)
	}
	s, _, err = e.ContinueAfterResult(ctx, s)
	if err != nil {
		t.Fatalf("ContinueAfterResult: %v", err)
	}
	if s.CurrentNodeID != "clearance" {
		t.Fatalf("current node = %q, want clearance (fail edge)", s.CurrentNodeID)
	}
}

func TestRetryKeepsFailedAttemptOnRecord(t *testing.T) {
	e := newTestEngine(t, trainingGraph(), trainingSource())
	ctx := context.Background()

	s := walkToReadback(t, e)

	s, _, req, err := e.SubmitResponse(ctx, s, "uh, tower, please repeat")
	if err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}
	s, _, err = e.ResolveEvaluation(ctx, s, req.Ticket, domain.ValidationOutcome{IsCorrect: false})
	if err != nil {
		t.Fatalf("ResolveEvaluation: %v", err)
	}

	before := len(s.Transcript)
	s, _, err = e.Retry(ctx, s)
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if s.Phase != domain.PhaseAwaitingInput {
		t.Fatalf("phase = %q, want awaiting input", s.Phase)
	}
	if s.Pending != nil || s.LastOutcome != nil {
		t.Error("retry must clear pending ticket and outcome")
	}
	if len(s.Transcript) != before {
		t.Errorf("transcript changed on retry: %d -> %d entries", before, len(s.Transcript))
	}
}

func TestStaleTicketDiscarded(t *testing.T) {
	e := newTestEngine(t, trainingGraph(), trainingSource())
	ctx := context.Background()

	s := walkToReadback(t, e)

	// First attempt goes out for evaluation, then the trainee retries and
	// submits again before the first outcome lands.
	s, _, firstReq, err := e.SubmitResponse(ctx, s, "first attempt")
	if err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}
	s, _, err = e.Retry(ctx, s)
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	s, _, secondReq, err := e.SubmitResponse(ctx, s, "second attempt")
	if err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}
	if secondReq.Ticket.Seq != firstReq.Ticket.Seq+1 {
		t.Fatalf("ticket seq = %d, want %d", secondReq.Ticket.Seq, firstReq.Ticket.Seq+1)
	}

	// The late outcome for the first attempt must be dropped untouched.
	same, view, err := e.ResolveEvaluation(ctx, s, firstReq.Ticket, domain.ValidationOutcome{IsCorrect: true})
	if !errors.Is(err, domain.ErrStaleResult) {
		t.Fatalf("ResolveEvaluation(stale) = %v, want ErrStaleResult", err)
	}
	if view != nil {
		t.Error("stale resolution must not produce a view")
	}
	if same != s || same.Phase != domain.PhaseEvaluating {
		t.Error("stale resolution must leave the session unmodified")
	}

	// The live ticket still resolves normally.
	resolved, _, err := e.ResolveEvaluation(ctx, s, secondReq.Ticket, domain.ValidationOutcome{IsCorrect: true})
	if err != nil {
		t.Fatalf("ResolveEvaluation(live): %v", err)
	}
	if resolved.Phase != domain.PhaseShowingResult {
		t.Errorf("phase = %q, want showing result", resolved.Phase)
	}
}

func TestRewindReplaysIdentically(t *testing.T) {
	e := newTestEngine(t, trainingGraph(), trainingSource())
	ctx := context.Background()

	s := walkToReadback(t, e)
	firstVisit := transcriptTexts(s.Transcript)

	// Rewind to the clearance and walk forward again.
	s, view, err := e.Enter(ctx, s, "clearance")
	if err != nil {
		t.Fatalf("Enter: %v", err)
	}
	if s.CurrentNodeID != "clearance" || s.Phase != domain.PhaseAwaitingAck {
		t.Fatalf("after rewind: node %q phase %q", s.CurrentNodeID, s.Phase)
	}
	if view.Text != "N123AB, cleared to land runway 27" {
		t.Errorf("rewound transmission = %q", view.Text)
	}

	s, _, err = e.Acknowledge(ctx, s)
	if err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	replay := transcriptTexts(s.Transcript)

	if len(replay) != len(firstVisit) {
		t.Fatalf("replay transcript has %d entries, first visit had %d", len(replay), len(firstVisit))
	}
	for i := range replay {
		if replay[i] != firstVisit[i] {
			t.Errorf("entry %d differs: %q vs %q", i, replay[i], firstVisit[i])
		}
	}
}

func TestRewindRejectsUnvisitedNode(t *testing.T) {
	e := newTestEngine(t, trainingGraph(), trainingSource())
	ctx := context.Background()

	s, _, err := e.Start(ctx, "s1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, _, err := e.Enter(ctx, s, "debrief"); !errors.Is(err, domain.ErrNodeNotVisited) {
		t.Fatalf("Enter(unvisited) = %v, want ErrNodeNotVisited", err)
	}
	if _, _, err := e.Enter(ctx, s, "no-such-node"); err == nil {
		t.Fatal("Enter(unknown) should fail")
	}
}

func TestRewindDiscardsPendingEvaluation(t *testing.T) {
	e := newTestEngine(t, trainingGraph(), trainingSource())
	ctx := context.Background()

	s := walkToReadback(t, e)
	s, _, req, err := e.SubmitResponse(ctx, s, "first attempt")
	if err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}

	s, _, err = e.Enter(ctx, s, "clearance")
	if err != nil {
		t.Fatalf("Enter: %v", err)
	}
	if s.Pending != nil {
		t.Error("rewind must clear the pending ticket")
	}
	if _, _, err := e.ResolveEvaluation(ctx, s, req.Ticket, domain.ValidationOutcome{IsCorrect: true}); !errors.Is(err, domain.ErrStaleResult) {
		t.Errorf("outcome after rewind = %v, want ErrStaleResult", err)
	}
}

func TestTransmissionSuspension(t *testing.T) {
	g := &domain.Graph{
		ID: "delayed",
		Nodes: []domain.Node{
			{ID: "start", Type: domain.NodeTransmission, Content: domain.TransmissionContent{
				TransmissionID: "late-atis",
			}},
		},
	}
	src := memory.NewTransmissionSource()
	src.Announce("late-atis")
	e := newTestEngine(t, g, src)
	ctx := context.Background()

	s, view, err := e.Start(ctx, "s1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.Phase != domain.PhasePresenting {
		t.Fatalf("phase = %q, want presenting (suspended)", s.Phase)
	}
	if view.Text != PendingPlaceholder {
		t.Errorf("view text = %q, want %q", view.Text, PendingPlaceholder)
	}
	// A suspended node is not entered: no transcript entry, no visit.
	if len(s.Transcript) != 0 || len(s.Visited) != 0 {
		t.Errorf("suspended node leaked state: transcript=%d visited=%v", len(s.Transcript), s.Visited)
	}
	// Acknowledging a suspended node is not legal.
	if _, _, err := e.Acknowledge(ctx, s); err == nil {
		t.Error("acknowledge during suspension should fail")
	}

	// The data arrives; re-entering the current node presents it.
	src.Publish(domain.Transmission{ID: "late-atis", Role: domain.RoleATC, Blocks: []domain.Block{
		{Order: 1, Text: "Information Alpha, wind 270 at 10"},
	}})
	s, view, err = e.Enter(ctx, s, "start")
	if err != nil {
		t.Fatalf("Enter after publish: %v", err)
	}
	if s.Phase != domain.PhaseAwaitingAck {
		t.Fatalf("phase = %q, want awaiting acknowledgement", s.Phase)
	}
	if view.Text != "Information Alpha, wind 270 at 10" {
		t.Errorf("view text = %q", view.Text)
	}
	if len(s.Transcript) != 1 {
		t.Errorf("transcript entries = %d, want 1", len(s.Transcript))
	}
}

func TestSubmitFailsWhenExpectedNotLoaded(t *testing.T) {
	g := trainingGraph()
	src := memory.NewTransmissionSource(
		domain.Transmission{ID: "tower-clearance", Role: domain.RoleATC, Blocks: []domain.Block{
			{Order: 1, Text: "cleared to land"},
		}},
	)
	src.Announce("pilot-readback")
	e := newTestEngine(t, g, src)
	ctx := context.Background()

	s := walkToReadback(t, e)

	same, _, _, err := e.SubmitResponse(ctx, s, "cleared to land")
	if !errors.Is(err, domain.ErrTransmissionNotLoaded) {
		t.Fatalf("SubmitResponse = %v, want ErrTransmissionNotLoaded", err)
	}
	if same != s || same.Phase != domain.PhaseAwaitingInput {
		t.Error("failed submit must leave the session unmodified")
	}
}

func TestNavigationDoesNotMutateInput(t *testing.T) {
	e := newTestEngine(t, trainingGraph(), trainingSource())
	ctx := context.Background()

	s, _, err := e.Start(ctx, "s1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	nodeBefore := s.CurrentNodeID
	phaseBefore := s.Phase

	next, _, err := e.Acknowledge(ctx, s)
	if err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	if next == s {
		t.Fatal("Acknowledge must return a new session value")
	}
	if s.CurrentNodeID != nodeBefore || s.Phase != phaseBefore {
		t.Error("input session was mutated")
	}
}

func TestInvalidTransitions(t *testing.T) {
	e := newTestEngine(t, trainingGraph(), trainingSource())
	ctx := context.Background()

	s, _, err := e.Start(ctx, "s1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	var transition *domain.InvalidTransitionError
	if _, _, _, err := e.SubmitResponse(ctx, s, "text"); !errors.As(err, &transition) {
		t.Errorf("SubmitResponse in %q = %v, want InvalidTransitionError", s.Phase, err)
	}
	if _, _, err := e.Retry(ctx, s); !errors.As(err, &transition) {
		t.Errorf("Retry in %q = %v, want InvalidTransitionError", s.Phase, err)
	}
	if _, _, err := e.ContinueAfterResult(ctx, s); !errors.As(err, &transition) {
		t.Errorf("ContinueAfterResult in %q = %v, want InvalidTransitionError", s.Phase, err)
	}
}

func TestLifecycleHooksFire(t *testing.T) {
	var entered []string
	var resolved int
	var completed int

	g := trainingGraph()
	e := NewEngine(g, trainingSource(), WithLifecycleHooks(domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, _ string, node *domain.Node) {
			entered = append(entered, node.ID)
		},
		OnEvaluationResolved: func(_ context.Context, _, _ string, _ domain.ValidationOutcome) {
			resolved++
		},
		OnSessionComplete: func(_ context.Context, _ string) {
			completed++
		},
	}))
	ctx := context.Background()

	s, _, err := e.Start(ctx, "s1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	s, _, err = e.Acknowledge(ctx, s)
	if err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	s, _, err = e.Acknowledge(ctx, s)
	if err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	s, _, req, err := e.SubmitResponse(ctx, s, "Cleared to land runway 27, N123AB")
	if err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}
	s, _, err = e.ResolveEvaluation(ctx, s, req.Ticket, domain.ValidationOutcome{IsCorrect: true})
	if err != nil {
		t.Fatalf("ResolveEvaluation: %v", err)
	}
	s, _, err = e.ContinueAfterResult(ctx, s)
	if err != nil {
		t.Fatalf("ContinueAfterResult: %v", err)
	}
	if _, _, err = e.Acknowledge(ctx, s); err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}

	want := []string{"start", "clearance", "readback", "debrief"}
	if len(entered) != len(want) {
		t.Fatalf("entered = %v, want %v", entered, want)
	}
	for i := range want {
		if entered[i] != want[i] {
			t.Errorf("entered[%d] = %q, want %q", i, entered[i], want[i])
		}
	}
	if resolved != 1 {
		t.Errorf("resolved hooks = %d, want 1", resolved)
	}
	if completed != 1 {
		t.Errorf("completed hooks = %d, want 1", completed)
	}
}

func TestReadOnlyView(t *testing.T) {
	e := newTestEngine(t, trainingGraph(), trainingSource())
	ctx := context.Background()

	s := walkToReadback(t, e)
	view, err := e.View(ctx, s)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if !view.AwaitingInput {
		t.Error("view should report awaiting input")
	}
	if view.Text != "Read back the clearance, N123AB." {
		t.Errorf("view text = %q", view.Text)
	}
	if s.Phase != domain.PhaseAwaitingInput {
		t.Error("View must not mutate the session")
	}
}

// walkToReadback drives a fresh session to the user_response node.
func walkToReadback(t *testing.T, e *Engine) *domain.Session {
	t.Helper()
	ctx := context.Background()

	s, _, err := e.Start(ctx, "s1")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	s, _, err = e.Acknowledge(ctx, s)
	if err != nil {
		t.Fatalf("Acknowledge(start): %v", err)
	}
	s, _, err = e.Acknowledge(ctx, s)
	if err != nil {
		t.Fatalf("Acknowledge(clearance): %v", err)
	}
	if s.CurrentNodeID != "readback" || s.Phase != domain.PhaseAwaitingInput {
		t.Fatalf("setup ended at node %q phase %q", s.CurrentNodeID, s.Phase)
	}
	return s
}

func transcriptTexts(tr domain.Transcript) []string {
	out := make([]string, len(tr))
	for i, e := range tr {
		out[i] = e.Text
	}
	return out
}
